// Package prog provides the entry point to kesh. It parses command-line flags,
// sets up the debug log and runs a Program.
package prog

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"src.kesh.sh/pkg/logutil"
)

// Flags keeps command-line flags.
type Flags struct {
	Log string

	Help bool

	CodeInArg, Interactive, NoRc bool
	RC                           string

	DB, History string

	Version, BuildInfo bool
	JSON               bool

	CPUProfile string
}

func newFlagSet(f *Flags) *pflag.FlagSet {
	fs := pflag.NewFlagSet("kesh", pflag.ContinueOnError)
	// Error and usage will be printed explicitly.
	fs.SetOutput(io.Discard)
	// Everything after the script name is passed to the script.
	fs.SetInterspersed(false)

	fs.StringVar(&f.Log, "log", "", "a file to write debug log to")

	fs.BoolVar(&f.Help, "help", false, "show usage help and quit")

	fs.BoolVarP(&f.Interactive, "interactive", "i", false, "force interactive mode")
	fs.BoolVarP(&f.CodeInArg, "command", "c", false, "take first argument as code to execute")
	fs.BoolVar(&f.NoRc, "norc", false, "run kesh without reading the rc file")
	fs.StringVar(&f.RC, "rc", "", "path to the rc file")

	fs.StringVar(&f.DB, "db", "", "path to the history database")
	fs.StringVar(&f.History, "history", "", "path to the history file")

	fs.BoolVar(&f.Version, "version", false, "show version and quit")
	fs.BoolVar(&f.BuildInfo, "buildinfo", false, "show build info and quit")
	fs.BoolVar(&f.JSON, "json", false, "show output in JSON; useful with --buildinfo")

	fs.StringVar(&f.CPUProfile, "cpuprofile", "", "write CPU profile to file")

	return fs
}

func usage(out io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintln(out, "Usage: kesh [flags] [script [args...]]")
	fmt.Fprintln(out, "       kesh [flags] -c code [name [args...]]")
	fmt.Fprintln(out, "Supported flags:")
	fmt.Fprint(out, fs.FlagUsages())
}

// Run parses command-line flags and runs the program. It returns the exit
// status of the program.
func Run(fds [3]*os.File, args []string, p Program) int {
	f := &Flags{}
	fs := newFlagSet(f)
	err := fs.Parse(args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			// Parse returns ErrHelp when -h was requested but not defined.
			fmt.Fprintln(fds[2], "unknown shorthand flag: 'h' in -h")
		} else {
			fmt.Fprintln(fds[2], err)
		}
		usage(fds[2], fs)
		return 2
	}

	if f.Log != "" {
		err = logutil.SetOutputFile(f.Log)
		if err != nil {
			fmt.Fprintln(fds[2], err)
		}
	}

	if f.Help {
		usage(fds[1], fs)
		return 0
	}

	err = p.Run(fds, f, fs.Args())
	if err == nil {
		return 0
	}
	if msg := err.Error(); msg != "" {
		fmt.Fprintln(fds[2], msg)
	}
	var (
		badUsage badUsageError
		exit     exitError
	)
	switch {
	case errors.As(err, &badUsage):
		usage(fds[2], fs)
	case errors.As(err, &exit):
		return exit.exit
	}
	return 2
}

// Composite returns a Program that tries each of the given programs,
// terminating at the first one that doesn't return ErrNotSuitable or the
// result of NextProgram. Cleanups requested with NextProgram run after the
// last program, in reverse order.
func Composite(programs ...Program) Program {
	return compositeProgram(programs)
}

type compositeProgram []Program

func (cp compositeProgram) Run(fds [3]*os.File, f *Flags, args []string) error {
	var cleanups []func([3]*os.File)
	defer func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i](fds)
		}
	}()
	for _, p := range cp {
		err := p.Run(fds, f, args)
		if next, ok := err.(nextProgramError); ok {
			cleanups = append(cleanups, next.cleanups...)
			continue
		}
		if err != ErrNotSuitable {
			return err
		}
	}
	return ErrNotSuitable
}

// ErrNotSuitable is a special error that may be returned by Program.Run, to
// signify that this Program should not be run. It is useful when a Program is
// used in Composite.
var ErrNotSuitable = errors.New("internal error: no suitable subprogram")

// NextProgram returns a special error that may be returned by Program.Run
// that is part of a Composite. It causes the next program to be run, and the
// cleanups to be run after the composite program finishes.
func NextProgram(cleanups ...func([3]*os.File)) error {
	return nextProgramError{cleanups}
}

type nextProgramError struct{ cleanups []func([3]*os.File) }

func (e nextProgramError) Error() string { return ErrNotSuitable.Error() }

// BadUsage returns a special error that may be returned by Program.Run. It
// causes the main function to print out a message, the usage information and
// exit with 2.
func BadUsage(msg string) error { return badUsageError{msg} }

type badUsageError struct{ msg string }

func (e badUsageError) Error() string { return e.msg }

// Exit returns a special error that may be returned by Program.Run. It causes
// the main function to exit with the given code without printing any error
// messages. Exit(0) returns nil.
func Exit(exit int) error {
	if exit == 0 {
		return nil
	}
	return exitError{exit}
}

type exitError struct{ exit int }

func (e exitError) Error() string { return "" }

// Program represents the program run by Run.
type Program interface {
	// Run runs the program. The args do not include flags.
	Run(fds [3]*os.File, f *Flags, args []string) error
}
