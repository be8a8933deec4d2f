package eval

import (
	"fmt"
	"os"
	"path/filepath"

	"src.kesh.sh/pkg/env"
	"src.kesh.sh/pkg/job"
	"src.kesh.sh/pkg/output"
	"src.kesh.sh/pkg/parse"
	"src.kesh.sh/pkg/shell/shdefs"
	"src.kesh.sh/pkg/sig"
	"src.kesh.sh/pkg/state"
)

// Frame is the context commands are executed in.
type Frame struct {
	sh      shdefs.Host
	st      *state.Store
	ports   []*os.File
	capture *Capture

	// Whether external commands run in the background, without the terminal.
	bg bool
	// Process group of the enclosing pipeline; nil outside pipelines.
	pg *pgroup
	// Depth of conditions (if, while, && and ||); errexit is off inside.
	cond int
	// Depth of loops and function calls, for break, continue and return.
	loops int
	funcs int
	// Status of the last command substitution during the expansion of the
	// current command.
	substStatus *int
}

func newFrame(sh shdefs.Host, st *state.Store) *Frame {
	ports := state.GetOr(st, StdPorts)
	return &Frame{sh: sh, st: st, ports: append([]*os.File(nil), ports.Files...)}
}

// Returns a shallow copy of the frame.
func (fm *Frame) fork() *Frame {
	fm2 := *fm
	fm2.ports = append([]*os.File(nil), fm.ports...)
	return &fm2
}

// Returns a frame for a subshell, with a cloned state.
func (fm *Frame) subshell() *Frame {
	fm2 := fm.fork()
	fm2.st = fm.st.Clone()
	state.Put(fm2.st, Subshell{})
	state.Delete[*ExitRequest](fm2.st)
	fm2.loops, fm2.funcs = 0, 0
	return fm2
}

func (fm *Frame) env() *env.Environ { return state.Get[*env.Environ](fm.st) }

func (fm *Frame) params() *Params { return state.Get[*Params](fm.st) }

func (fm *Frame) functions() *Functions { return state.Get[*Functions](fm.st) }

func (fm *Frame) options() *shdefs.Options {
	return state.GetOr(fm.st, func() *shdefs.Options { return &shdefs.Options{} })
}

func (fm *Frame) lastStatus() int {
	st, _ := state.Lookup[LastStatus](fm.st)
	return int(st)
}

func (fm *Frame) setStatus(status int) {
	state.Put(fm.st, LastStatus(status))
}

func (fm *Frame) file(fd int) *os.File {
	if fd < len(fm.ports) {
		return fm.ports[fd]
	}
	return nil
}

func (fm *Frame) printf(fd int, format string, args ...any) {
	if f := fm.file(fd); f != nil {
		fmt.Fprintf(f, format, args...)
	}
}

// Writes an error message to the frame's stderr.
func (fm *Frame) errorf(format string, args ...any) {
	fm.printError(fmt.Errorf(format, args...))
}

func (fm *Frame) printError(err error) {
	f := fm.file(2)
	if f == nil {
		return
	}
	if out, ok := state.Lookup[*output.Writer](fm.st); ok && out.Err == f {
		out.Error(err)
		return
	}
	fmt.Fprintf(f, "%s%v\n", output.Prefix, err)
}

// Cwd returns the working directory of st: $PWD if it is set, or the working
// directory of the process.
func Cwd(st *state.Store) string {
	if e, ok := state.Lookup[*env.Environ](st); ok {
		if pwd, _ := e.Get(env.PWD); filepath.IsAbs(pwd) {
			return pwd
		}
	}
	wd, err := os.Getwd()
	if err != nil {
		return "/"
	}
	return wd
}

func (fm *Frame) cwd() string { return Cwd(fm.st) }

// Resolves a path relative to the working directory.
func (fm *Frame) abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(fm.cwd(), path)
}

// Reports whether the user has pressed Ctrl-C in an interactive shell.
func (fm *Frame) interrupted() bool {
	return fm.launcher().Interactive() && sig.Interrupted()
}

func (fm *Frame) launcher() *job.Launcher {
	if l := fm.sh.Launcher(); l != nil {
		return l
	}
	return job.NonInteractive()
}

func (fm *Frame) xtrace(args []string) {
	if !fm.options().Xtrace {
		return
	}
	if f := fm.file(2); f != nil {
		fmt.Fprintln(f, "+", parse.QuoteJoin(args))
	}
}
