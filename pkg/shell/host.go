package shell

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"src.kesh.sh/pkg/alias"
	"src.kesh.sh/pkg/builtin"
	"src.kesh.sh/pkg/env"
	"src.kesh.sh/pkg/errutil"
	"src.kesh.sh/pkg/eval"
	"src.kesh.sh/pkg/hook"
	"src.kesh.sh/pkg/job"
	"src.kesh.sh/pkg/output"
	"src.kesh.sh/pkg/posix"
	"src.kesh.sh/pkg/shell/shdefs"
	"src.kesh.sh/pkg/state"
)

// Shell is an instance of the shell. It implements shdefs.Host and owns the
// state of the main goroutine.
type Shell struct {
	lang     shdefs.Lang
	builtins *shdefs.Registry
	hooks    *hook.Bus
	launcher *job.Launcher
	st       *state.Store
	out      *output.Writer
	closers  []func() error
}

var _ shdefs.Host = (*Shell)(nil)

// ShellConfig keeps the parameters of NewShell.
type ShellConfig struct {
	// Name of the source in error messages.
	Source string
	// Launcher for external commands; a non-interactive one if nil.
	Launcher *job.Launcher
	// $0 and the positional parameters.
	Zero string
	Args []string
}

// NewShell creates a Shell running the POSIX language with the core
// builtins, reading and writing fds.
func NewShell(fds [3]*os.File, cfg ShellConfig) *Shell {
	reg := shdefs.NewRegistry()
	if err := builtin.Register(reg); err != nil {
		// Registering a fixed set of builtins only fails on a name clash.
		panic(err)
	}
	launcher := cfg.Launcher
	if launcher == nil {
		launcher = job.NonInteractive()
	}
	sh := &Shell{
		lang:     posix.Lang{Source: cfg.Source},
		builtins: reg,
		hooks:    hook.NewBus(),
		launcher: launcher,
		st:       state.New(),
		out:      newOutput(fds),
	}

	e := env.FromOS()
	incSHLVL(e)
	initPWD(e)
	state.Put(sh.st, e)
	state.Put(sh.st, &eval.Ports{Files: []*os.File{fds[0], fds[1], fds[2]}})
	state.Put(sh.st, sh.out)
	state.Put(sh.st, alias.NewTable())
	state.Put(sh.st, job.NewTable())
	eval.Init(sh.st, cfg.Zero, cfg.Args)
	return sh
}

// Lang returns the language of the shell.
func (sh *Shell) Lang() shdefs.Lang { return sh.lang }

// Builtins returns the builtin registry.
func (sh *Shell) Builtins() *shdefs.Registry { return sh.builtins }

// Hooks returns the hook bus.
func (sh *Shell) Hooks() *hook.Bus { return sh.hooks }

// Launcher returns the launcher of external commands.
func (sh *Shell) Launcher() *job.Launcher { return sh.launcher }

// State returns the state of the main goroutine.
func (sh *Shell) State() *state.Store { return sh.st }

// EvalLine evaluates a line and fires the AfterCommand hook. It returns the
// status of the line. A blank line is not evaluated and fires no hook; the
// last status is returned unchanged.
func (sh *Shell) EvalLine(line string) int {
	if strings.TrimSpace(line) == "" {
		status, _ := state.Lookup[eval.LastStatus](sh.st)
		return int(status)
	}
	start := time.Now()
	res := sh.lang.Eval(sh, sh.st, line)
	hook.Fire(sh.hooks, sh.st, hook.AfterCommand{
		Line: line, Status: res.Status, Duration: time.Since(start),
		Stdout: res.Stdout, Stderr: res.Stderr})
	return res.Status
}

// ExitStatus returns the status the shell exits with: the one requested by
// exit, or the last status.
func (sh *Shell) ExitStatus() int {
	if req, ok := eval.ExitRequested(sh.st); ok {
		return req.Status
	}
	status, _ := state.Lookup[eval.LastStatus](sh.st)
	return int(status)
}

// ReportJobs collects status changes of background jobs and returns a line
// describing each. Jobs reported as done are removed from the job table and
// announced with the JobExit hook.
func (sh *Shell) ReportJobs() []string {
	t := state.GetOr(sh.st, job.NewTable)
	job.Reap(t)
	var lines []string
	for _, j := range t.TakeChanged() {
		lines = append(lines, j.Describe())
		if j.State == job.Done {
			hook.Fire(sh.hooks, sh.st, hook.JobExit{Job: j})
		}
	}
	return lines
}

// OnClose registers a function to be called by Close.
func (sh *Shell) OnClose(f func() error) {
	sh.closers = append(sh.closers, f)
}

// Close releases resources held by the shell, in the reverse order of
// registration.
func (sh *Shell) Close() error {
	var errs []error
	for i := len(sh.closers) - 1; i >= 0; i-- {
		if err := sh.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	sh.closers = nil
	return errutil.Multi(errs...)
}

// Increments SHLVL of child processes. An invalid value counts as 0.
func incSHLVL(e *env.Environ) {
	i, err := strconv.Atoi(e.Value(env.SHLVL))
	if err != nil {
		i = 0
	}
	e.Export(env.SHLVL, strconv.Itoa(i+1))
}

// Sets PWD to the working directory, unless it already names it.
func initPWD(e *env.Environ) {
	wd, err := os.Getwd()
	if err != nil {
		logger.Println("getwd:", err)
		return
	}
	if pwd, _ := e.Get(env.PWD); filepath.IsAbs(pwd) && sameFile(pwd, wd) {
		e.MarkExported(env.PWD)
		return
	}
	e.Export(env.PWD, wd)
}

func sameFile(a, b string) bool {
	ia, err := os.Stat(a)
	if err != nil {
		return false
	}
	ib, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ia, ib)
}
