package eval

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"src.kesh.sh/pkg/env"
	"src.kesh.sh/pkg/hook"
	"src.kesh.sh/pkg/job"
	"src.kesh.sh/pkg/parse"
	"src.kesh.sh/pkg/shell/shdefs"
	"src.kesh.sh/pkg/state"
)

type assign struct {
	name  string
	value string
}

// A simple command after expansion and redirection, ready to run. Exactly
// one of special, fn, builtin and path is set.
type simpleCmd struct {
	args    []string
	assigns []assign
	// Files opened by redirections.
	closers []*os.File

	special func(*Frame, []string) (int, error)
	fn      *parse.FunctionDef
	builtin *shdefs.Builtin
	path    string
}

// Expands a simple command, performs its redirections and works out what
// it runs. A nil *simpleCmd means there is nothing left to run, and the
// returned status is the status of the command.
func (fm *Frame) prepare(c *parse.Simple) (*simpleCmd, int, error) {
	fm.substStatus = nil
	args, err := fm.expandWords(c.Args)
	if err != nil {
		return nil, fm.expandFailed(err), nil
	}

	if len(args) == 0 {
		for _, a := range c.Assigns {
			v, err := fm.expandString(a.Value)
			if err != nil {
				return nil, fm.expandFailed(err), nil
			}
			fm.env().Set(a.Name, v)
		}
		closers, err := fm.redirect(c.Redirs)
		closeAll(closers)
		if err != nil {
			fm.printError(err)
			return nil, 1, nil
		}
		if fm.substStatus != nil {
			return nil, *fm.substStatus, nil
		}
		return nil, 0, nil
	}

	sc := &simpleCmd{args: args}
	for _, a := range c.Assigns {
		v, err := fm.expandString(a.Value)
		if err != nil {
			return nil, fm.expandFailed(err), nil
		}
		sc.assigns = append(sc.assigns, assign{a.Name, v})
	}
	sc.closers, err = fm.redirect(c.Redirs)
	if err != nil {
		closeAll(sc.closers)
		fm.printError(err)
		return nil, 1, nil
	}
	fm.xtrace(args)

	name := args[0]
	if f, ok := specialForms[name]; ok {
		sc.special = f
		return sc, 0, nil
	}
	if def, ok := fm.functions().Lookup(name); ok {
		sc.fn = def
		return sc, 0, nil
	}
	if reg := fm.sh.Builtins(); reg != nil {
		if b, ok := reg.Lookup(name); ok {
			sc.builtin = b
			return sc, 0, nil
		}
	}
	path := fm.env().Value(env.PATH)
	for _, a := range sc.assigns {
		if a.name == env.PATH {
			path = a.value
		}
	}
	sc.path, err = job.Resolve(name, path)
	if err != nil {
		closeAll(sc.closers)
		fm.printError(err)
		return nil, statusOf(err), nil
	}
	return sc, 0, nil
}

// Reports a failed expansion. A non-interactive shell exits.
func (fm *Frame) expandFailed(err error) int {
	fm.printError(err)
	var expandErr *ExpandError
	if errors.As(err, &expandErr) && !fm.launcher().Interactive() {
		RequestExit(fm.st, 1)
	}
	return 1
}

func statusOf(err error) int {
	var se job.StatusError
	if errors.As(err, &se) {
		return se.ExitStatus()
	}
	return 1
}

// Runs a prepared command that is not external.
func (fm *Frame) runSimple(sc *simpleCmd) (int, error) {
	defer closeAll(sc.closers)
	switch {
	case sc.special != nil:
		return sc.special(fm, sc.args[1:])
	case sc.fn != nil:
		defer fm.tempAssign(sc.assigns)()
		return fm.callFunction(sc.fn, sc.args[1:])
	case sc.builtin != nil:
		defer fm.tempAssign(sc.assigns)()
		return fm.runBuiltin(sc.builtin, sc.args[1:])
	}
	fm.errorf("%s: cannot be run in the shell", sc.args[0])
	return 1, nil
}

// Sets variables for the duration of a builtin or function call. It returns
// a function that restores the previous values.
func (fm *Frame) tempAssign(assigns []assign) func() {
	if len(assigns) == 0 {
		return func() {}
	}
	e := fm.env()
	type saved struct {
		name  string
		value string
		set   bool
	}
	var olds []saved
	for _, a := range assigns {
		v, ok := e.Get(a.name)
		olds = append(olds, saved{a.name, v, ok})
		e.Set(a.name, a.value)
	}
	return func() {
		for i := len(olds) - 1; i >= 0; i-- {
			if old := olds[i]; old.set {
				e.Set(old.name, old.value)
			} else {
				e.Unset(old.name)
			}
		}
	}
}

// Runs a builtin. During the call, the ports of the frame are put in the
// state, so that builtins evaluating code see the redirections.
func (fm *Frame) runBuiltin(b *shdefs.Builtin, args []string) (int, error) {
	saved, hadPorts := state.Lookup[*Ports](fm.st)
	state.Put(fm.st, &Ports{fm.ports})
	out := b.Fn(fm.sh, fm.st, args)
	if hadPorts {
		state.Put(fm.st, saved)
	} else {
		state.Delete[*Ports](fm.st)
	}

	fm.capture.addRouted(out, fm.file(1), fm.file(2))
	for _, w := range []struct {
		fd   int
		text string
	}{{1, out.Stdout}, {2, out.Stderr}} {
		if err := fm.writePort(w.fd, w.text); err != nil {
			if errors.Is(err, syscall.EPIPE) && IsSubshell(fm.st) {
				// Like a process killed by SIGPIPE.
				return 141, &flow{kind: flowExit, status: 141}
			}
			logger.Printf("write builtin output: %v", err)
		}
	}
	return out.Status, nil
}

func (fm *Frame) writePort(fd int, text string) error {
	f := fm.file(fd)
	if f == nil || text == "" {
		return nil
	}
	_, err := io.WriteString(f, text)
	return err
}

var (
	devNullOnce sync.Once
	devNull     *os.File
)

// Returns /dev/null opened for reading, or nil if it cannot be opened.
func openDevNull() *os.File {
	devNullOnce.Do(func() {
		f, err := os.Open(os.DevNull)
		if err != nil {
			logger.Printf("open %s: %v", os.DevNull, err)
			return
		}
		devNull = f
	})
	return devNull
}

// Chdir changes the working directory of st to dir, resolved against the
// current one. It updates $PWD and $OLDPWD and fires the ChangeDir hook. The
// shell process changes directory only when st is not a subshell.
func Chdir(sh shdefs.Host, st *state.Store, dir string) error {
	old := Cwd(st)
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(old, dir)
	}
	dir = filepath.Clean(dir)
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &fs.PathError{Op: "chdir", Path: dir, Err: syscall.ENOTDIR}
	}
	if !IsSubshell(st) {
		if err := os.Chdir(dir); err != nil {
			return err
		}
	}
	e := state.GetOr(st, env.FromOS)
	e.Set(env.OLDPWD, old)
	e.Set(env.PWD, dir)
	if sh != nil && sh.Hooks() != nil {
		hook.Fire(sh.Hooks(), st, hook.ChangeDir{From: old, To: dir})
	}
	return nil
}
