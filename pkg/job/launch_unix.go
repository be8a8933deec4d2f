//go:build unix

package job

import (
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"

	"src.kesh.sh/pkg/fsutil"
	"src.kesh.sh/pkg/sig"
	"src.kesh.sh/pkg/sys/eunix"
)

// Proc describes a process to start.
type Proc struct {
	// Command name as typed, used in errors.
	Name string
	// Path of the executable, as found by Resolve.
	Path string
	Args []string
	Env  []string
	Dir  string
	// Files for the child, indexed by descriptor number. Nil entries are
	// closed in the child.
	Files []*os.File
}

// Resolve finds the executable for a command name on the search path, and
// maps failures to NotFoundError and PermissionError.
func Resolve(name, path string) (string, error) {
	file, err := fsutil.LookPath(name, path)
	switch {
	case err == nil:
		return file, nil
	case errors.Is(err, fsutil.ErrNotFound):
		return "", &NotFoundError{name}
	case errors.Is(err, fs.ErrPermission):
		return "", &PermissionError{name}
	default:
		return "", &SpawnError{name, err}
	}
}

// Launcher starts processes and waits for them.
type Launcher struct {
	// Controlling terminal. Nil for a non-interactive shell, in which case
	// processes stay in the shell's process group and the terminal is never
	// handed over.
	TTY *os.File
	// Process group of the shell itself.
	ShellPgid int
}

// Interactive reports whether the launcher does job control.
func (l *Launcher) Interactive() bool { return l.TTY != nil }

// Start starts a process. If pgid is 0 and the launcher does job control, the
// process becomes the leader of a new process group; otherwise it joins
// pgid. A foreground process is given the terminal before it executes.
func (l *Launcher) Start(p *Proc, pgid int, foreground bool) (int, error) {
	attr := &syscall.ProcAttr{
		Dir:   p.Dir,
		Env:   p.Env,
		Files: make([]uintptr, len(p.Files)),
		Sys:   &syscall.SysProcAttr{},
	}
	for i, f := range p.Files {
		if f == nil {
			attr.Files[i] = ^uintptr(0)
		} else {
			attr.Files[i] = f.Fd()
		}
	}
	if l.Interactive() {
		attr.Sys.Setpgid = true
		attr.Sys.Pgid = pgid
		if foreground {
			attr.Sys.Foreground = true
			attr.Sys.Ctty = int(l.TTY.Fd())
		}
	}
	pid, err := syscall.ForkExec(p.Path, p.Args, attr)
	if err != nil {
		return 0, spawnError(p.Name, err)
	}
	logger.Printf("started %v as pid %d (pgid %d)", p.Args, pid, pgid)
	return pid, nil
}

func spawnError(name string, err error) error {
	switch err {
	case syscall.ENOENT:
		return &NotFoundError{name}
	case syscall.EACCES, syscall.EISDIR, syscall.ENOEXEC:
		return &PermissionError{name}
	}
	return &SpawnError{name, err}
}

// Wait waits for the processes of a job until they have all exited or any of
// them has stopped, then for the in-process part if there is one.
func (l *Launcher) Wait(j *Job) {
	defer func() {
		if j.State != StoppedState {
			j.WaitInProcess()
		}
	}()
	if j.Foreground {
		sig.SetForeground(j.Pgid)
		defer sig.SetForeground(0)
	}
	for i, pid := range j.Pids {
		if j.Statuses[i] != nil && j.Statuses[i].Kind != Stopped {
			continue
		}
		var ws unix.WaitStatus
		for {
			_, err := unix.Wait4(pid, &ws, unix.WUNTRACED, nil)
			if err == unix.EINTR {
				continue
			}
			if err != nil {
				logger.Printf("wait4 %d: %v", pid, err)
				// Reaped elsewhere; treat as a successful exit.
				ws = 0
			}
			break
		}
		j.Update(pid, FromWaitStatus(ws))
		if j.State == StoppedState {
			return
		}
	}
}

// Reap collects status changes of the jobs in the table without blocking.
// It returns the number of changes collected.
//
// Only processes of known jobs are waited for. Processes started by parts of
// the shell running in goroutines are waited for by those goroutines.
func Reap(t *Table) int {
	n := 0
	for _, j := range t.Jobs() {
		for i, pid := range j.Pids {
			if st := j.Statuses[i]; st != nil && st.Kind != Stopped {
				continue
			}
			var ws unix.WaitStatus
			wpid, err := unix.Wait4(pid, &ws, unix.WNOHANG|unix.WUNTRACED|unix.WCONTINUED, nil)
			for err == unix.EINTR {
				wpid, err = unix.Wait4(pid, &ws, unix.WNOHANG|unix.WUNTRACED|unix.WCONTINUED, nil)
			}
			if err != nil {
				logger.Printf("wait4 %d: %v", pid, err)
				j.Update(pid, OK)
				n++
			} else if wpid == pid {
				j.Update(pid, FromWaitStatus(ws))
				n++
			}
		}
		if j.InProcess() {
			old := j.State
			j.PollInProcess()
			if j.State != old {
				n++
			}
		}
	}
	return n
}

// Continue sends SIGCONT to the process group of a job and marks it running.
// Jobs without a process group of their own have their stopped processes
// continued one by one.
func Continue(j *Job) error {
	if j.Pgid != 0 {
		if err := unix.Kill(-j.Pgid, unix.SIGCONT); err != nil {
			return err
		}
	} else {
		for i, pid := range j.Pids {
			if st := j.Statuses[i]; st != nil && st.Kind == Stopped {
				if err := unix.Kill(pid, unix.SIGCONT); err != nil {
					return err
				}
			}
		}
	}
	j.MarkRunning()
	return nil
}

// GiveTerminal makes the process group of a job the foreground process group
// of the terminal.
func (l *Launcher) GiveTerminal(pgid int) error {
	if !l.Interactive() {
		return nil
	}
	return eunix.Tcsetpgrp(int(l.TTY.Fd()), pgid)
}

// ReclaimTerminal makes the shell the foreground process group again. The
// shell is in the background at this point, so SIGTTOU must be ignored for
// tcsetpgrp to succeed.
func (l *Launcher) ReclaimTerminal() error {
	if !l.Interactive() {
		return nil
	}
	signal.Ignore(syscall.SIGTTOU)
	defer sig.CatchJobControl()
	return eunix.Tcsetpgrp(int(l.TTY.Fd()), l.ShellPgid)
}

// TakeTerminal is called when an interactive shell starts. It waits until the
// shell is in the foreground, puts the shell in its own process group and
// makes that group the foreground one. It returns a Launcher doing job
// control on tty.
func TakeTerminal(tty *os.File) (*Launcher, error) {
	fd := int(tty.Fd())
	// SIGTTIN must stop the shell while it waits to be in the foreground.
	signal.Reset(syscall.SIGTTIN)
	for {
		fg, err := eunix.Tcgetpgrp(fd)
		if err != nil {
			return nil, err
		}
		if fg == unix.Getpgrp() {
			break
		}
		unix.Kill(-unix.Getpgrp(), unix.SIGTTIN)
	}
	pid := unix.Getpid()
	if unix.Getpgrp() != pid {
		if err := unix.Setpgid(0, 0); err != nil {
			return nil, err
		}
	}
	l := &Launcher{TTY: tty, ShellPgid: pid}
	if err := l.ReclaimTerminal(); err != nil {
		return nil, err
	}
	return l, nil
}

// NonInteractive returns a Launcher that does no job control.
func NonInteractive() *Launcher {
	return &Launcher{ShellPgid: unix.Getpgrp()}
}
