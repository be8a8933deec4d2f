package job

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

// StatusKind is the kind of a Status.
type StatusKind int

// Possible values of StatusKind.
const (
	Exited StatusKind = iota
	Signaled
	Stopped
	Continued
)

// Status is how a process or a command finished.
type Status struct {
	Kind StatusKind
	// Exit code for Exited; signal number otherwise.
	Code int
}

// ExitedStatus returns a Status for a normal exit.
func ExitedStatus(code int) Status { return Status{Exited, code} }

// SignaledStatus returns a Status for a process killed by a signal.
func SignaledStatus(sig syscall.Signal) Status { return Status{Signaled, int(sig)} }

// StoppedStatus returns a Status for a process stopped by a signal.
func StoppedStatus(sig syscall.Signal) Status { return Status{Stopped, int(sig)} }

// OK is the status of a successful command.
var OK = ExitedStatus(0)

// FromWaitStatus converts a status reported by wait4.
func FromWaitStatus(ws unix.WaitStatus) Status {
	switch {
	case ws.Exited():
		return ExitedStatus(ws.ExitStatus())
	case ws.Signaled():
		return SignaledStatus(syscall.Signal(ws.Signal()))
	case ws.Stopped():
		return StoppedStatus(syscall.Signal(ws.StopSignal()))
	case ws.Continued():
		return Status{Continued, int(syscall.SIGCONT)}
	}
	return ExitedStatus(int(ws))
}

// Signal returns the signal of a Signaled or Stopped status.
func (s Status) Signal() syscall.Signal {
	if s.Kind == Exited {
		return 0
	}
	return syscall.Signal(s.Code)
}

// ExitCode returns the value of $? for the status: the exit code for normal
// exits, 128 plus the signal number otherwise.
func (s Status) ExitCode() int {
	if s.Kind == Exited {
		return s.Code
	}
	return 128 + s.Code
}

// Success reports whether the status counts as true.
func (s Status) Success() bool { return s.ExitCode() == 0 }

func (s Status) String() string {
	switch s.Kind {
	case Exited:
		if s.Code == 0 {
			return "Done"
		}
		return fmt.Sprintf("Exit %d", s.Code)
	case Signaled:
		return signalName(s.Signal())
	case Stopped:
		return "Stopped (" + signalName(s.Signal()) + ")"
	default:
		return "Running"
	}
}

func signalName(sig syscall.Signal) string {
	if name := unix.SignalName(sig); name != "" {
		return name
	}
	return fmt.Sprintf("signal %d", int(sig))
}
