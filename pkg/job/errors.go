package job

import (
	"fmt"
)

// StatusError is an error that determines the exit status of the command
// that caused it.
type StatusError interface {
	error
	ExitStatus() int
}

// NotFoundError is returned when a command cannot be found.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string { return e.Name + ": command not found" }

// ExitStatus returns 127.
func (e *NotFoundError) ExitStatus() int { return 127 }

// PermissionError is returned when a command exists but cannot be executed.
type PermissionError struct {
	Name string
}

func (e *PermissionError) Error() string { return e.Name + ": permission denied" }

// ExitStatus returns 126.
func (e *PermissionError) ExitStatus() int { return 126 }

// SpawnError is returned when starting a process fails for other reasons.
type SpawnError struct {
	Name string
	Err  error
}

func (e *SpawnError) Error() string { return e.Name + ": " + e.Err.Error() }
func (e *SpawnError) Unwrap() error { return e.Err }

// ExitStatus returns 126.
func (e *SpawnError) ExitStatus() int { return 126 }

// RedirectError is returned when a redirection cannot be set up. The command
// is not run.
type RedirectError struct {
	Target string
	Err    error
}

func (e *RedirectError) Error() string {
	if e.Target == "" {
		return e.Err.Error()
	}
	return e.Target + ": " + e.Err.Error()
}

func (e *RedirectError) Unwrap() error { return e.Err }

// ExitStatus returns 1.
func (e *RedirectError) ExitStatus() int { return 1 }

// JobError is returned by job control operations, like fg on a nonexistent
// job.
type JobError struct {
	Op  string
	Msg string
}

// NewJobError creates a JobError.
func NewJobError(op, format string, args ...any) *JobError {
	return &JobError{op, fmt.Sprintf(format, args...)}
}

func (e *JobError) Error() string { return e.Op + ": " + e.Msg }

// ExitStatus returns 1.
func (e *JobError) ExitStatus() int { return 1 }
