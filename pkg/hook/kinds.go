package hook

import (
	"time"

	"src.kesh.sh/pkg/job"
)

// Startup fires once, after the rc file has been loaded and before the first
// prompt.
type Startup struct{}

// BeforeCommand fires before a submitted line is evaluated. Expanded is the
// line after alias expansion.
type BeforeCommand struct {
	Line     string
	Expanded string
}

// AfterCommand fires after a line has been evaluated, before it is appended
// to history. Stdout and Stderr hold what builtins wrote to the shell's
// stdout and stderr, and errors reported by the shell. External commands
// write to the terminal directly; their output is not recorded.
type AfterCommand struct {
	Line     string
	Status   int
	Duration time.Duration
	Stdout   string
	Stderr   string
}

// ChangeDir fires after the working directory has changed.
type ChangeDir struct {
	From string
	To   string
}

// LineModeSwitch fires when the editor switches between modes. Mode is the
// name of the new mode.
type LineModeSwitch struct {
	Mode string
}

// JobExit fires when a job is reported as done.
type JobExit struct {
	Job *job.Job
}
