// Package job launches external processes and keeps track of jobs: process
// groups started from one pipeline or command.
package job

import (
	"strconv"

	"src.kesh.sh/pkg/logutil"
)

var logger = logutil.GetLogger("[job] ")

// State is the state of a job.
type State int

// Possible values of State.
const (
	Running State = iota
	StoppedState
	Done
)

func (s State) String() string {
	switch s {
	case Running:
		return "Running"
	case StoppedState:
		return "Stopped"
	default:
		return "Done"
	}
}

// Job is a group of processes started together.
type Job struct {
	ID      int
	Pgid    int
	Command string
	Pids    []int
	// Statuses of the processes, parallel to Pids. A nil entry means the
	// process has not reported anything.
	Statuses   []*Status
	Foreground bool
	State      State
	// Whether a state change needs to be reported to the user.
	Changed bool

	// Set for jobs with parts running inside the shell process. The channel
	// delivers one status when these parts finish.
	inproc     <-chan Status
	inprocDone *Status
	// Whether the in-process part determines the status of the job.
	inprocLast bool
}

// New creates a running Job.
func New(pgid int, command string, pids ...int) *Job {
	return &Job{
		Pgid: pgid, Command: command,
		Pids: pids, Statuses: make([]*Status, len(pids)),
	}
}

// AddPid adds a process to the job.
func (j *Job) AddPid(pid int) {
	j.Pids = append(j.Pids, pid)
	j.Statuses = append(j.Statuses, nil)
}

// HasPid reports whether the job contains the process.
func (j *Job) HasPid(pid int) bool { return j.index(pid) >= 0 }

func (j *Job) index(pid int) int {
	for i, p := range j.Pids {
		if p == pid {
			return i
		}
	}
	return -1
}

// Update records a status reported for a process and recomputes the state of
// the job. It returns false if the process does not belong to the job.
func (j *Job) Update(pid int, st Status) bool {
	i := j.index(pid)
	if i < 0 {
		return false
	}
	if st.Kind == Continued {
		j.Statuses[i] = nil
	} else {
		j.Statuses[i] = &st
	}
	old := j.State
	j.State = j.computeState()
	if j.State != old {
		j.Changed = true
	}
	return true
}

// SetInProcess marks the job as having parts running in the shell process.
// The parts deliver their status on ch when they finish. If last is true,
// that status is the status of the job.
func (j *Job) SetInProcess(ch <-chan Status, last bool) {
	j.inproc = ch
	j.inprocLast = last
}

// InProcess reports whether the job has parts running in the shell process.
func (j *Job) InProcess() bool { return j.inproc != nil }

// PollInProcess checks without blocking whether the in-process part has
// finished, updating the state if so.
func (j *Job) PollInProcess() {
	if j.inproc == nil || j.inprocDone != nil {
		return
	}
	select {
	case st := <-j.inproc:
		j.finishInProcess(st)
	default:
	}
}

// WaitInProcess blocks until the in-process part has finished.
func (j *Job) WaitInProcess() {
	if j.inproc == nil || j.inprocDone != nil {
		return
	}
	j.finishInProcess(<-j.inproc)
}

func (j *Job) finishInProcess(st Status) {
	j.inprocDone = &st
	old := j.State
	j.State = j.computeState()
	if j.State != old {
		j.Changed = true
	}
}

func (j *Job) computeState() State {
	done, stopped := j.inproc == nil || j.inprocDone != nil, false
	for _, st := range j.Statuses {
		switch {
		case st == nil:
			done = false
		case st.Kind == Stopped:
			done, stopped = false, true
		}
	}
	switch {
	case done:
		return Done
	case stopped:
		return StoppedState
	default:
		return Running
	}
}

// MarkRunning marks all stopped processes as running again.
func (j *Job) MarkRunning() {
	for i, st := range j.Statuses {
		if st != nil && st.Kind == Stopped {
			j.Statuses[i] = nil
		}
	}
	j.State = j.computeState()
}

// Status returns the status of the job: that of the last process that has
// reported, or OK.
func (j *Job) Status() Status {
	if j.inprocLast && j.inprocDone != nil {
		return *j.inprocDone
	}
	for i := len(j.Statuses) - 1; i >= 0; i-- {
		if st := j.Statuses[i]; st != nil {
			return *st
		}
	}
	return OK
}

// LastStatus returns the status of the last process, and whether it has
// reported.
func (j *Job) LastStatus() (Status, bool) {
	if j.inprocLast {
		if j.inprocDone != nil {
			return *j.inprocDone, true
		}
		return Status{}, false
	}
	if n := len(j.Statuses); n > 0 && j.Statuses[n-1] != nil {
		return *j.Statuses[n-1], true
	}
	return Status{}, false
}

// ReportedStatuses returns the statuses of all processes that have reported.
func (j *Job) ReportedStatuses() []Status {
	var sts []Status
	for _, st := range j.Statuses {
		if st != nil {
			sts = append(sts, *st)
		}
	}
	return sts
}

// Describe formats the job for the jobs builtin and notifications, like
// "[1] Running sleep 10".
func (j *Job) Describe() string {
	var state string
	switch j.State {
	case Running:
		state = "Running"
	case StoppedState:
		state = j.Status().String()
	default:
		st, _ := j.LastStatus()
		state = st.String()
	}
	return "[" + strconv.Itoa(j.ID) + "] " + state + " " + j.Command
}
