package job

import (
	"sort"
)

// Table is the table of jobs known to the shell.
type Table struct {
	jobs map[int]*Job
	fg   int
	// The most recently added or resumed job; target of fg and bg without
	// arguments.
	current int
}

// NewTable creates an empty Table.
func NewTable() *Table {
	return &Table{jobs: map[int]*Job{}}
}

// Add assigns the smallest free positive id to the job and adds it.
func (t *Table) Add(j *Job) int {
	id := 1
	for t.jobs[id] != nil {
		id++
	}
	j.ID = id
	t.jobs[id] = j
	t.current = id
	if j.Foreground {
		t.fg = id
	}
	return id
}

// Get returns the job with the given id, or nil.
func (t *Table) Get(id int) *Job { return t.jobs[id] }

// Remove removes a job.
func (t *Table) Remove(id int) {
	delete(t.jobs, id)
	if t.fg == id {
		t.fg = 0
	}
	if t.current == id {
		t.current = 0
		for _, j := range t.Jobs() {
			t.current = j.ID
		}
	}
}

// Len returns the number of jobs.
func (t *Table) Len() int { return len(t.jobs) }

// Jobs returns all jobs ordered by id.
func (t *Table) Jobs() []*Job {
	jobs := make([]*Job, 0, len(t.jobs))
	for _, j := range t.jobs {
		jobs = append(jobs, j)
	}
	sort.Slice(jobs, func(i, k int) bool { return jobs[i].ID < jobs[k].ID })
	return jobs
}

// Current returns the job that fg and bg act on by default, or nil.
func (t *Table) Current() *Job { return t.jobs[t.current] }

// Foreground returns the foreground job, or nil.
func (t *Table) Foreground() *Job { return t.jobs[t.fg] }

// SetForeground makes a job the foreground job. There is at most one
// foreground job; a previous one is moved to the background.
func (t *Table) SetForeground(j *Job) {
	if old := t.Foreground(); old != nil {
		old.Foreground = false
	}
	t.fg = 0
	if j != nil {
		j.Foreground = true
		t.fg = j.ID
		t.current = j.ID
	}
}

// ByPid finds the job containing a process.
func (t *Table) ByPid(pid int) *Job {
	for _, j := range t.jobs {
		if j.HasPid(pid) {
			return j
		}
	}
	return nil
}

// Update records a status for a process. It returns the job that contains the
// process, or nil if no job does.
func (t *Table) Update(pid int, st Status) *Job {
	j := t.ByPid(pid)
	if j != nil {
		j.Update(pid, st)
	}
	return j
}

// TakeChanged returns the background jobs whose state changed since they
// were last reported, and removes the ones that are done. Each change is
// returned once.
func (t *Table) TakeChanged() []*Job {
	var changed []*Job
	for _, j := range t.Jobs() {
		if j.Foreground || !j.Changed {
			continue
		}
		j.Changed = false
		changed = append(changed, j)
		if j.State == Done {
			t.Remove(j.ID)
		}
	}
	return changed
}

// CloneState returns an empty table: jobs of the shell are not jobs of a
// subshell.
func (t *Table) CloneState() any { return NewTable() }
