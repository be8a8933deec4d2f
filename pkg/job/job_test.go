package job

import (
	"syscall"
	"testing"

	"github.com/google/go-cmp/cmp"

	"src.kesh.sh/pkg/tt"
)

func TestStatus(t *testing.T) {
	tt.Test(t, tt.Fn("ExitCode", Status.ExitCode), tt.Table{
		tt.Args(ExitedStatus(0)).Rets(0),
		tt.Args(ExitedStatus(3)).Rets(3),
		tt.Args(SignaledStatus(syscall.SIGINT)).Rets(130),
		tt.Args(StoppedStatus(syscall.SIGTSTP)).Rets(128 + int(syscall.SIGTSTP)),
	})
	tt.Test(t, tt.Fn("String", Status.String), tt.Table{
		tt.Args(ExitedStatus(0)).Rets("Done"),
		tt.Args(ExitedStatus(2)).Rets("Exit 2"),
		tt.Args(SignaledStatus(syscall.SIGKILL)).Rets("SIGKILL"),
		tt.Args(StoppedStatus(syscall.SIGTSTP)).Rets("Stopped (SIGTSTP)"),
	})
}

func TestJob_Update(t *testing.T) {
	j := New(10, "a | b", 10, 11)
	if j.State != Running {
		t.Fatalf("new job state %v", j.State)
	}
	if j.Update(99, OK) {
		t.Errorf("Update of foreign pid returned true")
	}

	j.Update(10, StoppedStatus(syscall.SIGTSTP))
	if j.State != StoppedState || !j.Changed {
		t.Errorf("after stop: state %v, changed %v", j.State, j.Changed)
	}
	j.Changed = false
	j.Update(10, Status{Kind: Continued})
	if j.State != Running {
		t.Errorf("after continue: state %v", j.State)
	}

	j.Update(10, OK)
	if j.State != Running {
		t.Errorf("with one pid left: state %v", j.State)
	}
	j.Update(11, ExitedStatus(4))
	if j.State != Done {
		t.Errorf("after all exited: state %v", j.State)
	}
	if st := j.Status(); st != ExitedStatus(4) {
		t.Errorf("Status -> %v", st)
	}
}

func TestJob_Describe(t *testing.T) {
	j := New(10, "sleep 10", 10)
	j.ID = 2
	if got := j.Describe(); got != "[2] Running sleep 10" {
		t.Errorf("Describe -> %q", got)
	}
	j.Update(10, OK)
	if got := j.Describe(); got != "[2] Done sleep 10" {
		t.Errorf("Describe -> %q", got)
	}
}

func ids(jobs []*Job) []int {
	var ids []int
	for _, j := range jobs {
		ids = append(ids, j.ID)
	}
	return ids
}

func TestTable(t *testing.T) {
	tab := NewTable()
	a, b, c := New(1, "a", 1), New(2, "b", 2), New(3, "c", 3)
	tab.Add(a)
	tab.Add(b)
	tab.Add(c)
	if diff := cmp.Diff([]int{1, 2, 3}, ids(tab.Jobs())); diff != "" {
		t.Errorf("ids (-want +got):\n%s", diff)
	}
	if tab.Current() != c {
		t.Errorf("Current is not the last added job")
	}

	tab.Remove(2)
	d := New(4, "d", 4)
	if id := tab.Add(d); id != 2 {
		t.Errorf("Add reused id %d, want 2", id)
	}

	if tab.ByPid(3) != c || tab.ByPid(99) != nil {
		t.Errorf("ByPid wrong")
	}
	if tab.Update(99, OK) != nil {
		t.Errorf("Update of unknown pid returned a job")
	}
}

func TestTable_Foreground(t *testing.T) {
	tab := NewTable()
	a, b := New(1, "a", 1), New(2, "b", 2)
	tab.Add(a)
	tab.Add(b)
	tab.SetForeground(a)
	tab.SetForeground(b)
	if a.Foreground || !b.Foreground || tab.Foreground() != b {
		t.Errorf("more than one foreground job")
	}
	tab.SetForeground(nil)
	if tab.Foreground() != nil || b.Foreground {
		t.Errorf("foreground not cleared")
	}
}

func TestTable_TakeChanged(t *testing.T) {
	tab := NewTable()
	a, b := New(1, "a", 1), New(2, "b", 2)
	tab.Add(a)
	tab.Add(b)
	tab.Update(1, OK)
	tab.Update(2, StoppedStatus(syscall.SIGTSTP))

	if diff := cmp.Diff([]int{1, 2}, ids(tab.TakeChanged())); diff != "" {
		t.Errorf("first TakeChanged (-want +got):\n%s", diff)
	}
	if changed := tab.TakeChanged(); len(changed) != 0 {
		t.Errorf("second TakeChanged -> %v", ids(changed))
	}
	if tab.Get(1) != nil {
		t.Errorf("done job not removed")
	}
	if tab.Get(2) == nil {
		t.Errorf("stopped job removed")
	}
}

func TestJob_InProcess(t *testing.T) {
	ch := make(chan Status, 1)
	j := New(0, "{ echo; } &")
	j.SetInProcess(ch, true)
	j.PollInProcess()
	if j.State != Running {
		t.Errorf("before result: state %v", j.State)
	}
	ch <- ExitedStatus(5)
	j.PollInProcess()
	if j.State != Done || !j.Changed {
		t.Errorf("after result: state %v, changed %v", j.State, j.Changed)
	}
	if j.Status() != ExitedStatus(5) {
		t.Errorf("status %v", j.Status())
	}
}
