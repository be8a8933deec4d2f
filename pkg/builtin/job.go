package builtin

import (
	"fmt"
	"strconv"
	"strings"

	"src.kesh.sh/pkg/hook"
	"src.kesh.sh/pkg/job"
	"src.kesh.sh/pkg/shell/shdefs"
	"src.kesh.sh/pkg/state"
)

func jobs(sh shdefs.Host, st *state.Store, args []string) shdefs.CmdOutput {
	pgidOnly := false
	for _, arg := range args {
		if arg != "-p" {
			return usageError("jobs")
		}
		pgidOnly = true
	}
	t := state.GetOr(st, job.NewTable)
	job.Reap(t)
	var sb strings.Builder
	for _, j := range t.Jobs() {
		if pgidOnly {
			sb.WriteString(strconv.Itoa(j.Pgid) + "\n")
			continue
		}
		sb.WriteString(j.Describe() + "\n")
		j.Changed = false
		if j.State == job.Done {
			t.Remove(j.ID)
			fireJobExit(sh, st, j)
		}
	}
	return shdefs.Ok(sb.String())
}

func fireJobExit(sh shdefs.Host, st *state.Store, j *job.Job) {
	if hooks := sh.Hooks(); hooks != nil {
		hook.Fire(hooks, st, hook.JobExit{Job: j})
	}
}

// Finds the job named by a job spec: %n, n, %% or %+. Without args, it is
// the current job.
func findJob(t *job.Table, op string, args []string) (*job.Job, error) {
	switch len(args) {
	case 0:
		if j := t.Current(); j != nil {
			return j, nil
		}
		return nil, job.NewJobError(op, "no current job")
	case 1:
		spec := args[0]
		if spec == "%%" || spec == "%+" {
			return findJob(t, op, nil)
		}
		id, err := strconv.Atoi(strings.TrimPrefix(spec, "%"))
		if err != nil {
			return nil, job.NewJobError(op, "%s: no such job", spec)
		}
		if j := t.Get(id); j != nil {
			return j, nil
		}
		return nil, job.NewJobError(op, "%s: no such job", spec)
	}
	return nil, job.NewJobError(op, "too many arguments")
}

func jobErrorOutput(err error) shdefs.CmdOutput {
	return shdefs.Fail(1, "kesh: "+err.Error())
}

func fg(sh shdefs.Host, st *state.Store, args []string) shdefs.CmdOutput {
	l := sh.Launcher()
	if !l.Interactive() {
		return errorf("fg", 1, "no job control")
	}
	t := state.GetOr(st, job.NewTable)
	j, err := findJob(t, "fg", args)
	if err != nil {
		return jobErrorOutput(err)
	}
	fmt.Fprintln(port(st, 1), j.Command)

	t.SetForeground(j)
	if j.Pgid != 0 {
		if err := l.GiveTerminal(j.Pgid); err != nil {
			t.SetForeground(nil)
			return errorf("fg", 1, "%v", err)
		}
	}
	if j.State == job.StoppedState {
		if err := job.Continue(j); err != nil {
			l.ReclaimTerminal()
			t.SetForeground(nil)
			return errorf("fg", 1, "%v", err)
		}
	}
	l.Wait(j)
	l.ReclaimTerminal()
	t.SetForeground(nil)

	if j.State == job.StoppedState {
		j.Changed = true
		return shdefs.CmdOutput{Status: j.Status().ExitCode()}
	}
	t.Remove(j.ID)
	fireJobExit(sh, st, j)
	return shdefs.CmdOutput{Status: j.Status().ExitCode()}
}

func bg(sh shdefs.Host, st *state.Store, args []string) shdefs.CmdOutput {
	if !sh.Launcher().Interactive() {
		return errorf("bg", 1, "no job control")
	}
	t := state.GetOr(st, job.NewTable)
	j, err := findJob(t, "bg", args)
	if err != nil {
		return jobErrorOutput(err)
	}
	if j.State != job.StoppedState {
		return errorf("bg", 1, "job %d already in background", j.ID)
	}
	if err := job.Continue(j); err != nil {
		return errorf("bg", 1, "%v", err)
	}
	return shdefs.Ok(fmt.Sprintf("[%d] %s &\n", j.ID, j.Command))
}

func wait(sh shdefs.Host, st *state.Store, args []string) shdefs.CmdOutput {
	t := state.GetOr(st, job.NewTable)
	l := sh.Launcher()
	var targets []*job.Job
	if len(args) == 0 {
		targets = t.Jobs()
	}
	var out shdefs.CmdOutput
	for _, arg := range args {
		var j *job.Job
		if strings.HasPrefix(arg, "%") {
			var err error
			j, err = findJob(t, "wait", []string{arg})
			if err != nil {
				return jobErrorOutput(err)
			}
		} else {
			pid, err := strconv.Atoi(arg)
			if err != nil {
				return errorf("wait", 2, "%s: not a pid or valid job spec", arg)
			}
			if j = t.ByPid(pid); j == nil {
				// Not a child of the shell.
				out.Status = 127
				continue
			}
		}
		targets = append(targets, j)
	}
	for _, j := range targets {
		if j.State == job.StoppedState {
			continue
		}
		l.Wait(j)
		out.Status = j.Status().ExitCode()
		if j.State == job.Done {
			t.Remove(j.ID)
			fireJobExit(sh, st, j)
		}
	}
	if len(args) == 0 {
		out.Status = 0
	}
	return out
}
