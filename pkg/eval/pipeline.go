package eval

import (
	"os"
	"sync"

	"src.kesh.sh/pkg/job"
	"src.kesh.sh/pkg/parse"
	"src.kesh.sh/pkg/sig"
	"src.kesh.sh/pkg/state"
)

// Process group shared by the processes of a pipeline, including those
// started by parts of it running in goroutines.
type pgroup struct {
	mu   sync.Mutex
	pgid int
	// Whether the group gets the terminal.
	fg bool
}

// Starts a process in the group. The first one becomes the group leader.
func (pg *pgroup) start(l *job.Launcher, p *job.Proc) (int, error) {
	pg.mu.Lock()
	defer pg.mu.Unlock()
	pid, err := l.Start(p, pg.pgid, pg.fg)
	if err != nil && pg.pgid != 0 && l.Interactive() {
		// The group is gone when all its processes have been reaped; start
		// a new one.
		logger.Printf("joining pgid %d: %v", pg.pgid, err)
		pg.pgid = 0
		pid, err = l.Start(p, 0, pg.fg)
	}
	if err != nil {
		return 0, err
	}
	if pg.pgid == 0 && l.Interactive() {
		pg.pgid = pid
		if pg.fg {
			sig.SetForeground(pid)
		}
	}
	return pid, nil
}

// A pipeline being run.
type pipeline struct {
	fm *Frame
	l  *job.Launcher
	j  *job.Job
	pg *pgroup
	// Whether the pipeline created pg. Pipelines run by parts of another
	// pipeline join its group instead.
	owner bool
	// Whether to return without waiting.
	detach bool

	wg sync.WaitGroup
	// For each stage, the index of its process in j, or -1 if it runs in
	// the shell.
	procs []int
	// Statuses of the stages running in the shell.
	statuses []int
}

func (fm *Frame) newPipeline(text string, detach bool) *pipeline {
	p := &pipeline{fm: fm, l: fm.launcher(), j: job.New(0, text), detach: detach}
	if fm.pg != nil {
		p.pg = fm.pg
	} else {
		p.owner = true
		p.pg = &pgroup{fg: !fm.bg && p.l.Interactive()}
		p.j.Foreground = p.pg.fg
	}
	return p
}

// Runs a pipeline in the foreground. A lone simple command also runs
// through here.
func (fm *Frame) execPipeline(cmds []parse.Command, negate bool, text string) (int, error) {
	p := fm.newPipeline(text, false)
	err := p.start(cmds)
	status := p.wait()
	if p.j.State == job.StoppedState && p.owner {
		return status, &flow{kind: flowInterrupt, status: status}
	}
	if negate {
		status = boolStatus(status != 0)
	}
	return status, err
}

func boolStatus(b bool) int {
	if b {
		return 0
	}
	return 1
}

// Starts all stages from left to right. Unless the pipeline is detached, the
// last stage runs in the calling goroutine if it is not external; the flow it
// ends with is returned.
func (p *pipeline) start(cmds []parse.Command) error {
	n := len(cmds)
	p.procs = make([]int, n)
	p.statuses = make([]int, n)
	var (
		prevR     *os.File
		lastErr   error
		inProcess bool
	)
	for i, cmd := range cmds {
		last := i == n-1
		p.procs[i] = -1

		sfm := p.fm.fork()
		if n > 1 {
			sfm = p.fm.subshell()
		}
		if n > 1 || p.detach {
			sfm.pg = p.pg
		}
		if prevR != nil {
			sfm.setPort(0, prevR)
		}
		var r, w *os.File
		if !last {
			var err error
			r, w, err = os.Pipe()
			if err != nil {
				p.fm.printError(err)
				closeFile(prevR)
				p.statuses[i] = 1
				break
			}
			sfm.setPort(1, w)
		}

		var sc *simpleCmd
		prepared := false
		if simple, ok := cmd.(*parse.Simple); ok {
			var status int
			sc, status, lastErr = sfm.prepare(simple)
			if sc == nil {
				prepared = true
				p.statuses[i] = status
			}
		}

		switch {
		case prepared:
			closeFile(w)
			closeFile(prevR)
		case sc != nil && sc.path != "":
			pid, err := p.startExternal(sfm, sc)
			closeAll(sc.closers)
			closeFile(w)
			closeFile(prevR)
			if err != nil {
				p.fm.printError(err)
				p.statuses[i] = statusOf(err)
			} else {
				p.procs[i] = len(p.j.Pids)
				p.j.AddPid(pid)
			}
		case last && !p.detach:
			status, err := sfm.runStage(cmd, sc)
			closeFile(prevR)
			if n > 1 {
				status, err = flowStatus(status, err), nil
			}
			p.statuses[i] = status
			lastErr = err
		default:
			p.wg.Add(1)
			go func(i int, sfm *Frame, cmd parse.Command, sc *simpleCmd, w, prevR *os.File) {
				defer p.wg.Done()
				status := flowStatus(sfm.runStage(cmd, sc))
				closeFile(w)
				closeFile(prevR)
				p.statuses[i] = status
			}(i, sfm, cmd, sc, w, prevR)
			inProcess = true
		}
		prevR = r
	}

	if p.owner {
		p.j.Pgid = p.pg.pgid
	}
	if inProcess {
		ch := make(chan job.Status, 1)
		go func() {
			p.wg.Wait()
			ch <- job.ExitedStatus(p.statuses[n-1])
		}()
		p.j.SetInProcess(ch, p.procs[n-1] < 0)
	}
	return lastErr
}

func (fm *Frame) runStage(cmd parse.Command, sc *simpleCmd) (int, error) {
	if sc != nil {
		return fm.runSimple(sc)
	}
	return fm.execCmd(cmd)
}

func (p *pipeline) startExternal(fm *Frame, sc *simpleCmd) (int, error) {
	var overrides map[string]string
	if len(sc.assigns) > 0 {
		overrides = make(map[string]string, len(sc.assigns))
		for _, a := range sc.assigns {
			overrides[a.name] = a.value
		}
	}
	return p.pg.start(p.l, &job.Proc{
		Name:  sc.args[0],
		Path:  sc.path,
		Args:  sc.args,
		Env:   fm.env().Environ(overrides),
		Dir:   fm.cwd(),
		Files: fm.ports,
	})
}

// Waits for the pipeline and returns its status. A stopped pipeline is added
// to the job table.
func (p *pipeline) wait() int {
	n := len(p.procs)
	if len(p.j.Pids) > 0 || p.j.InProcess() {
		p.l.Wait(p.j)
	}
	if p.owner && p.pg.fg && p.pg.pgid != 0 {
		if err := p.l.ReclaimTerminal(); err != nil {
			logger.Printf("reclaim terminal: %v", err)
		}
	}
	if p.j.State == job.StoppedState {
		if p.owner {
			table := state.GetOr(p.fm.st, job.NewTable)
			table.Add(p.j)
			p.j.Foreground = false
			p.j.Changed = true
		}
		return p.j.Status().ExitCode()
	}

	statuses := p.statuses
	for i, k := range p.procs {
		if k >= 0 && p.j.Statuses[k] != nil {
			statuses[i] = p.j.Statuses[k].ExitCode()
		}
	}
	if p.fm.options().Pipefail {
		for i := n - 1; i >= 0; i-- {
			if statuses[i] != 0 {
				return statuses[i]
			}
		}
	}
	return statuses[n-1]
}

func closeFile(f *os.File) {
	if f != nil {
		f.Close()
	}
}

// Runs a command in the background and returns 0.
func (fm *Frame) execBackground(cmd parse.Command) int {
	text := parse.Print(cmd)
	sub := fm.subshell()
	sub.bg = true
	sub.pg = nil
	sub.capture = nil
	if !fm.launcher().Interactive() && sub.file(0) == os.Stdin {
		sub.setPort(0, openDevNull())
	}

	var j *job.Job
	switch c := cmd.(type) {
	case *parse.Simple, *parse.Pipeline:
		cmds := []parse.Command{cmd}
		if pl, ok := c.(*parse.Pipeline); ok {
			cmds = pl.Cmds
		}
		p := sub.newPipeline(text, true)
		p.start(cmds)
		j = p.j
	default:
		j = job.New(0, text)
		ch := make(chan job.Status, 1)
		go func() {
			ch <- job.ExitedStatus(flowStatus(sub.execCmd(cmd)))
		}()
		j.SetInProcess(ch, true)
	}

	table := state.GetOr(fm.st, job.NewTable)
	id := table.Add(j)
	if k := len(j.Pids); k > 0 {
		state.Put(fm.st, LastBgPid(j.Pids[k-1]))
	} else {
		state.Delete[LastBgPid](fm.st)
	}
	if fm.launcher().Interactive() {
		if j.Pgid > 0 {
			fm.printf(2, "[%d] %d\n", id, j.Pgid)
		} else {
			fm.printf(2, "[%d]\n", id)
		}
	}
	return 0
}
