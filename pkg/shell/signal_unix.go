//go:build unix

package shell

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"

	"src.kesh.sh/pkg/job"
	"src.kesh.sh/pkg/sys"
)

// Writes the stacks of all goroutines to stderr on SIGUSR1. It returns a
// function that stops doing so.
func dumpStackOnSignal(stderr *os.File) func() {
	sigCh := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sigCh, syscall.SIGUSR1)
	go func() {
		for {
			select {
			case s := <-sigCh:
				logger.Println("signal", unix.SignalName(s.(syscall.Signal)))
				fmt.Fprint(stderr, sys.DumpStack())
			case <-done:
				return
			}
		}
	}()
	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}

// Sends SIGHUP to all jobs when the shell is hung up. Stopped jobs are also
// continued so that they can handle the signal.
func hangUpJobs(t *job.Table) {
	for _, j := range t.Jobs() {
		if j.State == job.Done {
			continue
		}
		pids := j.Pids
		if j.Pgid != 0 {
			pids = []int{-j.Pgid}
		}
		for _, pid := range pids {
			if err := unix.Kill(pid, unix.SIGHUP); err != nil {
				logger.Printf("SIGHUP %d: %v", pid, err)
				continue
			}
			if j.State == job.StoppedState {
				unix.Kill(pid, unix.SIGCONT)
			}
		}
	}
}
