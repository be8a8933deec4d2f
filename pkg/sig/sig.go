//go:build unix

// Package sig translates signal deliveries into atomic flags and events.
//
// A single relay goroutine receives signals. It owns no shell state: it only
// sets flags, forwards SIGINT to the foreground job and pushes events that
// wake up a waiting reader.
package sig

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"golang.org/x/sys/unix"

	"src.kesh.sh/pkg/logutil"
)

var logger = logutil.GetLogger("[sig] ")

// Event is pushed to the events channel when a signal arrives.
type Event int

// Possible values of Event.
const (
	Interrupt Event = iota
	ChildChanged
	Resized
	Terminate
)

var eventNames = [...]string{"interrupt", "child-changed", "resized", "terminate"}

func (e Event) String() string { return eventNames[e] }

var (
	interrupted  atomic.Bool
	childChanged atomic.Bool
	resized      atomic.Bool
	terminated   atomic.Bool
	fgPgid       atomic.Int64
)

// TakeInterrupted reports whether SIGINT arrived since the last call.
func TakeInterrupted() bool { return interrupted.Swap(false) }

// Interrupted is like TakeInterrupted, but leaves the flag set.
func Interrupted() bool { return interrupted.Load() }

// TakeChildChanged reports whether SIGCHLD arrived since the last call.
func TakeChildChanged() bool { return childChanged.Swap(false) }

// TakeResized reports whether SIGWINCH arrived since the last call.
func TakeResized() bool { return resized.Swap(false) }

// Terminated reports whether SIGTERM or SIGHUP has arrived.
func Terminated() bool { return terminated.Load() }

// SetForeground records the process group of the foreground job. SIGINT
// received by the shell is forwarded to it. Zero means no foreground job.
func SetForeground(pgid int) { fgPgid.Store(int64(pgid)) }

// Foreground returns the value set by SetForeground.
func Foreground() int { return int(fgPgid.Load()) }

var (
	relayed = []os.Signal{
		syscall.SIGINT, syscall.SIGCHLD, syscall.SIGWINCH,
		syscall.SIGTERM, syscall.SIGHUP,
	}
	jobControl = []os.Signal{
		syscall.SIGQUIT, syscall.SIGTSTP, syscall.SIGTTIN, syscall.SIGTTOU,
	}
	jobControlCh = make(chan os.Signal, 1)
)

// CatchJobControl installs handlers for SIGQUIT, SIGTSTP, SIGTTIN and SIGTTOU
// that do nothing. The shell is then not stopped by these signals, while
// children still start with the default dispositions, which they would not
// if the signals were ignored.
func CatchJobControl() {
	signal.Notify(jobControlCh, jobControl...)
}

// Relay owns the relay goroutine.
type Relay struct {
	sigCh   chan os.Signal
	events  chan Event
	stop    chan struct{}
	stopped chan struct{}
}

// Start starts relaying signals.
func Start() *Relay {
	r := &Relay{
		sigCh:   make(chan os.Signal, 16),
		events:  make(chan Event, 16),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	CatchJobControl()
	signal.Notify(r.sigCh, relayed...)
	go r.loop()
	return r
}

func (r *Relay) loop() {
	defer close(r.stopped)
	for {
		select {
		case s := <-r.sigCh:
			r.handle(s.(syscall.Signal))
		case <-r.stop:
			return
		}
	}
}

func (r *Relay) handle(s syscall.Signal) {
	var ev Event
	switch s {
	case syscall.SIGINT:
		interrupted.Store(true)
		if pgid := Foreground(); pgid > 0 && pgid != unix.Getpgrp() {
			if err := unix.Kill(-pgid, unix.SIGINT); err != nil {
				logger.Println("forward SIGINT:", err)
			}
		}
		ev = Interrupt
	case syscall.SIGCHLD:
		childChanged.Store(true)
		ev = ChildChanged
	case syscall.SIGWINCH:
		resized.Store(true)
		ev = Resized
	case syscall.SIGTERM, syscall.SIGHUP:
		terminated.Store(true)
		ev = Terminate
	default:
		return
	}
	select {
	case r.events <- ev:
	default:
		// The reader is behind; the flags still carry the information.
	}
}

// Events returns the channel of signal events.
func (r *Relay) Events() <-chan Event { return r.events }

// Stop stops relaying and restores the default handlers.
func (r *Relay) Stop() {
	close(r.stop)
	<-r.stopped
	signal.Stop(r.sigCh)
	signal.Stop(jobControlCh)
	signal.Reset(append(relayed, jobControl...)...)
}
