//go:build unix

package sig

import (
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func waitEvent(t *testing.T, r *Relay, want Event) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev := <-r.Events():
			if ev == want {
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %v", want)
		}
	}
}

func TestRelay(t *testing.T) {
	r := Start()
	defer r.Stop()

	TakeInterrupted()
	unix.Kill(unix.Getpid(), unix.SIGINT)
	waitEvent(t, r, Interrupt)
	if !TakeInterrupted() {
		t.Errorf("interrupted flag not set")
	}
	if TakeInterrupted() {
		t.Errorf("interrupted flag not cleared")
	}

	unix.Kill(unix.Getpid(), unix.SIGWINCH)
	waitEvent(t, r, Resized)
	if !TakeResized() {
		t.Errorf("resized flag not set")
	}
}

func TestCatchJobControl(t *testing.T) {
	r := Start()
	defer r.Stop()
	// Not stopped by SIGTSTP.
	unix.Kill(unix.Getpid(), unix.SIGTSTP)
	time.Sleep(10 * time.Millisecond)
}

func TestForeground(t *testing.T) {
	SetForeground(42)
	defer SetForeground(0)
	if Foreground() != 42 {
		t.Errorf("Foreground -> %d", Foreground())
	}
}
