// Package clitest provides a fake terminal for testing the line editor.
package clitest

import (
	"reflect"
	"sync"
	"testing"
	"time"

	"src.kesh.sh/pkg/cli"
	"src.kesh.sh/pkg/cli/term"
	"src.kesh.sh/pkg/sig"
)

const (
	// Maximum number of buffer updates FakeTTY expect to see.
	fakeTTYBufferUpdates = 4096
	// Maximum number of events FakeTTY produces.
	fakeTTYEvents = 4096
	// Maximum number of signals FakeTTY produces.
	fakeTTYSignals = 4096
)

// How long TestBuffer and TestNotesBuffer wait for a buffer.
var bufferTimeout = time.Second

// An implementation of the cli.TTY interface that is useful in tests.
type fakeTTY struct {
	setup func() (func(), error)
	// Channel that ReadEvent reads from. Can be used to inject events.
	eventCh chan term.Event
	// Closed by CloseReader; replaced by Setup.
	stopCh    chan struct{}
	stopMutex sync.Mutex
	// Channel for publishing updates of the main buffer and notes buffer.
	bufCh, notesBufCh chan *term.Buffer
	// Records history of the main buffer and notes buffer.
	bufs, notesBufs []*term.Buffer
	// Mutexes for guarding bufs and notesBufs.
	bufMutex sync.RWMutex
	// Channel that NotifySignals returns. Can be used to inject signals.
	sigCh chan sig.Event
	// Number of times the TTY screen has been cleared, incremented in
	// ClearScreen.
	cleared int

	sizeMutex sync.RWMutex
	// Predefined sizes.
	height, width int
}

// Initial size of fake TTY.
const (
	FakeTTYHeight = 20
	FakeTTYWidth  = 50
)

// NewFakeTTY creates a new FakeTTY and a handle for controlling it. The initial
// size of the terminal is FakeTTYHeight and FakeTTYWidth.
func NewFakeTTY() (cli.TTY, TTYCtrl) {
	tty := &fakeTTY{
		eventCh:    make(chan term.Event, fakeTTYEvents),
		stopCh:     make(chan struct{}),
		sigCh:      make(chan sig.Event, fakeTTYSignals),
		bufCh:      make(chan *term.Buffer, fakeTTYBufferUpdates),
		notesBufCh: make(chan *term.Buffer, fakeTTYBufferUpdates),
		height:     FakeTTYHeight, width: FakeTTYWidth,
	}
	return tty, TTYCtrl{tty}
}

// Delegates to the setup function specified using the SetSetup method of
// TTYCtrl, or return a nop function and a nil error. Reading is enabled again
// after a successful setup.
func (t *fakeTTY) Setup() (func(), error) {
	restore := func() {}
	if t.setup != nil {
		var err error
		restore, err = t.setup()
		if err != nil {
			return nil, err
		}
	}
	t.stopMutex.Lock()
	defer t.stopMutex.Unlock()
	t.stopCh = make(chan struct{})
	return restore, nil
}

// Returns the size specified by using the SetSize method of TTYCtrl.
func (t *fakeTTY) Size() (h, w int) {
	t.sizeMutex.RLock()
	defer t.sizeMutex.RUnlock()
	return t.height, t.width
}

// Returns next event from t.eventCh, or term.ErrStopped after CloseReader.
func (t *fakeTTY) ReadEvent() (term.Event, error) {
	t.stopMutex.Lock()
	stopCh := t.stopCh
	t.stopMutex.Unlock()
	select {
	case <-stopCh:
		return nil, term.ErrStopped
	default:
	}
	select {
	case ev := <-t.eventCh:
		return ev, nil
	case <-stopCh:
		return nil, term.ErrStopped
	}
}

func (t *fakeTTY) CloseReader() {
	t.stopMutex.Lock()
	defer t.stopMutex.Unlock()
	select {
	case <-t.stopCh:
	default:
		close(t.stopCh)
	}
}

// Records a nil buffer.
func (t *fakeTTY) ResetBuffer() {
	t.bufMutex.Lock()
	defer t.bufMutex.Unlock()
	t.recordBuf(nil)
}

// UpdateBuffer records a new pair of buffers, i.e. sending them to their
// respective channels and appending them to their respective slices.
func (t *fakeTTY) UpdateBuffer(bufNotes, buf *term.Buffer, _ bool) error {
	t.bufMutex.Lock()
	defer t.bufMutex.Unlock()
	t.recordNotesBuf(bufNotes)
	t.recordBuf(buf)
	return nil
}

func (t *fakeTTY) ClearScreen() {
	t.bufMutex.Lock()
	defer t.bufMutex.Unlock()
	t.cleared++
}

func (t *fakeTTY) NotifySignals() <-chan sig.Event { return t.sigCh }

func (t *fakeTTY) recordBuf(buf *term.Buffer) {
	t.bufs = append(t.bufs, buf)
	t.bufCh <- buf
}

func (t *fakeTTY) recordNotesBuf(buf *term.Buffer) {
	t.notesBufs = append(t.notesBufs, buf)
	t.notesBufCh <- buf
}

// TTYCtrl is an interface for controlling a fake terminal.
type TTYCtrl struct{ *fakeTTY }

// GetTTYCtrl takes a TTY and returns a TTYCtrl and true, if the TTY is a fake
// terminal. Otherwise it returns an invalid TTYCtrl and false.
func GetTTYCtrl(t cli.TTY) (TTYCtrl, bool) {
	fake, ok := t.(*fakeTTY)
	return TTYCtrl{fake}, ok
}

// SetSetup sets the return values of the Setup method of the fake terminal.
func (t TTYCtrl) SetSetup(restore func(), err error) {
	t.setup = func() (func(), error) {
		return restore, err
	}
}

// SetSize sets the size of the fake terminal.
func (t TTYCtrl) SetSize(h, w int) {
	t.sizeMutex.Lock()
	defer t.sizeMutex.Unlock()
	t.height, t.width = h, w
}

// Inject injects events to the fake terminal.
func (t TTYCtrl) Inject(events ...term.Event) {
	for _, event := range events {
		t.eventCh <- event
	}
}

// InjectKeys injects a key event for each rune of s.
func (t TTYCtrl) InjectKeys(s string) {
	for _, r := range s {
		t.eventCh <- term.K(r)
	}
}

// EventCh returns the underlying channel for delivering events.
func (t TTYCtrl) EventCh() chan term.Event {
	return t.eventCh
}

// InjectSignal injects signal events.
func (t TTYCtrl) InjectSignal(events ...sig.Event) {
	for _, e := range events {
		t.sigCh <- e
	}
}

// ScreenCleared returns the number of times ClearScreen has been called on the
// TTY.
func (t TTYCtrl) ScreenCleared() int {
	t.bufMutex.RLock()
	defer t.bufMutex.RUnlock()
	return t.cleared
}

// TestBuffer verifies that a buffer will appear within a second, and aborts
// the test if it doesn't.
func (t TTYCtrl) TestBuffer(tt *testing.T, b *term.Buffer) {
	tt.Helper()
	ok := testBuffer(b, t.bufCh)
	if !ok {
		tt.Logf("wanted buffer not shown:\n%s", b.TTYString())

		bufs := t.BufferHistory()
		for i := len(bufs) - 1; i >= 0; i-- {
			if bufs[i] != nil {
				tt.Logf("Last non-nil buffer: %s", bufs[i].TTYString())
				break
			}
		}
		tt.FailNow()
	}
}

// TestNotesBuffer verifies that a notes buffer will appear within a second,
// and aborts the test if it doesn't.
func (t TTYCtrl) TestNotesBuffer(tt *testing.T, b *term.Buffer) {
	tt.Helper()
	ok := testBuffer(b, t.notesBufCh)
	if !ok {
		tt.Logf("wanted notes buffer not shown:\n%s", b.TTYString())

		bufs := t.NotesBufferHistory()
		tt.Logf("There has been %d notes buffers. None-nil ones are:", len(bufs))
		for i, buf := range bufs {
			if buf != nil {
				tt.Logf("#%d:\n%s", i, buf.TTYString())
			}
		}
		tt.FailNow()
	}
}

// BufferHistory returns a slice of all buffers that have appeared.
func (t TTYCtrl) BufferHistory() []*term.Buffer {
	t.bufMutex.RLock()
	defer t.bufMutex.RUnlock()
	return append([]*term.Buffer(nil), t.bufs...)
}

// LastBuffer returns the last buffer that has appeared.
func (t TTYCtrl) LastBuffer() *term.Buffer {
	t.bufMutex.RLock()
	defer t.bufMutex.RUnlock()
	if len(t.bufs) == 0 {
		return nil
	}
	return t.bufs[len(t.bufs)-1]
}

// NotesBufferHistory returns a slice of all notes buffers that have appeared.
func (t TTYCtrl) NotesBufferHistory() []*term.Buffer {
	t.bufMutex.RLock()
	defer t.bufMutex.RUnlock()
	return append([]*term.Buffer(nil), t.notesBufs...)
}

// Tests that a buffer appears on the channel within bufferTimeout.
func testBuffer(want *term.Buffer, ch <-chan *term.Buffer) bool {
	timeout := time.After(bufferTimeout)
	for {
		select {
		case buf := <-ch:
			if reflect.DeepEqual(buf, want) {
				return true
			}
		case <-timeout:
			return false
		}
	}
}
