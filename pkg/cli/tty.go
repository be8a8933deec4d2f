package cli

import (
	"fmt"
	"os"

	"src.kesh.sh/pkg/cli/term"
	"src.kesh.sh/pkg/sig"
	"src.kesh.sh/pkg/sys"
)

// TTY is the terminal the editor runs on.
type TTY interface {
	// Setup puts the terminal into the state the editor needs and returns a
	// function that restores it. Errors are *TerminalError.
	Setup() (restore func(), err error)
	// ReadEvent reads one event. It returns term.ErrStopped after
	// CloseReader.
	ReadEvent() (term.Event, error)
	// CloseReader stops reading events until the next Setup.
	CloseReader()
	// Size returns the height and width of the terminal.
	Size() (h, w int)
	// NotifySignals returns a channel of signal events. It may be nil.
	NotifySignals() <-chan sig.Event

	// UpdateBuffer writes notes above the editor and updates the editor to
	// show buf.
	UpdateBuffer(notes, buf *term.Buffer, full bool) error
	// ResetBuffer forgets what the editor has drawn, so that the next update
	// starts on a new line.
	ResetBuffer()
	// ClearScreen clears the screen.
	ClearScreen()
}

// TerminalError is returned when the terminal cannot be set up for the
// editor.
type TerminalError struct{ Err error }

func (e *TerminalError) Error() string { return fmt.Sprintf("terminal: %v", e.Err) }

func (e *TerminalError) Unwrap() error { return e.Err }

type aTTY struct {
	in, out *os.File
	r       term.Reader
	term.Writer
	relay *sig.Relay
}

// NewTTY returns a TTY reading from in and writing to out. Signal events come
// from relay, which may be nil.
func NewTTY(in, out *os.File, relay *sig.Relay) TTY {
	return &aTTY{in: in, out: out, Writer: term.NewWriter(out), relay: relay}
}

func (t *aTTY) Setup() (func(), error) {
	restore, err := term.Setup(t.in, t.out)
	if err != nil {
		return nil, &TerminalError{err}
	}
	r, err := term.NewReader(t.in)
	if err != nil {
		restore()
		return nil, &TerminalError{err}
	}
	t.r = r
	return func() {
		if err := restore(); err != nil {
			logger.Println("restore terminal:", err)
		}
	}, nil
}

func (t *aTTY) ReadEvent() (term.Event, error) {
	if t.r == nil {
		return nil, term.ErrStopped
	}
	return t.r.ReadEvent()
}

func (t *aTTY) CloseReader() {
	if t.r != nil {
		t.r.Close()
	}
}

func (t *aTTY) Size() (h, w int) {
	return sys.WinSize(t.out)
}

func (t *aTTY) NotifySignals() <-chan sig.Event {
	if t.relay == nil {
		return nil
	}
	return t.relay.Events()
}
