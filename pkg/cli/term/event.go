package term

import "src.kesh.sh/pkg/ui"

// Event represents an event that can be read from the terminal.
type Event interface {
	isEvent()
}

// KeyEvent represents a key press.
type KeyEvent ui.Key

// K constructs a new KeyEvent.
func K(r rune, mods ...ui.Mod) KeyEvent {
	return KeyEvent(ui.K(r, mods...))
}

// CursorPosition represents a report of the current cursor position from the
// terminal driver, usually as a response from a cursor position request.
type CursorPosition Pos

// PasteSetting indicates the start or finish of pasted text.
type PasteSetting bool

// NonfatalErrorEvent represents an error that can be gradually recovered.
type NonfatalErrorEvent struct{ Err error }

// FatalErrorEvent represents an error that affects the Reader's ability to
// continue reading events.
type FatalErrorEvent struct{ Err error }

func (KeyEvent) isEvent()           {}
func (CursorPosition) isEvent()     {}
func (PasteSetting) isEvent()       {}
func (NonfatalErrorEvent) isEvent() {}
func (FatalErrorEvent) isEvent()    {}
