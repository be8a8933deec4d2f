package cli

import "src.kesh.sh/pkg/histutil"

// State of walking the history with Up and Down.
type histWalk struct {
	cursor *histutil.Cursor
	// The buffer before the walk started, restored after walking past the
	// newest entry.
	saved CodeBuffer
}

// Replaces the buffer with the text of a history entry, keeping the walk.
func (ed *Editor) showEntry(text string) {
	ed.buf = CodeBuffer{Content: text, Dot: len(text)}
}

func (ed *Editor) historyPrev() { ed.walkPrev() }

func (ed *Editor) historyNext() { ed.walkNext() }

// Shows the previous history entry. It reports whether there was one.
func (ed *Editor) walkPrev() bool {
	if ed.spec.History == nil {
		return false
	}
	walk := ed.walk
	if walk == nil {
		walk = &histWalk{ed.spec.History.Cursor(ed.buf.Content), ed.buf}
	}
	if err := walk.cursor.Prev(); err != nil {
		return false
	}
	e, err := walk.cursor.Get()
	if err != nil {
		return false
	}
	ed.walk = walk
	ed.showEntry(e.Text)
	return true
}

// Shows the next history entry, or the saved buffer after the newest one. It
// reports whether the walk continues.
func (ed *Editor) walkNext() bool {
	if ed.walk == nil {
		return false
	}
	if err := ed.walk.cursor.Next(); err != nil {
		ed.buf = ed.walk.saved
		ed.walk = nil
		return false
	}
	e, err := ed.walk.cursor.Get()
	if err != nil {
		return false
	}
	ed.showEntry(e.Text)
	return true
}
