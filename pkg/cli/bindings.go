package cli

import (
	"fmt"
	"io"
	"sort"

	"src.kesh.sh/pkg/ui"
)

// Binding is the action bound to a key.
type Binding struct {
	Doc string
	Fn  func(ed *Editor)
}

// Bindings maps keys to their actions.
type Bindings map[ui.Key]Binding

// Add binds a key. It is an error to bind a key twice.
func (b Bindings) Add(k ui.Key, doc string, fn func(ed *Editor)) error {
	if _, ok := b[k]; ok {
		return fmt.Errorf("key %v already bound", k)
	}
	b[k] = Binding{doc, fn}
	return nil
}

func (b Bindings) mustAdd(k ui.Key, doc string, fn func(ed *Editor)) {
	if err := b.Add(k, doc, fn); err != nil {
		panic(err)
	}
}

// Keys returns all bound keys, sorted by their names.
func (b Bindings) Keys() []ui.Key {
	keys := make([]ui.Key, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

// InsertBindings returns the default bindings of the insert mode. Keys not
// bound here insert themselves when they are printable.
func InsertBindings() Bindings {
	b := Bindings{}
	b.mustAdd(ui.K(ui.Enter), "Submit the line, or continue it if it is incomplete", (*Editor).submit)
	b.mustAdd(ui.K('M', ui.Ctrl), "Submit the line, or continue it if it is incomplete", (*Editor).submit)
	b.mustAdd(ui.Esc, "Switch to normal mode", func(ed *Editor) { ed.setMode(Normal) })
	b.mustAdd(ui.K(ui.Left), "Move left", func(ed *Editor) { ed.moveDot(ed.buf.runeLeft(ed.buf.Dot)) })
	b.mustAdd(ui.K(ui.Right), "Move right, or accept the suggestion at the end", func(ed *Editor) {
		if !ed.acceptSuggestion() {
			ed.moveDot(ed.buf.runeRight(ed.buf.Dot))
		}
	})
	b.mustAdd(ui.K(ui.Left, ui.Ctrl), "Move to the previous word", func(ed *Editor) { ed.moveDot(ed.buf.wordLeft(ed.buf.Dot)) })
	b.mustAdd(ui.K(ui.Right, ui.Ctrl), "Move to the next word", func(ed *Editor) { ed.moveDot(ed.buf.wordRight(ed.buf.Dot, false)) })
	b.mustAdd(ui.K(ui.Home), "Move to the start of the line", (*Editor).moveToLineStart)
	b.mustAdd(ui.K('A', ui.Ctrl), "Move to the start of the line", (*Editor).moveToLineStart)
	b.mustAdd(ui.K(ui.End), "Move to the end of the line, or accept the suggestion", (*Editor).moveToLineEnd)
	b.mustAdd(ui.K('E', ui.Ctrl), "Move to the end of the line, or accept the suggestion", (*Editor).moveToLineEnd)
	b.mustAdd(ui.K(ui.Backspace), "Delete the character to the left", (*Editor).backspace)
	b.mustAdd(ui.K('H', ui.Ctrl), "Delete the character to the left", (*Editor).backspace)
	b.mustAdd(ui.K(ui.Delete), "Delete the character to the right", (*Editor).deleteRight)
	b.mustAdd(ui.K('W', ui.Ctrl), "Delete the word to the left", func(ed *Editor) {
		ed.edit(func(c *CodeBuffer) { c.Delete(c.wordLeft(c.Dot), c.Dot) })
	})
	b.mustAdd(ui.K('U', ui.Ctrl), "Delete to the start of the line", func(ed *Editor) {
		ed.edit(func(c *CodeBuffer) { c.Delete(c.lineStart(c.Dot), c.Dot) })
	})
	b.mustAdd(ui.K('K', ui.Ctrl), "Delete to the end of the line", func(ed *Editor) {
		ed.edit(func(c *CodeBuffer) { c.Delete(c.Dot, c.lineEnd(c.Dot)) })
	})
	b.mustAdd(ui.K('L', ui.Ctrl), "Clear the screen", func(ed *Editor) {
		ed.tty.ClearScreen()
		ed.tty.ResetBuffer()
		ed.lp.Redraw(true)
	})
	b.mustAdd(ui.K('C', ui.Ctrl), "Discard the line", (*Editor).interrupt)
	b.mustAdd(ui.K('D', ui.Ctrl), "End of input on an empty line, delete right otherwise", func(ed *Editor) {
		if ed.buf.Content == "" {
			ed.lp.Return("", io.EOF)
			return
		}
		ed.deleteRight()
	})
	b.mustAdd(ui.K('/', ui.Ctrl), "Undo", (*Editor).undo)
	b.mustAdd(ui.K(ui.Up), "Previous history entry with the same prefix", (*Editor).historyPrev)
	b.mustAdd(ui.K('P', ui.Ctrl), "Previous history entry with the same prefix", (*Editor).historyPrev)
	b.mustAdd(ui.K(ui.Down), "Next history entry with the same prefix", (*Editor).historyNext)
	b.mustAdd(ui.K('N', ui.Ctrl), "Next history entry with the same prefix", (*Editor).historyNext)
	b.mustAdd(ui.K(ui.Tab), "Complete, or cycle through candidates", (*Editor).completeNext)
	b.mustAdd(ui.K(ui.Tab, ui.Shift), "Cycle backwards through candidates", (*Editor).completePrev)
	return b
}
