package cli

import (
	"errors"

	"src.kesh.sh/pkg/complete"
	"src.kesh.sh/pkg/ui"
)

// State of the completion cycle. The selected candidate is shown in the
// buffer as pending text until it is accepted.
type completion struct {
	items    []complete.Completion
	selected int
}

func (c *completion) current() complete.Completion { return c.items[c.selected] }

func (ed *Editor) completeNext() { ed.cycleCompletion(ed.spec.Completer, 1) }

func (ed *Editor) completePrev() { ed.cycleCompletion(ed.spec.Completer, -1) }

// Complete starts a completion cycle with candidates from f, or moves to the
// next candidate if a cycle is already in progress. It is meant to be called
// from key bindings.
func (ed *Editor) Complete(f func(*LineCtx) (*complete.Result, error)) {
	ed.cycleCompletion(f, 1)
}

// Starts completion, or moves through the candidates when already started.
//
// On start, a single candidate is inserted right away. Otherwise the longest
// common prefix of the candidates is inserted if that changes the buffer; if
// it doesn't, the cycle starts with the first candidate.
func (ed *Editor) cycleCompletion(f func(*LineCtx) (*complete.Result, error), step int) {
	if ed.comp != nil {
		n := len(ed.comp.items)
		ed.comp.selected = (ed.comp.selected + step + n) % n
		return
	}
	if f == nil {
		return
	}
	result, err := f(ed.lineCtx())
	if err != nil {
		if !errors.Is(err, complete.ErrNoCompletion) {
			ed.Notify(ui.T(err.Error(), ui.FgRed))
		}
		return
	}
	items := result.Items
	switch len(items) {
	case 0:
		return
	case 1:
		ed.applyCompletion(items[0])
		return
	}
	span := items[0].Span
	if prefix := complete.CommonPrefix(items); prefix != "" && prefix != ed.buf.Content[span.From:span.To] {
		ed.applyCompletion(complete.Completion{Replacement: prefix, Span: span})
		return
	}
	ed.comp = &completion{items: items}
	if step < 0 {
		ed.comp.selected = len(items) - 1
	}
}

func (ed *Editor) applyCompletion(item complete.Completion) {
	ed.edit(func(c *CodeBuffer) {
		c.Replace(item.Span.From, item.Span.To, item.Replacement)
		c.Dot = item.Span.From + len(item.Replacement)
	})
}

func (ed *Editor) acceptCompletion() {
	if ed.comp == nil {
		return
	}
	item := ed.comp.current()
	ed.comp = nil
	ed.applyCompletion(item)
}
