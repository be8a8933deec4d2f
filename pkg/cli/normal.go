package cli

import (
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"src.kesh.sh/pkg/ui"
	"src.kesh.sh/pkg/vi"
)

// Keys of the normal mode that are not part of vi commands.
var normalSpecialKeys = map[ui.Key]func(ed *Editor){
	ui.K(ui.Enter):      (*Editor).submit,
	ui.K('M', ui.Ctrl): (*Editor).submit,
	ui.Esc:              func(ed *Editor) { ed.pendingKeys = nil },
	ui.K('C', ui.Ctrl):  (*Editor).interrupt,
	ui.K('D', ui.Ctrl): func(ed *Editor) {
		if ed.buf.Content == "" {
			ed.lp.Return("", io.EOF)
		}
	},
	ui.K('L', ui.Ctrl): func(ed *Editor) {
		ed.tty.ClearScreen()
		ed.tty.ResetBuffer()
		ed.lp.Redraw(true)
	},
}

// Function keys and their vi equivalents.
var normalKeyAliases = map[ui.Key]rune{
	ui.K(ui.Left): 'h', ui.K(ui.Right): 'l', ui.K(ui.Up): 'k', ui.K(ui.Down): 'j',
	ui.K(ui.Home): '0', ui.K(ui.End): '$',
	ui.K(ui.Backspace): 'h', ui.K(ui.Delete): 'x',
	ui.K('R', ui.Ctrl): vi.CtrlR,
}

func (ed *Editor) handleNormalKey(k ui.Key) {
	if f, ok := normalSpecialKeys[k]; ok {
		ed.pendingKeys = nil
		f(ed)
		return
	}
	r, ok := normalKeyAliases[k]
	if !ok {
		if k.Mod != 0 || !isPrintable(k.Rune) {
			ed.pendingKeys = nil
			ed.Notify(ui.T("Unbound key: " + k.String()))
			return
		}
		r = k.Rune
	}
	ed.pendingKeys = append(ed.pendingKeys, r)
	cmd, err := vi.Parse(ed.pendingKeys)
	if err == vi.ErrIncomplete {
		return
	}
	ed.pendingKeys = nil
	if err != nil {
		return
	}
	ed.execute(cmd)
}

func (ed *Editor) execute(cmd vi.Command) {
	n := max(cmd.Repeat, 1)
	c := &ed.buf
	switch cmd.Action {
	case vi.Undo:
		for i := 0; i < n && len(ed.undoStack) > 0; i++ {
			ed.undo()
		}
		return
	case vi.Redo:
		for i := 0; i < n && len(ed.redoStack) > 0; i++ {
			ed.redo()
		}
		return
	case vi.Insert:
		switch cmd.Motion.Kind {
		case vi.Right:
			if c.Dot < c.lineEnd(c.Dot) {
				ed.moveDot(c.runeRight(c.Dot))
			}
		case vi.Start:
			ed.moveDot(c.lineStart(c.Dot))
		case vi.End:
			ed.moveDot(c.lineEnd(c.Dot))
		}
		ed.setMode(Insert)
		return
	case vi.Paste:
		if ed.register == "" {
			return
		}
		text := strings.Repeat(ed.register, n)
		ed.edit(func(c *CodeBuffer) {
			if cmd.Motion.Kind == vi.Right {
				c.Dot = c.runeRight(c.Dot)
			}
			c.InsertAtDot(text)
			c.Dot = c.runeLeft(c.Dot)
		})
		return
	}

	if cmd.Action == vi.Move {
		switch cmd.Motion.Kind {
		case vi.Up:
			for i := 0; i < n && ed.walkPrev(); i++ {
			}
			return
		case vi.Down:
			for i := 0; i < n && ed.walkNext(); i++ {
			}
			return
		}
		if dot, ok := ed.motionTarget(cmd.Motion, n); ok {
			ed.moveDot(dot)
		}
		return
	}

	from, to, ok := ed.motionRange(cmd.Motion, n)
	if !ok {
		return
	}
	text := c.Content[from:to]
	switch cmd.Action {
	case vi.Delete, vi.Change:
		ed.register = text
		ed.edit(func(c *CodeBuffer) {
			c.Delete(from, to)
			c.Dot = from
		})
		if cmd.Action == vi.Change {
			ed.setMode(Insert)
		} else if ed.buf.Dot > ed.buf.lineStart(ed.buf.Dot) && ed.buf.Dot == ed.buf.lineEnd(ed.buf.Dot) {
			ed.buf.Dot = ed.buf.runeLeft(ed.buf.Dot)
		}
	case vi.Yank:
		ed.register = text
		ed.moveDot(from)
	case vi.ToggleCase, vi.LowerCase, vi.UpperCase:
		mapped := strings.Map(caseMapper(cmd.Action), text)
		ed.edit(func(c *CodeBuffer) {
			c.Replace(from, to, mapped)
			if cmd.Action == vi.ToggleCase {
				c.Dot = min(from+len(mapped), c.lineEnd(from))
			} else {
				c.Dot = from
			}
		})
	}
}

func caseMapper(a vi.Action) func(rune) rune {
	switch a {
	case vi.LowerCase:
		return unicode.ToLower
	case vi.UpperCase:
		return unicode.ToUpper
	default:
		return func(r rune) rune {
			if unicode.IsUpper(r) {
				return unicode.ToLower(r)
			}
			return unicode.ToUpper(r)
		}
	}
}

// Where a motion repeated n times moves the dot to. Horizontal motions stay
// on the current line.
func (ed *Editor) motionTarget(m vi.Motion, n int) (int, bool) {
	c := &ed.buf
	dot := c.Dot
	switch m.Kind {
	case vi.Left:
		start := c.lineStart(dot)
		for i := 0; i < n && dot > start; i++ {
			dot = c.runeLeft(dot)
		}
	case vi.Right:
		end := c.lineEnd(dot)
		for i := 0; i < n && dot < end; i++ {
			dot = c.runeRight(dot)
		}
	case vi.Word, vi.WordPunc:
		for i := 0; i < n; i++ {
			next := c.wordRight(dot, m.Kind == vi.WordPunc)
			if next == dot {
				break
			}
			dot = next
		}
	case vi.BackWord:
		for i := 0; i < n; i++ {
			next := c.wordLeft(dot)
			if next == dot {
				break
			}
			dot = next
		}
	case vi.Start:
		dot = c.lineStart(dot)
	case vi.End:
		dot = c.lineEnd(dot)
	case vi.Find:
		dot = c.find(dot, m.Char, n)
		if dot == -1 {
			return 0, false
		}
	default:
		return 0, false
	}
	return dot, true
}

// The range an operator acts on.
func (ed *Editor) motionRange(m vi.Motion, n int) (from, to int, ok bool) {
	c := &ed.buf
	switch m.Kind {
	case vi.All, vi.Up, vi.Down:
		return c.lineStart(c.Dot), c.lineEnd(c.Dot), true
	}
	target, ok := ed.motionTarget(m, n)
	if !ok {
		return 0, 0, false
	}
	from, to = min(c.Dot, target), max(c.Dot, target)
	if m.Kind == vi.Find {
		// df, includes the character found.
		_, w := utf8.DecodeRuneInString(c.Content[to:])
		to += w
	}
	return from, to, true
}
