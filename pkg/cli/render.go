package cli

import (
	"unicode/utf8"

	"src.kesh.sh/pkg/cli/term"
	"src.kesh.sh/pkg/ui"
	"src.kesh.sh/pkg/wcwidth"
)

var (
	suggestionStyle = ui.ApplyStyling(ui.Style{}, ui.FgBrightBlack).SGR()
	selectedStyle   = ui.ApplyStyling(ui.Style{}, ui.Inverse).SGR()
)

func (ed *Editor) redraw(flag redrawFlag) {
	height, width := ed.tty.Size()
	if width <= 0 || height <= 0 {
		height, width = 24, 80
	}
	if ed.spec.MaxHeight > 0 && ed.spec.MaxHeight < height {
		height = ed.spec.MaxHeight
	}
	final := flag&finalRedraw != 0
	notes := renderNotes(ed.takeNotes(), width)
	buf := ed.render(width, height, final)
	if final {
		// Leave the cursor on a new line for the output of the command.
		buf.ExtendDown(&term.Buffer{Width: width, Lines: [][]term.Cell{{}}}, true)
	}
	if err := ed.tty.UpdateBuffer(notes, buf, flag&fullRedraw != 0); err != nil {
		logger.Println("update buffer:", err)
	}
	if final {
		ed.tty.ResetBuffer()
	}
}

func renderNotes(notes []ui.Text, width int) *term.Buffer {
	if len(notes) == 0 {
		return nil
	}
	bb := term.NewBufferBuilder(width)
	for i, note := range notes {
		if i > 0 {
			bb.Newline()
		}
		bb.WriteStyled(note)
	}
	return bb.Buffer()
}

// Renders the prompt, the code with pending completion and the suggestion,
// the right prompt and the completion menu. The final render leaves out what
// is only useful while editing.
func (ed *Editor) render(width, height int, final bool) *term.Buffer {
	lc := ed.lineCtx()
	bb := term.NewBufferBuilder(width).SetEagerWrap(true)
	bb.WriteStyled(ed.spec.Prompt(lc))

	code, dot := ed.buf.Content, ed.buf.Dot
	styled := ed.spec.Highlighter(code)
	if ed.comp != nil && !final {
		item := ed.comp.current()
		from, to := item.Span.From, item.Span.To
		code = code[:from] + item.Replacement + code[to:]
		dot = from + len(item.Replacement)
		parts := styled.Partition(from, to)
		styled = parts[0].Concat(ui.T(item.Replacement, ui.Underlined)).Concat(parts[2])
	}

	cont := ed.spec.ContinuationPrompt(lc)
	i, dotSet := 0, false
	for _, seg := range styled {
		sgr := seg.SGR()
		for _, r := range seg.Text {
			if i == dot {
				bb.SetDotHere()
				dotSet = true
			}
			if r == '\n' {
				bb.Newline()
				bb.WriteStyled(cont)
			} else {
				bb.WriteRuneSGR(r, sgr)
			}
			i += utf8.RuneLen(r)
		}
	}
	if !dotSet {
		bb.SetDotHere()
	}

	if !final {
		if s := ed.suggest(); s != "" {
			bb.WriteStringSGR(s, suggestionStyle)
		}
		if ed.spec.RPrompt != nil && len(bb.Lines) == 1 {
			rprompt := ed.spec.RPrompt(lc)
			if w := rprompt.Width(); w > 0 && bb.Col+1+w <= width {
				bb.SetEagerWrap(false)
				bb.WriteSpaces(width - bb.Col - w)
				bb.WriteStyled(rprompt)
				bb.SetEagerWrap(true)
			}
		}
	}

	buf := bb.Buffer()
	if len(buf.Lines) > height {
		low := max(buf.Dot.Line-height+1, 0)
		buf.TrimToLines(low, low+height)
	}
	if ed.comp != nil && !final && len(buf.Lines) < height {
		buf.ExtendDown(ed.renderMenu(width, height-len(buf.Lines)), false)
	}
	return buf
}

// Lays out the candidates in columns, row by row, scrolled so that the
// selected one is visible.
func (ed *Editor) renderMenu(width, maxRows int) *term.Buffer {
	items := ed.comp.items
	colWidth := 0
	for _, item := range items {
		colWidth = max(colWidth, wcwidth.Of(item.Display))
	}
	colWidth = min(colWidth+2, width)
	cols := max(width/colWidth, 1)
	rows := (len(items) + cols - 1) / cols
	first := 0
	if selRow := ed.comp.selected / cols; selRow >= maxRows {
		first = selRow - maxRows + 1
	}

	bb := term.NewBufferBuilder(width)
	for row := first; row < min(rows, first+maxRows); row++ {
		if row > first {
			bb.Newline()
		}
		for col := 0; col < cols; col++ {
			i := row*cols + col
			if i >= len(items) {
				break
			}
			style := ""
			if i == ed.comp.selected {
				style = selectedStyle
			}
			bb.WriteStringSGR(wcwidth.Force(items[i].Display, max(colWidth-2, 0)), style)
			if col < cols-1 {
				bb.WriteSpaces(2)
			}
		}
	}
	return bb.Buffer()
}
