package term

import (
	"strings"

	"src.kesh.sh/pkg/ui"
	"src.kesh.sh/pkg/wcwidth"
)

// BufferBuilder supports building a Buffer, wrapping lines at Width.
type BufferBuilder struct {
	Width, Col, Indent int
	// EagerWrap controls whether to wrap as soon as the cursor reaches the
	// right edge, so that the dot is never placed past the last column.
	EagerWrap bool
	// Lines the content of the buffer.
	Lines [][]Cell
	// Dot is what the user perceives as the cursor.
	Dot Pos
}

// NewBufferBuilder makes a new BufferBuilder, initially with one empty line.
func NewBufferBuilder(width int) *BufferBuilder {
	return &BufferBuilder{Width: width, Lines: [][]Cell{make([]Cell, 0, width)}}
}

// Cursor returns the current position.
func (bb *BufferBuilder) Cursor() Pos {
	return Pos{len(bb.Lines) - 1, bb.Col}
}

// SetIndent sets the indent of the BufferBuilder and returns itself.
func (bb *BufferBuilder) SetIndent(indent int) *BufferBuilder {
	bb.Indent = indent
	return bb
}

// SetEagerWrap sets the EagerWrap flag and returns itself.
func (bb *BufferBuilder) SetEagerWrap(v bool) *BufferBuilder {
	bb.EagerWrap = v
	return bb
}

// SetDotHere sets the dot of the BufferBuilder to the current position and
// returns itself.
func (bb *BufferBuilder) SetDotHere() *BufferBuilder {
	bb.Dot = bb.Cursor()
	return bb
}

func (bb *BufferBuilder) appendLine() {
	bb.Lines = append(bb.Lines, make([]Cell, 0, bb.Width))
	bb.Col = 0
}

func (bb *BufferBuilder) appendCell(c Cell) {
	n := len(bb.Lines)
	bb.Lines[n-1] = append(bb.Lines[n-1], c)
	bb.Col += wcwidth.Of(c.Text)
}

// Newline starts a new line, indented by Indent.
func (bb *BufferBuilder) Newline() *BufferBuilder {
	bb.appendLine()
	for i := 0; i < bb.Indent; i++ {
		bb.appendCell(Cell{Text: " "})
	}
	return bb
}

// WriteRuneSGR writes a single rune with the given SGR style. Control
// characters are shown in caret notation in inverse video.
func (bb *BufferBuilder) WriteRuneSGR(r rune, style string) *BufferBuilder {
	if r == '\n' {
		return bb.Newline()
	}
	c := Cell{string(r), style}
	if r < 0x20 || r == 0x7f {
		if style != "" {
			style += ";7"
		} else {
			style = "7"
		}
		c = Cell{"^" + string(r^0x40), style}
	}
	if bb.Col+wcwidth.Of(c.Text) > bb.Width {
		bb.Newline()
		bb.appendCell(c)
	} else {
		bb.appendCell(c)
		if bb.Col == bb.Width && bb.EagerWrap {
			bb.Newline()
		}
	}
	return bb
}

// Write writes a string without style.
func (bb *BufferBuilder) Write(text string) *BufferBuilder {
	return bb.WriteStringSGR(text, "")
}

// WriteSpaces writes w spaces.
func (bb *BufferBuilder) WriteSpaces(w int) *BufferBuilder {
	return bb.Write(strings.Repeat(" ", w))
}

// WriteStringSGR writes a string with the given SGR style.
func (bb *BufferBuilder) WriteStringSGR(text, style string) *BufferBuilder {
	for _, r := range text {
		bb.WriteRuneSGR(r, style)
	}
	return bb
}

// WriteStyled writes a styled text.
func (bb *BufferBuilder) WriteStyled(t ui.Text) *BufferBuilder {
	for _, seg := range t {
		bb.WriteStringSGR(seg.Text, seg.SGR())
	}
	return bb
}

// Buffer returns a Buffer built by the BufferBuilder.
func (bb *BufferBuilder) Buffer() *Buffer {
	return &Buffer{bb.Width, bb.Lines, bb.Dot}
}
