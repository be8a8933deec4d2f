package ui

import (
	"strings"

	"src.kesh.sh/pkg/wcwidth"
)

// Segment is a string that has some style applied to it.
type Segment struct {
	Style
	Text string
}

// VTString renders the Segment as a string with embedded VT-100 style
// control sequences.
func (s *Segment) VTString() string {
	sgr := s.SGR()
	if sgr == "" {
		return s.Text
	}
	return "\033[" + sgr + "m" + s.Text + "\033[m"
}

// Text contains of a list of styled Segments.
type Text []*Segment

// T constructs a new Text with the given content and the given Styling's
// applied.
func T(s string, ts ...Styling) Text {
	return StyleText(Text{&Segment{Text: s}}, ts...)
}

// Concat returns a new Text with the segments of t2 appended after those of
// t.
func (t Text) Concat(t2 Text) Text {
	return append(append(Text(nil), t...), t2...)
}

// String returns the content of the Text without any style.
func (t Text) String() string {
	var sb strings.Builder
	for _, seg := range t {
		sb.WriteString(seg.Text)
	}
	return sb.String()
}

// VTString renders the Text as a string with embedded VT-100 style control
// sequences.
func (t Text) VTString() string {
	var sb strings.Builder
	for _, seg := range t {
		sb.WriteString(seg.VTString())
	}
	return sb.String()
}

// Width returns the display width of the Text.
func (t Text) Width() int {
	w := 0
	for _, seg := range t {
		w += wcwidth.Of(seg.Text)
	}
	return w
}

// Partition splits the Text at the given byte indices of its content. The
// indices must be sorted and within range.
func (t Text) Partition(indices ...int) []Text {
	out := make([]Text, len(indices)+1)
	i, consumed := 0, 0
	for _, seg := range t {
		text := seg.Text
		for i < len(indices) && indices[i] <= consumed+len(text) {
			n := indices[i] - consumed
			if n > 0 {
				out[i] = append(out[i], &Segment{seg.Style, text[:n]})
			}
			text = text[n:]
			consumed += n
			i++
		}
		if text != "" {
			out[i] = append(out[i], &Segment{seg.Style, text})
			consumed += len(text)
		}
	}
	return out
}
