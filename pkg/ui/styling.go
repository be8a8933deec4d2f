package ui

import "strings"

// Styling specifies how to change a Style. It can also be applied to a
// Segment or Text.
type Styling interface{ transform(*Style) }

// StyleText returns a new Text with the given Styling's applied. It does not
// modify the given Text.
func StyleText(t Text, ts ...Styling) Text {
	newt := make(Text, len(t))
	for i, seg := range t {
		newt[i] = StyleSegment(seg, ts...)
	}
	return newt
}

// StyleSegment returns a new Segment with the given Styling's applied. It
// does not modify the given Segment.
func StyleSegment(seg *Segment, ts ...Styling) *Segment {
	return &Segment{Text: seg.Text, Style: ApplyStyling(seg.Style, ts...)}
}

// ApplyStyling returns a new Style with the given Styling's applied.
func ApplyStyling(s Style, ts ...Styling) Style {
	for _, t := range ts {
		if t != nil {
			t.transform(&s)
		}
	}
	return s
}

// Common stylings.
var (
	Reset Styling = reset{}

	FgBlack   Styling = setFg(Black)
	FgRed     Styling = setFg(Red)
	FgGreen   Styling = setFg(Green)
	FgYellow  Styling = setFg(Yellow)
	FgBlue    Styling = setFg(Blue)
	FgMagenta Styling = setFg(Magenta)
	FgCyan    Styling = setFg(Cyan)
	FgWhite   Styling = setFg(White)

	FgBrightBlack Styling = setFg(BrightBlack)

	BgRed  Styling = setBg(Red)
	BgBlue Styling = setBg(Blue)

	Bold       Styling = boolOn(func(s *Style) *bool { return &s.Bold })
	Dim        Styling = boolOn(func(s *Style) *bool { return &s.Dim })
	Italic     Styling = boolOn(func(s *Style) *bool { return &s.Italic })
	Underlined Styling = boolOn(func(s *Style) *bool { return &s.Underlined })
	Blink      Styling = boolOn(func(s *Style) *bool { return &s.Blink })
	Inverse    Styling = boolOn(func(s *Style) *bool { return &s.Inverse })
)

type reset struct{}
type setFg Color
type setBg Color
type boolOn func(*Style) *bool
type jointStyling []Styling

func (reset) transform(s *Style)           { *s = Style{} }
func (c setFg) transform(s *Style)         { s.Fg = Color(c) }
func (c setBg) transform(s *Style)         { s.Bg = Color(c) }
func (f boolOn) transform(s *Style)        { *f(s) = true }
func (ts jointStyling) transform(s *Style) { *s = ApplyStyling(*s, ts...) }

// Stylings joins several Styling's into one.
func Stylings(ts ...Styling) Styling { return jointStyling(ts) }

// ParseStyling parses a space-separated list of styling names, such as
// "bold red bg-blue". Unknown names make it return nil.
func ParseStyling(s string) Styling {
	var ts jointStyling
	for _, name := range strings.Fields(s) {
		t := parseOneStyling(name)
		if t == nil {
			return nil
		}
		ts = append(ts, t)
	}
	return ts
}

func parseOneStyling(name string) Styling {
	switch name {
	case "default":
		return Reset
	case "bold":
		return Bold
	case "dim":
		return Dim
	case "italic":
		return Italic
	case "underlined":
		return Underlined
	case "blink":
		return Blink
	case "inverse":
		return Inverse
	}
	if strings.HasPrefix(name, "bg-") {
		if c, ok := colorByName[name[3:]]; ok {
			return setBg(c)
		}
		return nil
	}
	if strings.HasPrefix(name, "fg-") {
		name = name[3:]
	}
	if c, ok := colorByName[name]; ok {
		return setFg(c)
	}
	return nil
}
