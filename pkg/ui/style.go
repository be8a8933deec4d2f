// Package ui contains types that may be used by different editor frontends.
package ui

import (
	"strings"
)

// Color is a terminal color, represented by the SGR parameters that select it
// as a foreground color.
type Color string

// Named colors.
const (
	Black   Color = "30"
	Red     Color = "31"
	Green   Color = "32"
	Yellow  Color = "33"
	Blue    Color = "34"
	Magenta Color = "35"
	Cyan    Color = "36"
	White   Color = "37"

	BrightBlack   Color = "90"
	BrightRed     Color = "91"
	BrightGreen   Color = "92"
	BrightYellow  Color = "93"
	BrightBlue    Color = "94"
	BrightMagenta Color = "95"
	BrightCyan    Color = "96"
	BrightWhite   Color = "97"
)

var colorByName = map[string]Color{
	"black": Black, "red": Red, "green": Green, "yellow": Yellow,
	"blue": Blue, "magenta": Magenta, "cyan": Cyan, "white": White,

	"bright-black": BrightBlack, "bright-red": BrightRed,
	"bright-green": BrightGreen, "bright-yellow": BrightYellow,
	"bright-blue": BrightBlue, "bright-magenta": BrightMagenta,
	"bright-cyan": BrightCyan, "bright-white": BrightWhite,
}

func (c Color) fgSGR() string { return string(c) }

// The background variant of a color is 10 higher than the foreground one.
func (c Color) bgSGR() string {
	if len(c) != 2 {
		return string(c)
	}
	if c[0] == '9' {
		return "10" + string(c[1])
	}
	return string(c[0]+1) + string(c[1])
}

// Style specifies how something (mostly a string) shall be displayed.
type Style struct {
	Fg         Color
	Bg         Color
	Bold       bool
	Dim        bool
	Italic     bool
	Underlined bool
	Blink      bool
	Inverse    bool
}

// SGR returns the SGR sequence for the style, without the leading "\033["
// and trailing "m".
func (s Style) SGR() string {
	var sgr []string
	addIf := func(b bool, code string) {
		if b {
			sgr = append(sgr, code)
		}
	}
	addIf(s.Bold, "1")
	addIf(s.Dim, "2")
	addIf(s.Italic, "3")
	addIf(s.Underlined, "4")
	addIf(s.Blink, "5")
	addIf(s.Inverse, "7")
	if s.Fg != "" {
		sgr = append(sgr, s.Fg.fgSGR())
	}
	if s.Bg != "" {
		sgr = append(sgr, s.Bg.bgSGR())
	}
	return strings.Join(sgr, ";")
}
