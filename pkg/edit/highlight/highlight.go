// Package highlight provides a syntax highlighter for the POSIX-style command
// language.
package highlight

import (
	"errors"

	"src.kesh.sh/pkg/parse"
	"src.kesh.sh/pkg/ui"
)

// Config keeps configuration for highlighting code.
type Config struct {
	// HasCommand reports whether a command name resolves to a function,
	// builtin or executable. If nil, all commands are treated as good.
	HasCommand func(name string) bool
}

// Highlights a piece of code. Parse errors are marked, except those caused by
// the code being incomplete.
func highlight(code string, cfg Config) ui.Text {
	tokens, _ := parse.Lex(code)
	regions := getRegions(tokens)

	if _, err := parse.Parse("[interactive]", code); err != nil && !parse.IsIncomplete(err) {
		var perr *parse.Error
		if errors.As(err, &perr) {
			r := region{perr.Span.From, perr.Span.To, semanticRegion, errorRegion}
			if r.End == r.Begin && r.End < len(code) {
				r.End++
			}
			regions = overlayError(regions, r)
		}
	}

	var text ui.Text
	lastEnd := 0
	for _, r := range regions {
		if r.Begin > lastEnd {
			// Add inter-region text.
			text = append(text, &ui.Segment{Text: code[lastEnd:r.Begin]})
		}
		regionCode := code[r.Begin:r.End]
		var styling ui.Styling
		if r.Type == commandRegion {
			styling = stylingForGoodCommand
			if cfg.HasCommand != nil && !cfg.HasCommand(commandName(regionCode)) {
				styling = stylingForBadCommand
			}
		} else {
			styling = stylingFor[r.Type]
		}
		seg := &ui.Segment{Text: regionCode}
		if styling != nil {
			seg = ui.StyleSegment(seg, styling)
		}
		text = append(text, seg)
		lastEnd = r.End
	}
	if len(code) > lastEnd {
		// Add text after the last region as unstyled.
		text = append(text, &ui.Segment{Text: code[lastEnd:]})
	}
	return text
}

// Replaces the regions overlapping the error region with it.
func overlayError(regions []region, e region) []region {
	if e.Begin >= e.End {
		return regions
	}
	var out []region
	for _, r := range regions {
		if r.End <= e.Begin || r.Begin >= e.End {
			out = append(out, r)
		}
	}
	return fixRegions(append(out, e))
}

// Returns the literal value of a command word, or the raw text if it is not
// a literal.
func commandName(raw string) string {
	list, err := parse.Parse("", raw)
	if err != nil || len(list.Items) != 1 {
		return raw
	}
	if simple, ok := list.Items[0].Cmd.(*parse.Simple); ok && len(simple.Args) == 1 {
		if lit, ok := simple.Args[0].Literal(); ok {
			return lit
		}
	}
	return raw
}
