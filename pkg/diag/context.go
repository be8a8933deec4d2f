package diag

import (
	"fmt"
	"strings"
)

// Context is a range of text in a named source, used to point at the part of
// the input an error is about.
type Context struct {
	Name   string
	Source string
	Ranging
}

// NewContext creates a new Context.
func NewContext(name, source string, r Ranger) *Context {
	return &Context{name, source, r.Range()}
}

// Style of the culprit. Tests reset these to plain markers.
var (
	culpritStart       = "\033[1;4m"
	culpritEnd         = "\033[m"
	culpritPlaceHolder = "^"
)

// Position returns the 1-based line and column of the start of the range.
// Columns count bytes.
func (c *Context) Position() (line, col int) {
	before := c.Source[:clamp(c.From, len(c.Source))]
	line = strings.Count(before, "\n") + 1
	col = len(before) - strings.LastIndexByte(before, '\n')
	return line, col
}

// Show renders the location of the context followed by the line containing
// it, with the culprit highlighted.
func (c *Context) Show(indent string) string {
	if c.From < 0 || c.To > len(c.Source) || c.From > c.To {
		return fmt.Sprintf("%s, invalid position %d-%d", c.Name, c.From, c.To)
	}
	line, col := c.Position()
	return fmt.Sprintf("%s:%d:%d:\n%s%s", c.Name, line, col, indent, c.excerpt(indent))
}

func (c *Context) excerpt(indent string) string {
	lineStart := strings.LastIndexByte(c.Source[:c.From], '\n') + 1
	culprit := strings.TrimSuffix(c.Source[c.From:c.To], "\n")
	var tail string
	if rest := c.Source[c.From+len(culprit):]; !strings.HasPrefix(rest, "\n") {
		if i := strings.IndexByte(rest, '\n'); i >= 0 {
			tail = rest[:i]
		} else {
			tail = rest
		}
	}
	if culprit == "" {
		culprit = culpritPlaceHolder
	}

	var sb strings.Builder
	sb.WriteString(c.Source[lineStart:c.From])
	for i, line := range strings.Split(culprit, "\n") {
		if i > 0 {
			sb.WriteString("\n" + indent)
		}
		sb.WriteString(culpritStart + line + culpritEnd)
	}
	sb.WriteString(tail)
	return sb.String()
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	} else if i > n {
		return n
	}
	return i
}
