package diag

import (
	"fmt"
	"io"
	"strings"
)

// Error is an error tied to a Context.
type Error struct {
	Type    string
	Message string
	Context Context
}

func (e *Error) Error() string {
	line, col := e.Context.Position()
	return fmt.Sprintf("%s: %s:%d:%d: %s", e.Type, e.Context.Name, line, col, e.Message)
}

// Range returns the range of the error.
func (e *Error) Range() Ranging { return e.Context.Range() }

// Show shows the error along with the source excerpt.
func (e *Error) Show(indent string) string {
	header := fmt.Sprintf("%s: \033[31;1m%s\033[m\n", title(e.Type), e.Message)
	return header + indent + "  " + e.Context.Show(indent+"  ")
}

// Shower is implemented by errors that know how to render themselves for a
// terminal.
type Shower interface {
	Show(indent string) string
}

// ShowError writes err to w, using Show when err implements Shower.
func ShowError(w io.Writer, err error) {
	if shower, ok := err.(Shower); ok {
		fmt.Fprintln(w, shower.Show(""))
	} else {
		Complain(w, err.Error())
	}
}

// Complain writes msg to w in bold red, with a trailing newline.
func Complain(w io.Writer, msg string) {
	fmt.Fprintf(w, "\033[31;1m%s\033[m\n", msg)
}

// Complainf is like Complain, but takes a format string.
func Complainf(w io.Writer, format string, args ...any) {
	Complain(w, fmt.Sprintf(format, args...))
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
