// Package output centralizes diagnostics and notifications written by the
// shell, with theme colors and terminal width tracking.
package output

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"

	"src.kesh.sh/pkg/diag"
	"src.kesh.sh/pkg/env"
)

// Prefix is written before error messages.
const Prefix = "kesh: "

// Theme holds the colors used for each kind of output.
type Theme struct {
	Error   *color.Color
	Warning *color.Color
	Job     *color.Color
	Info    *color.Color
}

// DefaultTheme returns the default theme.
func DefaultTheme() Theme {
	return Theme{
		Error:   color.New(color.FgRed, color.Bold),
		Warning: color.New(color.FgYellow),
		Job:     color.New(color.FgCyan),
		Info:    color.New(color.FgHiBlack),
	}
}

// Writer writes themed output of the shell itself. Output of commands does
// not go through it.
type Writer struct {
	Out   io.Writer
	Err   io.Writer
	Theme Theme
	width int
}

// New creates a Writer. Colors are used for stderr when it is a terminal,
// TERM is not "dumb" and NO_COLOR is not set.
func New(out, err io.Writer) *Writer {
	w := &Writer{Out: out, Err: err, Theme: DefaultTheme()}
	w.SetColor(isTerminal(err) && os.Getenv(env.TERM) != "dumb" && os.Getenv("NO_COLOR") == "")
	w.Refresh()
	return w
}

// SetColor enables or disables colors for all entries of the theme.
func (w *Writer) SetColor(on bool) {
	for _, c := range []*color.Color{w.Theme.Error, w.Theme.Warning, w.Theme.Job, w.Theme.Info} {
		if on {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Refresh queries the terminal width again. It is called when the terminal
// is resized.
func (w *Writer) Refresh() {
	w.width = 80
	for _, wr := range []io.Writer{w.Out, w.Err} {
		if f, ok := wr.(*os.File); ok {
			if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
				w.width = width
				return
			}
		}
	}
}

// Width returns the terminal width, or 80 when unknown.
func (w *Writer) Width() int { return w.width }

// Errorf writes an error message to Err.
//
// Colored text is always built with Sprint and Sprintf: Fprint skips the
// reset sequence when the global color.NoColor is set.
func (w *Writer) Errorf(format string, args ...any) {
	fmt.Fprint(w.Err, w.Theme.Error.Sprint(Prefix))
	fmt.Fprintf(w.Err, format+"\n", args...)
}

// Error writes an error to Err. Errors that can show themselves with source
// context, like parse errors, are shown that way.
func (w *Writer) Error(err error) {
	var shower diag.Shower
	if errors.As(err, &shower) {
		fmt.Fprintln(w.Err, shower.Show(""))
		return
	}
	w.Errorf("%v", err)
}

// Warnf writes a warning to Err.
func (w *Writer) Warnf(format string, args ...any) {
	fmt.Fprintln(w.Err, w.Theme.Warning.Sprintf(Prefix+format, args...))
}

// Job writes a job notification, like "[1]+ Done  sleep 1", to Err.
func (w *Writer) Job(line string) {
	fmt.Fprintln(w.Err, w.Theme.Job.Sprint(line))
}

// Infof writes an informational message to Err.
func (w *Writer) Infof(format string, args ...any) {
	fmt.Fprintln(w.Err, w.Theme.Info.Sprintf(format, args...))
}
