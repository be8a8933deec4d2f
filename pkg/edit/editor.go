// Package edit implements the line editor of the shell.
//
// The line editor is based on the cli package, which implements a general,
// language-agnostic line editor. This package supplies the shell-aware parts:
// highlighting, prompts, completion rules, suggestions from history, mode
// hooks and job notifications.
package edit

import (
	"src.kesh.sh/pkg/cli"
	"src.kesh.sh/pkg/edit/highlight"
	"src.kesh.sh/pkg/logutil"
	"src.kesh.sh/pkg/shell/shdefs"
	"src.kesh.sh/pkg/state"
	"src.kesh.sh/pkg/ui"
)

var logger = logutil.GetLogger("[edit] ")

// Config keeps what the Editor depends on.
type Config struct {
	TTY  cli.TTY
	Host shdefs.Host
	St   *state.Store
	// ReportJobs collects status changes of background jobs and returns a
	// notification line for each. It is called when SIGCHLD arrives while a
	// line is being read. Optional.
	ReportJobs func() []string
}

// Editor is the interactive line editor of the shell.
type Editor struct {
	cli *cli.Editor
	hl  *highlight.Highlighter
}

// NewEditor creates a new editor. The Host is used for highlighting and
// completion, and for firing hooks. The history of the editor is the
// *histutil.History in the state, if there is one.
func NewEditor(cfg Config) *Editor {
	ed := &Editor{}
	spec := cli.EditorSpec{TTY: cfg.TTY, St: cfg.St}

	initHistory(&spec, cfg.St)
	initHighlighter(&spec, ed, cfg.Host, cfg.St)
	initPrompts(&spec)
	initCompletion(&spec, cfg.Host)
	initModes(&spec, cfg.Host, cfg.St)
	initJobNotifications(&spec, cfg.ReportJobs)
	ed.cli = cli.NewEditor(spec)
	return ed
}

// ReadCode reads a command line from the user.
func (ed *Editor) ReadCode() (string, error) {
	// Commands may have been defined or installed since the last line.
	ed.hl.InvalidateCache()
	return ed.cli.ReadLine()
}

// Notify adds a note to the notification buffer.
func (ed *Editor) Notify(note ui.Text) {
	ed.cli.Notify(note)
}

func initJobNotifications(spec *cli.EditorSpec, report func() []string) {
	if report == nil {
		return
	}
	spec.OnChildChanged = func(ed *cli.Editor) {
		for _, line := range report() {
			ed.Notify(ui.T(line))
		}
	}
}
