package edit

import (
	"os"
	"strconv"

	"src.kesh.sh/pkg/cli"
	"src.kesh.sh/pkg/env"
	"src.kesh.sh/pkg/eval"
	"src.kesh.sh/pkg/fsutil"
	"src.kesh.sh/pkg/state"
	"src.kesh.sh/pkg/ui"
)

func initPrompts(spec *cli.EditorSpec) {
	spec.Prompt = prompt
	spec.RPrompt = rprompt
	spec.ContinuationPrompt = continuationPrompt
}

// The default prompt: the working directory with the home directory
// abbreviated, and a sign colored by the status of the last command.
func prompt(lc *cli.LineCtx) ui.Text {
	cwd := fsutil.TildeAbbr(eval.Cwd(lc.St), getenv(lc.St, env.HOME))
	signStyle := ui.FgGreen
	if lc.LastStatus != 0 {
		signStyle = ui.FgRed
	}
	return ui.T(cwd, ui.FgBlue).Concat(ui.T(" ")).
		Concat(ui.T(promptSign(), signStyle, ui.Bold)).Concat(ui.T(" "))
}

func promptSign() string {
	if os.Geteuid() == 0 {
		return "#"
	}
	return "$"
}

// The right prompt shows a non-zero status of the last command and the
// normal mode.
func rprompt(lc *cli.LineCtx) ui.Text {
	var t ui.Text
	if lc.LastStatus != 0 {
		t = ui.T("["+strconv.Itoa(lc.LastStatus)+"]", ui.FgRed)
	}
	if lc.Mode == cli.Normal {
		if len(t) > 0 {
			t = t.Concat(ui.T(" "))
		}
		t = t.Concat(ui.T(" NORMAL ", ui.Inverse))
	}
	return t
}

func continuationPrompt(lc *cli.LineCtx) ui.Text {
	if ps2, ok := lookupEnv(lc.St, env.PS2); ok {
		return ui.T(ps2)
	}
	return ui.T("> ")
}

func lookupEnv(st *state.Store, name string) (string, bool) {
	if e, ok := state.Lookup[*env.Environ](st); ok {
		return e.Get(name)
	}
	return os.LookupEnv(name)
}

func getenv(st *state.Store, name string) string {
	v, _ := lookupEnv(st, name)
	return v
}
