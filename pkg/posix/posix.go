// Package posix implements the default command language of kesh, a subset of
// the POSIX shell language.
package posix

import (
	"fmt"
	"strings"

	"src.kesh.sh/pkg/alias"
	"src.kesh.sh/pkg/eval"
	"src.kesh.sh/pkg/hook"
	"src.kesh.sh/pkg/logutil"
	"src.kesh.sh/pkg/output"
	"src.kesh.sh/pkg/parse"
	"src.kesh.sh/pkg/shell/shdefs"
	"src.kesh.sh/pkg/sig"
	"src.kesh.sh/pkg/state"
)

var logger = logutil.GetLogger("[posix] ")

// Lang is the POSIX language adapter. The zero value is ready to use.
type Lang struct {
	// Name of the source used in error messages; "[command]" if empty.
	Source string
}

var _ shdefs.Lang = Lang{}

// Name returns "posix".
func (Lang) Name() string { return "posix" }

// Eval evaluates a command line. Complete commands are evaluated one by one,
// so that aliases defined by one command apply to the following lines. Each
// is alias-expanded, announced with the BeforeCommand hook, parsed and
// evaluated.
//
// Everything is written to the ports in st as it happens. The returned
// CmdOutput records the status and the output of builtins.
func (l Lang) Eval(sh shdefs.Host, st *state.Store, line string) shdefs.CmdOutput {
	sig.TakeInterrupted()
	var (
		capture eval.Capture
		status  int
		chunk   strings.Builder
	)
	flush := func() bool {
		text := chunk.String()
		chunk.Reset()
		status = l.evalChunk(sh, st, text, &capture)
		_, exit := eval.ExitRequested(st)
		return !exit && !sig.Interrupted()
	}
	for _, ln := range strings.SplitAfter(line, "\n") {
		chunk.WriteString(ln)
		if _, err := parse.Parse(l.source(), chunk.String()); parse.IsIncomplete(err) {
			continue
		}
		if !flush() {
			break
		}
	}
	if chunk.Len() > 0 {
		flush()
	}
	stdout, stderr := capture.Output()
	return shdefs.CmdOutput{Status: status, Stdout: stdout, Stderr: stderr}
}

func (l Lang) source() string {
	if l.Source == "" {
		return "[command]"
	}
	return l.Source
}

func (l Lang) evalChunk(sh shdefs.Host, st *state.Store, text string, c *eval.Capture) int {
	if strings.TrimSpace(text) == "" {
		return lastStatus(st)
	}
	expanded := text
	if t, ok := state.Lookup[*alias.Table](st); ok {
		expanded = alias.Expand(t, st, text)
	}
	if hooks := sh.Hooks(); hooks != nil {
		hook.Fire(hooks, st, hook.BeforeCommand{Line: text, Expanded: expanded})
	}
	list, err := parse.Parse(l.source(), expanded)
	if err != nil {
		logger.Printf("parse %q: %v", expanded, err)
		reportError(st, err, c)
		state.Put(st, eval.LastStatus(2))
		return 2
	}
	return eval.EvalCapture(sh, st, list, c)
}

func lastStatus(st *state.Store) int {
	s, _ := state.Lookup[eval.LastStatus](st)
	return int(s)
}

func reportError(st *state.Store, err error, c *eval.Capture) {
	ports := state.GetOr(st, eval.StdPorts)
	stderr := ports.Files[2]
	if out, ok := state.Lookup[*output.Writer](st); ok && out.Err == stderr {
		out.Error(err)
	} else if stderr != nil {
		fmt.Fprintln(stderr, err)
	}
	c.Add(shdefs.CmdOutput{Stderr: err.Error() + "\n"})
}

// NeedsLineCheck reports whether line is an incomplete command: it ends with
// a line continuation or the parser ran out of input in the middle of a
// construct.
func (l Lang) NeedsLineCheck(_ shdefs.Host, _ *state.Store, line string) bool {
	if endsWithContinuation(line) {
		return true
	}
	_, err := parse.Parse(l.source(), line)
	return parse.IsIncomplete(err)
}

// Reports whether s ends with an odd number of backslashes.
func endsWithContinuation(s string) bool {
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == '\\'; i-- {
		n++
	}
	return n%2 == 1
}
