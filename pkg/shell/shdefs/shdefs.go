// Package shdefs contains definitions shared by the shell and the packages it
// wires together: the language adapter, the host interface seen by builtins,
// the builtin registry and shell options.
package shdefs

import (
	"src.kesh.sh/pkg/hook"
	"src.kesh.sh/pkg/job"
	"src.kesh.sh/pkg/state"
)

// CmdOutput is the result of running a command line or a builtin.
type CmdOutput struct {
	Status int
	// Output of builtins. External commands write to the terminal directly
	// and leave these empty. For a whole command line, this is a record of
	// what has already been written.
	Stdout string
	Stderr string
}

// Ok returns a successful CmdOutput with the given standard output.
func Ok(stdout string) CmdOutput { return CmdOutput{Stdout: stdout} }

// Fail returns a CmdOutput with the given status and error message. A
// non-empty message without a final newline gets one.
func Fail(status int, stderr string) CmdOutput {
	if stderr != "" && stderr[len(stderr)-1] != '\n' {
		stderr += "\n"
	}
	return CmdOutput{Status: status, Stderr: stderr}
}

// Lang is a command language.
type Lang interface {
	// Name returns the name of the language.
	Name() string
	// Eval evaluates a complete command line.
	Eval(sh Host, st *state.Store, line string) CmdOutput
	// NeedsLineCheck reports whether line is incomplete and the editor
	// should read a continuation line.
	NeedsLineCheck(sh Host, st *state.Store, line string) bool
}

// Host is the part of the shell visible to builtins and languages.
type Host interface {
	Lang() Lang
	Builtins() *Registry
	Hooks() *hook.Bus
	Launcher() *job.Launcher
}
