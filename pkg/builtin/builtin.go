// Package builtin implements the builtin commands of kesh.
//
// Builtins receive the shell, the state store and their arguments (without
// the command name), and return their output as a shdefs.CmdOutput. The
// evaluator writes the output to the command's standard output and error.
package builtin

import (
	"fmt"
	"io"
	"strconv"

	"src.kesh.sh/pkg/eval"
	"src.kesh.sh/pkg/output"
	"src.kesh.sh/pkg/shell/shdefs"
	"src.kesh.sh/pkg/state"
)

// All returns the builtins, in the order help lists them.
func All() []*shdefs.Builtin {
	return []*shdefs.Builtin{
		{Name: ":", Usage: ": [arg ...]", Doc: "Do nothing and succeed.", Fn: trueFn},
		{Name: ".", Usage: ". file [arg ...]", Doc: "Same as source.", Fn: source},
		{Name: "alias", Usage: "alias [name[=value] ...]",
			Doc: "Define aliases, or print them.", Fn: aliasFn},
		{Name: "bg", Usage: "bg [job]", Doc: "Resume a stopped job in the background.", Fn: bg},
		{Name: "cd", Usage: "cd [dir | -]",
			Doc: "Change the working directory. Without an argument, go to $HOME; with -, go to $OLDPWD.",
			Fn:  cd},
		{Name: "echo", Usage: "echo [-n] [arg ...]", Doc: "Print the arguments.", Fn: echo},
		{Name: "exit", Usage: "exit [n]", Doc: "Exit the shell with status n, 0 by default.", Fn: exit},
		{Name: "export", Usage: "export [-p] [name[=value] ...]",
			Doc: "Mark variables for export to child processes, or print exported variables.",
			Fn:  export},
		{Name: "false", Usage: "false", Doc: "Fail with status 1.", Fn: falseFn},
		{Name: "fg", Usage: "fg [job]", Doc: "Bring a job to the foreground.", Fn: fg},
		{Name: "help", Usage: "help [name]", Doc: "List builtins, or describe one.", Fn: help},
		{Name: "history", Usage: "history [-c] [n]",
			Doc: "Print the command history, the last n entries only if n is given. With -c, clear it.",
			Fn:  history},
		{Name: "jobs", Usage: "jobs [-p]", Doc: "Print the job table. With -p, print process group IDs only.", Fn: jobs},
		{Name: "pwd", Usage: "pwd", Doc: "Print the working directory.", Fn: pwd},
		{Name: "set", Usage: "set [-o | +o] [option] [--] [arg ...]",
			Doc: "Set shell options, print them, or set the positional parameters.",
			Fn:  set},
		{Name: "source", Usage: "source file [arg ...]",
			Doc: "Evaluate a file in the current shell.", Fn: source},
		{Name: "true", Usage: "true", Doc: "Succeed.", Fn: trueFn},
		{Name: "type", Usage: "type name ...", Doc: "Describe how names would be run as commands.", Fn: typeFn},
		{Name: "unalias", Usage: "unalias [-a] name ...", Doc: "Remove aliases; with -a, all of them.", Fn: unalias},
		{Name: "unset", Usage: "unset [-f | -v] name ...", Doc: "Unset variables, or functions with -f.", Fn: unset},
		{Name: "wait", Usage: "wait [job | pid ...]",
			Doc: "Wait for background jobs, all of them by default.", Fn: wait},
	}
}

// Register adds all builtins to a registry.
func Register(reg *shdefs.Registry) error {
	for _, b := range All() {
		if err := reg.Register(b); err != nil {
			return err
		}
	}
	return nil
}

func errorf(name string, status int, format string, args ...any) shdefs.CmdOutput {
	return shdefs.Fail(status, output.Prefix+name+": "+fmt.Sprintf(format, args...))
}

func usageError(name string) shdefs.CmdOutput {
	return errorf(name, 2, "bad usage")
}

// Returns the file of the calling command for fd, for builtins that need to
// write before they return.
func port(st *state.Store, fd int) io.Writer {
	if p, ok := state.Lookup[*eval.Ports](st); ok && fd < len(p.Files) && p.Files[fd] != nil {
		return p.Files[fd]
	}
	return io.Discard
}

func parseStatus(name, s string) (int, shdefs.CmdOutput, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errorf(name, 2, "%s: numeric argument required", s), false
	}
	return n & 0xff, shdefs.CmdOutput{}, true
}
