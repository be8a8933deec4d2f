// Package shell is the entry point for the terminal interface of kesh.
package shell

import (
	"fmt"
	"os"

	"src.kesh.sh/pkg/logutil"
	"src.kesh.sh/pkg/output"
	"src.kesh.sh/pkg/prog"
	"src.kesh.sh/pkg/sys"
)

var logger = logutil.GetLogger("[shell] ")

// Program is the shell program.
type Program struct{}

func (p Program) Run(fds [3]*os.File, f *prog.Flags, args []string) error {
	switch {
	case f.CodeInArg:
		if len(args) == 0 {
			return prog.BadUsage("-c requires an argument")
		}
		zero, rest := "kesh", args[1:]
		if len(rest) > 0 {
			zero, rest = rest[0], rest[1:]
		}
		return prog.Exit(Script(fds, &ScriptConfig{
			Name: "[-c]", Code: args[0], Zero: zero, Args: rest}))
	case len(args) > 0:
		return prog.Exit(Script(fds, &ScriptConfig{
			Path: args[0], Zero: args[0], Args: args[1:]}))
	case !f.Interactive && !sys.IsATTY(fds[0].Fd()):
		return prog.Exit(Script(fds, &ScriptConfig{
			Name: "[stdin]", Stdin: true, Zero: "kesh"}))
	}

	cfg := &InteractConfig{Flags: *f}
	if !f.NoRc {
		rc := f.RC
		if rc == "" {
			var err error
			rc, err = RCPath()
			if err != nil {
				newOutput(fds).Warnf("%v", err)
			}
		}
		cfg.RC = rc
	}
	return prog.Exit(Interact(fds, cfg))
}

func newOutput(fds [3]*os.File) *output.Writer {
	return output.New(fds[1], fds[2])
}

func describeFds(fds [3]*os.File) string {
	return fmt.Sprintf("stdin=%s stdout=%s stderr=%s", fds[0].Name(), fds[1].Name(), fds[2].Name())
}
