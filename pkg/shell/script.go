package shell

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"unicode/utf8"
)

// ScriptConfig keeps configuration for the script mode.
type ScriptConfig struct {
	// Path of the script file. If empty, the script is Code, or stdin when
	// Stdin is true.
	Path  string
	Code  string
	Stdin bool
	// Name of the source in error messages when Path is empty.
	Name string
	// $0 and the positional parameters.
	Zero string
	Args []string
}

// Script executes a shell script non-interactively. It returns the exit
// status of the shell.
func Script(fds [3]*os.File, cfg *ScriptConfig) int {
	name, code := cfg.Name, cfg.Code
	switch {
	case cfg.Path != "":
		var err error
		name = cfg.Path
		code, err = readFileUTF8(cfg.Path)
		if err != nil {
			newOutput(fds).Errorf("cannot read script %q: %v", cfg.Path, err)
			return scriptErrorStatus(err)
		}
	case cfg.Stdin:
		bs, err := io.ReadAll(fds[0])
		if err != nil {
			newOutput(fds).Errorf("cannot read stdin: %v", err)
			return 2
		}
		if !utf8.Valid(bs) {
			newOutput(fds).Errorf("cannot read stdin: %v", errSourceNotUTF8)
			return 2
		}
		code = string(bs)
	}

	sh := NewShell(fds, ShellConfig{Source: name, Zero: cfg.Zero, Args: cfg.Args})
	defer func() {
		if err := sh.Close(); err != nil {
			sh.out.Error(err)
		}
	}()
	sh.EvalLine(code)
	return sh.ExitStatus()
}

// Exit statuses for unreadable scripts follow those of commands: 127 when the
// file does not exist and 126 when it cannot be read.
func scriptErrorStatus(err error) int {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return 127
	case errors.Is(err, fs.ErrPermission):
		return 126
	default:
		return 2
	}
}

var errSourceNotUTF8 = errors.New("source is not UTF-8")

func readFileUTF8(fname string) (string, error) {
	bytes, err := os.ReadFile(fname)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(bytes) {
		return "", errSourceNotUTF8
	}
	return string(bytes), nil
}
