package shell

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"src.kesh.sh/pkg/env"
	"src.kesh.sh/pkg/eval"
	"src.kesh.sh/pkg/fsutil"
	"src.kesh.sh/pkg/state"
)

// This type is the interface that the line editor has to satisfy. It is needed
// so that the interactive loop can fall back to the minimal editor.
type editor interface {
	ReadCode() (string, error)
}

// A line editor for when the terminal cannot be used. It prints a prompt and
// reads lines until a complete command has been read.
type minEditor struct {
	in         *bufio.Reader
	out        io.Writer
	st         *state.Store
	incomplete func(string) bool
}

func newMinEditor(in, out *os.File, st *state.Store, incomplete func(string) bool) *minEditor {
	return &minEditor{bufio.NewReader(in), out, st, incomplete}
}

func (ed *minEditor) ReadCode() (string, error) {
	home := ""
	if e, ok := state.Lookup[*env.Environ](ed.st); ok {
		home = e.Value(env.HOME)
	}
	fmt.Fprintf(ed.out, "%s> ", fsutil.TildeAbbr(eval.Cwd(ed.st), home))
	var sb strings.Builder
	for {
		line, err := ed.in.ReadString('\n')
		sb.WriteString(strings.TrimSuffix(line, "\n"))
		if err != nil {
			if err == io.EOF && sb.Len() > 0 {
				return sb.String(), nil
			}
			return "", err
		}
		if ed.incomplete == nil || !ed.incomplete(sb.String()) {
			return sb.String(), nil
		}
		sb.WriteByte('\n')
		fmt.Fprint(ed.out, "> ")
	}
}
