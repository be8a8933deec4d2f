package edit

import (
	"os"
	"path/filepath"

	"src.kesh.sh/pkg/alias"
	"src.kesh.sh/pkg/cli"
	"src.kesh.sh/pkg/edit/highlight"
	"src.kesh.sh/pkg/env"
	"src.kesh.sh/pkg/eval"
	"src.kesh.sh/pkg/fsutil"
	"src.kesh.sh/pkg/shell/shdefs"
	"src.kesh.sh/pkg/state"
)

func initHighlighter(spec *cli.EditorSpec, ed *Editor, sh shdefs.Host, st *state.Store) {
	ed.hl = highlight.NewHighlighter(highlight.Config{
		HasCommand: func(cmd string) bool { return hasCommand(sh, st, cmd) },
	})
	spec.Highlighter = ed.hl.Get
}

func hasCommand(sh shdefs.Host, st *state.Store, cmd string) bool {
	if eval.IsSpecialForm(cmd) {
		return true
	}
	if fsutil.DontSearch(cmd) {
		return isExecutableFile(st, cmd)
	}
	if sh != nil {
		if _, ok := sh.Builtins().Lookup(cmd); ok {
			return true
		}
	}
	if fns, ok := state.Lookup[*eval.Functions](st); ok {
		if _, ok := fns.Lookup(cmd); ok {
			return true
		}
	}
	if t, ok := state.Lookup[*alias.Table](st); ok {
		if _, ok := t.Lookup(st, cmd); ok {
			return true
		}
	}
	_, err := fsutil.LookPath(cmd, getenv(st, env.PATH))
	return err == nil
}

func isExecutableFile(st *state.Store, path string) bool {
	if !filepath.IsAbs(path) {
		path = filepath.Join(eval.Cwd(st), path)
	}
	stat, err := os.Stat(path)
	return err == nil && fsutil.IsExecutable(stat)
}
