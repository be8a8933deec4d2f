package edit

import (
	"src.kesh.sh/pkg/cli"
	"src.kesh.sh/pkg/eval"
	"src.kesh.sh/pkg/histutil"
	"src.kesh.sh/pkg/state"
)

func initHistory(spec *cli.EditorSpec, st *state.Store) {
	if h, ok := state.Lookup[*histutil.History](st); ok {
		spec.History = h
	}
	spec.Suggester = suggest
	spec.LastStatus = func() int {
		status, _ := state.Lookup[eval.LastStatus](st)
		return int(status)
	}
}

// Suggests the newest history entry that the buffer is a prefix of.
func suggest(lc *cli.LineCtx) string {
	if lc.History == nil || lc.Buffer.Content == "" {
		return ""
	}
	s, _ := lc.History.SearchPrefix(lc.Buffer.Content)
	return s
}
