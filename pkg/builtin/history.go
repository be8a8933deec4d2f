package builtin

import (
	"fmt"
	"strconv"
	"strings"

	"src.kesh.sh/pkg/histutil"
	"src.kesh.sh/pkg/shell/shdefs"
	"src.kesh.sh/pkg/state"
)

func history(_ shdefs.Host, st *state.Store, args []string) shdefs.CmdOutput {
	h, ok := state.Lookup[*histutil.History](st)
	if !ok {
		return shdefs.CmdOutput{}
	}
	entries := h.Entries()
	switch len(args) {
	case 0:
	case 1:
		if args[0] == "-c" {
			if err := h.Clear(); err != nil {
				return errorf("history", 1, "%v", err)
			}
			return shdefs.CmdOutput{}
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return errorf("history", 2, "%s: numeric argument required", args[0])
		}
		if n < len(entries) {
			entries = entries[len(entries)-n:]
		}
	default:
		return errorf("history", 1, "too many arguments")
	}
	first := h.Len() - len(entries) + 1
	var sb strings.Builder
	for i, e := range entries {
		fmt.Fprintf(&sb, "%5d  %s\n", first+i, e.Text)
	}
	return shdefs.Ok(sb.String())
}
