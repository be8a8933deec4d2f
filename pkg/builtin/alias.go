package builtin

import (
	"strings"

	"src.kesh.sh/pkg/alias"
	"src.kesh.sh/pkg/parse"
	"src.kesh.sh/pkg/shell/shdefs"
	"src.kesh.sh/pkg/state"
)

func aliasFn(_ shdefs.Host, st *state.Store, args []string) shdefs.CmdOutput {
	t := state.GetOr(st, alias.NewTable)
	if len(args) == 0 {
		var sb strings.Builder
		for _, name := range t.Names() {
			if exp, ok := t.Lookup(st, name); ok {
				sb.WriteString(formatAlias(name, exp))
			}
		}
		return shdefs.Ok(sb.String())
	}
	var out shdefs.CmdOutput
	for _, arg := range args {
		name, exp, define := strings.Cut(arg, "=")
		if define {
			if name == "" || strings.ContainsAny(name, " \t\n/$`'\"\\") {
				out.Status = 1
				out.Stderr += "kesh: alias: " + parse.Quote(name) + ": invalid alias name\n"
				continue
			}
			t.Set(name, exp)
			continue
		}
		if exp, ok := t.Lookup(st, name); ok {
			out.Stdout += formatAlias(name, exp)
		} else {
			out.Status = 1
			out.Stderr += "kesh: alias: " + name + ": not found\n"
		}
	}
	return out
}

func formatAlias(name, exp string) string {
	return "alias " + name + "=" + parse.Quote(exp) + "\n"
}

func unalias(_ shdefs.Host, st *state.Store, args []string) shdefs.CmdOutput {
	t := state.GetOr(st, alias.NewTable)
	if len(args) == 0 {
		return usageError("unalias")
	}
	if args[0] == "-a" {
		t.Clear()
		return shdefs.CmdOutput{}
	}
	var out shdefs.CmdOutput
	for _, name := range args {
		if !t.Remove(name) {
			out.Status = 1
			out.Stderr += "kesh: unalias: " + name + ": not found\n"
		}
	}
	return out
}
