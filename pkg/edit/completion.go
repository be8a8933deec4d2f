package edit

import (
	"strings"

	"src.kesh.sh/pkg/alias"
	"src.kesh.sh/pkg/cli"
	"src.kesh.sh/pkg/complete"
	"src.kesh.sh/pkg/eval"
	"src.kesh.sh/pkg/shell/shdefs"
	"src.kesh.sh/pkg/state"
	"src.kesh.sh/pkg/ui"
)

func initCompletion(spec *cli.EditorSpec, sh shdefs.Host) {
	spec.Completer = completer(completionRules(sh))
	if spec.Bindings == nil {
		spec.Bindings = cli.Bindings{}
	}
	historyCompleter := completer([]complete.Rule{{Name: "history", Gen: complete.History()}})
	err := spec.Bindings.Add(ui.K('R', ui.Ctrl), "Complete the line from history",
		func(ed *cli.Editor) { ed.Complete(historyCompleter) })
	if err != nil {
		logger.Println("history completion not bound:", err)
	}
}

func completer(rules []complete.Rule) func(*cli.LineCtx) (*complete.Result, error) {
	return func(lc *cli.LineCtx) (*complete.Result, error) {
		ctx, ok := complete.NewCtx(lc.Buffer.Content, lc.Buffer.Dot, lc.St)
		if !ok {
			return nil, complete.ErrNoCompletion
		}
		return complete.Complete(ctx, rules)
	}
}

// Flags of builtins.
var builtinFlags = map[string][]complete.Flag{
	"echo":    {{Short: 'n', Doc: "no trailing newline"}},
	"history": {{Short: 'c', Doc: "clear"}},
	"jobs":    {{Short: 'p', Doc: "process group IDs only"}},
	"unalias": {{Short: 'a', Doc: "remove all"}},
	"set":     {{Short: 'o', Doc: "enable option"}, {Short: 'e'}, {Short: 'u'}, {Short: 'f'}, {Short: 'C'}, {Short: 'x'}},
}

func completionRules(sh shdefs.Host) []complete.Rule {
	rules := []complete.Rule{
		{Name: "redirection", Pred: complete.InRedirTarget, Gen: complete.Files(cwd)},
		{Name: "option", Pred: isOptionName, Gen: optionNames},
	}
	if sh != nil {
		rules = append(rules, complete.Rule{
			Name: "builtin", Pred: complete.InCommandPos,
			Gen: complete.Builtins(sh.Builtins()), Merge: true})
	}
	rules = append(rules,
		complete.Rule{Name: "function", Pred: complete.InCommandPos, Gen: functionNames, Merge: true},
		complete.Rule{Name: "alias", Pred: complete.InCommandPos, Gen: aliasNames, Merge: true},
		complete.Rule{Name: "external", Pred: complete.InCommandPos, Gen: complete.Commands()},
		complete.Rule{Name: "directory", Pred: complete.ArgOf("cd"), Gen: directories},
	)
	for name, flags := range builtinFlags {
		rules = append(rules, complete.Rule{
			Name: name + "-flag", Pred: complete.And(complete.ArgOf(name), complete.IsFlag),
			Gen: complete.Flags(flags...)})
	}
	return append(rules, complete.Rule{Name: "file", Gen: complete.Files(cwd)})
}

func cwd(ctx *complete.Ctx) string { return eval.Cwd(ctx.St) }

func functionNames(ctx *complete.Ctx) ([]complete.Completion, error) {
	if fns, ok := state.Lookup[*eval.Functions](ctx.St); ok {
		return ctx.Match(fns.Names()...), nil
	}
	return nil, nil
}

func aliasNames(ctx *complete.Ctx) ([]complete.Completion, error) {
	if t, ok := state.Lookup[*alias.Table](ctx.St); ok {
		return ctx.Match(t.Names()...), nil
	}
	return nil, nil
}

// Only directories, for cd.
func directories(ctx *complete.Ctx) ([]complete.Completion, error) {
	items, err := complete.Files(cwd)(ctx)
	dirs := items[:0]
	for _, item := range items {
		if strings.HasSuffix(item.Replacement, "/") {
			dirs = append(dirs, item)
		}
	}
	return dirs, err
}

// Matches the word after "set -o" or "set +o".
func isOptionName(ctx *complete.Ctx) bool {
	if !complete.ArgOf("set")(ctx) || len(ctx.Words) < 2 {
		return false
	}
	prev := ctx.Words[len(ctx.Words)-2]
	return prev == "-o" || prev == "+o"
}

func optionNames(ctx *complete.Ctx) ([]complete.Completion, error) {
	opts, ok := state.Lookup[*shdefs.Options](ctx.St)
	if !ok {
		opts = &shdefs.Options{}
	}
	return ctx.Match(opts.Names()...), nil
}
