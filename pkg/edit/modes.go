package edit

import (
	"src.kesh.sh/pkg/cli"
	"src.kesh.sh/pkg/hook"
	"src.kesh.sh/pkg/shell/shdefs"
	"src.kesh.sh/pkg/state"
)

func initModes(spec *cli.EditorSpec, sh shdefs.Host, st *state.Store) {
	spec.InitialMode = func() cli.Mode {
		if opts, ok := state.Lookup[*shdefs.Options](st); ok && opts.ViNormal {
			return cli.Normal
		}
		return cli.Insert
	}
	if sh == nil {
		return
	}
	spec.OnModeSwitch = func(m cli.Mode) {
		if hooks := sh.Hooks(); hooks != nil {
			hook.Fire(hooks, st, hook.LineModeSwitch{Mode: m.String()})
		}
	}
	if lang := sh.Lang(); lang != nil {
		spec.Incomplete = func(code string) bool { return lang.NeedsLineCheck(sh, st, code) }
	}
}
