package alias

import (
	"strings"
	"testing"

	"src.kesh.sh/pkg/state"
	"src.kesh.sh/pkg/tt"
)

type inGitRepo bool

func TestTable(t *testing.T) {
	tab := NewTable()
	st := state.New()
	state.Put(st, inGitRepo(false))

	tab.Add("st", Info{"git status", func(st *state.Store) bool {
		return bool(state.Get[inGitRepo](st))
	}})
	tab.Add("st", Info{Expansion: "stat ."})
	tab.Set("ll", "ls -al")

	tt.Test(t, tt.Fn("Lookup", tab.Lookup), tt.Table{
		tt.Args(st, "st").Rets("stat .", true),
		tt.Args(st, "ll").Rets("ls -al", true),
		tt.Args(st, "nope").Rets("", false),
	})
	state.Put(st, inGitRepo(true))
	if exp, _ := tab.Lookup(st, "st"); exp != "git status" {
		t.Errorf("predicate not honored, got %q", exp)
	}

	if got := strings.Join(tab.Names(), ","); got != "ll,st" {
		t.Errorf("Names -> %s", got)
	}
	clone := tab.CloneState().(*Table)
	if !tab.Remove("ll") || tab.Remove("ll") {
		t.Errorf("Remove reported wrongly")
	}
	if _, ok := clone.Lookup(st, "ll"); !ok {
		t.Errorf("clone affected by Remove")
	}
	tab.Clear()
	if tab.Len() != 0 {
		t.Errorf("Clear left %d aliases", tab.Len())
	}
}

func TestExpand(t *testing.T) {
	tab := NewTable()
	tab.Set("ll", "ls -al")
	tab.Set("ls", "ls --color")
	tab.Set("a", "b")
	tab.Set("b", "a")
	tab.Set("sudo", "sudo ")
	tab.Set("x", "echo x; ll")
	st := state.New()

	expand := func(line string) string { return Expand(tab, st, line) }
	tt.Test(t, tt.Fn("Expand", expand), tt.Table{
		tt.Args("ll").Rets("ls --color -al"),
		tt.Args("ll /tmp").Rets("ls --color -al /tmp"),
		tt.Args("echo ll").Rets("echo ll"),
		tt.Args("true && ll | ll").Rets("true && ls --color -al | ls --color -al"),
		tt.Args("A=1 ll").Rets("A=1 ls --color -al"),
		tt.Args(`\ll`).Rets(`\ll`),
		tt.Args("'ll'").Rets("'ll'"),
		tt.Args("a").Rets("a"),
		tt.Args("sudo ll").Rets("sudo  ls --color -al"),
		tt.Args("sudo echo ll").Rets("sudo  echo ll"),
		tt.Args("x").Rets("echo x; ls --color -al"),
		tt.Args("if ll; then ll; fi").Rets("if ls --color -al; then ls --color -al; fi"),
	})
}

func TestExpand_DepthLimit(t *testing.T) {
	tab := NewTable()
	// Each alias expands to a distinct next one, so only the depth limit
	// stops the chain.
	for i := 0; i < 100; i++ {
		tab.Set(name(i), name(i+1))
	}
	got := Expand(tab, state.New(), name(0))
	if got != name(MaxDepth) {
		t.Errorf("Expand stopped at %q, want %q", got, name(MaxDepth))
	}
}

func name(i int) string {
	return "a" + strings.Repeat("x", i)
}
