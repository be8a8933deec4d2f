package complete

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"src.kesh.sh/pkg/diag"
	"src.kesh.sh/pkg/env"
	"src.kesh.sh/pkg/histutil"
	"src.kesh.sh/pkg/state"
	"src.kesh.sh/pkg/testutil"
	"src.kesh.sh/pkg/tt"
)

type ctxSummary struct {
	CurWord     string
	Seed        string
	Span        diag.Ranging
	Words       []string
	CommandPos  bool
	RedirTarget bool
}

func summarize(line string) (ctxSummary, bool) {
	ctx, ok := NewCtx(line, len(line), nil)
	if !ok {
		return ctxSummary{}, false
	}
	return ctxSummary{ctx.CurWord, ctx.Seed, ctx.Span, ctx.Words, ctx.CommandPos, ctx.RedirTarget}, true
}

func TestNewCtx(t *testing.T) {
	tt.Test(t, tt.Fn("summarize", summarize), tt.Table{
		tt.Args("ec").Rets(ctxSummary{
			CurWord: "ec", Seed: "ec", Span: diag.Ranging{From: 0, To: 2},
			Words: []string{"ec"}, CommandPos: true}, true),
		tt.Args("echo fo").Rets(ctxSummary{
			CurWord: "fo", Seed: "fo", Span: diag.Ranging{From: 5, To: 7},
			Words: []string{"echo", "fo"}}, true),
		tt.Args("echo ").Rets(ctxSummary{
			Span: diag.Ranging{From: 5, To: 5}, Words: []string{"echo", ""}}, true),
		tt.Args("ls | gr").Rets(ctxSummary{
			CurWord: "gr", Seed: "gr", Span: diag.Ranging{From: 5, To: 7},
			Words: []string{"gr"}, CommandPos: true}, true),
		tt.Args("FOO=1 ec").Rets(ctxSummary{
			CurWord: "ec", Seed: "ec", Span: diag.Ranging{From: 6, To: 8},
			Words: []string{"FOO=1", "ec"}, CommandPos: true}, true),
		tt.Args("cat < fi").Rets(ctxSummary{
			CurWord: "fi", Seed: "fi", Span: diag.Ranging{From: 6, To: 8},
			Words: []string{"cat", "fi"}, RedirTarget: true}, true),
		tt.Args("cat <in x").Rets(ctxSummary{
			CurWord: "x", Seed: "x", Span: diag.Ranging{From: 8, To: 9},
			Words: []string{"cat", "x"}}, true),
		tt.Args("echo 'a b").Rets(ctxSummary{
			CurWord: "'a b", Seed: "a b", Span: diag.Ranging{From: 5, To: 9},
			Words: []string{"echo", "'a b"}}, true),
		tt.Args(`echo a\ b`).Rets(ctxSummary{
			CurWord: `a\ b`, Seed: "a b", Span: diag.Ranging{From: 5, To: 9},
			Words: []string{"echo", `a\ b`}}, true),
		tt.Args("if tr").Rets(ctxSummary{
			CurWord: "tr", Seed: "tr", Span: diag.Ranging{From: 3, To: 5},
			Words: []string{"if", "tr"}, CommandPos: true}, true),
		tt.Args("echo # com").Rets(ctxSummary{}, false),
	})
}

func TestNewCtx_CursorInsideWord(t *testing.T) {
	ctx, ok := NewCtx("echo hello", 7, nil)
	if !ok {
		t.Fatalf("NewCtx returned false")
	}
	if ctx.CurWord != "he" || ctx.Span != (diag.Ranging{From: 5, To: 7}) {
		t.Errorf("got CurWord %q, Span %v", ctx.CurWord, ctx.Span)
	}
}

func TestUnquote(t *testing.T) {
	tt.Test(t, tt.Fn("Unquote", Unquote), tt.Table{
		tt.Args("abc").Rets("abc"),
		tt.Args(`a\ b`).Rets("a b"),
		tt.Args(`'a b'c`).Rets("a bc"),
		tt.Args(`"a \"b\" \c"`).Rets(`a "b" \c`),
		tt.Args(`'unterminated`).Rets("unterminated"),
		tt.Args(`"unterminated`).Rets("unterminated"),
		tt.Args(`$HOME/x`).Rets("$HOME/x"),
	})
}

func mustCtx(t *testing.T, line string, st *state.Store) *Ctx {
	t.Helper()
	ctx, ok := NewCtx(line, len(line), st)
	if !ok {
		t.Fatalf("NewCtx(%q) returned false", line)
	}
	return ctx
}

func replacements(items []Completion) []string {
	var rs []string
	for _, item := range items {
		rs = append(rs, item.Replacement)
	}
	return rs
}

func TestComplete_FirstMatchingRuleWins(t *testing.T) {
	rules := []Rule{
		{Name: "never", Pred: func(*Ctx) bool { return false }, Gen: Fixed("never")},
		{Name: "first", Gen: Fixed("foo", "far", "bar")},
		{Name: "second", Gen: Fixed("fun")},
	}
	r, err := Complete(mustCtx(t, "echo f", nil), rules)
	if err != nil {
		t.Fatal(err)
	}
	if r.Name != "first" {
		t.Errorf("got rule %q, want first", r.Name)
	}
	if diff := cmp.Diff([]string{"far", "foo"}, replacements(r.Items)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestComplete_Merge(t *testing.T) {
	rules := []Rule{
		{Name: "first", Gen: Fixed("foo", "dup"), Merge: true},
		{Name: "skipped", Pred: func(*Ctx) bool { return false }, Gen: Fixed("fskip")},
		{Name: "second", Gen: Fixed("fun", "dup")},
		{Name: "third", Gen: Fixed("fin")},
	}
	r, err := Complete(mustCtx(t, "echo ", nil), rules)
	if err != nil {
		t.Fatal(err)
	}
	// fin is not generated: second does not merge.
	if diff := cmp.Diff([]string{"dup", "foo", "fun"}, replacements(r.Items)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestComplete_NoRule(t *testing.T) {
	rules := []Rule{{Pred: InCommandPos, Gen: Fixed("x")}}
	_, err := Complete(mustCtx(t, "echo ", nil), rules)
	if err != ErrNoCompletion {
		t.Errorf("got error %v, want ErrNoCompletion", err)
	}
}

func TestComplete_GeneratorErrorIsNotFatal(t *testing.T) {
	rules := []Rule{
		{Name: "bad", Merge: true, Gen: func(*Ctx) ([]Completion, error) {
			return nil, errors.New("bad")
		}},
		{Name: "good", Gen: Fixed("ok")},
	}
	r, err := Complete(mustCtx(t, "echo ", nil), rules)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"ok"}, replacements(r.Items)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestComplete_OrderIsCaseSensitive(t *testing.T) {
	r, _ := Complete(mustCtx(t, "x ", nil), []Rule{{Gen: Fixed("b", "B", "a", "A", "a")}})
	if diff := cmp.Diff([]string{"A", "B", "a", "b"}, replacements(r.Items)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func setupFiles(t *testing.T) string {
	dir := testutil.InTempDir(t)
	testutil.ApplyDir(testutil.Dir{
		"a.exe":      testutil.File{Perm: 0755, Content: ""},
		"a.txt":      "",
		"b c":        "",
		".hidden":    "",
		"d":          testutil.Dir{"inner": "", "x.exe": testutil.File{Perm: 0755}},
		"dir2":       testutil.Dir{},
		"other-file": "",
	})
	return dir
}

func generate(t *testing.T, gen Generator, line string, st *state.Store) []string {
	t.Helper()
	items, err := gen(mustCtx(t, line, st))
	if err != nil {
		t.Fatal(err)
	}
	return replacements(sortAndDedup(items))
}

func TestFiles(t *testing.T) {
	dir := setupFiles(t)
	tests := []struct {
		line string
		want []string
	}{
		{"cat a", []string{"a.exe", "a.txt"}},
		{"cat ", []string{"'b c'", "a.exe", "a.txt", "d/", "dir2/", "other-file"}},
		{"cat .", []string{".hidden"}},
		{"cat d", []string{"d/", "dir2/"}},
		{"cat d/", []string{"d/inner", "d/x.exe"}},
		{"cat 'b", []string{"'b c'"}},
		{"cat nope", nil},
	}
	for _, test := range tests {
		got := generate(t, Files(nil), test.line, nil)
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("%q (-want +got):\n%s", test.line, diff)
		}
	}

	// A base directory.
	testutil.InTempDir(t)
	got := generate(t, Files(func(*Ctx) string { return dir }), "cat d/i", nil)
	if diff := cmp.Diff([]string{"d/inner"}, got); diff != "" {
		t.Errorf("with base (-want +got):\n%s", diff)
	}
}

func TestFiles_MissingDirectory(t *testing.T) {
	testutil.InTempDir(t)
	_, err := Files(nil)(mustCtx(t, "cat nope/x", nil))
	if err == nil {
		t.Errorf("got nil error for missing directory")
	}
}

func TestFiles_Tilde(t *testing.T) {
	home := setupFiles(t)
	st := state.New()
	e := env.New()
	e.Set(env.HOME, home)
	state.Put(st, e)
	got := generate(t, Files(nil), "cat ~/d/", st)
	if diff := cmp.Diff([]string{"~/d/inner", "~/d/x.exe"}, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestExecutables(t *testing.T) {
	setupFiles(t)
	got := generate(t, Executables(nil), "./", nil)
	if diff := cmp.Diff([]string{"./a.exe", "./d/", "./dir2/"}, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestCommands(t *testing.T) {
	dir := setupFiles(t)
	st := state.New()
	e := env.New()
	e.Set(env.PATH, filepath.Join(dir, "d")+":"+dir)
	state.Put(st, e)

	got := generate(t, Commands(), "x", st)
	if diff := cmp.Diff([]string{"x.exe"}, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	got = generate(t, Commands(), "", st)
	if diff := cmp.Diff([]string{"a.exe", "x.exe"}, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	// Paths complete executables relative to the working directory.
	got = generate(t, Commands(), "d/", st)
	if diff := cmp.Diff([]string{"d/x.exe"}, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

type fakeRegistry []string

func (r fakeRegistry) Names() []string { return r }

func TestBuiltins(t *testing.T) {
	got := generate(t, Builtins(fakeRegistry{"cd", "echo", "exit", "export"}), "ex", nil)
	if diff := cmp.Diff([]string{"exit", "export"}, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestFlags(t *testing.T) {
	gen := Flags(
		Flag{Short: 'a', Long: "all", Doc: "show all"},
		Flag{Short: 'l'},
		Flag{Long: "color"},
	)
	tests := []struct {
		line string
		want []string
	}{
		{"ls -", []string{"--all", "--color", "-a", "-l"}},
		{"ls --", []string{"--all", "--color"}},
		{"ls --c", []string{"--color"}},
		{"ls -l", []string{"-l"}},
	}
	for _, test := range tests {
		got := generate(t, gen, test.line, nil)
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("%q (-want +got):\n%s", test.line, diff)
		}
	}

	items, _ := gen(mustCtx(t, "ls --a", nil))
	if len(items) != 1 || items[0].Display != "--all (show all)" {
		t.Errorf("got %v, want one item displayed with its doc", items)
	}
}

func TestHistory(t *testing.T) {
	h := histutil.New(histutil.DedupNone)
	for _, text := range []string{"git status", "git stash", "ls", "git status"} {
		h.Add(text, time.Time{})
	}
	st := state.New()
	state.Put(st, h)

	items, err := History()(mustCtx(t, "git st", st))
	if err != nil {
		t.Fatal(err)
	}
	items = sortAndDedup(items)
	if diff := cmp.Diff([]string{"git stash", "git status"}, replacements(items)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	for _, item := range items {
		if item.Span != (diag.Ranging{From: 0, To: 6}) {
			t.Errorf("got span %v, want the whole line", item.Span)
		}
	}

	// No history in state.
	items, _ = History()(mustCtx(t, "git", state.New()))
	if len(items) != 0 {
		t.Errorf("got %v without history", items)
	}
}

func TestPredicates(t *testing.T) {
	ctx := mustCtx(t, "FOO=1 git -", nil)
	if !IsFlag(ctx) || !ArgOf("git")(ctx) || ArgOf("ls")(ctx) || InCommandPos(ctx) {
		t.Errorf("wrong predicates for %q", ctx.Line)
	}
	ctx = mustCtx(t, "git", nil)
	if ArgOf("git")(ctx) || !InCommandPos(ctx) {
		t.Errorf("wrong predicates for %q", ctx.Line)
	}
	ctx = mustCtx(t, "git >", nil)
	if !InRedirTarget(ctx) || ArgOf("git")(ctx) {
		t.Errorf("wrong predicates for %q", ctx.Line)
	}
	if !And(InRedirTarget, func(*Ctx) bool { return true })(ctx) {
		t.Errorf("And returned false")
	}
}

func TestCommonPrefix(t *testing.T) {
	span := diag.Ranging{From: 0, To: 1}
	items := func(rs ...string) []Completion {
		var cs []Completion
		for _, r := range rs {
			cs = append(cs, Completion{Replacement: r, Span: span})
		}
		return cs
	}
	tt.Test(t, tt.Fn("CommonPrefix", CommonPrefix), tt.Table{
		tt.Args(items()).Rets(""),
		tt.Args(items("foo")).Rets("foo"),
		tt.Args(items("foobar", "foobaz", "fooqux")).Rets("foo"),
		tt.Args(items("中文", "中国")).Rets("中"),
		tt.Args(append(items("ab"), Completion{Replacement: "ab", Span: diag.Ranging{}})).Rets(""),
	})
}
