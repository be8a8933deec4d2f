package parse

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"src.kesh.sh/pkg/diag"
	"src.kesh.sh/pkg/tt"
)

var ignoreRanges = cmpopts.IgnoreTypes(diag.Ranging{})

func lit(s string) *Word { return &Word{Parts: []WordPart{&Lit{s}}} }

func TestLex(t *testing.T) {
	tokens, err := Lex("echo 'a b' 2>err | x # c\n")
	if err != nil {
		t.Fatal(err)
	}
	type kt struct {
		Kind TokenKind
		Text string
	}
	var got []kt
	for _, tok := range tokens {
		got = append(got, kt{tok.Kind, tok.Text})
	}
	want := []kt{
		{WordToken, "echo"}, {WordToken, "'a b'"}, {IONumber, "2"}, {Operator, ">"},
		{WordToken, "err"}, {Operator, "|"}, {WordToken, "x"}, {Comment, "# c"},
		{Newline, "\n"}, {EOF, ""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tokens (-want +got):\n%s", diff)
	}
	if tokens[1].From != 5 || tokens[1].To != 10 {
		t.Errorf("span of quoted word = %v", tokens[1].Ranging)
	}
}

func TestLex_Heredoc(t *testing.T) {
	tokens, err := Lex("cat <<-EOF; echo\n\tline 1\n\tEOF\necho 2")
	if err != nil {
		t.Fatal(err)
	}
	if tokens[1].Heredoc != "line 1\n" {
		t.Errorf("heredoc body = %q", tokens[1].Heredoc)
	}
	if last := tokens[len(tokens)-2]; last.Text != "2" {
		t.Errorf("lexing did not resume after the heredoc, got %q", last.Text)
	}
}

func TestParse_Simple(t *testing.T) {
	list, err := Parse("[test]", "a=1 echo $x >f")
	if err != nil {
		t.Fatal(err)
	}
	want := &List{Items: []*Item{{Cmd: &Simple{
		Assigns: []*Assign{{Name: "a", Value: lit("1")}},
		Redirs:  []*Redir{{Fd: -1, Op: ">", Target: lit("f")}},
		Args: []*Word{
			lit("echo"),
			{Parts: []WordPart{&ParamExp{Name: "x"}}},
		},
	}}}}
	if diff := cmp.Diff(want, list, ignoreRanges); diff != "" {
		t.Errorf("AST (-want +got):\n%s", diff)
	}
}

func TestParse_WordParts(t *testing.T) {
	list, err := Parse("[test]", `echo a"b $c\$"'d'\e ${x:-y z} ${#v} $(ls -l) $((1+$n))`)
	if err != nil {
		t.Fatal(err)
	}
	args := list.Items[0].Cmd.(*Simple).Args
	want := []*Word{
		lit("echo"),
		{Parts: []WordPart{
			&Lit{"a"},
			&DblQuoted{[]WordPart{&Lit{"b "}, &ParamExp{Name: "c"}, &Escaped{"$"}}},
			&SglQuoted{"d"},
			&Escaped{"e"},
		}},
		{Parts: []WordPart{&ParamExp{Name: "x", Op: ":-", Arg: lit("y z")}}},
		{Parts: []WordPart{&ParamExp{Name: "v", Length: true}}},
		{Parts: []WordPart{&CmdSubst{&List{Items: []*Item{{Cmd: &Simple{
			Args: []*Word{lit("ls"), lit("-l")}}}}}}}},
		{Parts: []WordPart{&ArithExp{&Word{Parts: []WordPart{
			&Lit{"1+"}, &ParamExp{Name: "n"}}}}}},
	}
	if diff := cmp.Diff(want, args, ignoreRanges); diff != "" {
		t.Errorf("words (-want +got):\n%s", diff)
	}
}

var roundTripTests = []struct{ src, printed string }{
	{"echo hello | tr a-z A-Z", "echo hello | tr a-z A-Z"},
	{"false && echo x ; echo y", "false && echo x; echo y"},
	{"a || b && c", "a || b && c"},
	{"if a; then b; elif c; then d; else e; fi", "if a; then b; elif c; then d; else e; fi"},
	{"while true\ndo\n  x\ndone", "while true; do x; done"},
	{"until f; do :; done", "until f; do :; done"},
	{"for i in 1 2; do echo $i; done", "for i in 1 2; do echo ${i}; done"},
	{"for a\ndo echo $a\ndone", "for a; do echo ${a}; done"},
	{"case $x in a|b) echo ab;; (*) ;; esac", "case ${x} in a | b) echo ab ;; *) ;; esac"},
	{`f() { echo "$1"; }`, `f() { echo "${1}"; }`},
	{"function g { :; } >/dev/null", "g() { :; } >/dev/null"},
	{"(cd /tmp && ls) > out 2>&1", "( cd /tmp && ls; ) >out 2>&1"},
	{"sleep 30 & jobs", "sleep 30 & jobs"},
	{"cat <<EOF\nhello $USER\nEOF\necho done", "cat <<EOF\nhello $USER\nEOF\necho done"},
	{"cat <<'E' | wc -l\n$x\nE\n", "cat <<'E' | wc -l\n$x\nE\n"},
	{"x=$((1 + 2)) y=`echo hi`", "x=$((1 + 2)) y=$( echo hi)"},
	{"! grep -q foo file", "! grep -q foo file"},
	{`echo ${x:-default} ${#y} '$z' \$w`, `echo ${x:-default} ${#y} '$z' \$w`},
	{"tr a b <<< 'abc' >| out", "tr a b <<<'abc' >|out"},
	{"{ a & }", "{ a & }"},
	{"echo a # comment\necho b", "echo a; echo b"},
}

func TestPrint(t *testing.T) {
	for _, test := range roundTripTests {
		list, err := Parse("[test]", test.src)
		if err != nil {
			t.Errorf("Parse(%q) -> error %v", test.src, err)
			continue
		}
		printed := Print(list)
		if printed != test.printed {
			t.Errorf("Print(Parse(%q)) -> %q, want %q", test.src, printed, test.printed)
		}
		reparsed, err := Parse("[test]", printed)
		if err != nil {
			t.Errorf("Parse(%q) (printed) -> error %v", printed, err)
			continue
		}
		if diff := cmp.Diff(list, reparsed, ignoreRanges, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("round trip of %q changed the AST (-orig +reparsed):\n%s", test.src, diff)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	incomplete := func(src string) bool {
		_, err := Parse("[test]", src)
		if err == nil {
			return false
		}
		return IsIncomplete(err)
	}
	tt.Test(t, tt.Fn("incomplete", incomplete), tt.Table{
		tt.Args("echo 'abc").Rets(true),
		tt.Args(`echo "a $(b`).Rets(true),
		tt.Args("if true; then").Rets(true),
		tt.Args("a |").Rets(true),
		tt.Args("a &&").Rets(true),
		tt.Args("cat <<EOF\nfoo").Rets(true),
		tt.Args("cat <<EOF").Rets(true),
		tt.Args("for x in a b").Rets(true),
		tt.Args("{ echo a").Rets(true),
		tt.Args("while a; do").Rets(true),
		tt.Args("case x in").Rets(true),

		tt.Args("a )").Rets(false),
		tt.Args("fi").Rets(false),
		tt.Args("echo ${a!}").Rets(false),
		tt.Args("echo ok").Rets(false),
	})
}

func TestError_Message(t *testing.T) {
	_, err := Parse("[stdin]", "echo )")
	want := `parse error: [stdin]:1:6: unexpected ")"`
	if err == nil || err.Error() != want {
		t.Errorf("got error %v, want %q", err, want)
	}
	perr := err.(*Error)
	if perr.Line != 1 || perr.Span != (diag.Ranging{From: 5, To: 6}) {
		t.Errorf("Line = %d, Span = %v", perr.Line, perr.Span)
	}
}

func TestCommandPositions(t *testing.T) {
	tokens, _ := Lex("a=1 foo x; if bar; then >f baz y; fi | qux")
	got := CommandPositions(tokens)
	want := []int{1, 4, 5, 7, 10, 13, 15}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("positions (-want +got):\n%s", diff)
	}
}

func TestWord_Literal(t *testing.T) {
	literal := func(src string) (string, bool) {
		list, err := Parse("[test]", src)
		if err != nil {
			t.Fatal(err)
		}
		return list.Items[0].Cmd.(*Simple).Args[0].Literal()
	}
	tt.Test(t, tt.Fn("Literal", literal), tt.Table{
		tt.Args(`a'b'"c"\d`).Rets("abcd", true),
		tt.Args(`a$b`).Rets("", false),
	})
}

func TestQuote(t *testing.T) {
	tt.Test(t, tt.Fn("Quote", Quote), tt.Table{
		tt.Args("abc").Rets("abc"),
		tt.Args("a/b.c-d").Rets("a/b.c-d"),
		tt.Args("a b").Rets("'a b'"),
		tt.Args("").Rets("''"),
		tt.Args("it's").Rets(`'it'\''s'`),
		tt.Args("if").Rets("'if'"),
		tt.Args("~x").Rets("'~x'"),
		tt.Args("a~").Rets("a~"),
	})
}

func TestSkipConstruct(t *testing.T) {
	tt.Test(t, tt.Fn("SkipConstruct", SkipConstruct), tt.Table{
		tt.Args(`'a b'c`, 0).Rets(5),
		tt.Args(`"a $(b) c"x`, 0).Rets(10),
		tt.Args("`ls`;", 0).Rets(4),
		tt.Args("${a:-b}c", 0).Rets(7),
		tt.Args("$(echo (x))", 0).Rets(11),
		tt.Args("$foo", 0).Rets(1),
		tt.Args("x$", 1).Rets(2),
		tt.Args(`'abc`, 0).Rets(-1),
		tt.Args("ab", 0).Rets(1),
	})
}
