package eval

import (
	"os"
	"strconv"
	"strings"
	"testing"

	"src.kesh.sh/pkg/env"
	"src.kesh.sh/pkg/hook"
	"src.kesh.sh/pkg/job"
	"src.kesh.sh/pkg/must"
	"src.kesh.sh/pkg/parse"
	"src.kesh.sh/pkg/shell/shdefs"
	"src.kesh.sh/pkg/state"
	"src.kesh.sh/pkg/testutil"
	"src.kesh.sh/pkg/tt"
)

type testHost struct {
	builtins *shdefs.Registry
	hooks    *hook.Bus
}

func (h *testHost) Lang() shdefs.Lang          { return nil }
func (h *testHost) Builtins() *shdefs.Registry { return h.builtins }
func (h *testHost) Hooks() *hook.Bus           { return h.hooks }
func (h *testHost) Launcher() *job.Launcher    { return job.NonInteractive() }

func newTestHost() *testHost {
	reg := shdefs.NewRegistry()
	for _, b := range []*shdefs.Builtin{
		{Name: "echo", Fn: func(_ shdefs.Host, _ *state.Store, args []string) shdefs.CmdOutput {
			return shdefs.Ok(strings.Join(args, " ") + "\n")
		}},
		{Name: "true", Fn: func(shdefs.Host, *state.Store, []string) shdefs.CmdOutput {
			return shdefs.CmdOutput{}
		}},
		{Name: "false", Fn: func(shdefs.Host, *state.Store, []string) shdefs.CmdOutput {
			return shdefs.CmdOutput{Status: 1}
		}},
		{Name: "exit", Fn: func(_ shdefs.Host, st *state.Store, args []string) shdefs.CmdOutput {
			status := 0
			if len(args) > 0 {
				status, _ = strconv.Atoi(args[0])
			}
			RequestExit(st, status)
			return shdefs.CmdOutput{Status: status}
		}},
		{Name: "cd", Fn: func(sh shdefs.Host, st *state.Store, args []string) shdefs.CmdOutput {
			if err := Chdir(sh, st, args[0]); err != nil {
				return shdefs.Fail(1, "cd: "+err.Error())
			}
			return shdefs.CmdOutput{}
		}},
	} {
		must.OK(reg.Register(b))
	}
	return &testHost{reg, hook.NewBus()}
}

type result struct {
	Status int
	Stdout string
	Stderr string
}

// Returns a state with PATH and HOME taken from the test process.
func newTestState() *state.Store {
	st := state.New()
	e := env.New()
	e.Export(env.PATH, os.Getenv(env.PATH))
	e.Export(env.HOME, os.Getenv(env.HOME))
	state.Put(st, e)
	Init(st, "kesh", nil)
	return st
}

// Evaluates code with stdout and stderr redirected to temporary files.
func evalIn(t *testing.T, sh shdefs.Host, st *state.Store, code string) result {
	t.Helper()
	list, err := parse.Parse("[test]", code)
	if err != nil {
		t.Fatalf("parse %q: %v", code, err)
	}
	dir := testutil.TempDir(t)
	stdin := must.OK1(os.Open(os.DevNull))
	defer stdin.Close()
	stdout := must.OK1(os.Create(dir + "/stdout"))
	defer stdout.Close()
	stderr := must.OK1(os.Create(dir + "/stderr"))
	defer stderr.Close()
	state.Put(st, &Ports{[]*os.File{stdin, stdout, stderr}})

	status := Eval(sh, st, list)
	return result{
		status,
		string(must.OK1(os.ReadFile(dir + "/stdout"))),
		string(must.OK1(os.ReadFile(dir + "/stderr"))),
	}
}

func needCommands(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		if _, err := job.Resolve(name, os.Getenv(env.PATH)); err != nil {
			t.Skip("need", name)
		}
	}
}

func TestEval(t *testing.T) {
	needCommands(t, "tr", "cat")
	sh := newTestHost()
	run := func(code string) result {
		return evalIn(t, sh, newTestState(), code)
	}
	tt.Test(t, tt.Fn("run", run), tt.Table{
		// Pipelines mixing builtins and external commands.
		tt.Args("echo hello | tr a-z A-Z").Rets(result{0, "HELLO\n", ""}),
		tt.Args("echo abc | cat | tr a-z A-Z").Rets(result{0, "ABC\n", ""}),
		tt.Args("echo a | false").Rets(result{1, "", ""}),
		tt.Args("false | true").Rets(result{0, "", ""}),
		tt.Args("! false").Rets(result{0, "", ""}),
		tt.Args("! echo a | tr a b").Rets(result{1, "b\n", ""}),

		// And-or lists and lists.
		tt.Args("false && echo x ; echo y").Rets(result{0, "y\n", ""}),
		tt.Args("false || echo x").Rets(result{0, "x\n", ""}),
		tt.Args("true && false || echo z").Rets(result{0, "z\n", ""}),
		tt.Args("false; echo $?").Rets(result{0, "1\n", ""}),

		// Command lookup failures.
		tt.Args("nonexistent_cmd_kesh").Rets(
			result{127, "", "kesh: nonexistent_cmd_kesh: command not found\n"}),
		tt.Args("echo a | nonexistent_cmd_kesh").Rets(
			result{127, "", "kesh: nonexistent_cmd_kesh: command not found\n"}),
		tt.Args("nonexistent_cmd_kesh 2>&1").Rets(
			result{127, "kesh: nonexistent_cmd_kesh: command not found\n", ""}),

		// Parameters.
		tt.Args("a=1; echo $a ${a:-x} ${b:-x} ${#a}").Rets(result{0, "1 1 x 1\n", ""}),
		tt.Args("a=1; a=2 true; echo $a").Rets(result{0, "1\n", ""}),
		tt.Args("a=1 b=$a; echo $b").Rets(result{0, "1\n", ""}),
		tt.Args("echo ${x=5} $x").Rets(result{0, "5 5\n", ""}),
		tt.Args("p=dir/file.tar.gz; echo ${p##*/} ${p%%.*} ${p#*.} ${p%.*}").
			Rets(result{0, "file.tar.gz dir/file tar.gz dir/file.tar\n", ""}),
		tt.Args("echo ${u:?is empty}").Rets(result{1, "", "kesh: u: is empty\n"}),

		// Field splitting and quoting.
		tt.Args("x='a  b'; for w in $x; do echo $w; done").Rets(result{0, "a\nb\n", ""}),
		tt.Args(`x='a  b'; for w in "$x"; do echo "$w"; done`).Rets(result{0, "a  b\n", ""}),
		tt.Args(`IFS=:; x=a:b:c; for w in $x; do echo $w; done`).Rets(result{0, "a\nb\nc\n", ""}),
		tt.Args(`echo '$a' "\$a" \$a`).Rets(result{0, "$a $a $a\n", ""}),
		tt.Args(`e=; for w in $e "$e"; do echo "<$w>"; done`).Rets(result{0, "<>\n", ""}),

		// Brace expansion and arithmetic.
		tt.Args("echo a{b,c}d {1..3} {x}").Rets(result{0, "abd acd 1 2 3 {x}\n", ""}),
		tt.Args("echo $((1+2*3)) $((7/2)) $((2**10)) $((x=5, x*2)) $x").
			Rets(result{0, "7 3 1024 10 5\n", ""}),
		tt.Args("i=1; echo $((i+=2)) $((i > 2 ? 10 : 20))").Rets(result{0, "3 10\n", ""}),

		// Command substitution.
		tt.Args(`echo "[$(echo a; echo b)]"`).Rets(result{0, "[a\nb]\n", ""}),
		tt.Args("echo `echo x`").Rets(result{0, "x\n", ""}),
		tt.Args("x=$(false); echo $?").Rets(result{0, "1\n", ""}),

		// Control structures.
		tt.Args("if false; then echo a; elif true; then echo b; else echo c; fi").
			Rets(result{0, "b\n", ""}),
		tt.Args("for i in 1 2 3 4; do case $i in 2) continue;; 4) break;; esac; echo $i; done").
			Rets(result{0, "1\n3\n", ""}),
		tt.Args("i=0; until case $i in 3) true;; *) false;; esac; do echo $i; i=$((i+1)); done").
			Rets(result{0, "0\n1\n2\n", ""}),
		tt.Args("for i in 1 2; do for j in a b; do echo $i$j; break 2; done; done").
			Rets(result{0, "1a\n", ""}),
		tt.Args("case foo.go in *.txt) echo txt;; *.go|*.c) echo src;; esac").
			Rets(result{0, "src\n", ""}),

		// Functions.
		tt.Args("f() { echo \"<$1>\" $#; }; f 'x y' z").Rets(result{0, "<x y> 2\n", ""}),
		tt.Args(`f() { for a in "$@"; do echo "<$a>"; done; }; f 'x y' z`).
			Rets(result{0, "<x y>\n<z>\n", ""}),
		tt.Args("f() { return 3; echo no; }; f; echo $?").Rets(result{0, "3\n", ""}),
		tt.Args("f() { echo $x; }; x=out; x=tmp f; echo $x").Rets(result{0, "tmp\nout\n", ""}),

		// Subshells and groups.
		tt.Args("a=1; (a=2; echo $a); echo $a").Rets(result{0, "2\n1\n", ""}),
		tt.Args("a=1; { a=2; echo $a; }; echo $a").Rets(result{0, "2\n2\n", ""}),
		tt.Args("(exit 4); echo $?").Rets(result{0, "4\n", ""}),
		tt.Args("a=1; echo x | a=2; echo $a").Rets(result{0, "1\n", ""}),

		// Exit.
		tt.Args("echo a; exit 3; echo b").Rets(result{3, "a\n", ""}),
	})
}

func TestEval_Redirections(t *testing.T) {
	needCommands(t, "cat", "tr")
	testutil.InTempDir(t)
	sh := newTestHost()
	run := func(code string) result {
		return evalIn(t, sh, newTestState(), code)
	}
	tt.Test(t, tt.Fn("run", run), tt.Table{
		tt.Args("echo hi > out; cat < out; echo more >> out; cat out").
			Rets(result{0, "hi\nhi\nmore\n", ""}),
		tt.Args("echo err 1>&2").Rets(result{0, "", "err\n"}),
		tt.Args("{ echo a; echo b >&2; } 2>&1 | tr a-z A-Z").Rets(result{0, "A\nB\n", ""}),
		tt.Args("echo x >&-").Rets(result{0, "", ""}),
		tt.Args("a=1; cat <<EOF\nx $a\nEOF\n").Rets(result{0, "x 1\n", ""}),
		tt.Args("a=1; cat <<'EOF'\nx $a\nEOF\n").Rets(result{0, "x $a\n", ""}),
		tt.Args("cat <<-EOF\n\tindented\n\tEOF\n").Rets(result{0, "indented\n", ""}),
		tt.Args("tr a-z A-Z <<< abc").Rets(result{0, "ABC\n", ""}),
		tt.Args("cat < nonexistent").Rets(
			result{1, "", "kesh: nonexistent: no such file or directory\n"}),
	})
}

func TestEval_Options(t *testing.T) {
	testutil.InTempDir(t)
	sh := newTestHost()
	run := func(opts shdefs.Options, code string) result {
		st := newTestState()
		*state.Get[*shdefs.Options](st) = opts
		return evalIn(t, sh, st, code)
	}
	tt.Test(t, tt.Fn("run", run), tt.Table{
		tt.Args(shdefs.Options{Pipefail: true}, "false | true").Rets(result{1, "", ""}),
		tt.Args(shdefs.Options{Errexit: true}, "false; echo no").Rets(result{1, "", ""}),
		tt.Args(shdefs.Options{Errexit: true}, "false || echo yes").Rets(result{0, "yes\n", ""}),
		tt.Args(shdefs.Options{Errexit: true}, "if false; then :; fi; echo yes").
			Rets(result{0, "yes\n", ""}),
		tt.Args(shdefs.Options{Nounset: true}, "echo $undefined; echo no").
			Rets(result{1, "", "kesh: undefined: unbound variable\n"}),
		tt.Args(shdefs.Options{Noglob: true}, "echo *").Rets(result{0, "*\n", ""}),
		tt.Args(shdefs.Options{Xtrace: true}, "echo 'a b'").Rets(result{0, "a b\n", "+ echo 'a b'\n"}),
		tt.Args(shdefs.Options{Noclobber: true}, "echo a > f; echo b > f; echo c >| f; echo $?").
			Rets(result{0, "0\n", "kesh: f: cannot overwrite existing file\n"}),
	})
}

func TestEval_Glob(t *testing.T) {
	testutil.InTempDir(t)
	testutil.ApplyDir(testutil.Dir{"a.go": "", "b.go": "", "c.txt": "", "d": testutil.Dir{"e.go": ""}})
	sh := newTestHost()
	run := func(code string) string {
		return evalIn(t, sh, newTestState(), code).Stdout
	}
	tt.Test(t, tt.Fn("run", run), tt.Table{
		tt.Args("echo *.go").Rets("a.go b.go\n"),
		tt.Args("echo '*.go' \\*.go").Rets("*.go *.go\n"),
		tt.Args("echo *.none").Rets("*.none\n"),
		tt.Args("echo */*.go").Rets("d/e.go\n"),
		tt.Args("x='*.txt'; echo $x \"$x\"").Rets("c.txt *.txt\n"),
	})
}

func TestEval_Tilde(t *testing.T) {
	sh := newTestHost()
	st := newTestState()
	state.Get[*env.Environ](st).Set(env.HOME, "/home/kesh")
	r := evalIn(t, sh, st, "echo ~ ~/x '~' a~")
	if want := "/home/kesh /home/kesh/x ~ a~\n"; r.Stdout != want {
		t.Errorf("got %q, want %q", r.Stdout, want)
	}
}

func TestEval_Background(t *testing.T) {
	needCommands(t, "sleep")
	sh := newTestHost()
	st := newTestState()
	r := evalIn(t, sh, st, "sleep 0 & echo $!")
	table := state.Get[*job.Table](st)
	if table.Len() != 1 {
		t.Fatalf("got %d jobs, want 1", table.Len())
	}
	j := table.Jobs()[0]
	if r.Status != 0 || r.Stdout != strconv.Itoa(j.Pids[0])+"\n" {
		t.Errorf("got %v, want status 0 and pid %d", r, j.Pids[0])
	}
	if j.Command != "sleep 0" || j.Foreground {
		t.Errorf("got job %+v", j)
	}
	job.NonInteractive().Wait(j)
	if j.State != job.Done {
		t.Errorf("got state %v after waiting", j.State)
	}

	// In-process jobs.
	r = evalIn(t, sh, st, "{ echo bg; } & wait_unused=1")
	if r.Status != 0 {
		t.Errorf("got status %d", r.Status)
	}
	if _, ok := state.Lookup[LastBgPid](st); ok {
		t.Errorf("$! set for an in-process job")
	}
}

func TestChdir(t *testing.T) {
	dir := testutil.InTempDir(t)
	must.OK(os.Mkdir("sub", 0755))
	sh := newTestHost()
	var fired []hook.ChangeDir
	hook.On(sh.hooks, func(_ *state.Store, c hook.ChangeDir) error {
		fired = append(fired, c)
		return nil
	})
	st := newTestState()

	r := evalIn(t, sh, st, "cd sub; echo $PWD $OLDPWD")
	if want := dir + "/sub " + dir + "\n"; r.Stdout != want {
		t.Errorf("got %q, want %q", r.Stdout, want)
	}
	if wd := must.Getwd(); wd != dir+"/sub" {
		t.Errorf("working directory %q", wd)
	}
	if len(fired) != 1 || fired[0].To != dir+"/sub" || fired[0].From != dir {
		t.Errorf("ChangeDir hooks %v", fired)
	}

	// A subshell changes only its own $PWD.
	r = evalIn(t, sh, st, "(cd ..; echo $PWD); echo $PWD")
	if want := dir + "\n" + dir + "/sub\n"; r.Stdout != want {
		t.Errorf("got %q, want %q", r.Stdout, want)
	}
	if wd := must.Getwd(); wd != dir+"/sub" {
		t.Errorf("working directory %q after subshell", wd)
	}

	r = evalIn(t, sh, st, "cd nonexistent")
	if r.Status != 1 || !strings.Contains(r.Stderr, "no such file") {
		t.Errorf("got %v", r)
	}
}

func TestEvalCapture(t *testing.T) {
	sh := newTestHost()
	st := newTestState()
	dir := testutil.TempDir(t)
	stdout := must.OK1(os.Create(dir + "/stdout"))
	defer stdout.Close()
	stderr := must.OK1(os.Create(dir + "/stderr"))
	defer stderr.Close()
	state.Put(st, &Ports{[]*os.File{nil, stdout, stderr}})

	list := must.OK1(parse.Parse("[test]",
		"echo a; echo b >&2; echo c > /dev/null; echo d | cat > /dev/null"))
	var c Capture
	status := EvalCapture(sh, st, list, &c)
	gotOut, gotErr := c.Output()
	// Output is recorded under the stream it appears on; output sent to a
	// file or a pipe is not recorded.
	if status != 0 || gotOut != "a\n" || gotErr != "b\n" {
		t.Errorf("got %d %q %q", status, gotOut, gotErr)
	}
	if got := must.ReadFileString(stdout.Name()); got != "a\n" {
		t.Errorf("stdout file %q", got)
	}
}

func TestSource(t *testing.T) {
	sh := newTestHost()
	st := newTestState()
	list := must.OK1(parse.Parse("[test]", "x=$1; return 5; x=no"))
	if status := Source(sh, st, list, []string{"arg"}); status != 5 {
		t.Errorf("got status %d", status)
	}
	if x := state.Get[*env.Environ](st).Value("x"); x != "arg" {
		t.Errorf("x = %q", x)
	}
	if args := state.Get[*Params](st).Args; len(args) != 0 {
		t.Errorf("positional parameters not restored: %v", args)
	}
}
