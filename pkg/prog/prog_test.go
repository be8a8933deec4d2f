package prog_test

import (
	"os"
	"strings"
	"testing"

	"src.kesh.sh/pkg/logutil"
	. "src.kesh.sh/pkg/prog"
	"src.kesh.sh/pkg/prog/progtest"
	"src.kesh.sh/pkg/testutil"
)

var (
	Test     = progtest.Test
	ThatKesh = progtest.ThatKesh
)

func TestCommonFlagHandling(t *testing.T) {
	testutil.InTempDir(t)
	t.Cleanup(func() { logutil.SetOutputFile("") })

	Test(t, testProgram{},
		ThatKesh("--bad-flag").
			ExitsWith(2).
			WritesStderrContaining("unknown flag: --bad-flag\nUsage:"),
		// -h is treated as a bad flag
		ThatKesh("-h").
			ExitsWith(2).
			WritesStderrContaining("unknown shorthand flag: 'h' in -h\nUsage:"),

		ThatKesh("--help").
			WritesStdoutContaining("Usage: kesh [flags] [script [args...]]"),

		ThatKesh("--log", "debug.log").DoesNothing(),
		ThatKesh("--log", "/a/bad/path/debug.log").
			WritesStderrContaining("/a/bad/path/debug.log"),
	)

	if _, err := os.Stat("debug.log"); err != nil {
		t.Errorf("log file does not exist: %v", err)
	}
}

func TestFlagsArePassed(t *testing.T) {
	var got *Flags
	var gotArgs []string
	p := testProgram{onRun: func(f *Flags, args []string) {
		got, gotArgs = f, args
	}}
	Test(t, p, ThatKesh("-c", "--norc", "--rc", "a.yaml", "--db", "h.db",
		"--history", "hist", "-i", "echo foo", "-x"))

	want := Flags{CodeInArg: true, NoRc: true, RC: "a.yaml", DB: "h.db",
		History: "hist", Interactive: true}
	if got == nil || *got != want {
		t.Errorf("got flags %+v, want %+v", got, want)
	}
	// Flags after the first argument belong to the program.
	if strings.Join(gotArgs, " ") != "echo foo -x" {
		t.Errorf("got args %q, want [\"echo foo\" \"-x\"]", gotArgs)
	}
}

func TestBadUsageError(t *testing.T) {
	Test(t,
		testProgram{returnErr: BadUsage("lorem ipsum")},
		ThatKesh().ExitsWith(2).WritesStderrContaining("lorem ipsum\nUsage:"),
	)
}

func TestExitError(t *testing.T) {
	Test(t, testProgram{returnErr: Exit(3)},
		ThatKesh().ExitsWith(3),
	)
}

func TestExitError_0(t *testing.T) {
	Test(t, testProgram{returnErr: Exit(0)},
		ThatKesh().ExitsWith(0),
	)
}

func TestOtherError(t *testing.T) {
	Test(t, testProgram{writeOut: "partial", returnErr: os.ErrNotExist},
		ThatKesh().ExitsWith(2).WritesStdout("partial").
			WritesStderr("file does not exist\n"),
	)
}

func TestComposite(t *testing.T) {
	Test(t,
		Composite(
			testProgram{returnErr: ErrNotSuitable},
			testProgram{writeOut: "program 2"}),
		ThatKesh().WritesStdout("program 2"),
	)
}

func TestComposite_NoSuitableSubprogram(t *testing.T) {
	Test(t,
		Composite(
			testProgram{returnErr: ErrNotSuitable},
			testProgram{returnErr: ErrNotSuitable}),
		ThatKesh().
			ExitsWith(2).
			WritesStderr(ErrNotSuitable.Error()+"\n"),
	)
}

func TestComposite_NextProgramRunsCleanups(t *testing.T) {
	Test(t,
		Composite(
			testProgram{nextProgram: true, writeOut: "1 "},
			testProgram{nextProgram: true, writeOut: "2 "},
			testProgram{writeOut: "3 "}),
		ThatKesh().WritesStdout("1 2 3 cleanup 2 cleanup 1 "),
	)
}

type testProgram struct {
	nextProgram bool
	writeOut  string
	returnErr error
	onRun     func(f *Flags, args []string)
}

func (p testProgram) Run(fds [3]*os.File, f *Flags, args []string) error {
	if p.onRun != nil {
		p.onRun(f, args)
	}
	fds[1].WriteString(p.writeOut)
	if p.nextProgram {
		return NextProgram(func(fds [3]*os.File) {
			fds[1].WriteString("cleanup " + p.writeOut)
		})
	}
	return p.returnErr
}
