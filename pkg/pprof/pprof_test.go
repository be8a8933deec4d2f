package pprof_test

import (
	"os"
	"testing"

	"src.kesh.sh/pkg/pprof"
	"src.kesh.sh/pkg/prog"
	"src.kesh.sh/pkg/prog/progtest"
	"src.kesh.sh/pkg/testutil"
)

var (
	Test     = progtest.Test
	ThatKesh = progtest.ThatKesh
)

func TestProgram(t *testing.T) {
	testutil.InTempDir(t)

	Test(t, prog.Composite(pprof.Program{}, noopProgram{}),
		ThatKesh("--cpuprofile", "cpuprof").DoesNothing(),
		ThatKesh("--cpuprofile", "/a/bad/path").
			WritesStderrContaining("Warning: cannot create CPU profile:"),
	)

	// There isn't much to test beyond a sanity check that the profile file
	// now exists.
	if _, err := os.Stat("cpuprof"); err != nil {
		t.Errorf("CPU profile file does not exist: %v", err)
	}
}

type noopProgram struct{}

func (noopProgram) Run([3]*os.File, *prog.Flags, []string) error { return nil }
