// Package pprof adds profiling support to the kesh program.
package pprof

import (
	"fmt"
	"os"
	"runtime/pprof"

	"src.kesh.sh/pkg/prog"
)

// Program adds support for the --cpuprofile flag. It should come before the
// programs being profiled in a prog.Composite.
type Program struct{}

func (Program) Run(fds [3]*os.File, f *prog.Flags, _ []string) error {
	if f.CPUProfile == "" {
		return prog.NextProgram()
	}
	out, err := os.Create(f.CPUProfile)
	if err != nil {
		fmt.Fprintln(fds[2], "Warning: cannot create CPU profile:", err)
		fmt.Fprintln(fds[2], "Continuing without CPU profiling.")
		return prog.NextProgram()
	}
	if err := pprof.StartCPUProfile(out); err != nil {
		fmt.Fprintln(fds[2], "Warning: cannot start CPU profile:", err)
		out.Close()
		return prog.NextProgram()
	}
	return prog.NextProgram(func([3]*os.File) {
		pprof.StopCPUProfile()
		out.Close()
	})
}
