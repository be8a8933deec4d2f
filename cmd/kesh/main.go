// Kesh is an interactive command shell with a POSIX-style command language,
// a vi-flavored line editor and job control.
package main

import (
	"os"

	"src.kesh.sh/pkg/buildinfo"
	"src.kesh.sh/pkg/pprof"
	"src.kesh.sh/pkg/prog"
	"src.kesh.sh/pkg/shell"
)

func main() {
	os.Exit(prog.Run(
		[3]*os.File{os.Stdin, os.Stdout, os.Stderr}, os.Args,
		prog.Composite(pprof.Program{}, buildinfo.Program{}, shell.Program{})))
}
