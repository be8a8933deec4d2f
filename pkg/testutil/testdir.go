package testutil

import (
	"os"
	"path/filepath"

	"src.kesh.sh/pkg/env"
	"src.kesh.sh/pkg/must"
)

// TempDir creates a temporary directory for testing that will be removed
// after the test finishes. Symlinks in the path are resolved, so that the
// result can be compared with what the kernel reports as the working
// directory.
func TempDir(c Cleanuper) string {
	dir, err := os.MkdirTemp("", "kesh-test")
	if err != nil {
		panic(err)
	}
	dir, err = filepath.EvalSymlinks(dir)
	if err != nil {
		panic(err)
	}
	c.Cleanup(func() {
		if err := os.RemoveAll(dir); err != nil {
			panic(err)
		}
	})
	return dir
}

// InTempDir is like TempDir, but also changes into the directory, and changes
// back to the original directory when the test finishes.
func InTempDir(c Cleanuper) string {
	dir := TempDir(c)
	Chdir(c, dir)
	return dir
}

// InTempHome is like InTempDir, but also sets HOME to the temporary
// directory.
func InTempHome(c Cleanuper) string {
	dir := InTempDir(c)
	Setenv(c, env.HOME, dir)
	return dir
}

// Chdir changes into a directory, and restores the original working
// directory when a test finishes.
func Chdir(c Cleanuper, dir string) string {
	oldWd := must.Getwd()
	must.Chdir(dir)
	c.Cleanup(func() { must.Chdir(oldWd) })
	return dir
}

// Dir describes the layout of a directory. The keys of the map represent
// filenames. Each value is either a string (for the content of a regular
// file), a File, or another Dir (a subdirectory).
type Dir map[string]any

// File describes a file to create.
type File struct {
	Perm    os.FileMode
	Content string
}

// ApplyDir creates the given filesystem layout in the current directory.
func ApplyDir(dir Dir) {
	applyDir(dir, "")
}

func applyDir(dir Dir, prefix string) {
	for name, file := range dir {
		path := filepath.Join(prefix, name)
		switch file := file.(type) {
		case string:
			must.OK(os.WriteFile(path, []byte(file), 0644))
		case File:
			must.OK(os.WriteFile(path, []byte(file.Content), file.Perm))
		case Dir:
			must.OK(os.MkdirAll(path, 0755))
			applyDir(file, path)
		default:
			panic("file is neither string, File nor Dir")
		}
	}
}
