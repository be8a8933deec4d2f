package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"src.kesh.sh/pkg/must"
)

func TestTempDir_IsValidDir(t *testing.T) {
	dir := TempDir(t)
	stat, err := os.Stat(dir)
	if err != nil || !stat.IsDir() {
		t.Errorf("TempDir returned %q, which is not a directory", dir)
	}
	if resolved, _ := filepath.EvalSymlinks(dir); resolved != dir {
		t.Errorf("TempDir returned %q, which has unresolved symlinks", dir)
	}
}

func TestInTempDir_ChangesIntoDir(t *testing.T) {
	dir := InTempDir(t)
	if wd := must.Getwd(); wd != dir {
		t.Errorf("working directory is %q, want %q", wd, dir)
	}
}

func TestApplyDir(t *testing.T) {
	InTempDir(t)
	ApplyDir(Dir{
		"a":   "content a",
		"exe": File{Perm: 0755, Content: "#!/bin/sh\n"},
		"d":   Dir{"b": "content b"},
	})
	if got := must.ReadFileString("d/b"); got != "content b" {
		t.Errorf("d/b has %q", got)
	}
	stat, err := os.Stat("exe")
	if err != nil || stat.Mode().Perm() != 0755 {
		t.Errorf("exe has wrong permission: %v %v", stat, err)
	}
}
