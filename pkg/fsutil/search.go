// Package fsutil provides filesystem helpers: searching executables on a
// search path and abbreviating paths for display.
package fsutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by LookPath when no executable is found.
var ErrNotFound = errors.New("executable file not found")

// DontSearch determines whether the path to an external command should be
// taken literally and not searched.
func DontSearch(exe string) bool {
	return strings.ContainsRune(exe, '/')
}

// IsExecutable returns whether the FileInfo refers to an executable file.
func IsExecutable(stat fs.FileInfo) bool {
	return !stat.IsDir() && stat.Mode()&0o111 != 0
}

// SplitPath splits the value of $PATH. An empty element stands for the
// working directory.
func SplitPath(path string) []string {
	if path == "" {
		return nil
	}
	dirs := strings.Split(path, string(filepath.ListSeparator))
	for i, dir := range dirs {
		if dir == "" {
			dirs[i] = "."
		}
	}
	return dirs
}

// LookPath finds the executable to run for name, searching the directories
// in path unless name contains a slash. If a file is found but none is
// executable, the error wraps fs.ErrPermission; otherwise it is ErrNotFound.
func LookPath(name, path string) (string, error) {
	if DontSearch(name) {
		return checkExecutable(name)
	}
	permErr := error(nil)
	for _, dir := range SplitPath(path) {
		file, err := checkExecutable(filepath.Join(dir, name))
		if err == nil {
			return file, nil
		}
		if errors.Is(err, fs.ErrPermission) && permErr == nil {
			permErr = err
		}
	}
	if permErr != nil {
		return "", permErr
	}
	return "", ErrNotFound
}

func checkExecutable(file string) (string, error) {
	stat, err := os.Stat(file)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", err
	}
	if !IsExecutable(stat) {
		return "", &fs.PathError{Op: "exec", Path: file, Err: fs.ErrPermission}
	}
	return file, nil
}

// EachExternal calls f for each executable file found while scanning the
// directories in path. A name appearing in several directories is reported
// each time.
func EachExternal(path string, f func(string)) {
	for _, dir := range SplitPath(path) {
		files, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, file := range files {
			stat, err := file.Info()
			if err == nil && IsExecutable(stat) {
				f(stat.Name())
			}
		}
	}
}
