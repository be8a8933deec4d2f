package shell

import (
	"errors"
	"os"
	"path/filepath"

	"src.kesh.sh/pkg/env"
)

var errNoHome = errors.New("cannot determine home directory: HOME is not set")

// RCPath returns the path of the rc file, read in interactive mode.
func RCPath() (string, error) {
	dir, err := xdgDir(env.XDG_CONFIG_HOME, ".config")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "kesh", "rc.yaml"), nil
}

// HistoryPath returns the default path of the history file.
func HistoryPath() (string, error) {
	dir, err := xdgDir(env.XDG_STATE_HOME, filepath.Join(".local", "state"))
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "kesh", "history"), nil
}

// Returns the value of an XDG base directory variable if it is an absolute
// path, or the fallback under the home directory.
func xdgDir(name, fallback string) (string, error) {
	if dir := os.Getenv(name); filepath.IsAbs(dir) {
		return dir, nil
	}
	home := os.Getenv(env.HOME)
	if home == "" {
		return "", errNoHome
	}
	return filepath.Join(home, fallback), nil
}
