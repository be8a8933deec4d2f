package fsutil

import (
	"strings"
)

// TildeAbbr abbreviates home to ~ at the start of path.
func TildeAbbr(path, home string) string {
	home = strings.TrimSuffix(home, "/")
	if home == "" {
		// Abbreviating "/" would make paths longer.
		return path
	}
	if path == home {
		return "~"
	} else if strings.HasPrefix(path, home+"/") {
		return "~" + path[len(home):]
	}
	return path
}
