// Package buildinfo contains build information.
//
// Build information should be set during compilation by passing
// -ldflags "-X src.kesh.sh/pkg/buildinfo.VersionSuffix=value" to "go build".
package buildinfo

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"src.kesh.sh/pkg/prog"
)

// VersionBase is the version of kesh. On development commits, it identifies
// the next release.
const VersionBase = "0.3.0"

// VersionSuffix is appended to VersionBase to build the full version string.
// When empty, it is derived from the VCS information recorded by the Go
// toolchain.
var VersionSuffix = ""

// Reproducible identifies whether the build is reproducible.
var Reproducible = "false"

// Type contains all the build information fields.
type Type struct {
	Version      string `json:"version"`
	Reproducible bool   `json:"reproducible"`
	GoVersion    string `json:"goversion"`
}

// Value contains all the build information.
var Value = Type{
	Version:      devVersion(VersionBase, VersionSuffix, debug.ReadBuildInfo),
	Reproducible: Reproducible == "true",
	GoVersion:    runtime.Version(),
}

// Builds the version string of a development build. A suffix given at link
// time takes precedence over VCS information, which takes precedence over
// the module version.
func devVersion(base, suffix string, readBuildInfo func() (*debug.BuildInfo, bool)) string {
	if suffix != "" {
		return base + "-dev." + suffix
	}
	bi, ok := readBuildInfo()
	if !ok {
		return base + "-dev.unknown"
	}
	var revision, vcsTime string
	modified := false
	for _, setting := range bi.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.time":
			vcsTime = setting.Value
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}
	if revision != "" {
		t, err := time.Parse(time.RFC3339, vcsTime)
		if err != nil {
			return base + "-dev.unknown"
		}
		if len(revision) > 12 {
			revision = revision[:12]
		}
		v := base + "-dev." + t.UTC().Format("20060102150405") + "-" + revision
		if modified {
			v += "-dirty"
		}
		return v
	}
	if v := bi.Main.Version; v != "" && v != "(devel)" {
		return strings.TrimPrefix(v, "v")
	}
	return base + "-dev.unknown"
}

// Program is the buildinfo subprogram. It runs when --version or --buildinfo
// is given.
type Program struct{}

func (Program) Run(fds [3]*os.File, f *prog.Flags, _ []string) error {
	switch {
	case f.BuildInfo:
		if f.JSON {
			fmt.Fprintln(fds[1], mustToJSON(Value))
		} else {
			fmt.Fprintln(fds[1], "Version:", Value.Version)
			fmt.Fprintln(fds[1], "Go version:", Value.GoVersion)
			fmt.Fprintln(fds[1], "Reproducible build:", Value.Reproducible)
		}
	case f.Version:
		if f.JSON {
			fmt.Fprintln(fds[1], mustToJSON(Value.Version))
		} else {
			fmt.Fprintln(fds[1], Value.Version)
		}
	default:
		return prog.ErrNotSuitable
	}
	return nil
}

func mustToJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}
