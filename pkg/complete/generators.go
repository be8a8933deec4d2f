package complete

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"src.kesh.sh/pkg/diag"
	"src.kesh.sh/pkg/env"
	"src.kesh.sh/pkg/fsutil"
	"src.kesh.sh/pkg/histutil"
	"src.kesh.sh/pkg/parse"
	"src.kesh.sh/pkg/state"
)

// Word returns a candidate that replaces the current word with value, quoted
// as needed.
func (ctx *Ctx) Word(value string) Completion {
	return Completion{Display: value, Replacement: quote(value), Span: ctx.Span}
}

// Match returns candidates for the values that start with the seed.
func (ctx *Ctx) Match(values ...string) []Completion {
	var items []Completion
	for _, v := range values {
		if strings.HasPrefix(v, ctx.Seed) {
			items = append(items, ctx.Word(v))
		}
	}
	return items
}

// Quotes a value, keeping a trailing slash outside the quotes, so that the
// user can keep typing a path after accepting a directory.
func quote(s string) string {
	if strings.HasPrefix(s, "~/") {
		if s == "~/" {
			return s
		}
		return "~/" + quote(s[2:])
	}
	if strings.HasSuffix(s, "/") && len(s) > 1 {
		return parse.Quote(s[:len(s)-1]) + "/"
	}
	return parse.Quote(s)
}

// Fixed returns a Generator for a fixed list of values.
func Fixed(values ...string) Generator {
	return func(ctx *Ctx) ([]Completion, error) {
		return ctx.Match(values...), nil
	}
}

// Names returns a Generator for a list of values computed at completion time.
func Names(f func() []string) Generator {
	return func(ctx *Ctx) ([]Completion, error) {
		return ctx.Match(f()...), nil
	}
}

// Flag is a command-line flag with an optional short and long form.
type Flag struct {
	Short rune
	Long  string
	Doc   string
}

// Flags returns a Generator for the given flag set. When the seed starts with
// "--", only long forms are generated.
func Flags(flags ...Flag) Generator {
	return func(ctx *Ctx) ([]Completion, error) {
		var items []Completion
		onlyLong := strings.HasPrefix(ctx.Seed, "--")
		for _, f := range flags {
			var forms []string
			if f.Short != 0 && !onlyLong {
				forms = append(forms, "-"+string(f.Short))
			}
			if f.Long != "" {
				forms = append(forms, "--"+f.Long)
			}
			for _, form := range forms {
				if !strings.HasPrefix(form, ctx.Seed) {
					continue
				}
				item := ctx.Word(form)
				if f.Doc != "" {
					item.Display = form + " (" + f.Doc + ")"
				}
				items = append(items, item)
			}
		}
		return items, nil
	}
}

// Files returns a Generator for filesystem paths. Relative paths are resolved
// against the directory returned by base; a nil base or an empty result means
// the working directory. Directories get a trailing slash. Dot files are only
// generated when the seed's last component starts with a dot.
func Files(base func(ctx *Ctx) string) Generator {
	return func(ctx *Ctx) ([]Completion, error) {
		return generateFiles(ctx, baseDir(ctx, base), false)
	}
}

// Executables is like Files, but only generates directories and executable
// files.
func Executables(base func(ctx *Ctx) string) Generator {
	return func(ctx *Ctx) ([]Completion, error) {
		return generateFiles(ctx, baseDir(ctx, base), true)
	}
}

func baseDir(ctx *Ctx, base func(ctx *Ctx) string) string {
	if base == nil {
		return ""
	}
	return base(ctx)
}

func generateFiles(ctx *Ctx, base string, onlyExecutable bool) ([]Completion, error) {
	seed := ctx.Seed
	dir, fileprefix := splitSeed(seed)
	dirToRead := expandTilde(ctx, dir)
	if dirToRead == "" {
		dirToRead = "."
	}
	if base != "" && !filepath.IsAbs(dirToRead) {
		dirToRead = filepath.Join(base, dirToRead)
	}

	files, err := os.ReadDir(dirToRead)
	if err != nil {
		return nil, fmt.Errorf("cannot list directory %s: %v", dirToRead, err)
	}
	var items []Completion
	for _, file := range files {
		name := file.Name()
		if !strings.HasPrefix(name, fileprefix) || dotfile(fileprefix) != dotfile(name) {
			continue
		}
		stat, err := file.Info()
		if err != nil {
			continue
		}
		full := dir + name
		isDir := stat.IsDir()
		if stat.Mode()&os.ModeSymlink != 0 {
			if target, err := os.Stat(filepath.Join(dirToRead, name)); err == nil {
				isDir = target.IsDir()
				stat = target
			}
		}
		if isDir {
			full += "/"
		} else if onlyExecutable && !fsutil.IsExecutable(stat) {
			continue
		}
		items = append(items, ctx.Word(full))
	}
	return items, nil
}

// Splits a seed into the directory part, including the trailing slash, and
// the file part.
func splitSeed(seed string) (string, string) {
	i := strings.LastIndexByte(seed, '/')
	return seed[:i+1], seed[i+1:]
}

func expandTilde(ctx *Ctx, dir string) string {
	if dir != "~/" && !strings.HasPrefix(dir, "~/") {
		return dir
	}
	home := lookupEnv(ctx, env.HOME)
	if home == "" {
		return dir
	}
	return home + dir[1:]
}

func dotfile(fname string) bool {
	return strings.HasPrefix(fname, ".")
}

func lookupEnv(ctx *Ctx, name string) string {
	if ctx.St != nil {
		if e, ok := state.Lookup[*env.Environ](ctx.St); ok {
			return e.Value(name)
		}
	}
	return os.Getenv(name)
}

// Commands returns a Generator for executables found on PATH. A seed
// containing a slash completes paths to executables instead.
func Commands() Generator {
	return func(ctx *Ctx) ([]Completion, error) {
		if fsutil.DontSearch(ctx.Seed) {
			return generateFiles(ctx, "", true)
		}
		var items []Completion
		fsutil.EachExternal(lookupEnv(ctx, env.PATH), func(name string) {
			if strings.HasPrefix(name, ctx.Seed) {
				items = append(items, ctx.Word(name))
			}
		})
		return items, nil
	}
}

// Builtins returns a Generator for the names of a builtin registry.
func Builtins(reg interface{ Names() []string }) Generator {
	return Names(reg.Names)
}

// History returns a Generator for history entries that start with the text
// before the cursor. Candidates replace the whole text before the cursor.
func History() Generator {
	return func(ctx *Ctx) ([]Completion, error) {
		if ctx.St == nil {
			return nil, nil
		}
		h, ok := state.Lookup[*histutil.History](ctx.St)
		if !ok {
			return nil, nil
		}
		prefix := ctx.Line[:ctx.Dot]
		span := diag.Ranging{From: 0, To: ctx.Dot}
		var items []Completion
		for _, e := range h.Entries() {
			if e.Text != prefix && strings.HasPrefix(e.Text, prefix) {
				items = append(items, Completion{Display: e.Text, Replacement: e.Text, Span: span})
			}
		}
		return items, nil
	}
}

// Common predicates.

// InCommandPos matches words in command position.
func InCommandPos(ctx *Ctx) bool { return ctx.CommandPos }

// InRedirTarget matches redirection targets.
func InRedirTarget(ctx *Ctx) bool { return ctx.RedirTarget }

// IsFlag matches arguments that start with a dash.
func IsFlag(ctx *Ctx) bool {
	return !ctx.CommandPos && strings.HasPrefix(ctx.Seed, "-")
}

// ArgOf returns a predicate matching arguments of the named command.
func ArgOf(name string) func(ctx *Ctx) bool {
	return func(ctx *Ctx) bool {
		if ctx.CommandPos || ctx.RedirTarget {
			return false
		}
		for _, w := range ctx.Words[:len(ctx.Words)-1] {
			if !parse.IsAssignment(w) {
				return w == name
			}
		}
		return false
	}
}

// And combines predicates.
func And(preds ...func(ctx *Ctx) bool) func(ctx *Ctx) bool {
	return func(ctx *Ctx) bool {
		for _, p := range preds {
			if !p(ctx) {
				return false
			}
		}
		return true
	}
}
