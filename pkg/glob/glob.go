// Package glob implements pathname pattern matching and expansion.
package glob

import (
	"os"
	"strings"
	"unicode/utf8"
)

// Match returns whether the whole of name matches pattern. Wildcards match
// slashes too, as in case patterns.
func Match(pattern, name string) bool {
	return match(Parse(pattern).Segments, name)
}

// Match returns whether the whole of name matches p.
func (p Pattern) Match(name string) bool {
	return match(p.Segments, name)
}

func match(segs []Segment, name string) bool {
	for len(segs) > 0 {
		switch seg := segs[0].(type) {
		case Wild:
			if seg.Type == Star {
				rest := segs[1:]
				if len(rest) == 0 {
					return true
				}
				for i := range name {
					if match(rest, name[i:]) {
						return true
					}
				}
				return match(rest, "")
			}
			if name == "" {
				return false
			}
			_, n := utf8.DecodeRuneInString(name)
			name = name[n:]
		case Class:
			r, n := utf8.DecodeRuneInString(name)
			if name == "" || !seg.Match(r) {
				return false
			}
			name = name[n:]
		case Literal:
			if !strings.HasPrefix(name, seg.Data) {
				return false
			}
			name = name[len(seg.Data):]
		case Slash:
			if !strings.HasPrefix(name, "/") {
				return false
			}
			name = name[1:]
		}
		segs = segs[1:]
	}
	return name == ""
}

// Glob returns the paths matching pattern, in lexicographic order. Names
// starting with a dot are only matched by elements that start with a literal
// dot.
func Glob(pattern string) []string {
	return Parse(pattern).Glob()
}

// Glob returns the paths matching the pattern.
func (p Pattern) Glob() []string { return p.GlobIn("") }

// GlobIn is like Glob, but relative paths are resolved against base instead
// of the working directory. Results stay relative.
func (p Pattern) GlobIn(base string) []string {
	segs := p.Segments
	results := []string{""}
	if len(segs) > 0 && segs[0] == (Slash{}) {
		results = []string{"/"}
		segs = segs[1:]
	}
	elems := splitElements(segs)
	for i, elem := range elems {
		last := i == len(elems)-1
		var next []string
		for _, dir := range results {
			next = appendMatches(next, base, dir, elem, last)
		}
		if len(next) == 0 {
			return nil
		}
		results = next
	}
	return results
}

func splitElements(segs []Segment) [][]Segment {
	var elems [][]Segment
	var cur []Segment
	for _, seg := range segs {
		if seg == (Slash{}) {
			elems = append(elems, cur)
			cur = nil
		} else {
			cur = append(cur, seg)
		}
	}
	return append(elems, cur)
}

func appendMatches(out []string, base, dir string, elem []Segment, last bool) []string {
	if len(elem) == 0 {
		// Trailing slash: keep only directories.
		if isDir(resolve(base, dir)) {
			out = append(out, dir+"/")
		}
		return out
	}
	if lit, ok := literal(elem); ok {
		path := join(dir, lit)
		if last && exists(resolve(base, path)) || !last && isDir(resolve(base, path)) {
			out = append(out, path)
		}
		return out
	}
	readFrom := resolve(base, dir)
	if readFrom == "" {
		readFrom = "."
	}
	entries, err := os.ReadDir(readFrom)
	if err != nil {
		return out
	}
	matchHidden := false
	if l, ok := elem[0].(Literal); ok && strings.HasPrefix(l.Data, ".") {
		matchHidden = true
	}
	for _, entry := range entries {
		name := entry.Name()
		if name[0] == '.' && !matchHidden {
			continue
		}
		if !match(elem, name) {
			continue
		}
		path := join(dir, name)
		if last || isDir(resolve(base, path)) {
			out = append(out, path)
		}
	}
	return out
}

func literal(elem []Segment) (string, bool) {
	if len(elem) == 1 {
		if l, ok := elem[0].(Literal); ok {
			return l.Data, true
		}
	}
	return "", false
}

func join(dir, name string) string {
	if dir == "" {
		return name
	}
	if strings.HasSuffix(dir, "/") {
		return dir + name
	}
	return dir + "/" + name
}

func resolve(base, path string) string {
	if base == "" || strings.HasPrefix(path, "/") {
		return path
	}
	if path == "" {
		return base
	}
	return join(base, path)
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
