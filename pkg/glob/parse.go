package glob

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Pattern is a parsed glob pattern.
type Pattern struct {
	Segments []Segment
}

// Segment is the building block of Pattern.
type Segment interface{ isSegment() }

// Slash is a path separator. Consecutive slashes are parsed as one.
type Slash struct{}

// Literal is a run of characters that match themselves.
type Literal struct{ Data string }

// Wild is a * or ?.
type Wild struct{ Type WildType }

// WildType is the type of a Wild.
type WildType int

// Values for WildType.
const (
	Question WildType = iota
	Star
)

// Class is a bracket expression like [a-z] or [!0-9].
type Class struct {
	Negate bool
	Ranges []RuneRange
	Funcs  []func(rune) bool
}

// RuneRange is an inclusive range of runes in a Class.
type RuneRange struct{ Lo, Hi rune }

func (Slash) isSegment()   {}
func (Literal) isSegment() {}
func (Wild) isSegment()    {}
func (Class) isSegment()   {}

// Match returns whether r is matched by the class.
func (c Class) Match(r rune) bool {
	in := false
	for _, rr := range c.Ranges {
		if rr.Lo <= r && r <= rr.Hi {
			in = true
			break
		}
	}
	for _, f := range c.Funcs {
		if !in && f(r) {
			in = true
		}
	}
	return in != c.Negate
}

var namedClasses = map[string]func(rune) bool{
	"alpha": unicode.IsLetter,
	"digit": unicode.IsDigit,
	"alnum": func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) },
	"upper": unicode.IsUpper,
	"lower": unicode.IsLower,
	"space": unicode.IsSpace,
	"punct": unicode.IsPunct,
}

// Parse parses a pattern. A backslash makes the next character literal.
func Parse(s string) Pattern {
	var segs []Segment
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			segs = append(segs, Literal{lit.String()})
			lit.Reset()
		}
	}
	for i := 0; i < len(s); {
		switch c := s[i]; c {
		case '*', '?':
			flush()
			if c == '?' {
				segs = append(segs, Wild{Question})
			} else if len(segs) == 0 || segs[len(segs)-1] != (Wild{Star}) {
				segs = append(segs, Wild{Star})
			}
			i++
		case '/':
			flush()
			segs = append(segs, Slash{})
			for i < len(s) && s[i] == '/' {
				i++
			}
		case '[':
			if class, n, ok := parseClass(s[i:]); ok {
				flush()
				segs = append(segs, class)
				i += n
			} else {
				lit.WriteByte(c)
				i++
			}
		case '\\':
			if i+1 < len(s) {
				_, n := utf8.DecodeRuneInString(s[i+1:])
				lit.WriteString(s[i+1 : i+1+n])
				i += 1 + n
			} else {
				lit.WriteByte(c)
				i++
			}
		default:
			lit.WriteByte(c)
			i++
		}
	}
	flush()
	return Pattern{segs}
}

// parseClass parses a bracket expression at the start of s, returning the
// number of bytes consumed. It fails when there is no closing bracket.
func parseClass(s string) (Class, int, bool) {
	var c Class
	i := 1
	if i < len(s) && (s[i] == '!' || s[i] == '^') {
		c.Negate = true
		i++
	}
	first := true
	for i < len(s) {
		if s[i] == ']' && !first {
			return c, i + 1, true
		}
		first = false
		if strings.HasPrefix(s[i:], "[:") {
			if j := strings.Index(s[i+2:], ":]"); j >= 0 {
				if f, ok := namedClasses[s[i+2:i+2+j]]; ok {
					c.Funcs = append(c.Funcs, f)
					i += 2 + j + 2
					continue
				}
			}
		}
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		lo, n := utf8.DecodeRuneInString(s[i:])
		i += n
		hi := lo
		if i+1 < len(s) && s[i] == '-' && s[i+1] != ']' {
			var m int
			hi, m = utf8.DecodeRuneInString(s[i+1:])
			i += 1 + m
		}
		c.Ranges = append(c.Ranges, RuneRange{lo, hi})
	}
	return Class{}, 0, false
}

// HasMeta returns whether s contains an unescaped wildcard or bracket
// expression.
func HasMeta(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '*', '?':
			return true
		case '[':
			if _, _, ok := parseClass(s[i:]); ok {
				return true
			}
		}
	}
	return false
}

// Escape escapes the characters of s that are special in patterns.
func Escape(s string) string {
	if !strings.ContainsAny(s, `*?[\`) {
		return s
	}
	var sb strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`*?[\`, r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
