package parse

import (
	"strings"
	"unicode/utf8"

	"src.kesh.sh/pkg/diag"
)

type wordMode int

const (
	normalMode wordMode = iota
	// Inside double quotes.
	dqMode
	// Here-document bodies and arithmetic expressions: like dqMode, but
	// double quotes are not special.
	heredocMode
)

// Characters that a backslash escapes in each mode other than normalMode.
var escapable = map[wordMode]string{
	dqMode:      "$`\"\\\n",
	heredocMode: "$`\\\n",
}

// parseWord parses the raw text of a word, which starts at offset base of
// the root source.
func (ps *parser) parseWord(s string, base int, mode wordMode) *Word {
	return &Word{Ranging: diag.Ranging{From: base, To: base + len(s)},
		Parts: ps.parseParts(s, base, mode)}
}

func (ps *parser) parseParts(s string, base int, mode wordMode) []WordPart {
	var parts []WordPart
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			parts = append(parts, &Lit{lit.String()})
			lit.Reset()
		}
	}
	add := func(part WordPart) {
		flush()
		parts = append(parts, part)
	}

	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '\\':
			if i+1 == len(s) {
				lit.WriteByte(c)
				i++
				break
			}
			if s[i+1] == '\n' {
				i += 2
				break
			}
			if mode != normalMode && strings.IndexByte(escapable[mode], s[i+1]) == -1 {
				lit.WriteByte(c)
				i++
				break
			}
			_, size := utf8.DecodeRuneInString(s[i+1:])
			add(&Escaped{s[i+1 : i+1+size]})
			i += 1 + size
		case c == '\'' && mode == normalMode:
			j := ps.end(skipSingle(s, i), base+i)
			add(&SglQuoted{s[i+1 : j-1]})
			i = j
		case c == '"' && mode == normalMode:
			j := ps.end(skipDouble(s, i), base+i)
			add(&DblQuoted{ps.parseParts(s[i+1:j-1], base+i+1, dqMode)})
			i = j
		case c == '`':
			j := ps.end(skipBackquote(s, i), base+i)
			add(&CmdSubst{ps.program(unescapeBackquote(s[i+1:j-1]), base+i+1)})
			i = j
		case c == '$':
			part, j := ps.dollar(s, i, base)
			if part == nil {
				lit.WriteByte(c)
				i++
			} else {
				add(part)
				i = j
			}
		default:
			lit.WriteByte(c)
			i++
		}
	}
	flush()
	return parts
}

// end checks the result of a skip function. The lexer has already rejected
// unterminated constructs in ordinary words, but here-document bodies are
// only checked here.
func (ps *parser) end(j int, pos int) int {
	if j == -1 {
		ps.failAt(diag.Ranging{From: pos, To: pos + 1}, "unterminated quoting or substitution")
	}
	return j
}

func unescapeBackquote(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && strings.IndexByte("$`\\", s[i+1]) >= 0 {
			i++
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

// dollar parses the construct introduced by the $ at s[i]. It returns nil if
// the $ is literal.
func (ps *parser) dollar(s string, i, base int) (WordPart, int) {
	if i+1 >= len(s) {
		return nil, i + 1
	}
	switch c := s[i+1]; {
	case c == '(':
		j := ps.end(skipParens(s, i+1), base+i)
		if strings.HasPrefix(s[i+1:], "((") && s[j-2] == ')' && skipParens(s, i+2) == j-1 {
			expr := s[i+3 : j-2]
			return &ArithExp{ps.parseWord(expr, base+i+3, heredocMode)}, j
		}
		return &CmdSubst{ps.program(s[i+2:j-1], base+i+2)}, j
	case c == '{':
		j := ps.end(skipBraces(s, i+1), base+i)
		return ps.braced(s[i+2:j-1], base+i+2), j
	case isNameStart(c):
		j := i + 2
		for j < len(s) && isNameChar(s[j]) {
			j++
		}
		return &ParamExp{Name: s[i+1 : j]}, j
	case '0' <= c && c <= '9' || isSpecialParam(c):
		return &ParamExp{Name: string(c)}, i + 2
	}
	return nil, i + 1
}

var paramOps = []string{":-", ":=", ":+", ":?", "##", "%%", "-", "=", "+", "?", "#", "%"}

// braced parses the inside of ${...}.
func (ps *parser) braced(s string, base int) WordPart {
	bad := func() {
		ps.failAt(diag.Ranging{From: base - 2, To: base + len(s) + 1}, "bad substitution")
	}
	if s == "#" {
		return &ParamExp{Name: "#"}
	}
	n := &ParamExp{}
	if strings.HasPrefix(s, "#") {
		n.Length = true
		s, base = s[1:], base+1
	}
	nameLen := paramNameLen(s)
	if nameLen == 0 {
		bad()
	}
	n.Name = s[:nameLen]
	rest := s[nameLen:]
	if rest == "" {
		return n
	}
	if n.Length {
		bad()
	}
	for _, op := range paramOps {
		if strings.HasPrefix(rest, op) {
			n.Op = op
			argPos := base + nameLen + len(op)
			n.Arg = ps.parseWord(rest[len(op):], argPos, normalMode)
			return n
		}
	}
	bad()
	return nil
}

func paramNameLen(s string) int {
	if s == "" {
		return 0
	}
	switch c := s[0]; {
	case isNameStart(c):
		i := 1
		for i < len(s) && isNameChar(s[i]) {
			i++
		}
		return i
	case '0' <= c && c <= '9':
		i := 1
		for i < len(s) && '0' <= s[i] && s[i] <= '9' {
			i++
		}
		return i
	case isSpecialParam(c):
		return 1
	}
	return 0
}

func isNameStart(c byte) bool {
	return c == '_' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isNameChar(c byte) bool { return isNameStart(c) || '0' <= c && c <= '9' }

func isSpecialParam(c byte) bool { return strings.IndexByte("?$!#@*-", c) >= 0 }
