package alias

import (
	"strings"

	"src.kesh.sh/pkg/parse"
	"src.kesh.sh/pkg/state"
)

// MaxDepth is the maximum nesting of alias expansions.
const MaxDepth = 32

// Expand performs alias expansion on a source line. Words in command
// position are looked up in t; each expansion is itself expanded, skipping
// aliases already being expanded. When an expansion ends in a blank, the
// word after the alias is expanded too.
func Expand(t *Table, st *state.Store, line string) string {
	if t == nil || t.Len() == 0 {
		return line
	}
	return expand(t, st, line, nil, 0)
}

func expand(t *Table, st *state.Store, line string, seen []string, depth int) string {
	if depth >= MaxDepth {
		return line
	}
	tokens, _ := parse.Lex(line)
	inCommandPos := make(map[int]bool)
	for _, i := range parse.CommandPositions(tokens) {
		inCommandPos[i] = true
	}

	var sb strings.Builder
	last := 0
	nextEligible := false
	for i, tok := range tokens {
		if tok.Kind != parse.WordToken {
			nextEligible = false
			continue
		}
		eligible := inCommandPos[i] || nextEligible
		nextEligible = false
		if !eligible || contains(seen, tok.Text) {
			continue
		}
		exp, ok := t.Lookup(st, tok.Text)
		if !ok {
			continue
		}
		expanded := expand(t, st, exp, append(seen[:len(seen):len(seen)], tok.Text), depth+1)
		sb.WriteString(line[last:tok.From])
		sb.WriteString(expanded)
		last = tok.To
		nextEligible = strings.HasSuffix(exp, " ") || strings.HasSuffix(exp, "\t")
	}
	if last == 0 {
		return line
	}
	sb.WriteString(line[last:])
	return sb.String()
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}
