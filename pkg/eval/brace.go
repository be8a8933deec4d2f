package eval

import (
	"strconv"
	"strings"

	"src.kesh.sh/pkg/parse"
)

// An item of a word during brace expansion: either a character of an
// unquoted literal, or another part kept whole.
type braceItem struct {
	c    byte
	part parse.WordPart
}

func (it braceItem) is(c byte) bool { return it.part == nil && it.c == c }

// Performs brace expansion: a{b,c}d becomes abd acd, and {1..3} becomes 1 2
// 3. Braces and commas must be unquoted.
func braceExpand(w *parse.Word) []*parse.Word {
	items := flattenBrace(w.Parts)
	expanded := expandBraceItems(items)
	if len(expanded) == 1 {
		return []*parse.Word{w}
	}
	words := make([]*parse.Word, len(expanded))
	for i, items := range expanded {
		words[i] = &parse.Word{Ranging: w.Ranging, Parts: unflattenBrace(items)}
	}
	return words
}

func flattenBrace(parts []parse.WordPart) []braceItem {
	var items []braceItem
	for _, part := range parts {
		if lit, ok := part.(*parse.Lit); ok {
			for i := 0; i < len(lit.Text); i++ {
				items = append(items, braceItem{c: lit.Text[i]})
			}
		} else {
			items = append(items, braceItem{part: part})
		}
	}
	return items
}

func unflattenBrace(items []braceItem) []parse.WordPart {
	var parts []parse.WordPart
	var sb strings.Builder
	flush := func() {
		if sb.Len() > 0 {
			parts = append(parts, &parse.Lit{Text: sb.String()})
			sb.Reset()
		}
	}
	for _, it := range items {
		if it.part == nil {
			sb.WriteByte(it.c)
		} else {
			flush()
			parts = append(parts, it.part)
		}
	}
	flush()
	return parts
}

func expandBraceItems(items []braceItem) [][]braceItem {
	for i := range items {
		if !items[i].is('{') {
			continue
		}
		depth := 0
		var commas []int
		j := i + 1
		for ; j < len(items); j++ {
			if items[j].is('{') {
				depth++
			} else if items[j].is('}') {
				if depth == 0 {
					break
				}
				depth--
			} else if items[j].is(',') && depth == 0 {
				commas = append(commas, j)
			}
		}
		if j == len(items) {
			continue
		}
		var alts [][]braceItem
		if len(commas) > 0 {
			start := i + 1
			for _, c := range append(commas, j) {
				alts = append(alts, items[start:c])
				start = c + 1
			}
		} else if seq, ok := braceSequence(items[i+1 : j]); ok {
			for _, s := range seq {
				alts = append(alts, flattenBrace([]parse.WordPart{&parse.Lit{Text: s}}))
			}
		} else {
			continue
		}
		prefix := items[:i]
		suffixes := expandBraceItems(items[j+1:])
		var out [][]braceItem
		for _, alt := range alts {
			for _, a := range expandBraceItems(alt) {
				for _, s := range suffixes {
					w := make([]braceItem, 0, len(prefix)+len(a)+len(s))
					w = append(append(append(w, prefix...), a...), s...)
					out = append(out, w)
				}
			}
		}
		return out
	}
	return [][]braceItem{items}
}

// Parses the inside of {x..y} or {x..y..step} where x and y are both integers
// or both single letters.
func braceSequence(items []braceItem) ([]string, bool) {
	var sb strings.Builder
	for _, it := range items {
		if it.part != nil {
			return nil, false
		}
		sb.WriteByte(it.c)
	}
	fields := strings.Split(sb.String(), "..")
	if len(fields) != 2 && len(fields) != 3 {
		return nil, false
	}
	step := 1
	if len(fields) == 3 {
		n, err := strconv.Atoi(fields[2])
		if err != nil || n == 0 {
			return nil, false
		}
		if n < 0 {
			n = -n
		}
		step = n
	}
	from, err1 := strconv.Atoi(fields[0])
	to, err2 := strconv.Atoi(fields[1])
	format := strconv.Itoa
	if err1 != nil || err2 != nil {
		if len(fields[0]) != 1 || len(fields[1]) != 1 || !isLetter(fields[0][0]) || !isLetter(fields[1][0]) {
			return nil, false
		}
		from, to = int(fields[0][0]), int(fields[1][0])
		format = func(i int) string { return string(rune(i)) }
	}
	var seq []string
	if from <= to {
		for i := from; i <= to; i += step {
			seq = append(seq, format(i))
		}
	} else {
		for i := from; i >= to; i -= step {
			seq = append(seq, format(i))
		}
	}
	return seq, true
}

func isLetter(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}
