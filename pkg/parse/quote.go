package parse

import "strings"

// Quote returns a representation of s that the parser reads back as a single
// word with the value s. Strings made only of safe characters are returned
// as is; others are single-quoted.
func Quote(s string) string {
	if s == "" {
		return "''"
	}
	bare := !reservedWords[s]
	for i := 0; i < len(s) && bare; i++ {
		bare = isSafe(s[i], i == 0)
	}
	if bare {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func isSafe(c byte, first bool) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c >= 0x80:
		return true
	case c == '~' || c == '#':
		return !first
	}
	return strings.IndexByte("_@%+=:,./-", c) >= 0
}

// QuoteJoin quotes each of the words and joins them with spaces.
func QuoteJoin(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = Quote(w)
	}
	return strings.Join(quoted, " ")
}
