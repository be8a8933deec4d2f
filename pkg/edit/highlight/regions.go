package highlight

import (
	"sort"
	"strings"

	"src.kesh.sh/pkg/parse"
)

type regionKind int

// Region kinds.
const (
	// A region whose type can be determined from the token alone.
	lexicalRegion regionKind = iota
	// A region whose type depends on the position of the token in a command.
	semanticRegion
)

// Region types.
const (
	barewordRegion     = "bareword"
	singleQuotedRegion = "single-quoted"
	doubleQuotedRegion = "double-quoted"
	variableRegion     = "variable"
	substRegion        = "subst"
	wildcardRegion     = "wildcard"
	tildeRegion        = "tilde"
	escapeRegion       = "escape"
	commentRegion      = "comment"
	ioNumberRegion     = "io-number"
	heredocRegion      = "heredoc"
	commandRegion      = "command"
	keywordRegion      = "keyword"
	errorRegion        = "error"
)

type region struct {
	Begin int
	End   int
	Kind  regionKind
	Type  string
}

func getRegionsFromString(code string) []region {
	tokens, _ := parse.Lex(code)
	return getRegions(tokens)
}

func getRegions(tokens []parse.Token) []region {
	cmdPos := map[int]bool{}
	for _, i := range parse.CommandPositions(tokens) {
		cmdPos[i] = true
	}
	var regions []region
	for i, tok := range tokens {
		switch tok.Kind {
		case parse.WordToken:
			switch {
			case cmdPos[i] && tok.IsReserved():
				regions = append(regions, region{tok.From, tok.To, semanticRegion, keywordRegion})
			case cmdPos[i]:
				regions = append(regions, region{tok.From, tok.To, semanticRegion, commandRegion})
			case parse.IsAssignment(tok.Text) && precedesCommand(tokens, i, cmdPos):
				eq := strings.IndexByte(tok.Text, '=')
				regions = append(regions, region{tok.From, tok.From + eq, semanticRegion, variableRegion})
				regions = append(regions, wordRegions(tok.Text[eq+1:], tok.From+eq+1)...)
			default:
				regions = append(regions, wordRegions(tok.Text, tok.From)...)
			}
		case parse.Operator:
			regions = append(regions, region{tok.From, tok.To, lexicalRegion, tok.Text})
			if tok.Heredoc != "" {
				end := tok.HeredocPos + len(tok.Heredoc)
				regions = append(regions, region{tok.HeredocPos, end, lexicalRegion, heredocRegion})
			}
		case parse.IONumber:
			regions = append(regions, region{tok.From, tok.To, lexicalRegion, ioNumberRegion})
		case parse.Comment:
			regions = append(regions, region{tok.From, tok.To, lexicalRegion, commentRegion})
		}
	}
	return fixRegions(regions)
}

// Reports whether the word at index i is in the prefix of a simple command,
// before the command name.
func precedesCommand(tokens []parse.Token, i int, cmdPos map[int]bool) bool {
	for j := i - 1; j >= 0; j-- {
		tok := tokens[j]
		switch {
		case tok.Kind == parse.Newline, tok.Kind == parse.Operator && !isRedir(tok.Text):
			return true
		case cmdPos[j]:
			return tok.IsReserved()
		}
	}
	return true
}

func isRedir(s string) bool {
	switch s {
	case "<", ">", ">>", "<<", "<<-", "<&", ">&", "<>", ">|", "<<<":
		return true
	}
	return false
}

// Splits a word into lexical regions. The offsets are relative to base.
func wordRegions(s string, base int) []region {
	var regions []region
	add := func(from, to int, typ string) {
		if n := len(regions); n > 0 && typ == barewordRegion &&
			regions[n-1].Type == barewordRegion && regions[n-1].End == base+from {
			regions[n-1].End = base + to
			return
		}
		regions = append(regions, region{base + from, base + to, lexicalRegion, typ})
	}
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '~' && i == 0:
			add(0, 1, tildeRegion)
			i++
		case c == '\\':
			j := min(i+2, len(s))
			add(i, j, escapeRegion)
			i = j
		case c == '\'' || c == '"' || c == '`' || c == '$':
			j := parse.SkipConstruct(s, i)
			if j == -1 {
				j = len(s)
			}
			if c == '$' && j == i+1 {
				j = paramEnd(s, i+1)
			}
			add(i, j, constructType(s[i:j]))
			i = j
		case c == '*' || c == '?' || c == '[':
			add(i, i+1, wildcardRegion)
			i++
		default:
			add(i, i+1, barewordRegion)
			i++
		}
	}
	return regions
}

// Returns the end of the parameter name starting at s[i].
func paramEnd(s string, i int) int {
	if i >= len(s) {
		return i
	}
	if c := s[i]; c >= '0' && c <= '9' || strings.IndexByte("?$!#@*-", c) >= 0 {
		return i + 1
	}
	j := i
	for j < len(s) && (s[j] == '_' || 'a' <= s[j] && s[j] <= 'z' ||
		'A' <= s[j] && s[j] <= 'Z' || j > i && '0' <= s[j] && s[j] <= '9') {
		j++
	}
	return j
}

func constructType(s string) string {
	switch {
	case s[0] == '\'':
		return singleQuotedRegion
	case s[0] == '"':
		return doubleQuotedRegion
	case s[0] == '`' || strings.HasPrefix(s, "$("):
		return substRegion
	case s == "$":
		return barewordRegion
	}
	return variableRegion
}

// Sorts regions by begin offset and drops regions that overlap an earlier
// one. Semantic regions take precedence over lexical regions that begin at
// the same offset.
func fixRegions(regions []region) []region {
	sort.SliceStable(regions, func(i, j int) bool {
		if regions[i].Begin != regions[j].Begin {
			return regions[i].Begin < regions[j].Begin
		}
		return regions[i].Kind > regions[j].Kind
	})
	var fixed []region
	lastEnd := 0
	for _, r := range regions {
		if r.Begin < lastEnd || r.Begin == r.End {
			continue
		}
		fixed = append(fixed, r)
		lastEnd = r.End
	}
	return fixed
}
