// Package complete implements rule-based code completion for the shell.
//
// The line before the cursor is tokenized with the parse lexer to build a Ctx.
// Rules are tried in order; the first rule whose predicate matches supplies
// the candidates. A rule that declares Merge also lets later matching rules
// contribute.
package complete

import (
	"errors"
	"sort"
	"strings"
	"unicode/utf8"

	"src.kesh.sh/pkg/diag"
	"src.kesh.sh/pkg/logutil"
	"src.kesh.sh/pkg/parse"
	"src.kesh.sh/pkg/state"
)

var logger = logutil.GetLogger("[complete] ")

// ErrNoCompletion is returned by Complete when no rule applies, or when the
// cursor is somewhere completion makes no sense, like inside a comment.
var ErrNoCompletion = errors.New("no completion")

// Completion is a single candidate.
type Completion struct {
	// Text shown in the completion menu.
	Display string
	// Text inserted in place of Span when the candidate is accepted.
	Replacement string
	Span        diag.Ranging
}

// Ctx is the completion context, built from the line and cursor position.
type Ctx struct {
	Line string
	Dot  int
	// Tokens of Line[:Dot]. The word being completed is always
	// Tokens[TokenIndex], even when it is empty.
	Tokens     []parse.Token
	TokenIndex int
	// The raw text of the word being completed, up to the cursor.
	CurWord string
	// CurWord with quotes and backslashes removed.
	Seed string
	// The range of CurWord in Line.
	Span diag.Ranging
	// Words of the current command up to and including CurWord, raw.
	Words []string
	// Whether CurWord is in command position.
	CommandPos bool
	// Whether CurWord is the target of a redirection.
	RedirTarget bool
	// The shell state, read by generators at completion time.
	St *state.Store
}

// NewCtx builds a Ctx for completing at dot in line. It returns false when
// the cursor is inside a comment.
func NewCtx(line string, dot int, st *state.Store) (*Ctx, bool) {
	if dot < 0 || dot > len(line) {
		dot = len(line)
	}
	src := line[:dot]
	// Lex with a placeholder character appended, so that an empty word at the
	// cursor still gets a token and is classified like any other word. Lexing
	// errors are ignored; incomplete input still gives usable tokens.
	tokens, _ := parse.Lex(src + "\x00")
	i := placeholderIndex(tokens, dot)
	if i == -1 {
		return nil, false
	}
	tok := &tokens[i]
	tok.Text = tok.Text[:len(tok.Text)-1]
	tok.To = dot
	ctx := &Ctx{
		Line: line, Dot: dot, Tokens: tokens[:i+1], TokenIndex: i,
		CurWord: tok.Text, Seed: Unquote(tok.Text), Span: tok.Ranging, St: st,
	}
	for _, p := range parse.CommandPositions(tokens) {
		if p == i {
			ctx.CommandPos = true
		}
	}
	ctx.Words, ctx.RedirTarget = commandWords(ctx.Tokens)
	return ctx, true
}

// Finds the token that contains the placeholder at offset dot. Only word
// tokens qualify.
func placeholderIndex(tokens []parse.Token, dot int) int {
	for i, tok := range tokens {
		if tok.From <= dot && dot < tok.To {
			if tok.Kind == parse.WordToken && strings.HasSuffix(tok.Text, "\x00") {
				return i
			}
			return -1
		}
	}
	return -1
}

// Returns the words of the last command in tokens, and whether the last word
// is a redirection target.
func commandWords(tokens []parse.Token) ([]string, bool) {
	var words []string
	target := false
	for i, tok := range tokens {
		last := i == len(tokens)-1
		switch tok.Kind {
		case parse.Newline:
			words = nil
		case parse.Operator:
			if isRedirOp(tok.Text) {
				target = true
			} else {
				words = nil
			}
		case parse.IONumber:
		case parse.WordToken:
			if target {
				target = false
				if last {
					return append(words, tok.Text), true
				}
				continue
			}
			words = append(words, tok.Text)
		}
	}
	return words, false
}

func isRedirOp(s string) bool {
	return strings.HasPrefix(s, "<") || strings.HasPrefix(s, ">")
}

// Unquote removes quotes and backslashes from a raw word. Unterminated quotes
// are tolerated; expansions are kept verbatim.
func Unquote(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			if i+1 < len(s) {
				i++
				sb.WriteByte(s[i])
			}
		case '\'':
			end := strings.IndexByte(s[i+1:], '\'')
			if end == -1 {
				sb.WriteString(s[i+1:])
				return sb.String()
			}
			sb.WriteString(s[i+1 : i+1+end])
			i += end + 1
		case '"':
			j := i + 1
			for ; j < len(s) && s[j] != '"'; j++ {
				if s[j] == '\\' && j+1 < len(s) && strings.IndexByte("$`\"\\", s[j+1]) >= 0 {
					j++
				}
				sb.WriteByte(s[j])
			}
			i = j
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// Generator generates candidates for a context.
type Generator func(ctx *Ctx) ([]Completion, error)

// Rule pairs a predicate with a generator.
type Rule struct {
	Name string
	// Whether the rule applies. A nil Pred always matches.
	Pred func(ctx *Ctx) bool
	Gen  Generator
	// If true, later matching rules also contribute candidates.
	Merge bool
}

// Result is the result of Complete.
type Result struct {
	// Name of the rule that matched first.
	Name  string
	Items []Completion
}

// Complete runs the rules against ctx. Candidates are sorted by replacement
// text, and duplicates are removed. An error from a generator is logged and
// its rule contributes nothing.
func Complete(ctx *Ctx, rules []Rule) (*Result, error) {
	var result *Result
	for _, rule := range rules {
		if rule.Pred != nil && !rule.Pred(ctx) {
			continue
		}
		if result == nil {
			result = &Result{Name: rule.Name}
		}
		items, err := rule.Gen(ctx)
		if err != nil {
			logger.Printf("rule %s: %v", rule.Name, err)
		}
		result.Items = append(result.Items, items...)
		if !rule.Merge {
			break
		}
	}
	if result == nil {
		return nil, ErrNoCompletion
	}
	result.Items = sortAndDedup(result.Items)
	return result, nil
}

func sortAndDedup(items []Completion) []Completion {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Replacement != items[j].Replacement {
			return items[i].Replacement < items[j].Replacement
		}
		return items[i].Span.From < items[j].Span.From
	})
	var result []Completion
	for i, item := range items {
		if i == 0 || item.Replacement != items[i-1].Replacement || item.Span != items[i-1].Span {
			result = append(result, item)
		}
	}
	return result
}

// CommonPrefix returns the longest common prefix of the replacements of
// items. It returns "" when the items replace different spans.
func CommonPrefix(items []Completion) string {
	if len(items) == 0 {
		return ""
	}
	prefix := items[0].Replacement
	for _, item := range items[1:] {
		if item.Span != items[0].Span {
			return ""
		}
		n := 0
		for n < len(prefix) && n < len(item.Replacement) && prefix[n] == item.Replacement[n] {
			n++
		}
		prefix = prefix[:n]
	}
	// Don't cut a multi-byte rune in half.
	for len(prefix) > 0 && !utf8.ValidString(prefix) {
		prefix = prefix[:len(prefix)-1]
	}
	return prefix
}
