package parse

import (
	"strings"

	"src.kesh.sh/pkg/diag"
)

// TokenKind is the kind of a Token.
type TokenKind int

// Possible values of TokenKind.
const (
	EOF TokenKind = iota
	WordToken
	Operator
	IONumber
	Newline
	Comment
)

var tokenKindNames = [...]string{"EOF", "Word", "Operator", "IONumber", "Newline", "Comment"}

func (k TokenKind) String() string { return tokenKindNames[k] }

// Token is a lexical unit of the source. Word tokens keep their quotes and
// expansions verbatim; the parser breaks them into parts.
type Token struct {
	Kind TokenKind
	Text string
	diag.Ranging
	// Heredoc is the body of a here-document, set on << and <<- tokens.
	Heredoc string
	// HeredocPos is the offset of the first byte of Heredoc in the source.
	HeredocPos int
}

var reservedWords = map[string]bool{
	"if": true, "then": true, "else": true, "elif": true, "fi": true,
	"do": true, "done": true, "case": true, "esac": true, "while": true,
	"until": true, "for": true, "in": true, "function": true,
	"!": true, "{": true, "}": true,
}

// IsReserved returns whether the token is a reserved word. Reserved words
// only have a special meaning in command position.
func (t Token) IsReserved() bool {
	return t.Kind == WordToken && reservedWords[t.Text]
}

// Sorted so that longer operators are tried first.
var operators = []string{
	"<<<", "<<-",
	"&&", "||", ";;", "<<", ">>", "<&", ">&", "<>", ">|",
	"|", ";", "&", "(", ")", "<", ">",
}

func isRedirOp(s string) bool {
	switch s {
	case "<", ">", ">>", "<<", "<<-", "<&", ">&", "<>", ">|", "<<<":
		return true
	}
	return false
}

func isMeta(c byte) bool {
	switch c {
	case ' ', '\t', '\n', ';', '&', '|', '(', ')', '<', '>':
		return true
	}
	return false
}

// Lex splits src into tokens. On error it returns the tokens found so far
// along with the error; an unterminated word is still returned as a token
// running to the end of src, which lets completion work on incomplete input.
func Lex(src string) ([]Token, error) {
	tokens, err := lex(src, 0)
	if err != nil {
		return tokens, newError("", src, err.span, err.incomplete, err.msg)
	}
	return tokens, nil
}

type lexer struct {
	src     string
	base    int
	pos     int
	tokens  []Token
	pending []int
}

// lex tokenizes src, adding base to all offsets. The returned slice always
// ends with an EOF token.
func lex(src string, base int) ([]Token, *lexError) {
	lx := &lexer{src: src, base: base}
	err := lx.run()
	lx.emit(EOF, len(src), len(src))
	return lx.tokens, err
}

func (lx *lexer) emit(kind TokenKind, from, to int) {
	lx.tokens = append(lx.tokens, Token{
		Kind: kind, Text: lx.src[from:to],
		Ranging: diag.Ranging{From: lx.base + from, To: lx.base + to}})
}

func (lx *lexer) errorf(from, to int, incomplete bool, msg string) *lexError {
	return &lexError{diag.Ranging{From: lx.base + from, To: lx.base + to}, msg, incomplete}
}

func (lx *lexer) run() *lexError {
	src := lx.src
	for lx.pos < len(src) {
		c := src[lx.pos]
		switch {
		case c == ' ' || c == '\t':
			lx.pos++
		case strings.HasPrefix(src[lx.pos:], "\\\n"):
			lx.pos += 2
		case c == '#':
			end := strings.IndexByte(src[lx.pos:], '\n')
			if end == -1 {
				end = len(src)
			} else {
				end += lx.pos
			}
			lx.emit(Comment, lx.pos, end)
			lx.pos = end
		case c == '\n':
			lx.emit(Newline, lx.pos, lx.pos+1)
			lx.pos++
			if err := lx.heredocBodies(); err != nil {
				return err
			}
		case isMeta(c):
			for _, op := range operators {
				if strings.HasPrefix(src[lx.pos:], op) {
					lx.emit(Operator, lx.pos, lx.pos+len(op))
					lx.pos += len(op)
					if op == "<<" || op == "<<-" {
						lx.pending = append(lx.pending, len(lx.tokens)-1)
					}
					break
				}
			}
		default:
			if err := lx.word(); err != nil {
				return err
			}
		}
	}
	if len(lx.pending) > 0 {
		op := lx.tokens[lx.pending[0]]
		return &lexError{op.Ranging, "unterminated here-document", true}
	}
	return nil
}

func (lx *lexer) word() *lexError {
	src, begin := lx.src, lx.pos
	i := begin
	for i < len(src) && !isMeta(src[i]) {
		var end int
		switch src[i] {
		case '\\':
			end = i + 2
			if end > len(src) {
				end = len(src)
			}
		case '\'':
			end = skipSingle(src, i)
		case '"':
			end = skipDouble(src, i)
		case '$':
			end = skipDollar(src, i)
		case '`':
			end = skipBackquote(src, i)
		default:
			end = i + 1
		}
		if end == -1 {
			lx.emit(WordToken, begin, len(src))
			lx.pos = len(src)
			return lx.errorf(i, len(src), true, "unterminated "+constructName(src[i:]))
		}
		i = end
	}
	kind := WordToken
	if i < len(src) && (src[i] == '<' || src[i] == '>') && allDigits(src[begin:i]) {
		kind = IONumber
	}
	lx.emit(kind, begin, i)
	lx.pos = i
	return nil
}

func constructName(s string) string {
	switch {
	case strings.HasPrefix(s, "'"):
		return "single-quoted string"
	case strings.HasPrefix(s, "\""):
		return "double-quoted string"
	case strings.HasPrefix(s, "`"):
		return "backquote substitution"
	case strings.HasPrefix(s, "$(("):
		return "arithmetic expansion"
	case strings.HasPrefix(s, "$("):
		return "command substitution"
	default:
		return "parameter expansion"
	}
}

// heredocBodies reads the bodies of pending here-documents, which start
// after the newline just lexed.
func (lx *lexer) heredocBodies() *lexError {
	for _, opIdx := range lx.pending {
		op := &lx.tokens[opIdx]
		if opIdx+1 >= len(lx.tokens) || lx.tokens[opIdx+1].Kind != WordToken {
			return &lexError{op.Ranging, "missing here-document delimiter", false}
		}
		delim, _ := unquoteDelim(lx.tokens[opIdx+1].Text)
		stripTabs := op.Text == "<<-"
		var body strings.Builder
		bodyPos := lx.pos
		for {
			if lx.pos >= len(lx.src) {
				return &lexError{op.Ranging, "unterminated here-document", true}
			}
			end := strings.IndexByte(lx.src[lx.pos:], '\n')
			next := len(lx.src)
			if end == -1 {
				end = len(lx.src)
			} else {
				end += lx.pos
				next = end + 1
			}
			line := lx.src[lx.pos:end]
			lx.pos = next
			if stripTabs {
				line = strings.TrimLeft(line, "\t")
			}
			if line == delim {
				break
			}
			body.WriteString(line)
			body.WriteByte('\n')
		}
		op.Heredoc = body.String()
		op.HeredocPos = lx.base + bodyPos
	}
	lx.pending = lx.pending[:0]
	return nil
}

// unquoteDelim removes quoting from a here-document delimiter and reports
// whether there was any.
func unquoteDelim(s string) (string, bool) {
	var sb strings.Builder
	quoted := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			quoted = true
			if i+1 < len(s) {
				i++
				sb.WriteByte(s[i])
			}
		case '\'', '"':
			quoted = true
		default:
			sb.WriteByte(s[i])
		}
	}
	return sb.String(), quoted
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// SkipConstruct returns the index just after the quoted string, backquoted
// command substitution or dollar expansion that starts at s[i], or -1 if it
// is unterminated. For any other character it returns i+1. A bare $name is
// not consumed beyond the dollar sign.
func SkipConstruct(s string, i int) int {
	switch s[i] {
	case '\'':
		return skipSingle(s, i)
	case '"':
		return skipDouble(s, i)
	case '`':
		return skipBackquote(s, i)
	case '$':
		return skipDollar(s, i)
	}
	return i + 1
}

// The skip functions take the index of the opening character of a construct
// and return the index just after its end, or -1 if it is unterminated.

func skipSingle(s string, i int) int {
	j := strings.IndexByte(s[i+1:], '\'')
	if j == -1 {
		return -1
	}
	return i + 1 + j + 1
}

func skipDouble(s string, i int) int {
	for j := i + 1; j < len(s); {
		switch s[j] {
		case '"':
			return j + 1
		case '\\':
			j += 2
		case '$':
			if j = skipDollar(s, j); j == -1 {
				return -1
			}
		case '`':
			if j = skipBackquote(s, j); j == -1 {
				return -1
			}
		default:
			j++
		}
	}
	return -1
}

func skipBackquote(s string, i int) int {
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case '`':
			return j + 1
		}
	}
	return -1
}

func skipDollar(s string, i int) int {
	if i+1 >= len(s) {
		return i + 1
	}
	switch s[i+1] {
	case '(':
		return skipParens(s, i+1)
	case '{':
		return skipBraces(s, i+1)
	}
	return i + 1
}

// skipParens skips a balanced parenthesized region, honoring quotes.
func skipParens(s string, i int) int {
	depth := 0
	for j := i; j < len(s); {
		switch s[j] {
		case '(':
			depth++
			j++
		case ')':
			depth--
			j++
			if depth == 0 {
				return j
			}
		case '\\':
			j += 2
		case '\'':
			j = skipSingle(s, j)
		case '"':
			j = skipDouble(s, j)
		case '`':
			j = skipBackquote(s, j)
		default:
			j++
		}
		if j == -1 {
			return -1
		}
	}
	return -1
}

func skipBraces(s string, i int) int {
	for j := i + 1; j < len(s); {
		switch s[j] {
		case '}':
			return j + 1
		case '\\':
			j += 2
		case '\'':
			j = skipSingle(s, j)
		case '"':
			j = skipDouble(s, j)
		case '`':
			j = skipBackquote(s, j)
		case '$':
			j = skipDollar(s, j)
		default:
			j++
		}
		if j == -1 {
			return -1
		}
	}
	return -1
}

// Reserved words after which the next word is still in command position.
var commandPrefixWords = map[string]bool{
	"if": true, "then": true, "else": true, "elif": true, "do": true,
	"while": true, "until": true, "{": true, "!": true,
}

// CommandPositions returns the indices of Word tokens that are in command
// position, that is, the words that name the command to run. Assignments and
// redirections before the command name are skipped.
func CommandPositions(tokens []Token) []int {
	var positions []int
	expect, target := true, false
	for i, tok := range tokens {
		switch tok.Kind {
		case Newline:
			expect, target = true, false
		case IONumber:
			target = false
		case Operator:
			if isRedirOp(tok.Text) {
				target = true
			} else {
				expect, target = true, false
			}
		case WordToken:
			switch {
			case target:
				target = false
			case !expect:
			case IsAssignment(tok.Text):
			default:
				positions = append(positions, i)
				expect = tok.IsReserved() && commandPrefixWords[tok.Text]
			}
		}
	}
	return positions
}

// IsAssignment returns whether a word has the form of a variable
// assignment, name=value.
func IsAssignment(s string) bool {
	i := strings.IndexByte(s, '=')
	return i > 0 && IsName(s[:i])
}

// IsName returns whether s is a valid variable name.
func IsName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c == '_' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || i > 0 && '0' <= c && c <= '9') {
			return false
		}
	}
	return true
}
