package eval

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/user"
	"strconv"
	"strings"
	"unicode/utf8"

	"src.kesh.sh/pkg/env"
	"src.kesh.sh/pkg/glob"
	"src.kesh.sh/pkg/parse"
	"src.kesh.sh/pkg/state"
)

// ExpandError is an error during word expansion, like ${name:?} on an unset
// parameter or a malformed arithmetic expression.
type ExpandError struct {
	Msg string
}

func (e *ExpandError) Error() string { return e.Msg }

func expandErrorf(format string, args ...any) error {
	return &ExpandError{fmt.Sprintf(format, args...)}
}

const defaultIFS = " \t\n"

// A field being built during expansion. The pattern is the text with quoted
// characters escaped, used for pathname expansion.
type field struct {
	text   []byte
	pat    []byte
	glob   bool
	quoted bool
	// Produced by a non-whitespace IFS delimiter; kept even when empty.
	keep bool
}

func (f *field) empty() bool {
	return len(f.text) == 0 && !f.quoted && !f.keep
}

type fieldBuilder struct {
	fields []field
	cur    field
	ifs    string
	// Don't split; used for assignments, redirection targets, here-documents
	// and patterns.
	nosplit bool
}

func (b *fieldBuilder) lit(s string, quoted bool) {
	b.cur.text = append(b.cur.text, s...)
	if quoted {
		b.cur.pat = append(b.cur.pat, glob.Escape(s)...)
		b.cur.quoted = true
	} else {
		b.cur.pat = append(b.cur.pat, s...)
		if glob.HasMeta(s) {
			b.cur.glob = true
		}
	}
}

func (b *fieldBuilder) endField(force bool) {
	if force {
		b.cur.keep = true
	}
	if !b.cur.empty() {
		b.fields = append(b.fields, b.cur)
	}
	b.cur = field{}
}

func (b *fieldBuilder) finish() []field {
	b.endField(false)
	return b.fields
}

func isIFSWhite(c byte) bool { return c == ' ' || c == '\t' || c == '\n' }

// Adds the result of an unquoted expansion, splitting it on IFS.
func (b *fieldBuilder) split(s string) {
	if b.nosplit || b.ifs == "" {
		b.lit(s, false)
		return
	}
	inIFS := func(c byte) bool { return strings.IndexByte(b.ifs, c) >= 0 }
	i := 0
	for i < len(s) {
		if !inIFS(s[i]) {
			j := i
			for j < len(s) && !inIFS(s[j]) {
				j++
			}
			b.lit(s[i:j], false)
			i = j
			continue
		}
		// A delimiter: IFS whitespace around at most one other IFS character.
		j := i
		for j < len(s) && inIFS(s[j]) && isIFSWhite(s[j]) {
			j++
		}
		force := false
		if j < len(s) && inIFS(s[j]) && !isIFSWhite(s[j]) {
			force = true
			j++
			for j < len(s) && inIFS(s[j]) && isIFSWhite(s[j]) {
				j++
			}
		}
		b.endField(force)
		i = j
	}
}

// Expands words into fields, performing all expansions.
func (fm *Frame) expandWords(words []*parse.Word) ([]string, error) {
	var out []string
	for _, w := range words {
		for _, bw := range braceExpand(w) {
			fields, err := fm.expandFields(bw)
			if err != nil {
				return nil, err
			}
			out = append(out, fm.globFields(fields)...)
		}
	}
	return out, nil
}

func (fm *Frame) ifs() string {
	if ifs, ok := fm.env().Get(env.IFS); ok {
		return ifs
	}
	return defaultIFS
}

func (fm *Frame) expandFields(w *parse.Word) ([]field, error) {
	b := &fieldBuilder{ifs: fm.ifs()}
	if err := fm.expandWordInto(b, w); err != nil {
		return nil, err
	}
	return b.finish(), nil
}

func (fm *Frame) globFields(fields []field) []string {
	var out []string
	noglob := fm.options().Noglob
	for _, f := range fields {
		if f.glob && !noglob {
			if matches := glob.Parse(string(f.pat)).GlobIn(fm.cwd()); len(matches) > 0 {
				out = append(out, matches...)
				continue
			}
		}
		out = append(out, string(f.text))
	}
	return out
}

// Expands a word into a single string, without field splitting or pathname
// expansion.
func (fm *Frame) expandString(w *parse.Word) (string, error) {
	if w == nil {
		return "", nil
	}
	b := &fieldBuilder{nosplit: true}
	if err := fm.expandWordInto(b, w); err != nil {
		return "", err
	}
	return string(b.cur.text), nil
}

// Expands a word into a glob pattern in which quoted characters are escaped.
func (fm *Frame) expandPattern(w *parse.Word) (string, error) {
	if w == nil {
		return "", nil
	}
	b := &fieldBuilder{nosplit: true}
	if err := fm.expandWordInto(b, w); err != nil {
		return "", err
	}
	return string(b.cur.pat), nil
}

func (fm *Frame) expandWordInto(b *fieldBuilder, w *parse.Word) error {
	parts := w.Parts
	if len(parts) > 0 {
		if lit, ok := parts[0].(*parse.Lit); ok && strings.HasPrefix(lit.Text, "~") {
			if home, rest, ok := fm.tilde(lit.Text, len(parts) == 1); ok {
				b.lit(home, true)
				b.lit(rest, false)
				parts = parts[1:]
			}
		}
	}
	return fm.expandParts(b, parts, false)
}

// Performs tilde expansion on the first literal part of a word. The tilde
// prefix extends to the first slash, or to the end of the word if the part
// is the whole word.
func (fm *Frame) tilde(text string, whole bool) (home, rest string, ok bool) {
	name := text[1:]
	if i := strings.IndexByte(text, '/'); i >= 0 {
		name, rest = text[1:i], text[i:]
	} else if !whole {
		return "", "", false
	}
	switch name {
	case "":
		home, ok = fm.env().Get(env.HOME)
		if !ok {
			if u, err := user.Current(); err == nil {
				home, ok = u.HomeDir, true
			}
		}
	case "+":
		home, ok = fm.cwd(), true
	case "-":
		home, ok = fm.env().Get(env.OLDPWD)
	default:
		if u, err := user.Lookup(name); err == nil {
			home, ok = u.HomeDir, true
		}
	}
	return home, rest, ok
}

func (fm *Frame) expandParts(b *fieldBuilder, parts []parse.WordPart, quoted bool) error {
	for _, part := range parts {
		switch part := part.(type) {
		case *parse.Lit:
			b.lit(part.Text, quoted)
		case *parse.Escaped:
			b.lit(part.Text, true)
		case *parse.SglQuoted:
			b.lit(part.Text, true)
		case *parse.DblQuoted:
			if isQuotedAt(part) && len(fm.params().Args) == 0 {
				// "$@" with no positional parameters expands to no field.
				continue
			}
			b.lit("", true)
			if err := fm.expandParts(b, part.Parts, true); err != nil {
				return err
			}
		case *parse.ParamExp:
			if err := fm.expandParam(b, part, quoted); err != nil {
				return err
			}
		case *parse.CmdSubst:
			out := fm.cmdSubst(part.Body)
			if quoted {
				b.lit(out, true)
			} else {
				b.split(out)
			}
		case *parse.ArithExp:
			expr, err := fm.expandString(part.Expr)
			if err != nil {
				return err
			}
			n, err := fm.arith(expr)
			if err != nil {
				return err
			}
			b.lit(strconv.FormatInt(n, 10), quoted)
		default:
			return expandErrorf("unsupported word part %T", part)
		}
	}
	return nil
}

func isQuotedAt(dq *parse.DblQuoted) bool {
	if len(dq.Parts) != 1 {
		return false
	}
	p, ok := dq.Parts[0].(*parse.ParamExp)
	return ok && p.Name == "@" && p.Op == "" && !p.Length
}

func (fm *Frame) expandParam(b *fieldBuilder, p *parse.ParamExp, quoted bool) error {
	args := fm.params().Args
	if p.Length {
		if p.Name == "@" || p.Name == "*" {
			b.lit(strconv.Itoa(len(args)), quoted)
			return nil
		}
		v, set := fm.lookupParam(p.Name)
		if !set && fm.options().Nounset {
			return expandErrorf("%s: unbound variable", p.Name)
		}
		b.lit(strconv.Itoa(utf8.RuneCountInString(v)), quoted)
		return nil
	}
	if (p.Name == "@" || p.Name == "*") && p.Op == "" {
		fm.expandAll(b, p.Name, args, quoted)
		return nil
	}

	v, set := fm.lookupParam(p.Name)
	colon := strings.HasPrefix(p.Op, ":")
	// Whether the parameter counts as unset for the operator.
	missing := !set || colon && v == ""
	switch strings.TrimPrefix(p.Op, ":") {
	case "":
		if !set && fm.options().Nounset {
			return expandErrorf("%s: unbound variable", p.Name)
		}
	case "-":
		if missing {
			return fm.expandArg(b, p.Arg, quoted)
		}
	case "+":
		if missing {
			return nil
		}
		return fm.expandArg(b, p.Arg, quoted)
	case "=":
		if missing {
			if !parse.IsName(p.Name) {
				return expandErrorf("$%s: cannot assign in this way", p.Name)
			}
			arg, err := fm.expandString(p.Arg)
			if err != nil {
				return err
			}
			fm.env().Set(p.Name, arg)
			v = arg
		}
	case "?":
		if missing {
			msg := "parameter null or not set"
			if p.Arg != nil {
				arg, err := fm.expandString(p.Arg)
				if err != nil {
					return err
				}
				if arg != "" {
					msg = arg
				}
			}
			return expandErrorf("%s: %s", p.Name, msg)
		}
	case "#", "##", "%", "%%":
		if !set && fm.options().Nounset {
			return expandErrorf("%s: unbound variable", p.Name)
		}
		pat, err := fm.expandPattern(p.Arg)
		if err != nil {
			return err
		}
		v = removePattern(v, pat, p.Op)
	default:
		return expandErrorf("${%s%s}: bad substitution", p.Name, p.Op)
	}
	if quoted {
		b.lit(v, true)
	} else {
		b.split(v)
	}
	return nil
}

// Expands the word of ${name-word} and ${name+word} in place, so that quoting
// inside it is kept.
func (fm *Frame) expandArg(b *fieldBuilder, arg *parse.Word, quoted bool) error {
	if arg == nil {
		return nil
	}
	if quoted {
		return fm.expandParts(b, arg.Parts, true)
	}
	return fm.expandWordInto(b, arg)
}

// Expands $@ and $*.
func (fm *Frame) expandAll(b *fieldBuilder, name string, args []string, quoted bool) {
	switch {
	case quoted && (name == "*" || b.nosplit):
		sep := " "
		if ifs, ok := fm.env().Get(env.IFS); ok {
			sep = ""
			if ifs != "" {
				sep = ifs[:1]
			}
		}
		if b.nosplit && name == "@" {
			sep = " "
		}
		b.lit(strings.Join(args, sep), true)
	case quoted:
		for i, arg := range args {
			if i > 0 {
				b.endField(true)
			}
			b.lit(arg, true)
		}
	case b.nosplit:
		b.lit(strings.Join(args, " "), false)
	default:
		for i, arg := range args {
			if i > 0 {
				b.endField(false)
			}
			b.split(arg)
		}
	}
}

func removePattern(v, pat, op string) string {
	switch op {
	case "#":
		for i := 0; i <= len(v); i++ {
			if isBoundary(v, i) && glob.Match(pat, v[:i]) {
				return v[i:]
			}
		}
	case "##":
		for i := len(v); i >= 0; i-- {
			if isBoundary(v, i) && glob.Match(pat, v[:i]) {
				return v[i:]
			}
		}
	case "%":
		for i := len(v); i >= 0; i-- {
			if isBoundary(v, i) && glob.Match(pat, v[i:]) {
				return v[:i]
			}
		}
	case "%%":
		for i := 0; i <= len(v); i++ {
			if isBoundary(v, i) && glob.Match(pat, v[i:]) {
				return v[:i]
			}
		}
	}
	return v
}

func isBoundary(s string, i int) bool {
	return i == len(s) || utf8.RuneStart(s[i])
}

// Looks up a parameter, special or not.
func (fm *Frame) lookupParam(name string) (string, bool) {
	params := fm.params()
	switch name {
	case "?":
		return strconv.Itoa(fm.lastStatus()), true
	case "$":
		return strconv.Itoa(os.Getpid()), true
	case "!":
		pid, ok := state.Lookup[LastBgPid](fm.st)
		if !ok {
			return "", false
		}
		return strconv.Itoa(int(pid)), true
	case "#":
		return strconv.Itoa(len(params.Args)), true
	case "@", "*":
		return strings.Join(params.Args, " "), len(params.Args) > 0
	case "-":
		return fm.optionFlags(), true
	case "0":
		return params.Zero, true
	}
	if n, err := strconv.Atoi(name); err == nil {
		if n >= 1 && n <= len(params.Args) {
			return params.Args[n-1], true
		}
		return "", false
	}
	return fm.env().Get(name)
}

func (fm *Frame) optionFlags() string {
	o := fm.options()
	var sb strings.Builder
	for _, f := range []struct {
		on bool
		c  byte
	}{{o.Errexit, 'e'}, {o.Noglob, 'f'}, {o.Nounset, 'u'}, {o.Xtrace, 'x'}, {o.Noclobber, 'C'}} {
		if f.on {
			sb.WriteByte(f.c)
		}
	}
	if fm.launcher().Interactive() {
		sb.WriteByte('i')
	}
	return sb.String()
}

// Runs a command substitution and returns its output with trailing newlines
// removed. The status becomes $?.
func (fm *Frame) cmdSubst(body *parse.List) string {
	r, w, err := os.Pipe()
	if err != nil {
		fm.printError(err)
		return ""
	}
	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		io.Copy(&buf, r)
		r.Close()
		close(done)
	}()
	sub := fm.subshell()
	sub.ports[1] = w
	sub.capture = nil
	status := flowStatus(sub.execList(body))
	w.Close()
	<-done
	fm.setStatus(status)
	fm.substStatus = &status
	return strings.TrimRight(buf.String(), "\n")
}
