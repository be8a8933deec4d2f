// Package parse implements the lexer and parser of the POSIX-style command
// language.
//
// The parser is a hand-written recursive-descent parser over the token
// stream produced by the lexer. Words are kept as raw text by the lexer and
// broken into parts by the parser, which recursively parses command
// substitutions.
package parse

import (
	"strconv"

	"src.kesh.sh/pkg/diag"
)

// Parse parses src as a list of commands. The name is used in error
// messages. On failure the error is always a *Error.
func Parse(name, src string) (list *List, err error) {
	ps := &parser{name: name, root: src}
	defer func() {
		if r := recover(); r != nil {
			perr, ok := r.(*Error)
			if !ok {
				panic(r)
			}
			list, err = nil, perr
		}
	}()
	return ps.program(src, 0), nil
}

type parser struct {
	name string
	// root is the whole source, used for error contexts.
	root   string
	tokens []Token
	i      int
}

// program parses src, which starts at offset base of the root source.
func (ps *parser) program(src string, base int) *List {
	tokens, lerr := lex(src, base)
	if lerr != nil {
		panic(newError(ps.name, ps.root, lerr.span, lerr.incomplete, lerr.msg))
	}
	sub := &parser{name: ps.name, root: ps.root}
	for _, tok := range tokens {
		if tok.Kind != Comment {
			sub.tokens = append(sub.tokens, tok)
		}
	}
	list := sub.list()
	if tok := sub.peek(); tok.Kind != EOF {
		sub.fail(tok, "unexpected "+describe(tok))
	}
	return list
}

func (ps *parser) peek() Token { return ps.tokens[ps.i] }

func (ps *parser) next() Token {
	tok := ps.tokens[ps.i]
	if tok.Kind != EOF {
		ps.i++
	}
	return tok
}

func (ps *parser) fail(tok Token, msg string, expected ...string) {
	panic(newError(ps.name, ps.root, tok.Ranging, tok.Kind == EOF, msg, expected...))
}

// failAt fails with an error inside a word. Words reach the parser whole, so
// such an error is never caused by missing input.
func (ps *parser) failAt(r diag.Ranging, msg string) {
	panic(newError(ps.name, ps.root, r, false, msg))
}

func describe(tok Token) string {
	switch tok.Kind {
	case EOF:
		return "end of input"
	case Newline:
		return "newline"
	}
	return strconv.Quote(tok.Text)
}

func (ps *parser) is(text string) bool {
	tok := ps.peek()
	return (tok.Kind == WordToken || tok.Kind == Operator) && tok.Text == text
}

func (ps *parser) expect(text string) Token {
	if !ps.is(text) {
		tok := ps.peek()
		ps.fail(tok, "unexpected "+describe(tok), strconv.Quote(text))
	}
	return ps.next()
}

func (ps *parser) skipNewlines() {
	for ps.peek().Kind == Newline {
		ps.next()
	}
}

func (ps *parser) atStop(stops []string) bool {
	if ps.peek().Kind == EOF {
		return true
	}
	for _, stop := range stops {
		if ps.is(stop) {
			return true
		}
	}
	return false
}

// list parses and-or lists separated by ; & or newlines, up to EOF or one of
// the stop words or operators.
func (ps *parser) list(stops ...string) *List {
	ps.skipNewlines()
	l := &List{Ranging: diag.PointRanging(ps.peek().From)}
	for !ps.atStop(stops) {
		cmd := ps.andOr()
		item := &Item{Ranging: cmd.Range(), Cmd: cmd}
		l.Items = append(l.Items, item)
		l.To = item.To
		tok := ps.peek()
		if tok.Kind == Operator && (tok.Text == ";" || tok.Text == "&") {
			ps.next()
			item.Background = tok.Text == "&"
			item.To = tok.To
		} else if tok.Kind != Newline {
			break
		}
		ps.skipNewlines()
	}
	return l
}

func (ps *parser) nonEmptyList(stops ...string) *List {
	l := ps.list(stops...)
	if len(l.Items) == 0 {
		tok := ps.peek()
		ps.fail(tok, "unexpected "+describe(tok), "command")
	}
	return l
}

func (ps *parser) andOr() Command {
	left := ps.pipeline()
	for ps.is("&&") || ps.is("||") {
		op := ps.next().Text
		ps.skipNewlines()
		right := ps.pipeline()
		left = &AndOr{diag.MixedRanging(left, right), left, op, right}
	}
	return left
}

func (ps *parser) pipeline() Command {
	from := ps.peek().From
	negate := false
	if ps.is("!") {
		ps.next()
		negate = true
	}
	cmds := []Command{ps.command()}
	for ps.is("|") {
		ps.next()
		ps.skipNewlines()
		cmds = append(cmds, ps.command())
	}
	if len(cmds) == 1 && !negate {
		return cmds[0]
	}
	return &Pipeline{diag.Ranging{From: from, To: cmds[len(cmds)-1].Range().To}, cmds, negate}
}

func (ps *parser) command() Command {
	tok := ps.peek()
	var cmd Command
	switch {
	case tok.Kind == Operator && tok.Text == "(":
		ps.next()
		body := ps.nonEmptyList(")")
		end := ps.expect(")")
		cmd = &Subshell{diag.Ranging{From: tok.From, To: end.To}, body}
	case tok.Kind != WordToken:
		return ps.simple()
	case tok.Text == "{":
		ps.next()
		body := ps.nonEmptyList("}")
		end := ps.expect("}")
		cmd = &Group{diag.Ranging{From: tok.From, To: end.To}, body}
	case tok.Text == "if":
		cmd = ps.ifClause()
	case tok.Text == "while" || tok.Text == "until":
		cmd = ps.whileClause()
	case tok.Text == "for":
		cmd = ps.forClause()
	case tok.Text == "case":
		cmd = ps.caseClause()
	case tok.Text == "function":
		ps.next()
		name := ps.next()
		if name.Kind != WordToken || !IsName(name.Text) {
			ps.fail(name, "unexpected "+describe(name), "function name")
		}
		if ps.is("(") {
			ps.next()
			ps.expect(")")
		}
		return ps.functionBody(tok, name.Text)
	case tok.IsReserved() && tok.Text != "!":
		ps.fail(tok, "unexpected "+describe(tok))
	case IsName(tok.Text) && ps.i+2 < len(ps.tokens) &&
		ps.tokens[ps.i+1].Kind == Operator && ps.tokens[ps.i+1].Text == "(":
		ps.next()
		ps.next()
		ps.expect(")")
		return ps.functionBody(tok, tok.Text)
	default:
		return ps.simple()
	}
	if redirs := ps.redirs(); len(redirs) > 0 {
		cmd = &Redirected{diag.MixedRanging(cmd, redirs[len(redirs)-1]), cmd, redirs}
	}
	return cmd
}

func (ps *parser) functionBody(start Token, name string) Command {
	ps.skipNewlines()
	tok := ps.peek()
	body := ps.command()
	if _, simple := body.(*Simple); simple {
		ps.fail(tok, "unexpected "+describe(tok), "compound command")
	}
	return &FunctionDef{diag.MixedRanging(start, body), name, body}
}

func (ps *parser) ifClause() Command {
	start := ps.next()
	n := &If{}
	n.Cond = ps.nonEmptyList("then")
	ps.expect("then")
	n.Then = ps.nonEmptyList("elif", "else", "fi")
	for ps.is("elif") {
		ps.next()
		elif := &Elif{Cond: ps.nonEmptyList("then")}
		ps.expect("then")
		elif.Then = ps.nonEmptyList("elif", "else", "fi")
		n.Elifs = append(n.Elifs, elif)
	}
	if ps.is("else") {
		ps.next()
		n.Else = ps.nonEmptyList("fi")
	}
	end := ps.expect("fi")
	n.Ranging = diag.MixedRanging(start, end)
	return n
}

func (ps *parser) whileClause() Command {
	start := ps.next()
	n := &While{Until: start.Text == "until"}
	n.Cond = ps.nonEmptyList("do")
	ps.expect("do")
	n.Body = ps.nonEmptyList("done")
	end := ps.expect("done")
	n.Ranging = diag.MixedRanging(start, end)
	return n
}

func (ps *parser) forClause() Command {
	start := ps.next()
	name := ps.next()
	if name.Kind != WordToken || !IsName(name.Text) {
		ps.fail(name, "unexpected "+describe(name), "variable name")
	}
	n := &For{Var: name.Text}
	if ps.is(";") {
		ps.next()
	}
	ps.skipNewlines()
	if ps.is("in") {
		ps.next()
		n.HasIn = true
		for ps.peek().Kind == WordToken {
			n.Words = append(n.Words, ps.word(ps.next()))
		}
		if ps.is(";") {
			ps.next()
		} else if ps.peek().Kind != Newline {
			tok := ps.peek()
			ps.fail(tok, "unexpected "+describe(tok), `";"`, "newline")
		}
		ps.skipNewlines()
	}
	ps.expect("do")
	n.Body = ps.nonEmptyList("done")
	end := ps.expect("done")
	n.Ranging = diag.MixedRanging(start, end)
	return n
}

func (ps *parser) caseClause() Command {
	start := ps.next()
	tok := ps.next()
	if tok.Kind != WordToken {
		ps.fail(tok, "unexpected "+describe(tok), "word")
	}
	n := &Case{Word: ps.word(tok)}
	ps.skipNewlines()
	ps.expect("in")
	ps.skipNewlines()
	for !ps.is("esac") {
		if ps.is("(") {
			ps.next()
		}
		item := &CaseItem{}
		for {
			tok := ps.next()
			if tok.Kind != WordToken {
				ps.fail(tok, "unexpected "+describe(tok), "pattern")
			}
			item.Patterns = append(item.Patterns, ps.word(tok))
			if !ps.is("|") {
				break
			}
			ps.next()
		}
		ps.expect(")")
		item.Body = ps.list(";;", "esac")
		n.Items = append(n.Items, item)
		if ps.is(";;") {
			ps.next()
		} else if !ps.is("esac") {
			tok := ps.peek()
			ps.fail(tok, "unexpected "+describe(tok), `";;"`, `"esac"`)
		}
		ps.skipNewlines()
	}
	end := ps.next()
	n.Ranging = diag.MixedRanging(start, end)
	return n
}

func (ps *parser) simple() Command {
	n := &Simple{Ranging: diag.PointRanging(ps.peek().From)}
	for {
		tok := ps.peek()
		if tok.Kind == IONumber || tok.Kind == Operator && isRedirOp(tok.Text) {
			r := ps.redir()
			n.Redirs = append(n.Redirs, r)
			n.To = r.To
			continue
		}
		if tok.Kind != WordToken {
			break
		}
		ps.next()
		if len(n.Args) == 0 && IsAssignment(tok.Text) {
			n.Assigns = append(n.Assigns, ps.assign(tok))
		} else {
			n.Args = append(n.Args, ps.word(tok))
		}
		n.To = tok.To
	}
	if len(n.Assigns)+len(n.Redirs)+len(n.Args) == 0 {
		tok := ps.peek()
		ps.fail(tok, "unexpected "+describe(tok), "command")
	}
	return n
}

func (ps *parser) assign(tok Token) *Assign {
	i := 0
	for tok.Text[i] != '=' {
		i++
	}
	value := ps.parseWord(tok.Text[i+1:], tok.From+i+1, normalMode)
	value.Ranging = diag.Ranging{From: tok.From + i + 1, To: tok.To}
	return &Assign{tok.Ranging, tok.Text[:i], value}
}

func (ps *parser) redirs() []*Redir {
	var redirs []*Redir
	for {
		tok := ps.peek()
		if tok.Kind != IONumber && !(tok.Kind == Operator && isRedirOp(tok.Text)) {
			return redirs
		}
		redirs = append(redirs, ps.redir())
	}
}

func (ps *parser) redir() *Redir {
	r := &Redir{Fd: -1}
	start := ps.next()
	op := start
	if start.Kind == IONumber {
		r.Fd, _ = strconv.Atoi(start.Text)
		op = ps.next()
	}
	r.Op = op.Text
	target := ps.next()
	if target.Kind != WordToken {
		ps.fail(target, "unexpected "+describe(target), "word after "+strconv.Quote(op.Text))
	}
	r.Ranging = diag.MixedRanging(start, target)
	if op.Text == "<<" || op.Text == "<<-" {
		_, quoted := unquoteDelim(target.Text)
		r.Heredoc = &Heredoc{Delim: target.Text, Quoted: quoted, Raw: op.Heredoc}
		if !quoted {
			r.Heredoc.Body = ps.parseWord(op.Heredoc, op.HeredocPos, heredocMode)
		}
		return r
	}
	r.Target = ps.word(target)
	return r
}

func (ps *parser) word(tok Token) *Word {
	w := ps.parseWord(tok.Text, tok.From, normalMode)
	w.Ranging = tok.Ranging
	return w
}
