package parse

import (
	"strconv"
	"strings"
)

// Print serializes a node back to source. Parsing the result yields a tree
// equivalent to n, modulo whitespace and the choice of quoting for
// substitutions.
func Print(n Node) string {
	pr := &printer{}
	switch n := n.(type) {
	case *List:
		pr.list(n, false)
	case Command:
		pr.command(n)
		pr.flushHeredocs()
	case *Word:
		pr.word(n, normalMode)
	}
	return pr.sb.String()
}

type printer struct {
	sb      strings.Builder
	pending []*Heredoc
}

func (pr *printer) write(ss ...string) {
	for _, s := range ss {
		pr.sb.WriteString(s)
	}
}

// flushHeredocs ends the current line and writes the bodies of pending
// here-documents. It reports whether there were any.
func (pr *printer) flushHeredocs() bool {
	if len(pr.pending) == 0 {
		return false
	}
	pr.write("\n")
	for _, h := range pr.pending {
		delim, _ := unquoteDelim(h.Delim)
		pr.write(h.Raw, delim, "\n")
	}
	pr.pending = pr.pending[:0]
	return true
}

// list writes the items of l. When terminated is true the last item is
// followed by a terminator, so that a closing keyword may follow.
func (pr *printer) list(l *List, terminated bool) {
	if l == nil {
		return
	}
	for i, item := range l.Items {
		last := i == len(l.Items)-1
		pr.command(item.Cmd)
		if item.Background {
			pr.write(" &")
		}
		if pr.flushHeredocs() {
			continue
		}
		switch {
		case item.Background && (!last || terminated):
			pr.write(" ")
		case !last || terminated:
			pr.write("; ")
		}
	}
}

func (pr *printer) command(cmd Command) {
	switch cmd := cmd.(type) {
	case *List:
		pr.list(cmd, false)
	case *AndOr:
		pr.command(cmd.Left)
		pr.write(" ", cmd.Op, " ")
		pr.command(cmd.Right)
	case *Pipeline:
		if cmd.Negate {
			pr.write("! ")
		}
		for i, c := range cmd.Cmds {
			if i > 0 {
				pr.write(" | ")
			}
			pr.command(c)
		}
	case *Simple:
		sep := ""
		for _, a := range cmd.Assigns {
			pr.write(sep, a.Name, "=")
			pr.word(a.Value, normalMode)
			sep = " "
		}
		for _, w := range cmd.Args {
			pr.write(sep)
			pr.word(w, normalMode)
			sep = " "
		}
		for _, r := range cmd.Redirs {
			pr.write(sep)
			pr.redir(r)
			sep = " "
		}
	case *Redirected:
		pr.command(cmd.Cmd)
		for _, r := range cmd.Redirs {
			pr.write(" ")
			pr.redir(r)
		}
	case *If:
		pr.write("if ")
		pr.list(cmd.Cond, true)
		pr.write("then ")
		pr.list(cmd.Then, true)
		for _, elif := range cmd.Elifs {
			pr.write("elif ")
			pr.list(elif.Cond, true)
			pr.write("then ")
			pr.list(elif.Then, true)
		}
		if cmd.Else != nil {
			pr.write("else ")
			pr.list(cmd.Else, true)
		}
		pr.write("fi")
	case *While:
		if cmd.Until {
			pr.write("until ")
		} else {
			pr.write("while ")
		}
		pr.list(cmd.Cond, true)
		pr.write("do ")
		pr.list(cmd.Body, true)
		pr.write("done")
	case *For:
		pr.write("for ", cmd.Var)
		if cmd.HasIn {
			pr.write(" in")
			for _, w := range cmd.Words {
				pr.write(" ")
				pr.word(w, normalMode)
			}
		}
		pr.write("; do ")
		pr.list(cmd.Body, true)
		pr.write("done")
	case *Case:
		pr.write("case ")
		pr.word(cmd.Word, normalMode)
		pr.write(" in ")
		for _, item := range cmd.Items {
			for i, p := range item.Patterns {
				if i > 0 {
					pr.write(" | ")
				}
				pr.word(p, normalMode)
			}
			pr.write(")")
			if item.Body != nil && len(item.Body.Items) > 0 {
				pr.write(" ")
				pr.list(item.Body, false)
			}
			pr.write(" ;; ")
		}
		pr.write("esac")
	case *Subshell:
		pr.write("( ")
		pr.list(cmd.Body, true)
		pr.write(")")
	case *Group:
		pr.write("{ ")
		pr.list(cmd.Body, true)
		pr.write("}")
	case *FunctionDef:
		pr.write(cmd.Name, "() ")
		pr.command(cmd.Body)
	}
}

func (pr *printer) redir(r *Redir) {
	if r.Fd >= 0 {
		pr.write(strconv.Itoa(r.Fd))
	}
	pr.write(r.Op)
	if r.Heredoc != nil {
		pr.write(r.Heredoc.Delim)
		pr.pending = append(pr.pending, r.Heredoc)
		return
	}
	pr.word(r.Target, normalMode)
}

func (pr *printer) word(w *Word, mode wordMode) {
	if w == nil {
		return
	}
	pr.parts(w.Parts, mode)
}

func (pr *printer) parts(parts []WordPart, mode wordMode) {
	for _, part := range parts {
		switch part := part.(type) {
		case *Lit:
			pr.write(part.Text)
		case *Escaped:
			pr.write(`\`, part.Text)
		case *SglQuoted:
			pr.write("'", part.Text, "'")
		case *DblQuoted:
			pr.write(`"`)
			pr.parts(part.Parts, dqMode)
			pr.write(`"`)
		case *ParamExp:
			pr.write("${")
			if part.Length {
				pr.write("#")
			}
			pr.write(part.Name, part.Op)
			pr.word(part.Arg, normalMode)
			pr.write("}")
		case *CmdSubst:
			inner := &printer{}
			inner.list(part.Body, false)
			pr.write("$( ", inner.sb.String(), ")")
		case *ArithExp:
			pr.write("$((")
			pr.word(part.Expr, heredocMode)
			pr.write("))")
		}
	}
}
