package parse

import "src.kesh.sh/pkg/diag"

// Node is a node of the syntax tree.
type Node interface {
	diag.Ranger
}

// Command is a node that can be executed.
type Command interface {
	Node
	isCommand()
}

// List is a sequence of commands separated by ;, & or newlines.
type List struct {
	diag.Ranging
	Items []*Item
}

// Item is an element of a List.
type Item struct {
	diag.Ranging
	Cmd        Command
	Background bool
}

// AndOr is two commands joined by && or ||. Chains are left-associative.
type AndOr struct {
	diag.Ranging
	Left  Command
	Op    string
	Right Command
}

// Pipeline is two or more commands joined by |, or a single command negated
// with !.
type Pipeline struct {
	diag.Ranging
	Cmds   []Command
	Negate bool
}

// Simple is a simple command.
type Simple struct {
	diag.Ranging
	Assigns []*Assign
	Redirs  []*Redir
	Args    []*Word
}

// Assign is a variable assignment, name=value.
type Assign struct {
	diag.Ranging
	Name  string
	Value *Word
}

// Redir is a redirection. Fd is -1 when no IO number was given. Target is
// nil for here-documents.
type Redir struct {
	diag.Ranging
	Fd      int
	Op      string
	Target  *Word
	Heredoc *Heredoc
}

// Heredoc is the body of a here-document.
type Heredoc struct {
	// Delim is the delimiter as written, possibly quoted.
	Delim string
	// Quoted is whether any part of Delim is quoted, in which case the body
	// is not expanded.
	Quoted bool
	// Raw is the body text, with leading tabs stripped for <<-.
	Raw string
	// Body is the parsed body, nil when Quoted.
	Body *Word
}

// Redirected is a compound command followed by redirections.
type Redirected struct {
	diag.Ranging
	Cmd    Command
	Redirs []*Redir
}

// If is an if command.
type If struct {
	diag.Ranging
	Cond  *List
	Then  *List
	Elifs []*Elif
	Else  *List
}

// Elif is an elif clause of an If.
type Elif struct {
	Cond *List
	Then *List
}

// While is a while or until loop.
type While struct {
	diag.Ranging
	Cond  *List
	Body  *List
	Until bool
}

// For is a for loop. When HasIn is false the loop iterates over the
// positional parameters.
type For struct {
	diag.Ranging
	Var   string
	Words []*Word
	HasIn bool
	Body  *List
}

// Case is a case command.
type Case struct {
	diag.Ranging
	Word  *Word
	Items []*CaseItem
}

// CaseItem is a clause of a Case.
type CaseItem struct {
	Patterns []*Word
	Body     *List
}

// Subshell is a list in parentheses.
type Subshell struct {
	diag.Ranging
	Body *List
}

// Group is a list in braces.
type Group struct {
	diag.Ranging
	Body *List
}

// FunctionDef defines a function.
type FunctionDef struct {
	diag.Ranging
	Name string
	Body Command
}

func (*List) isCommand()        {}
func (*AndOr) isCommand()       {}
func (*Pipeline) isCommand()    {}
func (*Simple) isCommand()      {}
func (*Redirected) isCommand()  {}
func (*If) isCommand()          {}
func (*While) isCommand()       {}
func (*For) isCommand()         {}
func (*Case) isCommand()        {}
func (*Subshell) isCommand()    {}
func (*Group) isCommand()       {}
func (*FunctionDef) isCommand() {}

// Word is a shell word, made up of parts that are expanded and concatenated.
type Word struct {
	diag.Ranging
	Parts []WordPart
}

// WordPart is a part of a Word.
type WordPart interface {
	isWordPart()
}

// Lit is literal text. When not inside double quotes it is subject to tilde
// and pathname expansion.
type Lit struct{ Text string }

// Escaped is a character quoted with a backslash.
type Escaped struct{ Text string }

// SglQuoted is a single-quoted string.
type SglQuoted struct{ Text string }

// DblQuoted is a double-quoted string.
type DblQuoted struct{ Parts []WordPart }

// ParamExp is a parameter expansion: $name, ${name}, ${#name} or
// ${name<op><arg>} where op is one of :- := :+ :? - = + ? # ## % %%.
type ParamExp struct {
	Name   string
	Length bool
	Op     string
	Arg    *Word
}

// CmdSubst is a command substitution, $(...) or `...`.
type CmdSubst struct{ Body *List }

// ArithExp is an arithmetic expansion, $((...)). The expression is
// expanded like a here-document before being evaluated.
type ArithExp struct{ Expr *Word }

func (*Lit) isWordPart()       {}
func (*Escaped) isWordPart()   {}
func (*SglQuoted) isWordPart() {}
func (*DblQuoted) isWordPart() {}
func (*ParamExp) isWordPart()  {}
func (*CmdSubst) isWordPart()  {}
func (*ArithExp) isWordPart()  {}

// Literal returns the value of w after quote removal and whether w contains
// no expansions.
func (w *Word) Literal() (string, bool) {
	var sb []byte
	if !appendLiteral(&sb, w.Parts) {
		return "", false
	}
	return string(sb), true
}

func appendLiteral(sb *[]byte, parts []WordPart) bool {
	for _, part := range parts {
		switch part := part.(type) {
		case *Lit:
			*sb = append(*sb, part.Text...)
		case *Escaped:
			*sb = append(*sb, part.Text...)
		case *SglQuoted:
			*sb = append(*sb, part.Text...)
		case *DblQuoted:
			if !appendLiteral(sb, part.Parts) {
				return false
			}
		default:
			return false
		}
	}
	return true
}
