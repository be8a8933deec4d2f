// Package vi parses key sequences of the vi-like normal mode into commands.
//
// The grammar is
//
//	Command = [Count] ( Motion | Operator [Count] ( Motion | SameOperator ) | Simple )
//
// where Operator is one of d y c gu gU, and Simple covers the single-key
// commands such as x, p, u and the insert-mode entries i a I A o O.
package vi

import (
	"errors"
	"fmt"
)

// Action is what a Command does over its motion.
type Action int

// Possible values of Action.
const (
	Move Action = iota
	Delete
	Yank
	Change
	Paste
	ToggleCase
	LowerCase
	UpperCase
	Insert
	Undo
	Redo
)

var actionNames = [...]string{
	"Move", "Delete", "Yank", "Change", "Paste", "ToggleCase", "LowerCase",
	"UpperCase", "Insert", "Undo", "Redo",
}

func (a Action) String() string { return actionNames[a] }

// MotionKind is the kind of a Motion.
type MotionKind int

// Possible values of MotionKind.
const (
	None MotionKind = iota
	Left
	Right
	// Word moves to the start of the next whitespace-separated word.
	Word
	// BackWord moves to the start of the previous whitespace-separated word.
	BackWord
	// WordPunc is like Word, but runs of punctuation also count as words.
	WordPunc
	Start
	End
	// All is the whole line, as in dd.
	All
	// Find moves to the next occurrence of Motion.Char.
	Find
	Up
	Down
)

var motionNames = [...]string{
	"None", "Left", "Right", "Word", "BackWord", "WordPunc", "Start", "End",
	"All", "Find", "Up", "Down",
}

func (k MotionKind) String() string { return motionNames[k] }

// Motion is the range a Command acts on.
type Motion struct {
	Kind MotionKind
	Char rune
}

// Command is a parsed normal-mode command.
type Command struct {
	Repeat int
	Action Action
	Motion Motion
}

func (c Command) String() string {
	s := fmt.Sprintf("%d %v %v", c.Repeat, c.Action, c.Motion.Kind)
	if c.Motion.Kind == Find {
		s += fmt.Sprintf(" %q", c.Motion.Char)
	}
	return s
}

// ErrIncomplete is returned by Parse when keys is a proper prefix of a
// command.
var ErrIncomplete = errors.New("incomplete command")

// UnknownKeyError is returned by Parse when a key cannot continue the
// command.
type UnknownKeyError struct {
	Key rune
}

func (e UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown key %q", e.Key)
}

// CtrlR is the key that triggers Redo.
const CtrlR = 'r' & 0x1f

var simpleMotions = map[rune]MotionKind{
	'h': Left, 'l': Right, ' ': Right,
	'W': Word, 'w': WordPunc, 'b': BackWord, 'B': BackWord,
	'0': Start, '^': Start, '$': End,
	'k': Up, 'j': Down,
}

var operators = map[string]Action{
	"d": Delete, "y": Yank, "c": Change, "gu": LowerCase, "gU": UpperCase,
}

var simpleCommands = map[rune]Command{
	'x':   {Action: Delete, Motion: Motion{Kind: Right}},
	'X':   {Action: Delete, Motion: Motion{Kind: Left}},
	'D':   {Action: Delete, Motion: Motion{Kind: End}},
	'C':   {Action: Change, Motion: Motion{Kind: End}},
	's':   {Action: Change, Motion: Motion{Kind: Right}},
	'p':   {Action: Paste, Motion: Motion{Kind: Right}},
	'P':   {Action: Paste},
	'~':   {Action: ToggleCase, Motion: Motion{Kind: Right}},
	'u':   {Action: Undo},
	CtrlR: {Action: Redo},
	'i':   {Action: Insert},
	'a':   {Action: Insert, Motion: Motion{Kind: Right}},
	'I':   {Action: Insert, Motion: Motion{Kind: Start}},
	'A':   {Action: Insert, Motion: Motion{Kind: End}},
	'o':   {Action: Insert, Motion: Motion{Kind: End}},
	'O':   {Action: Insert, Motion: Motion{Kind: Start}},
}

type parser struct {
	keys []rune
	pos  int
}

func (p *parser) next() (rune, bool) {
	if p.pos == len(p.keys) {
		return 0, false
	}
	p.pos++
	return p.keys[p.pos-1], true
}

// MaxCount is the largest count a command can have. Larger counts are
// clamped.
const MaxCount = 9999

// count parses an optional count, returning 1 if there is none.
func (p *parser) count() int {
	n := 0
	for p.pos < len(p.keys) {
		r := p.keys[p.pos]
		if r < '0' || r > '9' || r == '0' && n == 0 {
			break
		}
		n = min(n*10+int(r-'0'), MaxCount)
		p.pos++
	}
	if n == 0 {
		return 1
	}
	return n
}

// motion parses a motion. same is the operator key(s) whose repetition
// selects the whole line.
func (p *parser) motion(same string) (Motion, error) {
	r, ok := p.next()
	if !ok {
		return Motion{}, ErrIncomplete
	}
	if kind, ok := simpleMotions[r]; ok {
		return Motion{Kind: kind}, nil
	}
	if r == 'f' {
		c, ok := p.next()
		if !ok {
			return Motion{}, ErrIncomplete
		}
		return Motion{Kind: Find, Char: c}, nil
	}
	if same != "" && r == rune(same[len(same)-1]) {
		return Motion{Kind: All}, nil
	}
	return Motion{}, UnknownKeyError{r}
}

// Parse parses keys as a complete command.
func Parse(keys []rune) (Command, error) {
	p := &parser{keys: keys}
	repeat := p.count()
	r, ok := p.next()
	if !ok {
		return Command{}, ErrIncomplete
	}

	if cmd, ok := simpleCommands[r]; ok {
		cmd.Repeat = repeat
		return p.finish(cmd)
	}

	op := string(r)
	if r == 'g' {
		r2, ok := p.next()
		if !ok {
			return Command{}, ErrIncomplete
		}
		op += string(r2)
	}
	if action, ok := operators[op]; ok {
		repeat = min(repeat*p.count(), MaxCount)
		m, err := p.motion(op)
		if err != nil {
			return Command{}, err
		}
		return p.finish(Command{repeat, action, m})
	}
	if r == 'g' {
		return Command{}, UnknownKeyError{rune(op[1])}
	}

	p.pos--
	m, err := p.motion("")
	if err != nil {
		return Command{}, err
	}
	return p.finish(Command{repeat, Move, m})
}

func (p *parser) finish(cmd Command) (Command, error) {
	if p.pos < len(p.keys) {
		return Command{}, UnknownKeyError{p.keys[p.pos]}
	}
	return cmd, nil
}
