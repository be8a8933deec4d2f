// Package cli implements the line editor: an insert mode and a vi-like normal
// mode over a line buffer with undo, history walking, suggestions from
// history, tab completion and syntax highlighting.
//
// The editor runs a serial event loop during ReadLine. Terminal events and
// signal events are relayed into the loop by goroutines; everything else
// happens on the goroutine that called ReadLine.
package cli

import (
	"errors"
	"io"
	"sync"

	"src.kesh.sh/pkg/cli/term"
	"src.kesh.sh/pkg/complete"
	"src.kesh.sh/pkg/histutil"
	"src.kesh.sh/pkg/logutil"
	"src.kesh.sh/pkg/sig"
	"src.kesh.sh/pkg/state"
	"src.kesh.sh/pkg/ui"
)

var logger = logutil.GetLogger("[cli] ")

// ErrInterrupted is returned by ReadLine when the line is discarded with
// Ctrl-C.
var ErrInterrupted = errors.New("interrupted")

// Mode is the editing mode.
type Mode int

// Possible values of Mode.
const (
	Insert Mode = iota
	Normal
)

var modeNames = [...]string{"insert", "normal"}

func (m Mode) String() string { return modeNames[m] }

// ParseMode parses the name of a Mode.
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if s == name {
			return Mode(i), nil
		}
	}
	return Insert, errors.New("bad editor mode: " + s)
}

// LineCtx is what the prompts, the suggester and the completer see of the
// editor.
type LineCtx struct {
	Buffer     CodeBuffer
	Mode       Mode
	History    *histutil.History
	LastStatus int
	St         *state.Store
}

// EditorSpec configures an Editor. Only TTY is required.
type EditorSpec struct {
	TTY TTY

	Prompt             func(*LineCtx) ui.Text
	RPrompt            func(*LineCtx) ui.Text
	ContinuationPrompt func(*LineCtx) ui.Text
	Highlighter        func(code string) ui.Text
	// Suggester returns a full line that the current line is a prefix of, or
	// "".
	Suggester func(*LineCtx) string
	Completer func(*LineCtx) (*complete.Result, error)
	// Incomplete reports whether code needs a continuation line.
	Incomplete func(code string) bool

	History    *histutil.History
	St         *state.Store
	LastStatus func() int
	// InitialMode returns the mode each line starts in.
	InitialMode func() Mode
	// OnModeSwitch is called after the mode changes.
	OnModeSwitch func(Mode)
	// OnChildChanged is called when SIGCHLD arrives while a line is being
	// read. It may call Notify.
	OnChildChanged func(*Editor)

	// Bindings of the insert mode, looked up before the defaults.
	Bindings Bindings
	// Maximum height of the editor. Zero means the terminal height.
	MaxHeight int
}

// Editor is the line editor.
type Editor struct {
	spec     EditorSpec
	tty      TTY
	lp       *loop
	defaults Bindings

	// Fields below are only used on the loop goroutine.
	buf         CodeBuffer
	mode        Mode
	undoStack   []CodeBuffer
	redoStack   []CodeBuffer
	walk        *histWalk
	comp        *completion
	pendingKeys []rune
	register    string
	pasting     bool
	reqRead     chan struct{}

	notesMutex sync.Mutex
	notes      []ui.Text
}

// NewEditor creates a new Editor.
func NewEditor(spec EditorSpec) *Editor {
	if spec.Prompt == nil {
		spec.Prompt = func(*LineCtx) ui.Text { return ui.T("$ ") }
	}
	if spec.ContinuationPrompt == nil {
		spec.ContinuationPrompt = func(*LineCtx) ui.Text { return ui.T("> ") }
	}
	if spec.Highlighter == nil {
		spec.Highlighter = func(code string) ui.Text { return ui.T(code) }
	}
	ed := &Editor{spec: spec, tty: spec.TTY, defaults: InsertBindings()}
	ed.lp = newLoop(ed.handle, ed.redraw)
	return ed
}

// ReadLine reads a line. It returns io.EOF on Ctrl-D on an empty line and
// when the shell is asked to terminate, ErrInterrupted on Ctrl-C and
// *TerminalError when the terminal cannot be set up.
func (ed *Editor) ReadLine() (string, error) {
	restore, err := ed.tty.Setup()
	if err != nil {
		var termErr *TerminalError
		if !errors.As(err, &termErr) {
			err = &TerminalError{err}
		}
		return "", err
	}
	defer restore()

	ed.reset()
	sigCh := ed.tty.NotifySignals()
	childChanged := drain(sigCh)
	sig.TakeInterrupted()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	defer wg.Wait()
	defer ed.tty.CloseReader()
	defer close(stop)

	// One event is read for each handled event, so that what is typed after
	// Enter is left for the next line or the command.
	reqRead := make(chan struct{}, 1)
	reqRead <- struct{}{}
	ed.reqRead = reqRead
	wg.Add(2)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-reqRead:
			case <-stop:
				return
			}
			ev, err := ed.tty.ReadEvent()
			switch {
			case err == nil:
			case err == term.ErrStopped:
				return
			case term.IsReadErrorRecoverable(err):
				ev = term.NonfatalErrorEvent{Err: err}
			default:
				ed.lp.Input(term.FatalErrorEvent{Err: err}, stop)
				return
			}
			if !ed.lp.Input(ev, stop) {
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		if childChanged && !ed.lp.Input(sig.ChildChanged, stop) {
			return
		}
		for {
			select {
			case s, ok := <-sigCh:
				if !ok || !ed.lp.Input(s, stop) {
					return
				}
			case <-stop:
				return
			}
		}
	}()

	ed.lp.Redraw(true)
	return ed.lp.Run()
}

// Discards signals that arrived while a command was running; they belong to
// it. It reports whether one of them was SIGCHLD, since jobs may have changed
// state after the last report.
func drain(ch <-chan sig.Event) (childChanged bool) {
	for {
		select {
		case e := <-ch:
			if e == sig.ChildChanged {
				childChanged = true
			}
		default:
			return childChanged
		}
	}
}

func (ed *Editor) reset() {
	ed.buf = CodeBuffer{}
	ed.undoStack, ed.redoStack = nil, nil
	ed.walk, ed.comp, ed.pendingKeys = nil, nil, nil
	ed.pasting = false
	ed.mode = Insert
	if ed.spec.InitialMode != nil {
		ed.mode = ed.spec.InitialMode()
	}
}

// Notify shows a note above the editor. It may be called from any goroutine.
func (ed *Editor) Notify(note ui.Text) {
	ed.notesMutex.Lock()
	ed.notes = append(ed.notes, note)
	ed.notesMutex.Unlock()
	ed.lp.Redraw(false)
}

func (ed *Editor) takeNotes() []ui.Text {
	ed.notesMutex.Lock()
	defer ed.notesMutex.Unlock()
	notes := ed.notes
	ed.notes = nil
	return notes
}

// Mode returns the current mode.
func (ed *Editor) Mode() Mode { return ed.mode }

func (ed *Editor) lineCtx() *LineCtx {
	lc := &LineCtx{Buffer: ed.buf, Mode: ed.mode, History: ed.spec.History, St: ed.spec.St}
	if ed.spec.LastStatus != nil {
		lc.LastStatus = ed.spec.LastStatus()
	}
	return lc
}

func (ed *Editor) handle(e event) {
	switch e := e.(type) {
	case sig.Event:
		switch e {
		case sig.Interrupt:
			ed.interrupt()
		case sig.Resized:
			ed.lp.Redraw(true)
		case sig.ChildChanged:
			if ed.spec.OnChildChanged != nil {
				ed.spec.OnChildChanged(ed)
			}
		case sig.Terminate:
			ed.lp.Return("", io.EOF)
		}
		// Signals do not consume a read request.
		return
	case term.FatalErrorEvent:
		ed.lp.Return("", e.Err)
		return
	case term.NonfatalErrorEvent:
		logger.Println("read event:", e.Err)
	case term.PasteSetting:
		ed.pasting = bool(e)
	case term.KeyEvent:
		k := ui.Key(e)
		switch {
		case ed.pasting:
			ed.insertPasted(k)
		case ed.mode == Normal:
			ed.handleNormalKey(k)
		default:
			ed.handleInsertKey(k)
		}
	}
	if !ed.lp.HasReturned() {
		select {
		case ed.reqRead <- struct{}{}:
		default:
		}
	}
}

func (ed *Editor) handleInsertKey(k ui.Key) {
	if ed.comp != nil {
		switch k {
		case ui.K(ui.Tab), ui.K(ui.Tab, ui.Shift):
		case ui.Esc:
			ed.comp = nil
			return
		case ui.K(ui.Enter), ui.K('M', ui.Ctrl):
			ed.acceptCompletion()
			return
		default:
			ed.acceptCompletion()
		}
	}
	if b, ok := ed.spec.Bindings[k]; ok {
		b.Fn(ed)
		return
	}
	if b, ok := ed.defaults[k]; ok {
		b.Fn(ed)
		return
	}
	if k.Mod == 0 && isPrintable(k.Rune) {
		ed.edit(func(c *CodeBuffer) { c.InsertAtDot(string(k.Rune)) })
		return
	}
	ed.Notify(ui.T("Unbound key: " + k.String()))
}

// Pasted text is inserted literally, including newlines and tabs.
func (ed *Editor) insertPasted(k ui.Key) {
	r := k.Rune
	switch {
	case k == ui.K('M', ui.Ctrl):
		r = '\n'
	case k.Mod != 0 || !(r == '\n' || r == '\t' || isPrintable(r)):
		return
	}
	ed.edit(func(c *CodeBuffer) { c.InsertAtDot(string(r)) })
}

func isPrintable(r rune) bool {
	return r >= 0x20 && r != 0x7f
}

// Changes the buffer with f. The old buffer is pushed to the undo stack when
// the content changes.
func (ed *Editor) edit(f func(*CodeBuffer)) {
	old := ed.buf
	f(&ed.buf)
	if ed.buf.Content != old.Content {
		ed.undoStack = append(ed.undoStack, old)
		ed.redoStack = nil
	}
	ed.walk = nil
}

func (ed *Editor) undo() {
	if len(ed.undoStack) == 0 {
		return
	}
	ed.redoStack = append(ed.redoStack, ed.buf)
	ed.buf = ed.undoStack[len(ed.undoStack)-1]
	ed.undoStack = ed.undoStack[:len(ed.undoStack)-1]
	ed.walk = nil
}

func (ed *Editor) redo() {
	if len(ed.redoStack) == 0 {
		return
	}
	ed.undoStack = append(ed.undoStack, ed.buf)
	ed.buf = ed.redoStack[len(ed.redoStack)-1]
	ed.redoStack = ed.redoStack[:len(ed.redoStack)-1]
	ed.walk = nil
}

func (ed *Editor) moveDot(dot int) {
	ed.buf.Dot = dot
	ed.walk = nil
}

func (ed *Editor) moveToLineStart() {
	ed.moveDot(ed.buf.lineStart(ed.buf.Dot))
}

func (ed *Editor) moveToLineEnd() {
	if !ed.acceptSuggestion() {
		ed.moveDot(ed.buf.lineEnd(ed.buf.Dot))
	}
}

func (ed *Editor) backspace() {
	ed.edit(func(c *CodeBuffer) { c.Delete(c.runeLeft(c.Dot), c.Dot) })
}

func (ed *Editor) deleteRight() {
	ed.edit(func(c *CodeBuffer) { c.Delete(c.Dot, c.runeRight(c.Dot)) })
}

func (ed *Editor) setMode(m Mode) {
	if m == ed.mode {
		return
	}
	ed.mode = m
	ed.pendingKeys = nil
	ed.comp = nil
	if m == Normal && ed.buf.Dot > ed.buf.lineStart(ed.buf.Dot) {
		// As in vi, leaving the insert mode puts the cursor on the last
		// inserted character.
		ed.buf.Dot = ed.buf.runeLeft(ed.buf.Dot)
	}
	if ed.spec.OnModeSwitch != nil {
		ed.spec.OnModeSwitch(m)
	}
}

func (ed *Editor) submit() {
	if ed.spec.Incomplete != nil && ed.spec.Incomplete(ed.buf.Content) {
		ed.edit(func(c *CodeBuffer) {
			c.Content += "\n"
			c.Dot = len(c.Content)
		})
		return
	}
	ed.lp.Return(ed.buf.Content, nil)
}

func (ed *Editor) interrupt() {
	ed.comp, ed.walk, ed.pendingKeys = nil, nil, nil
	ed.setMode(Insert)
	ed.lp.Return("", ErrInterrupted)
}

// Returns the part of the suggestion after the buffer, or "".
func (ed *Editor) suggest() string {
	if ed.spec.Suggester == nil || ed.mode != Insert || ed.comp != nil ||
		ed.buf.Dot != len(ed.buf.Content) || ed.buf.Content == "" {
		return ""
	}
	s := ed.spec.Suggester(ed.lineCtx())
	if len(s) <= len(ed.buf.Content) || s[:len(ed.buf.Content)] != ed.buf.Content {
		return ""
	}
	return s[len(ed.buf.Content):]
}

func (ed *Editor) acceptSuggestion() bool {
	s := ed.suggest()
	if s == "" {
		return false
	}
	ed.edit(func(c *CodeBuffer) { c.InsertAtDot(s) })
	return true
}
