// Package eval evaluates parsed command lines: it expands words, sets up
// redirections, wires pipelines, runs control structures and dispatches to
// functions, builtins and external commands.
//
// All mutable data lives in a *state.Store: variables (*env.Environ),
// positional parameters (*Params), functions (*Functions), the last status
// (LastStatus) and so on. Subshells run on a clone of the store.
package eval

import (
	"os"
	"sort"
	"strings"
	"sync"

	"src.kesh.sh/pkg/env"
	"src.kesh.sh/pkg/logutil"
	"src.kesh.sh/pkg/parse"
	"src.kesh.sh/pkg/shell/shdefs"
	"src.kesh.sh/pkg/state"
)

var logger = logutil.GetLogger("[eval] ")

// LastStatus is the exit status of the last command, the value of $?.
type LastStatus int

// LastBgPid is the process ID of the last background job, the value of $!.
type LastBgPid int

// ExitRequest is put in the state when the shell or subshell should exit.
type ExitRequest struct {
	Status int
}

// RequestExit asks the shell to exit with the given status once the current
// command finishes.
func RequestExit(st *state.Store, status int) {
	state.Put(st, &ExitRequest{status})
}

// Subshell marks the state of a subshell. The working directory of a
// subshell is kept in $PWD only; the shell process itself never changes
// directory on its behalf.
type Subshell struct{}

// IsSubshell reports whether st belongs to a subshell.
func IsSubshell(st *state.Store) bool {
	_, ok := state.Lookup[Subshell](st)
	return ok
}

// Ports holds the files for descriptors 0, 1, 2 and any higher ones opened by
// redirections. A nil entry is a closed descriptor.
type Ports struct {
	Files []*os.File
}

// StdPorts returns the Ports of the shell process.
func StdPorts() *Ports {
	return &Ports{[]*os.File{os.Stdin, os.Stdout, os.Stderr}}
}

// CloneState implements state.Cloner.
func (p *Ports) CloneState() any {
	return &Ports{append([]*os.File(nil), p.Files...)}
}

// Params holds the positional parameters.
type Params struct {
	// $0
	Zero string
	// $1, $2, ...
	Args []string
}

// CloneState implements state.Cloner.
func (p *Params) CloneState() any {
	return &Params{p.Zero, append([]string(nil), p.Args...)}
}

// Functions is the table of shell functions.
type Functions struct {
	m map[string]*parse.FunctionDef
}

// NewFunctions returns an empty table.
func NewFunctions() *Functions {
	return &Functions{map[string]*parse.FunctionDef{}}
}

// Define adds or replaces a function.
func (fs *Functions) Define(def *parse.FunctionDef) { fs.m[def.Name] = def }

// Lookup finds a function.
func (fs *Functions) Lookup(name string) (*parse.FunctionDef, bool) {
	def, ok := fs.m[name]
	return def, ok
}

// Remove removes a function.
func (fs *Functions) Remove(name string) { delete(fs.m, name) }

// Names returns the names of all functions, sorted.
func (fs *Functions) Names() []string {
	names := make([]string, 0, len(fs.m))
	for name := range fs.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CloneState implements state.Cloner.
func (fs *Functions) CloneState() any {
	m := make(map[string]*parse.FunctionDef, len(fs.m))
	for k, v := range fs.m {
		m[k] = v
	}
	return &Functions{m}
}

// Capture collects the output of builtins run during an evaluation that
// reaches the stdout and stderr of the evaluation.
type Capture struct {
	mu       sync.Mutex
	out, err *os.File
	stdout   strings.Builder
	stderr   strings.Builder
}

// Add records output. It does nothing on a nil Capture.
func (c *Capture) Add(out shdefs.CmdOutput) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stdout.WriteString(out.Stdout)
	c.stderr.WriteString(out.Stderr)
}

func (c *Capture) bind(out, err *os.File) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.out, c.err = out, err
}

// Records the output of a builtin that wrote to the files stdout and
// stderr. Text is recorded under the stream of the evaluation it ends up on;
// text sent to other files or pipes is dropped.
func (c *Capture) addRouted(o shdefs.CmdOutput, stdout, stderr *os.File) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range [...]struct {
		text string
		f    *os.File
	}{{o.Stdout, stdout}, {o.Stderr, stderr}} {
		switch {
		case s.text == "" || s.f == nil:
		case s.f == c.out:
			c.stdout.WriteString(s.text)
		case s.f == c.err:
			c.stderr.WriteString(s.text)
		}
	}
}

// Output returns what has been captured.
func (c *Capture) Output() (stdout, stderr string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stdout.String(), c.stderr.String()
}

// Init puts the values the evaluator needs in st, keeping those already
// present.
func Init(st *state.Store, zero string, args []string) {
	state.GetOr(st, env.FromOS)
	state.GetOr(st, func() *Params { return &Params{zero, args} })
	state.GetOr(st, NewFunctions)
	state.GetOr(st, StdPorts)
	state.GetOr(st, func() *shdefs.Options { return &shdefs.Options{} })
	state.GetOr(st, func() LastStatus { return 0 })
}

// Eval evaluates a parsed command list and returns its status. The status is
// also stored as LastStatus.
func Eval(sh shdefs.Host, st *state.Store, list *parse.List) int {
	return EvalCapture(sh, st, list, nil)
}

// EvalCapture is like Eval, additionally collecting in c the output of
// builtins that reaches the stdout and stderr ports in st.
func EvalCapture(sh shdefs.Host, st *state.Store, list *parse.List, c *Capture) int {
	fm := newFrame(sh, st)
	if c != nil {
		c.bind(fm.file(1), fm.file(2))
	}
	fm.capture = c
	status := flowStatus(fm.execList(list))
	fm.setStatus(status)
	return status
}

// ExitRequested returns the pending exit request, if any.
func ExitRequested(st *state.Store) (*ExitRequest, bool) {
	return state.Lookup[*ExitRequest](st)
}
