package eval

import (
	"strconv"
)

type flowKind int

const (
	flowReturn flowKind = iota
	flowBreak
	flowContinue
	flowExit
	// Abandons the rest of the command line after an interrupt or a stopped
	// job.
	flowInterrupt
)

// A flow is returned as an error to unwind the Go stack for return, break,
// continue and exit.
type flow struct {
	kind flowKind
	// Number of loops left to break out of or continue.
	n      int
	status int
}

func (f *flow) Error() string {
	switch f.kind {
	case flowReturn:
		return "return " + strconv.Itoa(f.status)
	case flowBreak:
		return "break " + strconv.Itoa(f.n)
	case flowContinue:
		return "continue " + strconv.Itoa(f.n)
	case flowInterrupt:
		return "interrupted"
	default:
		return "exit " + strconv.Itoa(f.status)
	}
}

// Special forms implemented by the evaluator rather than as builtins, since
// they affect control flow.
var specialForms = map[string]func(fm *Frame, args []string) (int, error){
	"return":   returnForm,
	"break":    loopForm(flowBreak),
	"continue": loopForm(flowContinue),
}

// IsSpecialForm reports whether name is handled by the evaluator itself.
func IsSpecialForm(name string) bool {
	_, ok := specialForms[name]
	return ok
}

func returnForm(fm *Frame, args []string) (int, error) {
	status := fm.lastStatus()
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			fm.errorf("return: %s: numeric argument required", args[0])
			return 2, nil
		}
		status = n & 0xff
	}
	if fm.funcs == 0 {
		fm.errorf("return: can only be used in a function or sourced script")
		return 1, nil
	}
	return status, &flow{kind: flowReturn, status: status}
}

func loopForm(kind flowKind) func(*Frame, []string) (int, error) {
	name := map[flowKind]string{flowBreak: "break", flowContinue: "continue"}[kind]
	return func(fm *Frame, args []string) (int, error) {
		n := 1
		if len(args) > 0 {
			var err error
			n, err = strconv.Atoi(args[0])
			if err != nil || n < 1 {
				fm.errorf("%s: %s: loop count out of range", name, args[0])
				return 1, nil
			}
		}
		if fm.loops == 0 {
			fm.errorf("%s: only meaningful in a loop", name)
			return 0, nil
		}
		if n > fm.loops {
			n = fm.loops
		}
		return 0, &flow{kind: kind, n: n}
	}
}

// Handles a flow from the body of a loop. It returns whether the loop should
// stop and the error to propagate.
func loopFlow(err error) (stop bool, _ error) {
	fl, ok := err.(*flow)
	if !ok {
		return err != nil, err
	}
	switch fl.kind {
	case flowBreak:
		if fl.n > 1 {
			return true, &flow{kind: flowBreak, n: fl.n - 1}
		}
		return true, nil
	case flowContinue:
		if fl.n > 1 {
			return true, &flow{kind: flowContinue, n: fl.n - 1}
		}
		return false, nil
	}
	return true, err
}

// Returns the status of a command that unwound with err, for contexts that
// contain flows, like subshells.
func flowStatus(status int, err error) int {
	if fl, ok := err.(*flow); ok {
		switch fl.kind {
		case flowReturn, flowExit, flowInterrupt:
			return fl.status
		}
	}
	return status
}
