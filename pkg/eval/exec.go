package eval

import (
	"os"

	"src.kesh.sh/pkg/glob"
	"src.kesh.sh/pkg/parse"
	"src.kesh.sh/pkg/shell/shdefs"
	"src.kesh.sh/pkg/state"
)

// Executes a list. The returned error is always a *flow.
func (fm *Frame) execList(l *parse.List) (int, error) {
	status := 0
	if l == nil {
		return status, nil
	}
	for _, item := range l.Items {
		if item.Background {
			status = fm.execBackground(item.Cmd)
			fm.setStatus(status)
			continue
		}
		var err error
		status, err = fm.execCmd(item.Cmd)
		fm.setStatus(status)
		if err != nil {
			return status, err
		}
		if fm.interrupted() {
			return 130, &flow{kind: flowInterrupt, status: 130}
		}
		if req, ok := ExitRequested(fm.st); ok {
			return req.Status, &flow{kind: flowExit, status: req.Status}
		}
		if status != 0 && fm.cond == 0 && fm.options().Errexit {
			RequestExit(fm.st, status)
			return status, &flow{kind: flowExit, status: status}
		}
	}
	return status, nil
}

func (fm *Frame) execCmd(cmd parse.Command) (int, error) {
	switch cmd := cmd.(type) {
	case *parse.List:
		return fm.execList(cmd)
	case *parse.AndOr:
		return fm.execAndOr(cmd)
	case *parse.Pipeline:
		return fm.execPipeline(cmd.Cmds, cmd.Negate, parse.Print(cmd))
	case *parse.Simple:
		return fm.execPipeline([]parse.Command{cmd}, false, parse.Print(cmd))
	case *parse.Redirected:
		return fm.execRedirected(cmd)
	case *parse.If:
		return fm.execIf(cmd)
	case *parse.While:
		return fm.execWhile(cmd)
	case *parse.For:
		return fm.execFor(cmd)
	case *parse.Case:
		return fm.execCase(cmd)
	case *parse.Group:
		return fm.execList(cmd.Body)
	case *parse.Subshell:
		return fm.execSubshell(cmd.Body), nil
	case *parse.FunctionDef:
		fm.functions().Define(cmd)
		return 0, nil
	}
	fm.errorf("unsupported command %T", cmd)
	return 2, nil
}

func (fm *Frame) execCond(l *parse.List) (int, error) {
	fm.cond++
	defer func() { fm.cond-- }()
	return fm.execList(l)
}

func (fm *Frame) execAndOr(cmd *parse.AndOr) (int, error) {
	fm.cond++
	status, err := fm.execCmd(cmd.Left)
	fm.cond--
	if err != nil {
		return status, err
	}
	fm.setStatus(status)
	if (cmd.Op == "&&") == (status == 0) {
		return fm.execCmd(cmd.Right)
	}
	return status, nil
}

func (fm *Frame) execRedirected(cmd *parse.Redirected) (int, error) {
	fm2 := fm.fork()
	closers, err := fm2.redirect(cmd.Redirs)
	defer closeAll(closers)
	if err != nil {
		fm.printError(err)
		return 1, nil
	}
	return fm2.execCmd(cmd.Cmd)
}

func closeAll(files []*os.File) {
	for _, f := range files {
		f.Close()
	}
}

func (fm *Frame) execIf(cmd *parse.If) (int, error) {
	status, err := fm.execCond(cmd.Cond)
	if err != nil {
		return status, err
	}
	if status == 0 {
		return fm.execList(cmd.Then)
	}
	for _, elif := range cmd.Elifs {
		status, err := fm.execCond(elif.Cond)
		if err != nil {
			return status, err
		}
		if status == 0 {
			return fm.execList(elif.Then)
		}
	}
	if cmd.Else != nil {
		return fm.execList(cmd.Else)
	}
	return 0, nil
}

func (fm *Frame) execWhile(cmd *parse.While) (int, error) {
	fm.loops++
	defer func() { fm.loops-- }()
	status := 0
	for {
		if fm.interrupted() {
			return 130, &flow{kind: flowInterrupt, status: 130}
		}
		condStatus, err := fm.execCond(cmd.Cond)
		if err != nil {
			if stop, err := loopFlow(err); stop {
				return status, err
			}
			continue
		}
		if (condStatus == 0) == cmd.Until {
			return status, nil
		}
		var bodyErr error
		status, bodyErr = fm.execList(cmd.Body)
		if stop, err := loopFlow(bodyErr); stop {
			return status, err
		}
	}
}

func (fm *Frame) execFor(cmd *parse.For) (int, error) {
	var words []string
	if cmd.HasIn {
		var err error
		words, err = fm.expandWords(cmd.Words)
		if err != nil {
			fm.printError(err)
			return 1, nil
		}
	} else {
		words = fm.params().Args
	}
	fm.loops++
	defer func() { fm.loops-- }()
	status := 0
	for _, w := range words {
		if fm.interrupted() {
			return 130, &flow{kind: flowInterrupt, status: 130}
		}
		fm.env().Set(cmd.Var, w)
		var err error
		status, err = fm.execList(cmd.Body)
		if stop, err := loopFlow(err); stop {
			return status, err
		}
	}
	return status, nil
}

func (fm *Frame) execCase(cmd *parse.Case) (int, error) {
	word, err := fm.expandString(cmd.Word)
	if err != nil {
		fm.printError(err)
		return 1, nil
	}
	for _, item := range cmd.Items {
		for _, pat := range item.Patterns {
			p, err := fm.expandPattern(pat)
			if err != nil {
				fm.printError(err)
				return 1, nil
			}
			if glob.Match(p, word) {
				return fm.execList(item.Body)
			}
		}
	}
	return 0, nil
}

func (fm *Frame) execSubshell(body *parse.List) int {
	return flowStatus(fm.subshell().execList(body))
}

// Calls a function with the given arguments.
func (fm *Frame) callFunction(def *parse.FunctionDef, args []string) (int, error) {
	params := fm.params()
	saved := params.Args
	params.Args = args
	defer func() { params.Args = saved }()

	fm.funcs++
	loops := fm.loops
	fm.loops = 0
	defer func() { fm.funcs--; fm.loops = loops }()

	status, err := fm.execCmd(def.Body)
	if fl, ok := err.(*flow); ok && fl.kind == flowReturn {
		return fl.status, nil
	}
	return status, err
}

// Source evaluates a parsed file in the current shell, with positional
// parameters set to args if args is not nil. A return in the file ends it.
func Source(sh shdefs.Host, st *state.Store, list *parse.List, args []string) int {
	fm := newFrame(sh, st)
	params := fm.params()
	if args != nil {
		saved := params.Args
		params.Args = args
		defer func() { params.Args = saved }()
	}
	fm.funcs++
	status := flowStatus(fm.execList(list))
	fm.setStatus(status)
	return status
}
