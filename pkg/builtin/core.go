package builtin

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"src.kesh.sh/pkg/alias"
	"src.kesh.sh/pkg/env"
	"src.kesh.sh/pkg/eval"
	"src.kesh.sh/pkg/fsutil"
	"src.kesh.sh/pkg/job"
	"src.kesh.sh/pkg/parse"
	"src.kesh.sh/pkg/shell/shdefs"
	"src.kesh.sh/pkg/state"
)

func trueFn(shdefs.Host, *state.Store, []string) shdefs.CmdOutput {
	return shdefs.CmdOutput{}
}

func falseFn(shdefs.Host, *state.Store, []string) shdefs.CmdOutput {
	return shdefs.CmdOutput{Status: 1}
}

func exit(_ shdefs.Host, st *state.Store, args []string) shdefs.CmdOutput {
	status := 0
	switch len(args) {
	case 0:
	case 1:
		n, out, ok := parseStatus("exit", args[0])
		if !ok {
			eval.RequestExit(st, out.Status)
			return out
		}
		status = n
	default:
		return errorf("exit", 1, "too many arguments")
	}
	eval.RequestExit(st, status)
	return shdefs.CmdOutput{Status: status}
}

func cd(sh shdefs.Host, st *state.Store, args []string) shdefs.CmdOutput {
	e := state.Get[*env.Environ](st)
	var dir string
	printDir := false
	switch len(args) {
	case 0:
		home, ok := e.Get(env.HOME)
		if !ok || home == "" {
			return errorf("cd", 1, "HOME not set")
		}
		dir = home
	case 1:
		dir = args[0]
		if dir == "-" {
			old, ok := e.Get(env.OLDPWD)
			if !ok || old == "" {
				return errorf("cd", 1, "OLDPWD not set")
			}
			dir, printDir = old, true
		}
	default:
		return errorf("cd", 1, "too many arguments")
	}
	if err := eval.Chdir(sh, st, dir); err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			err = pathErr.Err
		}
		return errorf("cd", 1, "%s: %v", dir, err)
	}
	if printDir {
		return shdefs.Ok(eval.Cwd(st) + "\n")
	}
	return shdefs.CmdOutput{}
}

func pwd(_ shdefs.Host, st *state.Store, _ []string) shdefs.CmdOutput {
	return shdefs.Ok(eval.Cwd(st) + "\n")
}

func echo(_ shdefs.Host, _ *state.Store, args []string) shdefs.CmdOutput {
	newline := true
	if len(args) > 0 && args[0] == "-n" {
		newline = false
		args = args[1:]
	}
	s := strings.Join(args, " ")
	if newline {
		s += "\n"
	}
	return shdefs.Ok(s)
}

func help(sh shdefs.Host, _ *state.Store, args []string) shdefs.CmdOutput {
	reg := sh.Builtins()
	if len(args) == 0 {
		var sb strings.Builder
		for _, name := range reg.Names() {
			b, _ := reg.Lookup(name)
			sb.WriteString(b.Usage + "\n")
		}
		return shdefs.Ok(sb.String())
	}
	var sb strings.Builder
	status := 0
	for _, name := range args {
		b, ok := reg.Lookup(name)
		if !ok {
			status = 1
			continue
		}
		sb.WriteString(b.Usage + "\n    " + b.Doc + "\n")
	}
	if status != 0 {
		return shdefs.CmdOutput{Status: 1, Stdout: sb.String(),
			Stderr: "kesh: help: no builtin matches " + strings.Join(args, " ") + "\n"}
	}
	return shdefs.Ok(sb.String())
}

func typeFn(sh shdefs.Host, st *state.Store, args []string) shdefs.CmdOutput {
	if len(args) == 0 {
		return usageError("type")
	}
	var out shdefs.CmdOutput
	for _, name := range args {
		line, ok := describe(sh, st, name)
		if !ok {
			out.Status = 1
			out.Stderr += "kesh: type: " + name + ": not found\n"
			continue
		}
		out.Stdout += line + "\n"
	}
	return out
}

func describe(sh shdefs.Host, st *state.Store, name string) (string, bool) {
	if t, ok := state.Lookup[*alias.Table](st); ok {
		if exp, ok := t.Lookup(st, name); ok {
			return name + " is aliased to " + parse.Quote(exp), true
		}
	}
	if eval.IsSpecialForm(name) {
		return name + " is a special shell builtin", true
	}
	if fns, ok := state.Lookup[*eval.Functions](st); ok {
		if _, ok := fns.Lookup(name); ok {
			return name + " is a function", true
		}
	}
	if _, ok := sh.Builtins().Lookup(name); ok {
		return name + " is a shell builtin", true
	}
	path, err := job.Resolve(name, state.Get[*env.Environ](st).Value(env.PATH))
	if err != nil {
		return "", false
	}
	return name + " is " + path, true
}

func source(sh shdefs.Host, st *state.Store, args []string) shdefs.CmdOutput {
	if len(args) == 0 {
		return errorf("source", 2, "filename argument required")
	}
	path := args[0]
	if fsutil.DontSearch(path) || fileExists(eval.Cwd(st), path) {
		if !filepath.IsAbs(path) {
			path = filepath.Join(eval.Cwd(st), path)
		}
	} else if found, err := findSourced(st, path); err == nil {
		path = found
	}
	src, err := os.ReadFile(path)
	if err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			err = pathErr.Err
		}
		return errorf("source", 1, "%s: %v", args[0], err)
	}
	list, err := parse.Parse(args[0], string(src))
	if err != nil {
		return shdefs.Fail(2, err.Error())
	}
	var params []string
	if len(args) > 1 {
		params = args[1:]
	}
	return shdefs.CmdOutput{Status: eval.Source(sh, st, list, params)}
}

func fileExists(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}

// Looks for a sourced file on $PATH; it need not be executable.
func findSourced(st *state.Store, name string) (string, error) {
	for _, dir := range fsutil.SplitPath(state.Get[*env.Environ](st).Value(env.PATH)) {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, nil
		}
	}
	return "", fsutil.ErrNotFound
}

func export(_ shdefs.Host, st *state.Store, args []string) shdefs.CmdOutput {
	e := state.Get[*env.Environ](st)
	if len(args) == 0 || len(args) == 1 && args[0] == "-p" {
		var sb strings.Builder
		e.Each(func(name string, v env.Var) {
			if v.Exported {
				sb.WriteString("export " + name + "=" + parse.Quote(v.Value) + "\n")
			}
		})
		return shdefs.Ok(sb.String())
	}
	var out shdefs.CmdOutput
	for _, arg := range args {
		name, value, hasValue := strings.Cut(arg, "=")
		if !parse.IsName(name) {
			out.Status = 1
			out.Stderr += "kesh: export: " + arg + ": not a valid identifier\n"
			continue
		}
		if hasValue {
			e.Export(name, value)
		} else {
			e.MarkExported(name)
		}
	}
	return out
}

func unset(_ shdefs.Host, st *state.Store, args []string) shdefs.CmdOutput {
	functions := false
	if len(args) > 0 && (args[0] == "-f" || args[0] == "-v") {
		functions = args[0] == "-f"
		args = args[1:]
	}
	var out shdefs.CmdOutput
	for _, name := range args {
		if !parse.IsName(name) {
			out.Status = 1
			out.Stderr += "kesh: unset: " + name + ": not a valid identifier\n"
			continue
		}
		if functions {
			state.Get[*eval.Functions](st).Remove(name)
		} else {
			state.Get[*env.Environ](st).Unset(name)
		}
	}
	return out
}

var shortOptions = map[byte]string{
	'e': "errexit", 'f': "noglob", 'u': "nounset", 'x': "xtrace", 'C': "noclobber",
}

func set(_ shdefs.Host, st *state.Store, args []string) shdefs.CmdOutput {
	opts := state.GetOr(st, func() *shdefs.Options { return &shdefs.Options{} })
	if len(args) == 0 {
		return shdefs.Ok(describeOptions(opts, false))
	}
	setParams := false
	for len(args) > 0 {
		arg := args[0]
		if arg == "--" {
			args = args[1:]
			setParams = true
			break
		}
		if len(arg) < 2 || arg[0] != '-' && arg[0] != '+' {
			break
		}
		on := arg[0] == '-'
		args = args[1:]
		if arg[1:] == "o" {
			if len(args) == 0 {
				return shdefs.Ok(describeOptions(opts, !on))
			}
			if err := opts.Set(args[0], on); err != nil {
				return errorf("set", 2, "%v", err)
			}
			args = args[1:]
			continue
		}
		for i := 1; i < len(arg); i++ {
			name, ok := shortOptions[arg[i]]
			if !ok {
				return errorf("set", 2, "%c%c: invalid option", arg[0], arg[i])
			}
			opts.Set(name, on)
		}
	}
	if setParams || len(args) > 0 {
		state.Get[*eval.Params](st).Args = append([]string{}, args...)
	}
	return shdefs.CmdOutput{}
}

// Prints options like "set -o" does, or as commands like "set +o" does.
func describeOptions(opts *shdefs.Options, asCommands bool) string {
	var sb strings.Builder
	for _, name := range opts.Names() {
		on, _ := opts.Get(name)
		switch {
		case asCommands && on:
			sb.WriteString("set -o " + name + "\n")
		case asCommands:
			sb.WriteString("set +o " + name + "\n")
		case on:
			sb.WriteString(name + "\ton\n")
		default:
			sb.WriteString(name + "\toff\n")
		}
	}
	return sb.String()
}
