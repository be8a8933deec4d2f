package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"
	"time"

	"src.kesh.sh/pkg/cli"
	"src.kesh.sh/pkg/edit"
	"src.kesh.sh/pkg/eval"
	"src.kesh.sh/pkg/histutil"
	"src.kesh.sh/pkg/hook"
	"src.kesh.sh/pkg/job"
	"src.kesh.sh/pkg/prog"
	"src.kesh.sh/pkg/sig"
	"src.kesh.sh/pkg/state"
	"src.kesh.sh/pkg/sys"
)

// InteractiveRescueShell determines whether a panic results in a rescue shell
// being launched. It should be set to false by interactive mode unit tests.
var interactiveRescueShell = true

// InteractConfig keeps configuration for the interactive mode.
type InteractConfig struct {
	// Path of the rc file; empty means no rc file.
	RC    string
	Flags prog.Flags
}

// Interactive mode panic handler. The terminal is handed back to the shell
// and restored before anything is printed.
func handlePanic(sh *Shell, stderr *os.File) {
	r := recover()
	if r == nil {
		return
	}
	if sh != nil {
		sh.launcher.ReclaimTerminal()
		sh.Close()
	}
	fmt.Fprintln(stderr)
	fmt.Fprint(stderr, sys.DumpStack())
	fmt.Fprintln(stderr)
	fmt.Fprintln(stderr, r)
	if !interactiveRescueShell {
		panic(r)
	}
	fmt.Fprintln(stderr, "\nExecing recovery shell /bin/sh")
	syscall.Exec("/bin/sh", []string{"/bin/sh"}, os.Environ())
}

// Interact runs an interactive shell session. It returns the exit status of
// the shell.
func Interact(fds [3]*os.File, cfg *InteractConfig) int {
	isTTY := sys.IsATTY(fds[0].Fd()) && sys.IsATTY(fds[2].Fd())
	logger.Println("interactive,", describeFds(fds), "tty:", isTTY)

	relay := sig.Start()
	defer relay.Stop()
	stopDump := dumpStackOnSignal(fds[2])
	defer stopDump()

	launcher := job.NonInteractive()
	if isTTY {
		l, err := job.TakeTerminal(fds[0])
		if err != nil {
			newOutput(fds).Warnf("no job control: %v", err)
		} else {
			launcher = l
		}
	}

	sh := NewShell(fds, ShellConfig{Source: "[tty]", Launcher: launcher, Zero: "kesh"})
	defer func() {
		if err := sh.Close(); err != nil {
			sh.out.Error(err)
		}
	}()
	defer handlePanic(sh, fds[2])

	rc := &Config{}
	if cfg.RC != "" {
		var err error
		rc, err = LoadConfig(cfg.RC)
		if err != nil {
			sh.out.Error(err)
			rc = &Config{}
		}
	}
	rc.Apply(sh.st)
	if err := initHistory(sh, rc.History, &cfg.Flags); err != nil {
		sh.out.Warnf("history: %v", err)
	}

	var ed editor
	if isTTY {
		ed = edit.NewEditor(edit.Config{
			TTY: cli.NewTTY(fds[0], fds[2], relay), Host: sh, St: sh.st,
			ReportJobs: sh.ReportJobs})
	} else {
		ed = newMinEditor(fds[0], fds[2], sh.st, incompleteFunc(sh))
	}

	hook.Fire(sh.hooks, sh.st, hook.Startup{})

	cooldown := time.Second
	for {
		for _, line := range sh.ReportJobs() {
			sh.out.Job(line)
		}
		line, err := ed.ReadCode()
		if err == io.EOF {
			break
		} else if errors.Is(err, cli.ErrInterrupted) {
			state.Put(sh.st, eval.LastStatus(130))
			continue
		} else if err != nil {
			sh.out.Errorf("editor error: %v", err)
			if _, isMinEditor := ed.(*minEditor); !isMinEditor {
				fmt.Fprintln(fds[2], "Falling back to basic line editor")
				ed = newMinEditor(fds[0], fds[2], sh.st, incompleteFunc(sh))
			} else {
				fmt.Fprintln(fds[2], "Don't know what to do, pid is", os.Getpid())
				fmt.Fprintln(fds[2], "Restarting editor in", cooldown)
				time.Sleep(cooldown)
				if cooldown < time.Minute {
					cooldown *= 2
				}
			}
			continue
		}
		// No error; reset cooldown.
		cooldown = time.Second
		if strings.TrimSpace(line) == "" {
			continue
		}

		sh.EvalLine(line)
		if h, ok := state.Lookup[*histutil.History](sh.st); ok {
			h.Add(line, time.Now())
		}
		if _, ok := eval.ExitRequested(sh.st); ok {
			break
		}
	}
	if sig.Terminated() {
		hangUpJobs(state.GetOr(sh.st, job.NewTable))
	}
	return sh.ExitStatus()
}

func incompleteFunc(sh *Shell) func(string) bool {
	return func(code string) bool {
		return sh.lang.NeedsLineCheck(sh, sh.st, code)
	}
}
