//go:build unix

package cli_test

import (
	"errors"
	"testing"

	"github.com/creack/pty"

	"src.kesh.sh/pkg/cli"
	"src.kesh.sh/pkg/cli/term"
	"src.kesh.sh/pkg/must"
	"src.kesh.sh/pkg/ui"
)

func TestTTY_ReadsEventsFromTerminal(t *testing.T) {
	ptmx, tty := must.OK2(pty.Open())
	t.Cleanup(func() {
		ptmx.Close()
		tty.Close()
	})
	pty.Setsize(ptmx, &pty.Winsize{Rows: 10, Cols: 40})

	ttyObj := cli.NewTTY(tty, tty, nil)
	restore, err := ttyObj.Setup()
	if err != nil {
		t.Fatalf("Setup -> error %v", err)
	}
	defer restore()

	if h, w := ttyObj.Size(); h != 10 || w != 40 {
		t.Errorf("Size -> (%v, %v), want (10, 40)", h, w)
	}
	ptmx.Write([]byte("a\033[A"))
	for _, want := range []term.Event{term.K('a'), term.K(ui.Up)} {
		ev, err := ttyObj.ReadEvent()
		if err != nil || ev != want {
			t.Errorf("ReadEvent -> (%v, %v), want (%v, nil)", ev, err, want)
		}
	}
	if ttyObj.NotifySignals() != nil {
		t.Errorf("NotifySignals without a relay should return nil")
	}
	ttyObj.CloseReader()
}

func TestTTY_SetupFailsOnNonTerminal(t *testing.T) {
	r, w := must.Pipe()
	t.Cleanup(func() {
		r.Close()
		w.Close()
	})
	_, err := cli.NewTTY(r, w, nil).Setup()
	var termErr *cli.TerminalError
	if !errors.As(err, &termErr) {
		t.Errorf("Setup -> error %v, want *TerminalError", err)
	}
}
