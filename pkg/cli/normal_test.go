package cli_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"src.kesh.sh/pkg/cli"
	"src.kesh.sh/pkg/cli/term"
	"src.kesh.sh/pkg/ui"
	"src.kesh.sh/pkg/vi"
)

func esc() term.Event { return term.KeyEvent(ui.Esc) }

func TestNormal_ModeSwitches(t *testing.T) {
	var modes []cli.Mode
	_, ctrl, ch := start(cli.EditorSpec{
		OnModeSwitch: func(m cli.Mode) { modes = append(modes, m) },
	})
	ctrl.InjectKeys("echo foo")
	ctrl.Inject(esc())
	// Leaving the insert mode moves the dot onto the last character.
	ctrl.TestBuffer(t, codeBuffer("echo foo", 7))
	ctrl.InjectKeys("A!\n")
	testReturns(t, ch, "echo foo!", nil)
	if diff := cmp.Diff([]cli.Mode{cli.Normal, cli.Insert}, modes); diff != "" {
		t.Errorf("mode switches (-want +got):\n%s", diff)
	}
}

func TestNormal_DeleteUndoRedo(t *testing.T) {
	_, ctrl, ch := start(cli.EditorSpec{})
	ctrl.InjectKeys("echo foo")
	ctrl.Inject(esc())
	ctrl.InjectKeys("bdw")
	ctrl.TestBuffer(t, codeBuffer("echo ", 4))
	ctrl.InjectKeys("u")
	ctrl.TestBuffer(t, codeBuffer("echo foo", 5))
	ctrl.Inject(term.K('R', ui.Ctrl))
	ctrl.TestBuffer(t, codeBuffer("echo ", 4))
	ctrl.InjectKeys("\n")
	testReturns(t, ch, "echo ", nil)
}

func TestNormal_CountAndPaste(t *testing.T) {
	_, ctrl, ch := start(cli.EditorSpec{InitialMode: func() cli.Mode { return cli.Normal }})
	ctrl.InjectKeys("iabcdef")
	ctrl.Inject(esc())
	ctrl.InjectKeys("03x")
	ctrl.TestBuffer(t, codeBuffer("def", 0))
	ctrl.InjectKeys("$p")
	ctrl.TestBuffer(t, codeBuffer("defabc", 5))
	ctrl.InjectKeys("0P\n")
	testReturns(t, ch, "abcdefabc", nil)
}

func TestNormal_HugeCounts(t *testing.T) {
	_, ctrl, ch := start(cli.EditorSpec{})
	ctrl.InjectKeys("ab")
	ctrl.Inject(esc())
	ctrl.InjectKeys("dd999999999999p")
	ctrl.InjectKeys("99999999999999u")
	ctrl.TestBuffer(t, codeBuffer("", 0))
	ctrl.InjectKeys("99999999999999")
	ctrl.Inject(term.K('R', ui.Ctrl))
	ctrl.InjectKeys("0999999999w99999999999b99999999999k99999999999j\n")
	testReturns(t, ch, strings.Repeat("ab", vi.MaxCount), nil)
}

func TestNormal_FindAndChange(t *testing.T) {
	_, ctrl, ch := start(cli.EditorSpec{})
	ctrl.InjectKeys("cd a/b/c")
	ctrl.Inject(esc())
	ctrl.InjectKeys("0f/")
	ctrl.TestBuffer(t, codeBuffer("cd a/b/c", 4))
	ctrl.InjectKeys("0wdf/")
	ctrl.TestBuffer(t, codeBuffer("cd b/c", 3))
	ctrl.InjectKeys("c$x\n")
	testReturns(t, ch, "cd x", nil)
}

func TestNormal_Case(t *testing.T) {
	_, ctrl, ch := start(cli.EditorSpec{})
	ctrl.InjectKeys("ls Abc")
	ctrl.Inject(esc())
	ctrl.InjectKeys("0gU$")
	ctrl.TestBuffer(t, codeBuffer("LS ABC", 0))
	ctrl.InjectKeys("~~")
	ctrl.TestBuffer(t, codeBuffer("ls ABC", 2))
	ctrl.InjectKeys("$bgu$\n")
	testReturns(t, ch, "ls abc", nil)
}

func TestNormal_DeleteLineAndYank(t *testing.T) {
	_, ctrl, ch := start(cli.EditorSpec{})
	ctrl.InjectKeys("make all")
	ctrl.Inject(esc())
	ctrl.InjectKeys("0yw$p")
	ctrl.TestBuffer(t, codeBuffer("make allmake ", 12))
	ctrl.InjectKeys("dd")
	ctrl.TestBuffer(t, codeBuffer("", 0))
	ctrl.InjectKeys("ils\n")
	testReturns(t, ch, "ls", nil)
}

func TestNormal_HistoryAndArrowKeys(t *testing.T) {
	_, ctrl, ch := start(cli.EditorSpec{History: historyOf("ls", "pwd")})
	ctrl.Inject(esc())
	ctrl.InjectKeys("kk")
	ctrl.TestBuffer(t, codeBuffer("ls", 2))
	ctrl.InjectKeys("j")
	ctrl.TestBuffer(t, codeBuffer("pwd", 3))
	ctrl.Inject(term.K(ui.Left), term.K(ui.Delete))
	ctrl.TestBuffer(t, codeBuffer("pw", 1))
	ctrl.InjectKeys("\n")
	testReturns(t, ch, "pw", nil)
}

func TestNormal_EscClearsPendingKeys(t *testing.T) {
	_, ctrl, ch := start(cli.EditorSpec{})
	ctrl.InjectKeys("abc")
	ctrl.Inject(esc())
	ctrl.InjectKeys("d")
	ctrl.Inject(esc())
	ctrl.InjectKeys("x\n")
	testReturns(t, ch, "ab", nil)
}
