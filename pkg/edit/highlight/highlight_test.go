package highlight

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"src.kesh.sh/pkg/ui"
)

func TestHighlight(t *testing.T) {
	got := highlight("ls 'a' >f", Config{})
	want := ui.T("ls", ui.FgGreen).
		Concat(ui.T(" ")).Concat(ui.T("'a'", ui.FgYellow)).
		Concat(ui.T(" ")).Concat(ui.T(">", ui.FgGreen)).Concat(ui.T("f"))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("highlight (-want +got):\n%s", diff)
	}
}

func TestHighlight_HasCommand(t *testing.T) {
	var names []string
	cfg := Config{HasCommand: func(name string) bool {
		names = append(names, name)
		return name == "ls"
	}}
	got := highlight("'l's; nope", cfg)
	want := ui.T("'l's", ui.FgGreen).Concat(ui.T(";")).
		Concat(ui.T(" ")).Concat(ui.T("nope", ui.FgRed))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("highlight (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"ls", "nope"}, names); diff != "" {
		t.Errorf("names passed to HasCommand (-want +got):\n%s", diff)
	}
}

func hasErrorRegion(text ui.Text) bool {
	errStyle := ui.ApplyStyling(ui.Style{}, ui.BgRed)
	for _, seg := range text {
		if seg.Style == errStyle {
			return true
		}
	}
	return false
}

func TestHighlight_ParseErrors(t *testing.T) {
	if !hasErrorRegion(highlight("echo )", Config{})) {
		t.Errorf("syntax error not marked")
	}
	// Incomplete code is not an error while editing.
	for _, code := range []string{"if true", "echo 'abc", "for x in a b; do"} {
		if hasErrorRegion(highlight(code, Config{})) {
			t.Errorf("incomplete code %q marked as an error", code)
		}
	}
}

func TestHighlighter_Cache(t *testing.T) {
	calls := 0
	hl := NewHighlighter(Config{HasCommand: func(string) bool {
		calls++
		return true
	}})
	hl.Get("ls")
	hl.Get("ls")
	if calls != 1 {
		t.Errorf("HasCommand called %d times for the same code, want 1", calls)
	}
	hl.InvalidateCache()
	got := hl.Get("ls")
	if calls != 2 {
		t.Errorf("HasCommand called %d times after InvalidateCache, want 2", calls)
	}
	if diff := cmp.Diff(ui.T("ls", ui.FgGreen), got); diff != "" {
		t.Errorf("Get (-want +got):\n%s", diff)
	}
}
