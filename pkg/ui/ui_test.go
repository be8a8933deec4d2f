package ui

import (
	"errors"
	"testing"

	"src.kesh.sh/pkg/tt"
)

var Args = tt.Args

func TestStyle_SGR(t *testing.T) {
	tt.Test(t, tt.Fn("SGR", Style.SGR), tt.Table{
		Args(Style{}).Rets(""),
		Args(Style{Bold: true, Fg: Red}).Rets("1;31"),
		Args(Style{Bg: Blue}).Rets("44"),
		Args(Style{Bg: BrightBlue}).Rets("104"),
		Args(Style{Inverse: true, Dim: true}).Rets("2;7"),
	})
}

func TestText_VTString(t *testing.T) {
	text := T("foo", FgRed).Concat(T("bar"))
	if got, want := text.VTString(), "\033[31mfoo\033[mbar"; got != want {
		t.Errorf("VTString -> %q, want %q", got, want)
	}
	if text.String() != "foobar" || text.Width() != 6 {
		t.Errorf("String/Width mismatch: %q %d", text.String(), text.Width())
	}
}

func TestText_Partition(t *testing.T) {
	text := T("ab", Bold).Concat(T("cd"))
	parts := text.Partition(1, 2, 4)
	var got []string
	for _, part := range parts {
		got = append(got, part.String())
	}
	want := []string{"a", "b", "cd", ""}
	if len(got) != len(want) {
		t.Fatalf("got %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("part %d = %q, want %q", i, got[i], want[i])
		}
	}
	if !parts[0][0].Bold || parts[2][0].Bold {
		t.Errorf("styles not preserved")
	}
}

func TestParseStyling(t *testing.T) {
	s := ApplyStyling(Style{}, ParseStyling("bold red bg-blue"))
	if !s.Bold || s.Fg != Red || s.Bg != Blue {
		t.Errorf("got %+v", s)
	}
	if ParseStyling("bold no-such-color") != nil {
		t.Errorf("want nil for unknown styling")
	}
}

func TestKey_String(t *testing.T) {
	tt.Test(t, tt.Fn("String", Key.String), tt.Table{
		Args(K('a')).Rets("a"),
		Args(K('A', Ctrl)).Rets("Ctrl-A"),
		Args(K(Tab, Shift)).Rets("Shift-Tab"),
		Args(K(F1, Alt)).Rets("Alt-F1"),
		Args(K(Up)).Rets("Up"),
	})
}

func TestParseKey(t *testing.T) {
	tt.Test(t, tt.Fn("ParseKey", ParseKey), tt.Table{
		Args("a").Rets(K('a'), nil),
		Args("Ctrl-W").Rets(K('W', Ctrl), nil),
		Args("c+Alt-Left").Rets(K(Left, Ctrl, Alt), nil),
		Args("Enter").Rets(K(Enter), nil),
		Args("-").Rets(K('-'), nil),
		Args("Foo-x").Rets(Key{}, errors.New(`bad modifier: "foo"`)),
		Args("Bogus").Rets(Key{}, errors.New(`bad key: "Bogus"`)),
	})
}
