package diag

import (
	"errors"
	"strings"
	"testing"

	"src.kesh.sh/pkg/testutil"
	"src.kesh.sh/pkg/tt"
)

func setPlainCulprit(t *testing.T) {
	testutil.Set(t, &culpritStart, "<")
	testutil.Set(t, &culpritEnd, ">")
}

func TestContext_Position(t *testing.T) {
	src := "echo a\nls | ( foo\n"
	tt.Test(t, tt.Fn("Position", func(from int) (int, int) {
		return NewContext("x", src, PointRanging(from)).Position()
	}), tt.Table{
		tt.Args(0).Rets(1, 1),
		tt.Args(5).Rets(1, 6),
		tt.Args(7).Rets(2, 1),
		tt.Args(12).Rets(2, 6),
	})
}

func TestContext_Show(t *testing.T) {
	setPlainCulprit(t)
	src := "echo a\nls | ( foo\nbar"
	tt.Test(t, tt.Fn("Show", func(r Ranging) string {
		return NewContext("[stdin]", src, r).Show("  ")
	}), tt.Table{
		tt.Args(Ranging{12, 13}).Rets("[stdin]:2:6:\n  ls | <(> foo"),
		tt.Args(Ranging{18, 18}).Rets("[stdin]:3:1:\n  <^>bar"),
		tt.Args(Ranging{10, 21}).Rets("[stdin]:2:4:\n  ls <| ( foo>\n  <bar>"),
		tt.Args(Ranging{3, 100}).Rets("[stdin], invalid position 3-100"),
	})
}

func TestError(t *testing.T) {
	setPlainCulprit(t)
	err := &Error{
		Type: "parse error", Message: "unexpected token",
		Context: *NewContext("[stdin]", "a ) b", Ranging{2, 3})}
	if got, want := err.Error(), "parse error: [stdin]:1:3: unexpected token"; got != want {
		t.Errorf("Error() -> %q, want %q", got, want)
	}
	want := "Parse error: \033[31;1munexpected token\033[m\n  [stdin]:1:3:\n  a <)> b"
	if got := err.Show(""); got != want {
		t.Errorf("Show() -> %q, want %q", got, want)
	}
}

func TestShowError(t *testing.T) {
	var sb strings.Builder
	ShowError(&sb, errors.New("boom"))
	if got, want := sb.String(), "\033[31;1mboom\033[m\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
