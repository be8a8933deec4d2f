package wcwidth

import (
	"testing"

	"src.kesh.sh/pkg/tt"
)

var Args = tt.Args

func TestOf(t *testing.T) {
	tt.Test(t, tt.Fn("Of", Of), tt.Table{
		Args("a").Rets(1),
		Args("Ω").Rets(1),
		Args("好").Rets(2),
		Args("abc").Rets(3),
		Args("你好").Rets(4),
	})
}

func TestOverride(t *testing.T) {
	r := '❱'
	oldw := OfRune(r)
	Override(r, oldw+1)
	if OfRune(r) != oldw+1 {
		t.Errorf("OfRune(%q) != %d after Override", r, oldw+1)
	}
	Unoverride(r)
	if OfRune(r) != oldw {
		t.Errorf("OfRune(%q) != %d after Unoverride", r, oldw)
	}
}

func TestTrim(t *testing.T) {
	tt.Test(t, tt.Fn("Trim", Trim), tt.Table{
		Args("abc", 2).Rets("ab"),
		Args("abc", 4).Rets("abc"),
		Args("你好", 1).Rets(""),
		Args("你好", 3).Rets("你"),
	})
}

func TestForce(t *testing.T) {
	tt.Test(t, tt.Fn("Force", Force), tt.Table{
		Args("abc", 2).Rets("ab"),
		Args("abc", 4).Rets("abc "),
		Args("你好", 3).Rets("你 "),
	})
}
