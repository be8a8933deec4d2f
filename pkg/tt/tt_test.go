package tt

import (
	"fmt"
	"testing"
)

// testT implements the T interface and is used to verify the Test function's
// interaction with T.
type testT []string

func (t *testT) Helper() {}

func (t *testT) Errorf(format string, args ...any) {
	*t = append(*t, fmt.Sprintf(format, args...))
}

func add(x, y int) int { return x + y }

func addsub(x int, y int) (int, int) { return x + y, x - y }

func TestTTPass(t *testing.T) {
	Test(t, Fn("addsub", addsub), Table{
		Args(1, 10).Rets(11, -9),
		Args(5, 1).Rets(Any, 4),
	})
}

func TestTTFailDefaultFmt(t *testing.T) {
	var tt testT
	Test(&tt, Fn("add", add), Table{
		Args(1, 10).Rets(12),
	})
	if len(tt) != 1 {
		t.Fatalf("Test generated %d errors, want 1", len(tt))
	}
}

func TestTTFailCustomFmt(t *testing.T) {
	var tt testT
	Test(&tt, Fn("add", add).ArgsFmt("x=%d, y=%d"), Table{
		Args(1, 10).Rets(12),
	})
	if len(tt) != 1 {
		t.Fatalf("Test generated %d errors, want 1", len(tt))
	}
}
