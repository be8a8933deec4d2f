package state

import (
	"testing"

	"src.kesh.sh/pkg/tt"
)

type counter struct{ n int }

type names []string

func (ns names) CloneState() any { return append(names(nil), ns...) }

func TestPutGetLookup(t *testing.T) {
	s := New()
	if _, ok := Lookup[*counter](s); ok {
		t.Errorf("Lookup on empty store -> ok")
	}

	c := &counter{1}
	Put(s, c)
	Put(s, "a string")
	if Get[*counter](s) != c {
		t.Errorf("Get did not return the stored pointer")
	}
	if v, ok := Lookup[string](s); !ok || v != "a string" {
		t.Errorf("Lookup[string] -> %q, %v", v, ok)
	}

	Put(s, &counter{2})
	if Get[*counter](s).n != 2 {
		t.Errorf("Put did not replace the existing value")
	}
	if s.Len() != 2 {
		t.Errorf("Len -> %d, want 2", s.Len())
	}

	Delete[string](s)
	if _, ok := Lookup[string](s); ok {
		t.Errorf("value still present after Delete")
	}
}

func TestGet_PanicsWhenMissing(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("Get on a missing type did not panic")
		}
	}()
	Get[*counter](New())
}

func TestGetOr(t *testing.T) {
	s := New()
	calls := 0
	init := func() *counter { calls++; return &counter{5} }
	a := GetOr(s, init)
	b := GetOr(s, init)
	if a != b || calls != 1 {
		t.Errorf("GetOr initialized %d times", calls)
	}
}

func TestClone(t *testing.T) {
	s := New()
	shared := &counter{1}
	Put(s, shared)
	Put(s, names{"a"})

	c := s.Clone()
	Put(c, append(Get[names](c), "b"))
	Get[*counter](c).n = 10

	tt.Test(t, tt.Fn("Get[names]", Get[names]), tt.Table{
		tt.Args(s).Rets(names{"a"}),
		tt.Args(c).Rets(names{"a", "b"}),
	})
	if shared.n != 10 {
		t.Errorf("non-Cloner values should be shared")
	}
}
