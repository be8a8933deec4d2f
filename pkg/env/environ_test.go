package env

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEnviron_SetGetUnset(t *testing.T) {
	e := New()
	e.Set("b", "1")
	e.Export("a", "2")
	e.Set("b", "3")

	if v, ok := e.Get("b"); !ok || v != "3" {
		t.Errorf("Get(b) -> (%q, %v), want (\"3\", true)", v, ok)
	}
	var names []string
	e.Each(func(name string, _ Var) { names = append(names, name) })
	if diff := cmp.Diff([]string{"b", "a"}, names); diff != "" {
		t.Errorf("iteration order (-want +got):\n%s", diff)
	}

	e.Unset("b")
	if _, ok := e.Get("b"); ok {
		t.Errorf("b still set after Unset")
	}
	if e.Len() != 1 {
		t.Errorf("Len() -> %d, want 1", e.Len())
	}
}

func TestEnviron_Environ(t *testing.T) {
	e := New()
	e.Set("local", "x")
	e.Export("PATH", "/bin")
	e.Export("HOME", "/home")

	got := e.Environ(map[string]string{"HOME": "/tmp", "NEW": "1"})
	sort.Strings(got)
	want := []string{"HOME=/tmp", "NEW=1", "PATH=/bin"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Environ (-want +got):\n%s", diff)
	}
}

func TestEnviron_SetKeepsExportFlag(t *testing.T) {
	e := New()
	e.Export("x", "1")
	e.Set("x", "2")
	if v, _ := e.Lookup("x"); !v.Exported || v.Value != "2" {
		t.Errorf("Lookup(x) -> %+v", v)
	}
}

func TestEnviron_CloneIsIndependent(t *testing.T) {
	e := New()
	e.Set("x", "1")
	c := e.Clone()
	c.Set("x", "2")
	c.Set("y", "3")
	if e.Value("x") != "1" || e.Len() != 1 {
		t.Errorf("original modified through clone")
	}
}
