package errutil

import (
	"errors"
	"testing"
)

var (
	err1 = errors.New("error 1")
	err2 = errors.New("error 2")
	err3 = errors.New("error 3")
)

func TestMulti(t *testing.T) {
	if Multi() != nil {
		t.Errorf("Multi() -> non-nil")
	}
	if Multi(nil, nil) != nil {
		t.Errorf("Multi(nil, nil) -> non-nil")
	}
	if got := Multi(err1); got != err1 {
		t.Errorf("Multi(err1) -> %v, want %v", got, err1)
	}
	if got := Multi(nil, err1, nil); got != err1 {
		t.Errorf("Multi(nil, err1, nil) -> %v, want %v", got, err1)
	}

	err := Multi(Multi(err1, err2), err3)
	want := "multiple errors: error 1; error 2; error 3"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, err2) {
		t.Errorf("errors.Is(err, err2) -> false")
	}
}
