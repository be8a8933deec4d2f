package hook

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"src.kesh.sh/pkg/state"
)

func TestFire_OrderAndIsolation(t *testing.T) {
	b := NewBus()
	st := state.New()
	var calls []string

	On(b, func(_ *state.Store, c ChangeDir) error {
		calls = append(calls, "1:"+c.To)
		return nil
	})
	On(b, func(_ *state.Store, c ChangeDir) error {
		calls = append(calls, "2:"+c.To)
		return errors.New("bad hook")
	})
	On(b, func(_ *state.Store, c ChangeDir) error {
		panic("worse hook")
	})
	On(b, func(_ *state.Store, c ChangeDir) error {
		calls = append(calls, "4:"+c.To)
		return nil
	})
	On(b, func(_ *state.Store, c BeforeCommand) error {
		calls = append(calls, "before")
		return nil
	})

	err := Fire(b, st, ChangeDir{From: "/", To: "/tmp"})
	if want := []string{"1:/tmp", "2:/tmp", "4:/tmp"}; !cmp.Equal(calls, want) {
		t.Errorf("calls (-want +got):\n%s", cmp.Diff(want, calls))
	}
	if err == nil {
		t.Errorf("Fire returned nil error, want combined errors")
	}
	if Len[ChangeDir](b) != 4 || Len[Startup](b) != 0 {
		t.Errorf("unexpected Len")
	}
}

func TestFire_StatePassed(t *testing.T) {
	b := NewBus()
	st := state.New()
	On(b, func(st *state.Store, _ Startup) error {
		state.Put(st, "started")
		return nil
	})
	if err := Fire(b, st, Startup{}); err != nil {
		t.Errorf("Fire -> %v", err)
	}
	if state.Get[string](st) != "started" {
		t.Errorf("hook could not mutate state")
	}
}
