// Package hook implements the shell's hook bus.
//
// A hook kind is identified by the Go type of its context value. Callbacks
// registered with On run in registration order whenever Fire is called with
// a context of that type.
package hook

import (
	"fmt"
	"reflect"

	"src.kesh.sh/pkg/errutil"
	"src.kesh.sh/pkg/logutil"
	"src.kesh.sh/pkg/state"
)

var logger = logutil.GetLogger("[hook] ")

// Bus is a registry of hook callbacks. The zero value is not usable; use
// NewBus.
type Bus struct {
	hooks map[reflect.Type][]any
}

// NewBus returns an empty Bus.
func NewBus() *Bus {
	return &Bus{hooks: make(map[reflect.Type][]any)}
}

func kindOf[C any]() reflect.Type {
	return reflect.TypeOf((*C)(nil)).Elem()
}

// On registers f to be called when a hook of kind C fires. The callback may
// use st for the duration of the call only.
func On[C any](b *Bus, f func(st *state.Store, ctx C) error) {
	k := kindOf[C]()
	b.hooks[k] = append(b.hooks[k], f)
}

// Len returns the number of callbacks registered for kind C.
func Len[C any](b *Bus) int {
	return len(b.hooks[kindOf[C]()])
}

// Fire calls all callbacks registered for the kind of ctx. An error or panic
// in one callback is logged and does not prevent the following ones from
// running. All such errors are returned combined.
func Fire[C any](b *Bus, st *state.Store, ctx C) error {
	k := kindOf[C]()
	var errs []error
	for i, f := range b.hooks[k] {
		if err := call(f.(func(*state.Store, C) error), st, ctx); err != nil {
			logger.Printf("hook %v[%d]: %v", k, i, err)
			errs = append(errs, err)
		}
	}
	return errutil.Multi(errs...)
}

func call[C any](f func(*state.Store, C) error, st *state.Store, ctx C) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return f(st, ctx)
}
