// Package state implements the shell's store of mutable shared data.
//
// A Store holds at most one value per Go type. Packages that own a piece of
// state define a type for it (often a pointer to a struct) and access it with
// the generic Put, Get and Lookup functions, so the store itself never needs
// to know about them.
package state

import (
	"fmt"
	"reflect"
)

// Store maps types to values. It is owned by the main goroutine and is not
// safe for concurrent use; goroutines that need state work on a Clone.
type Store struct {
	values map[reflect.Type]any
}

// New returns an empty Store.
func New() *Store {
	return &Store{values: make(map[reflect.Type]any)}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Put stores v as the value of type T, replacing any existing one.
func Put[T any](s *Store, v T) {
	s.values[typeOf[T]()] = v
}

// Lookup returns the value of type T and whether it exists.
func Lookup[T any](s *Store) (T, bool) {
	v, ok := s.values[typeOf[T]()]
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// Get returns the value of type T. It panics if there is no such value, since
// that can only result from a missing registration.
func Get[T any](s *Store) T {
	v, ok := Lookup[T](s)
	if !ok {
		panic(fmt.Sprintf("state: no value of type %v", typeOf[T]()))
	}
	return v
}

// GetOr returns the value of type T, storing and returning the result of
// init if there is none.
func GetOr[T any](s *Store, init func() T) T {
	if v, ok := Lookup[T](s); ok {
		return v
	}
	v := init()
	Put(s, v)
	return v
}

// Delete removes the value of type T.
func Delete[T any](s *Store) {
	delete(s.values, typeOf[T]())
}

// Cloner is implemented by state values that must not be shared between a
// Store and its clones.
type Cloner interface {
	// CloneState returns a deep copy. Its dynamic type must be the same as the
	// receiver's.
	CloneState() any
}

// Clone returns a copy of s. Values implementing Cloner are copied with
// CloneState; all other values are shared.
func (s *Store) Clone() *Store {
	c := &Store{values: make(map[reflect.Type]any, len(s.values))}
	for t, v := range s.values {
		if cloner, ok := v.(Cloner); ok {
			v = cloner.CloneState()
		}
		c.values[t] = v
	}
	return c
}

// Len returns the number of values in the store.
func (s *Store) Len() int { return len(s.values) }
