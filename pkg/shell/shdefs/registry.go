package shdefs

import (
	"fmt"
	"sort"

	"src.kesh.sh/pkg/state"
)

// BuiltinFn is the implementation of a builtin.
type BuiltinFn func(sh Host, st *state.Store, args []string) CmdOutput

// Builtin is a registered builtin. Args passed to Fn do not include the name.
type Builtin struct {
	Name  string
	Usage string
	Doc   string
	Fn    BuiltinFn
}

// Registry maps names to builtins.
type Registry struct {
	m map[string]*Builtin
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{map[string]*Builtin{}}
}

// Register adds a builtin. It is an error to register a name twice.
func (r *Registry) Register(b *Builtin) error {
	if _, ok := r.m[b.Name]; ok {
		return fmt.Errorf("builtin %s already registered", b.Name)
	}
	r.m[b.Name] = b
	return nil
}

// Lookup finds a builtin.
func (r *Registry) Lookup(name string) (*Builtin, bool) {
	b, ok := r.m[name]
	return b, ok
}

// Names returns the names of all builtins, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.m))
	for name := range r.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
