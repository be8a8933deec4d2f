package env

import (
	"os"
	"strings"
)

// Var is a shell variable.
type Var struct {
	Value    string
	Exported bool
}

// Environ is an ordered mapping from variable names to variables. Names are
// passed through Normalize before any lookup; iteration follows insertion
// order, and unsetting a variable forgets its position.
//
// The zero value is not usable; use New or FromOS.
type Environ struct {
	names []string
	vars  map[string]Var
}

// Normalize maps a variable name to the key it is stored under. Variable
// names are case-sensitive on Unix, so this is the identity function there.
var Normalize = func(name string) string { return name }

// New returns an empty Environ.
func New() *Environ {
	return &Environ{vars: make(map[string]Var)}
}

// FromOS returns an Environ holding every variable of the process
// environment, all marked exported.
func FromOS() *Environ {
	e := New()
	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i > 0 {
			e.Export(kv[:i], kv[i+1:])
		}
	}
	return e
}

// Get returns the value of a variable and whether it is set.
func (e *Environ) Get(name string) (string, bool) {
	v, ok := e.vars[Normalize(name)]
	return v.Value, ok
}

// Value returns the value of a variable, or "" when it is unset.
func (e *Environ) Value(name string) string {
	v, _ := e.Get(name)
	return v
}

// Lookup returns the variable with the given name.
func (e *Environ) Lookup(name string) (Var, bool) {
	v, ok := e.vars[Normalize(name)]
	return v, ok
}

// Set sets the value of a variable, keeping its export flag if it already
// exists.
func (e *Environ) Set(name, value string) {
	name = Normalize(name)
	v, ok := e.vars[name]
	if !ok {
		e.names = append(e.names, name)
	}
	v.Value = value
	e.vars[name] = v
}

// Export sets the value of a variable and marks it as exported.
func (e *Environ) Export(name, value string) {
	e.Set(name, value)
	e.MarkExported(name)
}

// MarkExported marks an existing or new (empty) variable as exported.
func (e *Environ) MarkExported(name string) {
	name = Normalize(name)
	v, ok := e.vars[name]
	if !ok {
		e.names = append(e.names, name)
	}
	v.Exported = true
	e.vars[name] = v
}

// Unset removes a variable.
func (e *Environ) Unset(name string) {
	name = Normalize(name)
	if _, ok := e.vars[name]; !ok {
		return
	}
	delete(e.vars, name)
	for i, n := range e.names {
		if n == name {
			e.names = append(e.names[:i:i], e.names[i+1:]...)
			break
		}
	}
}

// Each calls f for every variable in insertion order.
func (e *Environ) Each(f func(name string, v Var)) {
	for _, name := range e.names {
		f(name, e.vars[name])
	}
}

// Len returns the number of variables.
func (e *Environ) Len() int { return len(e.names) }

// Environ returns the exported variables in the KEY=VALUE form expected by
// exec, with the given overrides applied and exported.
func (e *Environ) Environ(overrides map[string]string) []string {
	var kvs []string
	e.Each(func(name string, v Var) {
		if _, ok := overrides[name]; ok {
			return
		}
		if v.Exported {
			kvs = append(kvs, name+"="+v.Value)
		}
	})
	for name, value := range overrides {
		kvs = append(kvs, Normalize(name)+"="+value)
	}
	return kvs
}

// Clone returns a deep copy of the Environ.
func (e *Environ) Clone() *Environ {
	c := &Environ{
		names: append([]string(nil), e.names...),
		vars:  make(map[string]Var, len(e.vars)),
	}
	for k, v := range e.vars {
		c.vars[k] = v
	}
	return c
}

// CloneState implements state.Cloner.
func (e *Environ) CloneState() any { return e.Clone() }
