// Package alias implements the alias table and alias expansion.
package alias

import (
	"sort"

	"src.kesh.sh/pkg/state"
)

// Info is one possible expansion of an alias. A nil Predicate always
// matches.
type Info struct {
	Expansion string
	Predicate func(st *state.Store) bool
}

// Table maps alias names to their expansions. When an alias has several
// Info's, the first whose predicate holds is used.
type Table struct {
	m map[string][]Info
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{m: make(map[string][]Info)}
}

// Set defines name as an unconditional alias, replacing all existing
// definitions.
func (t *Table) Set(name, expansion string) {
	t.m[name] = []Info{{Expansion: expansion}}
}

// Add appends a possibly conditional definition of name.
func (t *Table) Add(name string, info Info) {
	t.m[name] = append(t.m[name], info)
}

// Remove removes all definitions of name, reporting whether there were any.
func (t *Table) Remove(name string) bool {
	_, ok := t.m[name]
	delete(t.m, name)
	return ok
}

// Clear removes all aliases.
func (t *Table) Clear() {
	t.m = make(map[string][]Info)
}

// Get returns the definitions of name.
func (t *Table) Get(name string) []Info {
	return t.m[name]
}

// Lookup returns the expansion of name selected by the predicates.
func (t *Table) Lookup(st *state.Store, name string) (string, bool) {
	for _, info := range t.m[name] {
		if info.Predicate == nil || info.Predicate(st) {
			return info.Expansion, true
		}
	}
	return "", false
}

// Names returns the names of all aliases, sorted.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.m))
	for name := range t.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of aliases.
func (t *Table) Len() int { return len(t.m) }

// CloneState implements state.Cloner.
func (t *Table) CloneState() any {
	c := NewTable()
	for name, infos := range t.m {
		c.m[name] = append([]Info(nil), infos...)
	}
	return c
}
