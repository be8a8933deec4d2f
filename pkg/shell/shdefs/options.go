package shdefs

import (
	"fmt"
	"sort"
)

// Options are the shell options changed with set -o and set +o.
type Options struct {
	// Status of a pipeline is that of the last failing stage.
	Pipefail bool
	// Exit when a command fails.
	Errexit bool
	// Treat expansion of an unset parameter as an error.
	Nounset bool
	// Disable pathname expansion.
	Noglob bool
	// Refuse to overwrite existing files with >.
	Noclobber bool
	// Print commands before running them.
	Xtrace bool
	// Normal mode in the line editor at the start of each line.
	ViNormal bool
}

func (o *Options) fields() map[string]*bool {
	return map[string]*bool{
		"pipefail":  &o.Pipefail,
		"errexit":   &o.Errexit,
		"nounset":   &o.Nounset,
		"noglob":    &o.Noglob,
		"noclobber": &o.Noclobber,
		"xtrace":    &o.Xtrace,
		"vi-normal": &o.ViNormal,
	}
}

// Set sets a named option.
func (o *Options) Set(name string, on bool) error {
	p, ok := o.fields()[name]
	if !ok {
		return fmt.Errorf("%s: invalid option name", name)
	}
	*p = on
	return nil
}

// Get returns the value of a named option.
func (o *Options) Get(name string) (bool, bool) {
	p, ok := o.fields()[name]
	if !ok {
		return false, false
	}
	return *p, true
}

// Names returns the names of all options, sorted.
func (o *Options) Names() []string {
	var names []string
	for name := range o.fields() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CloneState returns a copy of the options.
func (o *Options) CloneState() any {
	o2 := *o
	return &o2
}
