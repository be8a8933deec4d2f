// Package wcwidth provides utilities for determining the display width of
// characters and strings.
package wcwidth

import (
	"strings"
	"sync"

	"github.com/mattn/go-runewidth"
)

var (
	overrides      = map[rune]int{}
	overridesMutex sync.RWMutex
	condition      = runewidth.NewCondition()
)

// OfRune returns the column width of a rune.
func OfRune(r rune) int {
	overridesMutex.RLock()
	w, ok := overrides[r]
	overridesMutex.RUnlock()
	if ok {
		return w
	}
	return condition.RuneWidth(r)
}

// Of returns the column width of a string.
func Of(s string) int {
	w := 0
	for _, r := range s {
		w += OfRune(r)
	}
	return w
}

// Override overrides the column width of a rune. A negative width removes
// the override.
func Override(r rune, w int) {
	overridesMutex.Lock()
	defer overridesMutex.Unlock()
	if w < 0 {
		delete(overrides, r)
	} else {
		overrides[r] = w
	}
}

// Unoverride removes the column width override of a rune.
func Unoverride(r rune) { Override(r, -1) }

// Trim trims the string s so that it is no wider than the given width.
func Trim(s string, wmax int) string {
	w := 0
	for i, r := range s {
		w += OfRune(r)
		if w > wmax {
			return s[:i]
		}
	}
	return s
}

// Force forces s to have exactly the given width, trimming or padding with
// spaces on the right as needed.
func Force(s string, w int) string {
	s = Trim(s, w)
	return s + strings.Repeat(" ", w-Of(s))
}
