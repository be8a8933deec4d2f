// Package histutil keeps the command history of a session: an in-memory list
// of entries with a duplicate policy, cursors for walking it, and persisters
// that save entries to a file or a database.
package histutil

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"src.kesh.sh/pkg/logutil"
)

var logger = logutil.GetLogger("[histutil] ")

// ErrEndOfHistory is returned by a Cursor when there are no more entries in
// the requested direction.
var ErrEndOfHistory = errors.New("end of history")

// Dedup is the policy applied to duplicate entries when they are added.
type Dedup int

const (
	// DedupNone keeps all entries.
	DedupNone Dedup = iota
	// DedupConsecutive drops an entry equal to the newest one.
	DedupConsecutive
	// DedupAll removes earlier copies of an entry when it is added again.
	DedupAll
)

var dedupNames = []string{"none", "consecutive", "all"}

func (d Dedup) String() string {
	if 0 <= d && int(d) < len(dedupNames) {
		return dedupNames[d]
	}
	return fmt.Sprintf("Dedup(%d)", int(d))
}

// ParseDedup parses the name of a dedup policy.
func ParseDedup(s string) (Dedup, error) {
	for i, name := range dedupNames {
		if s == name {
			return Dedup(i), nil
		}
	}
	return DedupNone, fmt.Errorf("bad history dedup policy: %q", s)
}

// Entry is one history entry.
type Entry struct {
	Text string
	Time time.Time
}

// Persister saves history entries outside the process.
type Persister interface {
	Load() ([]Entry, error)
	Append(e Entry) error
	Clear() error
}

// History is an ordered list of entries, newest last.
type History struct {
	entries   []Entry
	dedup     Dedup
	max       int
	persister Persister
}

// New creates an empty History with the given policy.
func New(dedup Dedup) *History {
	return &History{dedup: dedup}
}

// SetMax limits the number of entries kept in memory; oldest entries are
// dropped first. A non-positive n means no limit.
func (h *History) SetMax(n int) {
	h.max = n
	h.trim()
}

// SetPersister sets the persister that new entries are appended to.
func (h *History) SetPersister(p Persister) { h.persister = p }

// Dedup returns the dedup policy.
func (h *History) Dedup() Dedup { return h.dedup }

// Load replaces the entries with those loaded from the persister, applying
// the dedup policy. It does nothing without a persister.
func (h *History) Load() error {
	if h.persister == nil {
		return nil
	}
	entries, err := h.persister.Load()
	if err != nil {
		return err
	}
	h.entries = nil
	for _, e := range entries {
		h.add(e)
	}
	h.trim()
	return nil
}

// Add adds an entry and appends it to the persister. Texts consisting only of
// whitespace are not added. It returns whether an entry was added.
func (h *History) Add(text string, t time.Time) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	e := Entry{text, t}
	if !h.add(e) {
		return false
	}
	h.trim()
	if h.persister != nil {
		if err := h.persister.Append(e); err != nil {
			logger.Println("append:", err)
		}
	}
	return true
}

func (h *History) add(e Entry) bool {
	switch h.dedup {
	case DedupConsecutive:
		if n := len(h.entries); n > 0 && h.entries[n-1].Text == e.Text {
			return false
		}
	case DedupAll:
		kept := h.entries[:0]
		for _, old := range h.entries {
			if old.Text != e.Text {
				kept = append(kept, old)
			}
		}
		h.entries = kept
	}
	h.entries = append(h.entries, e)
	return true
}

func (h *History) trim() {
	if h.max > 0 && len(h.entries) > h.max {
		h.entries = append([]Entry(nil), h.entries[len(h.entries)-h.max:]...)
	}
}

// Clear removes all entries, including persisted ones.
func (h *History) Clear() error {
	h.entries = nil
	if h.persister != nil {
		return h.persister.Clear()
	}
	return nil
}

// Len returns the number of entries.
func (h *History) Len() int { return len(h.entries) }

// Entries returns a copy of the entries, oldest first.
func (h *History) Entries() []Entry {
	return append([]Entry(nil), h.entries...)
}

// SearchPrefix returns the newest entry that starts with prefix and is longer
// than it. An empty prefix never matches.
func (h *History) SearchPrefix(prefix string) (string, bool) {
	if prefix == "" {
		return "", false
	}
	for i := len(h.entries) - 1; i >= 0; i-- {
		text := h.entries[i].Text
		if text != prefix && strings.HasPrefix(text, prefix) {
			return text, true
		}
	}
	return "", false
}

// CloneState returns a copy of the History that shares the persister.
func (h *History) CloneState() any {
	h2 := *h
	h2.entries = h.Entries()
	return &h2
}
