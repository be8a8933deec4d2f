package highlight

import (
	"sync"

	"src.kesh.sh/pkg/ui"
)

// Highlighter is a code highlighter that caches the result for the last code
// it has seen.
type Highlighter struct {
	cfg Config

	cacheMutex sync.Mutex
	cache      cache
}

type cache struct {
	valid      bool
	code       string
	styledCode ui.Text
}

// NewHighlighter creates a new Highlighter.
func NewHighlighter(cfg Config) *Highlighter {
	return &Highlighter{cfg: cfg}
}

// Get returns the highlighted code.
func (hl *Highlighter) Get(code string) ui.Text {
	hl.cacheMutex.Lock()
	defer hl.cacheMutex.Unlock()
	if hl.cache.valid && code == hl.cache.code {
		return hl.cache.styledCode
	}
	styledCode := highlight(code, hl.cfg)
	hl.cache = cache{true, code, styledCode}
	return styledCode
}

// InvalidateCache invalidates the cached highlighting result. It should be
// called when the set of available commands may have changed.
func (hl *Highlighter) InvalidateCache() {
	hl.cacheMutex.Lock()
	defer hl.cacheMutex.Unlock()
	hl.cache = cache{}
}
