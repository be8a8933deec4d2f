package histutil

// Cursor walks through history entries with a given prefix, newest first,
// skipping entries whose text has already been visited. It starts after the
// newest entry.
type Cursor struct {
	entries []Entry
	prefix  string
	// Indices into entries of the visited matches; stack[top-1] is current.
	stack []int
	top   int
	seen  map[string]bool
}

// Cursor returns a new Cursor over a snapshot of the current entries.
func (h *History) Cursor(prefix string) *Cursor {
	return &Cursor{entries: h.Entries(), prefix: prefix, seen: map[string]bool{}}
}

// Prefix returns the prefix the cursor filters by.
func (c *Cursor) Prefix() string { return c.prefix }

// Prev moves to the next older matching entry.
func (c *Cursor) Prev() error {
	if c.top < len(c.stack) {
		c.top++
		return nil
	}
	i := len(c.entries) - 1
	if len(c.stack) > 0 {
		i = c.stack[len(c.stack)-1] - 1
	}
	for ; i >= 0; i-- {
		text := c.entries[i].Text
		if len(text) >= len(c.prefix) && text[:len(c.prefix)] == c.prefix && !c.seen[text] {
			c.seen[text] = true
			c.stack = append(c.stack, i)
			c.top++
			return nil
		}
	}
	return ErrEndOfHistory
}

// Next moves to the next newer matching entry. Moving past the newest one
// returns ErrEndOfHistory and leaves the cursor in its starting position.
func (c *Cursor) Next() error {
	if c.top == 0 {
		return ErrEndOfHistory
	}
	c.top--
	if c.top == 0 {
		return ErrEndOfHistory
	}
	return nil
}

// Get returns the current entry. It returns ErrEndOfHistory if the cursor is
// at the starting position.
func (c *Cursor) Get() (Entry, error) {
	if c.top == 0 {
		return Entry{}, ErrEndOfHistory
	}
	return c.entries[c.stack[c.top-1]], nil
}
