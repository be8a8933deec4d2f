package cli

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// CodeBuffer is the content of the line editor and the position of the dot,
// which is more commonly known as the cursor.
type CodeBuffer struct {
	Content string
	// A byte index into Content, always at a rune boundary.
	Dot int
}

// InsertAtDot inserts text at the dot and moves the dot after it.
func (c *CodeBuffer) InsertAtDot(text string) {
	*c = CodeBuffer{c.Content[:c.Dot] + text + c.Content[c.Dot:], c.Dot + len(text)}
}

// Replace replaces the bytes [from, to) with text, keeping the dot in the
// same relative position. A dot inside the replaced range moves after text.
func (c *CodeBuffer) Replace(from, to int, text string) {
	dot := c.Dot
	switch {
	case dot >= to:
		dot += len(text) - (to - from)
	case dot > from:
		dot = from + len(text)
	}
	*c = CodeBuffer{c.Content[:from] + text + c.Content[to:], dot}
}

// Delete deletes the bytes [from, to).
func (c *CodeBuffer) Delete(from, to int) { c.Replace(from, to, "") }

// Positions in Content. Each takes the current dot and returns a new one.

func (c *CodeBuffer) runeLeft(i int) int {
	if i == 0 {
		return 0
	}
	_, w := utf8.DecodeLastRuneInString(c.Content[:i])
	return i - w
}

func (c *CodeBuffer) runeRight(i int) int {
	if i == len(c.Content) {
		return i
	}
	_, w := utf8.DecodeRuneInString(c.Content[i:])
	return i + w
}

// Start of the line the dot is on.
func (c *CodeBuffer) lineStart(i int) int {
	return strings.LastIndexByte(c.Content[:i], '\n') + 1
}

// End of the line the dot is on, before the newline.
func (c *CodeBuffer) lineEnd(i int) int {
	if j := strings.IndexByte(c.Content[i:], '\n'); j != -1 {
		return i + j
	}
	return len(c.Content)
}

// Start of the word before i. Words are runs of non-space runes.
func (c *CodeBuffer) wordLeft(i int) int {
	for i > 0 && isSpaceBefore(c.Content, i) {
		i = c.runeLeft(i)
	}
	for i > 0 && !isSpaceBefore(c.Content, i) {
		i = c.runeLeft(i)
	}
	return i
}

// Start of the next word after i. With punc, runs of punctuation also count
// as words, as in vi's w motion.
func (c *CodeBuffer) wordRight(i int, punc bool) int {
	if i == len(c.Content) {
		return i
	}
	r, _ := utf8.DecodeRuneInString(c.Content[i:])
	class := runeClass(r, punc)
	for i < len(c.Content) {
		r, w := utf8.DecodeRuneInString(c.Content[i:])
		if runeClass(r, punc) != class {
			break
		}
		i += w
	}
	for i < len(c.Content) {
		r, w := utf8.DecodeRuneInString(c.Content[i:])
		if !unicode.IsSpace(r) {
			break
		}
		i += w
	}
	return i
}

// Position of the nth occurrence of r after i on the same line, or -1.
func (c *CodeBuffer) find(i int, r rune, n int) int {
	end := c.lineEnd(i)
	for j := c.runeRight(i); j < end; j = c.runeRight(j) {
		r2, _ := utf8.DecodeRuneInString(c.Content[j:])
		if r2 == r {
			n--
			if n == 0 {
				return j
			}
		}
	}
	return -1
}

func isSpaceBefore(s string, i int) bool {
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return unicode.IsSpace(r)
}

// Classifies runes into space (0), word (1) and punctuation (2). Without
// punc, punctuation is part of words.
func runeClass(r rune, punc bool) int {
	switch {
	case unicode.IsSpace(r):
		return 0
	case !punc || r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r):
		return 1
	default:
		return 2
	}
}
