package term

import (
	"strings"
	"testing"
)

func TestWriter(t *testing.T) {
	sb := &strings.Builder{}
	testOutput := func(want string) {
		t.Helper()
		if sb.String() != want {
			t.Errorf("got %q, want %q", sb.String(), want)
		}
		sb.Reset()
	}

	w := NewWriter(sb)
	w.UpdateBuffer(
		NewBufferBuilder(10).Write("note 1").Buffer(),
		NewBufferBuilder(10).Write("line 1").SetDotHere().Buffer(),
		false)
	testOutput(hideCursor + "\rnote 1\033[K\n" + "line 1\r\033[6C" + showCursor)
}

func TestWriter_Notes(t *testing.T) {
	sb := &strings.Builder{}
	testOutput := func(want string) {
		t.Helper()
		if sb.String() != want {
			t.Errorf("got %q, want %q", sb.String(), want)
		}
		sb.Reset()
	}

	w := NewWriter(sb)
	w.UpdateBuffer(
		NewBufferBuilder(10).Write("note 1").Buffer(),
		NewBufferBuilder(10).Write("line 1").SetDotHere().Buffer(),
		false)
	sb.Reset()

	// Without notes only the changed suffix is written.
	w.UpdateBuffer(nil,
		NewBufferBuilder(10).Write("line 2").SetDotHere().Buffer(), false)
	testOutput(hideCursor + "\r\033[5C\033[K2" + "\r\033[6C" + showCursor)

	w.UpdateBuffer(nil,
		NewBufferBuilder(10).Write("a").Newline().Write("b").SetDotHere().Buffer(),
		false)
	testOutput(hideCursor + "\r\033[Ka\nb" + "\r\033[1C" + showCursor)

	// Notes are written above the buffer, which is then redrawn in full; rows
	// the old buffer occupied below the notes are erased.
	w.UpdateBuffer(
		NewBufferBuilder(10).Write("done").Buffer(),
		NewBufferBuilder(10).Write("a").SetDotHere().Buffer(),
		false)
	testOutput(hideCursor + "\033[1A\r" + "done\033[K\n" + "\033[J" +
		"a\r\033[1C" + showCursor)
}
