//go:build unix

package term

import (
	"time"

	"src.kesh.sh/pkg/ui"
)

// reader reads terminal escape sequences and decodes them into events.
type reader struct {
	fr fileReader
}

func (rd *reader) ReadEvent() (Event, error) {
	return readEvent(rd.fr)
}

func (rd *reader) ReadRawEvent() (Event, error) {
	r, err := readRune(rd.fr, -1)
	return K(r), err
}

func (rd *reader) Close() {
	rd.fr.Stop()
	rd.fr.Close()
}

// Timeout for bytes in escape sequences. Terminal emulators send a whole
// sequence at once; a lone Escape key is followed by nothing.
var keySeqTimeout = 10 * time.Millisecond

// Returned by seq.next when the sequence has ended.
const endOfSeq rune = -1

// seq accumulates the runes of the escape sequence being decoded.
type seq struct {
	rd  byteReaderWithTimeout
	buf []rune
}

func (s *seq) next() rune {
	r, err := readRune(s.rd, keySeqTimeout)
	if err != nil {
		return endOfSeq
	}
	s.buf = append(s.buf, r)
	return r
}

func (s *seq) bad(msg string) error {
	return seqError{msg, string(s.buf)}
}

func readEvent(rd byteReaderWithTimeout) (Event, error) {
	r, err := readRune(rd, -1)
	if err != nil {
		return nil, err
	}
	if r != 0x1b {
		return KeyEvent(ctrlModify(r)), nil
	}
	s := &seq{rd, []rune{r}}
	r2 := s.next()
	// rxvt sends another ESC before a CSI or G3 sequence to signal Alt.
	alt := false
	if r2 == 0x1b {
		alt = true
		r2 = s.next()
	}
	switch r2 {
	case endOfSeq:
		// A lone Escape.
		return KeyEvent(ui.Esc), nil
	case '[':
		return readCSI(s, alt)
	case 'O':
		r3 := s.next()
		if r3 == endOfSeq {
			return K('O', ui.Alt), nil
		}
		k, ok := g3Seq[r3]
		if !ok {
			return nil, s.bad("bad G3")
		}
		if alt {
			k.Mod |= ui.Alt
		}
		return KeyEvent(k), nil
	default:
		k := ctrlModify(r2)
		k.Mod |= ui.Alt
		return KeyEvent(k), nil
	}
}

// Reads the rest of a CSI sequence, after "\033[".
func readCSI(s *seq, alt bool) (Event, error) {
	r := s.next()
	if r == endOfSeq {
		return K('[', ui.Alt), nil
	}
	var nums []int
params:
	for {
		switch {
		case r == ';':
			nums = append(nums, 0)
		case '0' <= r && r <= '9':
			if len(nums) == 0 {
				nums = append(nums, 0)
			}
			nums[len(nums)-1] = nums[len(nums)-1]*10 + int(r-'0')
		case r == endOfSeq:
			return nil, s.bad("incomplete CSI")
		default:
			break params
		}
		r = s.next()
	}
	switch {
	case r == 'R':
		if len(nums) != 2 {
			return nil, s.bad("bad CPR")
		}
		return CursorPosition{nums[0], nums[1]}, nil
	case r == '~' && len(nums) == 1 && (nums[0] == 200 || nums[0] == 201):
		return PasteSetting(nums[0] == 200), nil
	}
	k := parseCSI(nums, r)
	if k == (ui.Key{}) {
		return nil, s.bad("bad CSI")
	}
	if alt {
		k.Mod |= ui.Alt
	}
	return KeyEvent(k), nil
}

// Determines whether a rune corresponds to a Ctrl-modified key and returns the
// ui.Key the rune represents.
func ctrlModify(r rune) ui.Key {
	switch r {
	case 0x0:
		return ui.K('`', ui.Ctrl) // ^@
	case 0x1e:
		return ui.K('6', ui.Ctrl) // ^^
	case 0x1f:
		return ui.K('/', ui.Ctrl) // ^_
	case ui.Tab, ui.Enter, ui.Backspace:
		// ^I ^J ^? are more likely to be the keys with their own names.
		return ui.K(r)
	}
	if 0x1 <= r && r <= 0x1d {
		return ui.K(r+0x40, ui.Ctrl)
	}
	return ui.K(r)
}

// G3-style key sequences: "\033O" followed by exactly one rune.
var g3Seq = map[rune]ui.Key{
	'A': ui.K(ui.Up), 'B': ui.K(ui.Down), 'C': ui.K(ui.Right), 'D': ui.K(ui.Left),
	'H': ui.K(ui.Home), 'F': ui.K(ui.End), 'M': ui.K(ui.Insert),
	'a': ui.K(ui.Up, ui.Ctrl), 'b': ui.K(ui.Down, ui.Ctrl),
	'c': ui.K(ui.Right, ui.Ctrl), 'd': ui.K(ui.Left, ui.Ctrl),
	'P': ui.K(ui.F1), 'Q': ui.K(ui.F2), 'R': ui.K(ui.F3), 'S': ui.K(ui.F4),
}

// CSI-style key sequences identified by the last rune. Modified forms carry
// two numbers, the first always 1: "\033[1;5A" is Ctrl-Up.
var csiSeqByLast = map[rune]ui.Key{
	'A': ui.K(ui.Up), 'B': ui.K(ui.Down), 'C': ui.K(ui.Right), 'D': ui.K(ui.Left),
	'a': ui.K(ui.Up, ui.Shift), 'b': ui.K(ui.Down, ui.Shift),
	'c': ui.K(ui.Right, ui.Shift), 'd': ui.K(ui.Left, ui.Shift),
	'H': ui.K(ui.Home), 'F': ui.K(ui.End),
	'Z': ui.K(ui.Tab, ui.Shift),
}

// CSI-style key sequences ending in '~', identified by the first number. An
// optional second number is the modifier. urxvt instead replaces '~' with
// '$' for Shift, '^' for Ctrl and '@' for both.
var csiSeqTilde = map[int]rune{
	1: ui.Home, 2: ui.Insert, 3: ui.Delete, 4: ui.End,
	5: ui.PageUp, 6: ui.PageDown, 7: ui.Home, 8: ui.End,
	11: ui.F1, 12: ui.F2, 13: ui.F3, 14: ui.F4,
	15: ui.F5, 17: ui.F6, 18: ui.F7, 19: ui.F8,
	20: ui.F9, 21: ui.F10, 23: ui.F11, 24: ui.F12,
}

// CSI-style key sequences of the form "\033[27;mod;key~".
var csiSeqTilde27 = map[int]rune{
	9: '\t', 13: '\r',
	33: '!', 35: '#', 39: '\'', 40: '(', 41: ')', 43: '+', 44: ',', 45: '-',
	46: '.',
	48: '0', 49: '1', 50: '2', 51: '3', 52: '4', 53: '5', 54: '6', 55: '7',
	56: '8', 57: '9',
	58: ':', 59: ';', 60: '<', 61: '=', 62: '>', 63: ';',
}

// parseCSI decodes a CSI key sequence. It returns the zero Key if the
// sequence is not recognized.
func parseCSI(nums []int, last rune) ui.Key {
	if k, ok := csiSeqByLast[last]; ok {
		switch {
		case len(nums) == 0:
			return k
		case len(nums) == 2 && nums[0] == 1:
			return xtermModify(k, nums[1])
		}
		return ui.Key{}
	}

	switch last {
	case '~':
		switch {
		case len(nums) == 1 || len(nums) == 2:
			r, ok := csiSeqTilde[nums[0]]
			if !ok {
				break
			}
			if len(nums) == 1 {
				return ui.K(r)
			}
			return xtermModify(ui.K(r), nums[1])
		case len(nums) == 3 && nums[0] == 27:
			if r, ok := csiSeqTilde27[nums[2]]; ok {
				return xtermModify(ui.K(r), nums[1])
			}
		}
	case '$', '^', '@':
		if len(nums) != 1 {
			break
		}
		if r, ok := csiSeqTilde[nums[0]]; ok {
			mod := map[rune]ui.Mod{'$': ui.Shift, '^': ui.Ctrl, '@': ui.Shift | ui.Ctrl}[last]
			return ui.K(r, mod)
		}
	}
	return ui.Key{}
}

// Applies an xterm-style modifier number, which is 1 plus a bit set of Shift
// (1), Alt (2), Ctrl (4) and Meta (8). Meta is treated as Alt.
func xtermModify(k ui.Key, mod int) ui.Key {
	if mod < 0 || mod > 16 {
		return ui.Key{}
	}
	if mod == 0 {
		return k
	}
	bits := mod - 1
	if bits&0x1 != 0 {
		k.Mod |= ui.Shift
	}
	if bits&0xa != 0 {
		k.Mod |= ui.Alt
	}
	if bits&0x4 != 0 {
		k.Mod |= ui.Ctrl
	}
	return k
}
