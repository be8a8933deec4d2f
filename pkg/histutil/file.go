package histutil

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"time"
)

// FileStore persists history entries in a text file: one entry per line,
// newest last, optionally preceded by a "#<epoch>" line. A newline inside an
// entry is written as a backslash at the end of a line.
type FileStore struct {
	Path string
}

// NewFileStore returns a FileStore backed by the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path}
}

// Load reads all entries. A missing file yields no entries.
func (s *FileStore) Load() ([]Entry, error) {
	f, err := os.Open(s.Path)
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	defer f.Close()
	entries := ParseFile(bufio.NewScanner(f))
	return entries, nil
}

// ParseFile parses entries from lines in the history file format.
func ParseFile(sc *bufio.Scanner) []Entry {
	var entries []Entry
	var t time.Time
	var pending []string
	for sc.Scan() {
		line := sc.Text()
		if pending == nil && strings.HasPrefix(line, "#") {
			if epoch, err := strconv.ParseInt(line[1:], 10, 64); err == nil {
				t = time.Unix(epoch, 0)
				continue
			}
		}
		line, cont := unescapeLine(line)
		pending = append(pending, line)
		if cont {
			continue
		}
		entries = append(entries, Entry{strings.Join(pending, "\n"), t})
		pending = nil
		t = time.Time{}
	}
	if pending != nil {
		entries = append(entries, Entry{strings.Join(pending, "\n"), t})
	}
	return entries
}

// Append writes one entry at the end of the file.
func (s *FileStore) Append(e Entry) error {
	f, err := os.OpenFile(s.Path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0600)
	if err != nil {
		return err
	}
	_, err = f.WriteString(FormatEntry(e))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

// FormatEntry formats an entry in the history file format, including the
// final newline.
func FormatEntry(e Entry) string {
	var sb strings.Builder
	if !e.Time.IsZero() {
		sb.WriteString("#" + strconv.FormatInt(e.Time.Unix(), 10) + "\n")
	}
	sb.WriteString(strings.ReplaceAll(escape(e.Text), "\n", "\\\n"))
	sb.WriteByte('\n')
	return sb.String()
}

// Clear truncates the file.
func (s *FileStore) Clear() error {
	err := os.Truncate(s.Path, 0)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Trailing backslashes of each line of an entry are doubled, so that an odd
// number of them marks a continuation.
func escape(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		n := trailingBackslashes(line)
		lines[i] = line + strings.Repeat(`\`, n)
	}
	return strings.Join(lines, "\n")
}

func unescapeLine(line string) (string, bool) {
	n := trailingBackslashes(line)
	return line[:len(line)-n] + strings.Repeat(`\`, n/2), n%2 == 1
}

func trailingBackslashes(s string) int {
	n := 0
	for n < len(s) && s[len(s)-1-n] == '\\' {
		n++
	}
	return n
}
