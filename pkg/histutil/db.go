package histutil

import (
	"math"
	"time"

	"src.kesh.sh/pkg/store"
)

// DB is the part of *store.DB used for history persistence.
type DB interface {
	AddCmd(text string, t time.Time) (int, error)
	Cmds(from, upto int) ([]store.Cmd, error)
	ClearCmds() error
}

// DBStore persists history entries in a database.
type DBStore struct {
	DB DB
}

// NewDBStore returns a DBStore backed by db.
func NewDBStore(db DB) *DBStore {
	return &DBStore{db}
}

// Load returns all commands in the database, oldest first.
func (s *DBStore) Load() ([]Entry, error) {
	cmds, err := s.DB.Cmds(0, math.MaxInt)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, len(cmds))
	for i, cmd := range cmds {
		entries[i] = Entry{cmd.Text, cmd.Time}
	}
	return entries, nil
}

// Append adds one entry to the database.
func (s *DBStore) Append(e Entry) error {
	_, err := s.DB.AddCmd(e.Text, e.Time)
	return err
}

// Clear deletes all commands from the database.
func (s *DBStore) Clear() error {
	return s.DB.ClearCmds()
}
