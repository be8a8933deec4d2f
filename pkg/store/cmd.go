package store

import (
	"bytes"
	"encoding/binary"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Cmd is an entry in the command history.
type Cmd struct {
	Text string
	Seq  int
	Time time.Time
}

// NextCmdSeq returns the sequence number the next command will get.
func (s *DB) NextCmdSeq() (int, error) {
	var seq uint64
	err := s.db.View(func(tx *bolt.Tx) error {
		seq = tx.Bucket([]byte(bucketCmd)).Sequence() + 1
		return nil
	})
	return int(seq), err
}

// AddCmd adds a command to the history, returning its sequence number.
func (s *DB) AddCmd(text string, t time.Time) (int, error) {
	var seq uint64
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketCmd))
		var err error
		seq, err = b.NextSequence()
		if err != nil {
			return err
		}
		if err := b.Put(marshalSeq(seq), []byte(text)); err != nil {
			return err
		}
		return tx.Bucket([]byte(bucketCmdTime)).Put(marshalSeq(seq), marshalSeq(uint64(t.Unix())))
	})
	return int(seq), err
}

// DelCmd deletes the command with the given sequence number.
func (s *DB) DelCmd(seq int) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		tx.Bucket([]byte(bucketCmdTime)).Delete(marshalSeq(uint64(seq)))
		return tx.Bucket([]byte(bucketCmd)).Delete(marshalSeq(uint64(seq)))
	})
}

// ClearCmds deletes all commands. Sequence numbers keep increasing.
func (s *DB) ClearCmds() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{bucketCmd, bucketCmdTime} {
			b := tx.Bucket([]byte(name))
			c := b.Cursor()
			for k, _ := c.First(); k != nil; k, _ = c.First() {
				if err := b.Delete(k); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Cmds returns the commands with sequence numbers in [from, upto), oldest
// first.
func (s *DB) Cmds(from, upto int) ([]Cmd, error) {
	var cmds []Cmd
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(bucketCmd)).Cursor()
		times := tx.Bucket([]byte(bucketCmdTime))
		for k, v := c.Seek(marshalSeq(uint64(from))); k != nil && unmarshalSeq(k) < uint64(upto); k, v = c.Next() {
			cmds = append(cmds, makeCmd(k, v, times))
		}
		return nil
	})
	return cmds, err
}

// PrevCmd finds the last command before upto (exclusive) with the given
// prefix.
func (s *DB) PrevCmd(upto int, prefix string) (Cmd, error) {
	var cmd Cmd
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(bucketCmd)).Cursor()
		p := []byte(prefix)
		k, v := c.Seek(marshalSeq(uint64(upto)))
		if k == nil {
			k, v = c.Last()
		} else {
			k, v = c.Prev()
		}
		for ; k != nil; k, v = c.Prev() {
			if bytes.HasPrefix(v, p) {
				cmd = makeCmd(k, v, tx.Bucket([]byte(bucketCmdTime)))
				return nil
			}
		}
		return ErrNoMatchingCmd
	})
	return cmd, err
}

func makeCmd(k, v []byte, times *bolt.Bucket) Cmd {
	cmd := Cmd{Text: string(v), Seq: int(unmarshalSeq(k))}
	if t := times.Get(k); t != nil {
		cmd.Time = time.Unix(int64(unmarshalSeq(t)), 0)
	}
	return cmd
}

func marshalSeq(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}

func unmarshalSeq(key []byte) uint64 {
	return binary.BigEndian.Uint64(key)
}
