package store

import (
	"sort"
	"strconv"

	bolt "go.etcd.io/bbolt"
)

// Parameters for directory history scores. Every visit decays all scores and
// adds DirScoreIncrement to the visited directory.
const (
	DirScoreDecay     = 0.986 // roughly 0.5^(1/50)
	DirScoreIncrement = 10
	DirScorePrecision = 6
)

// Dir is an entry in the directory history.
type Dir struct {
	Path  string
	Score float64
}

func marshalScore(score float64) []byte {
	return []byte(strconv.FormatFloat(score, 'E', DirScorePrecision, 64))
}

func unmarshalScore(data []byte) float64 {
	f, _ := strconv.ParseFloat(string(data), 64)
	return f
}

// AddDir records a visit to a directory.
func (s *DB) AddDir(d string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketDir))
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if err := b.Put(k, marshalScore(unmarshalScore(v)*DirScoreDecay)); err != nil {
				return err
			}
		}
		score := 0.0
		if v := b.Get([]byte(d)); v != nil {
			score = unmarshalScore(v)
		}
		return b.Put([]byte(d), marshalScore(score+DirScoreIncrement))
	})
}

// DelDir deletes a directory from the history.
func (s *DB) DelDir(d string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketDir)).Delete([]byte(d))
	})
}

// Dirs lists the directories in the history, highest score first, skipping
// those in exclude.
func (s *DB) Dirs(exclude map[string]bool) ([]Dir, error) {
	var dirs []Dir
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(bucketDir)).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if !exclude[string(k)] {
				dirs = append(dirs, Dir{string(k), unmarshalScore(v)})
			}
		}
		return nil
	})
	sort.SliceStable(dirs, func(i, j int) bool { return dirs[i].Score > dirs[j].Score })
	return dirs, err
}
