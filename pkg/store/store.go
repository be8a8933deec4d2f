// Package store implements the persistent database of the shell: command
// history and directory history, kept in a bbolt file.
package store

import (
	"errors"
	"time"

	bolt "go.etcd.io/bbolt"

	"src.kesh.sh/pkg/logutil"
)

var logger = logutil.GetLogger("[store] ")

// ErrNoMatchingCmd is returned when a command query has no result.
var ErrNoMatchingCmd = errors.New("no matching command line")

const (
	bucketCmd     = "cmd"
	bucketCmdTime = "cmd-time"
	bucketDir     = "dir"
)

// DB is a handle to the database. All methods are safe for concurrent use.
type DB struct {
	db *bolt.DB
}

// Open opens the database at path, creating it if needed.
func Open(path string) (*DB, error) {
	db, err := bolt.Open(path, 0644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{bucketCmd, bucketCmdTime, bucketDir} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	logger.Println("opened", path)
	return &DB{db}, nil
}

// Close closes the database.
func (s *DB) Close() error {
	return s.db.Close()
}
