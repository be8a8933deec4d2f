package shell

import (
	"os"
	"path/filepath"

	"src.kesh.sh/pkg/histutil"
	"src.kesh.sh/pkg/hook"
	"src.kesh.sh/pkg/prog"
	"src.kesh.sh/pkg/state"
	"src.kesh.sh/pkg/store"
)

// Puts the history of an interactive shell in its state and loads persisted
// entries. Paths from flags take precedence over those in the config; a
// database takes precedence over a file.
//
// The history is kept in memory when an error occurs.
func initHistory(sh *Shell, hc HistoryConfig, f *prog.Flags) error {
	dedup := histutil.DedupNone
	var dedupErr error
	if hc.Dedup != "" {
		dedup, dedupErr = histutil.ParseDedup(hc.Dedup)
		if dedupErr != nil {
			dedup = histutil.DedupNone
		}
	}
	h := histutil.New(dedup)
	size := hc.Size
	if size == 0 {
		size = DefaultHistorySize
	}
	h.SetMax(size)
	state.Put(sh.st, h)
	if dedupErr != nil {
		return dedupErr
	}

	dbPath, filePath := f.DB, f.History
	if dbPath == "" && filePath == "" {
		dbPath, filePath = hc.DB, hc.File
	}
	if dbPath != "" {
		db, err := store.Open(dbPath)
		if err != nil {
			return err
		}
		sh.OnClose(db.Close)
		h.SetPersister(histutil.NewDBStore(db))
		hook.On(sh.hooks, func(_ *state.Store, cd hook.ChangeDir) error {
			return db.AddDir(cd.To)
		})
	} else {
		if filePath == "" {
			var err error
			filePath, err = HistoryPath()
			if err != nil {
				return err
			}
		}
		if err := os.MkdirAll(filepath.Dir(filePath), 0700); err != nil {
			return err
		}
		h.SetPersister(histutil.NewFileStore(filePath))
	}
	return h.Load()
}
