package main

import (
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"

	"github.com/Fantom-foundation/segpipe/kvdb"
	"github.com/Fantom-foundation/segpipe/kvdb/leveldb"
	"github.com/Fantom-foundation/segpipe/kvdb/memorydb"
	"github.com/Fantom-foundation/segpipe/kvdb/pebble"
)

// dbHandles is the number of open files allowed to disk backends.
const dbHandles = 64

// openDB opens the segment database of the given kind. With reset, the stored
// content is dropped first.
func openDB(kind, dir string, cacheMB int, reset bool) (kvdb.DropableStore, error) {
	db, err := open(kind, dir, cacheMB)
	if err != nil || !reset {
		return db, err
	}
	if err := db.Close(); err != nil {
		return nil, errors.Wrap(err, "close db")
	}
	db.Drop()
	log.Info("Dropped segment database", "kind", kind, "dir", dir)
	return open(kind, dir, cacheMB)
}

func open(kind, dir string, cacheMB int) (kvdb.DropableStore, error) {
	cache := cacheMB * 1024 * 1024
	drop := func() {
		if err := os.RemoveAll(dir); err != nil {
			log.Warn("Failed to remove database", "dir", dir, "err", err)
		}
	}
	switch kind {
	case "memory":
		return memorydb.New(), nil
	case "leveldb":
		if dir == "" {
			return nil, errors.Errorf("--datadir is required for %s", kind)
		}
		db, err := leveldb.New(dir, cache, dbHandles, nil, drop)
		if err != nil {
			return nil, errors.Wrap(err, "open leveldb")
		}
		log.Debug("Opened database", "kind", kind, "path", db.Path())
		return db, nil
	case "pebble":
		if dir == "" {
			return nil, errors.Errorf("--datadir is required for %s", kind)
		}
		db, err := pebble.New(dir, cache, dbHandles, nil, drop)
		if err != nil {
			return nil, errors.Wrap(err, "open pebble")
		}
		log.Debug("Opened database", "kind", kind, "path", db.Path())
		return db, nil
	default:
		return nil, errors.Errorf("unknown db %q", kind)
	}
}
