package cache

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"

	"imdpsim/problem"
)

// BadgerConfig configures the database behind a BadgerCache.
type BadgerConfig struct {
	// Directory of the database. Required unless InMemory is set.
	Path string
	// Keep the database in memory only. Useful for testing.
	InMemory bool
	// Sync every write to disk.
	SyncWrites bool
	// Receives Badger's internal logging and failed cache operations.
	// If nil, Badger's logging is disabled.
	Logger *slog.Logger
}

// Persistent cache at path.
func DefaultBadgerConfig(path string) BadgerConfig {
	return BadgerConfig{Path: path}
}

func InMemoryBadgerConfig() BadgerConfig {
	return BadgerConfig{InMemory: true}
}

// Keys are prefixed so that the database can be shared with other data.
var badgerKeyPrefix = []byte("imdpsim/violated/")

// BadgerCache stores decisions in a Badger database, so that they survive
// the process and can be shared by several solvers.
//
// Failed reads count as misses and failed writes are dropped; both are
// logged.
type BadgerCache struct {
	db     *badger.DB
	logger *slog.Logger
}

type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func OpenBadgerCache(cfg BadgerConfig) (*BadgerCache, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("cache: path is required for a persistent badger cache")
	}
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("cache: create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	logger := cfg.Logger
	if logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: logger})
	} else {
		opts = opts.WithLogger(nil)
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("cache: open badger database: %w", err)
	}
	return &BadgerCache{db: db, logger: logger}, nil
}

func badgerKey(p *problem.Problem) []byte {
	return p.AppendKey(append([]byte(nil), badgerKeyPrefix...))
}

func (c *BadgerCache) Get(p *problem.Problem) (bool, bool) {
	var violated, found bool
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(p))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) != 1 {
				return fmt.Errorf("cache: corrupt entry of %v bytes", len(val))
			}
			violated, found = val[0] == 1, true
			return nil
		})
	})
	if err != nil {
		c.logger.Warn("badger cache lookup failed", "err", err)
		return false, false
	}
	return violated, found
}

func (c *BadgerCache) Put(p *problem.Problem, violated bool) {
	val := []byte{0}
	if violated {
		val[0] = 1
	}
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(p), val)
	})
	if err != nil {
		c.logger.Warn("badger cache insert failed", "err", err)
	}
}

// Len counts the stored decisions.
func (c *BadgerCache) Len() (int, error) {
	n := 0
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = badgerKeyPrefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

func (c *BadgerCache) Close() error {
	return c.db.Close()
}
