// Package cache provides the maps from comparison problems to decisions used
// by the solver.
//
// Caches grow monotonically unless the implementation imposes an eviction
// policy (Ristretto). None of the in-process implementations are safe for
// concurrent use; give every solver its own cache. Badger may be shared.
package cache

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"imdpsim/problem"
)

// Cache maps problems to whether they are violated.
//
// Put must not retain p: the caller reuses its problems, implementations
// that keep the problem store a clone.
type Cache interface {
	Get(p *problem.Problem) (violated bool, ok bool)
	Put(p *problem.Problem, violated bool)
}

type Kind int

const (
	None Kind = iota
	Hash
	Sorted
	Ristretto
	Badger
)

var kindNames = map[Kind]string{
	None:      "none",
	Hash:      "hash",
	Sorted:    "sorted",
	Ristretto: "ristretto",
	Badger:    "badger",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

var ErrUnknownKind = errors.New("cache: unknown cache kind")

// ParseKind parses the name of a cache kind, as returned by Kind.String.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if strings.EqualFold(s, name) {
			return k, nil
		}
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

type Option interface{}

type capacityOption struct{ n int64 }

// Maximum number of entries of a Ristretto cache.
//
// Default value is 1 << 16
func Capacity(n int64) Option {
	return capacityOption{n: n}
}

type badgerConfigOption struct{ cfg BadgerConfig }

// Configure the database used by a Badger cache.
//
// Default is an in-memory database.
func WithBadgerConfig(cfg BadgerConfig) Option {
	return badgerConfigOption{cfg: cfg}
}

type loggerOption struct{ logger *slog.Logger }

// Logger used by caches that can fail (Badger). Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return loggerOption{logger: logger}
}

// New creates a cache of the given kind. Returns nil for None.
func New(kind Kind, opts ...Option) (Cache, error) {
	var (
		capacity  int64 = 1 << 16
		badgerCfg       = InMemoryBadgerConfig()
		logger          = slog.Default()
	)
	for _, opt := range opts {
		switch t := opt.(type) {
		case capacityOption:
			capacity = t.n
		case badgerConfigOption:
			badgerCfg = t.cfg
		case loggerOption:
			logger = t.logger
		}
	}

	switch kind {
	case None:
		return nil, nil
	case Hash:
		return NewHashCache(), nil
	case Sorted:
		return NewSortedCache(), nil
	case Ristretto:
		return NewRistrettoCache(capacity)
	case Badger:
		if badgerCfg.Logger == nil {
			badgerCfg.Logger = logger
		}
		return OpenBadgerCache(badgerCfg)
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownKind, kind)
}

// Close closes c if it holds resources.
func Close(c Cache) error {
	if closer, ok := c.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
