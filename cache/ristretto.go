package cache

import (
	"fmt"

	"github.com/dgraph-io/ristretto/v2"

	"imdpsim/problem"
)

// RistrettoCache is a bounded cache keyed on the binary encoding of the
// problems. Entries may be evicted or, when the cache is full, not admitted
// at all; a miss only costs a new decision.
type RistrettoCache struct {
	cache *ristretto.Cache[string, bool]
	buf   []byte
}

func NewRistrettoCache(capacity int64) (*RistrettoCache, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("cache: ristretto capacity must be positive, got %v", capacity)
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, bool]{
		NumCounters: capacity * 10,
		MaxCost:     capacity,
		BufferItems: 64,
		// Every entry costs 1, the capacity is a number of entries.
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("cache: create ristretto cache: %w", err)
	}
	return &RistrettoCache{cache: c}, nil
}

func (c *RistrettoCache) Get(p *problem.Problem) (bool, bool) {
	c.buf = p.AppendKey(c.buf[:0])
	return c.cache.Get(string(c.buf))
}

func (c *RistrettoCache) Put(p *problem.Problem, violated bool) {
	c.cache.Set(string(p.Key()), violated, 1)
	// Make the entry visible to the next Get.
	c.cache.Wait()
}

func (c *RistrettoCache) Close() error {
	c.cache.Close()
	return nil
}
