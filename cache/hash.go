package cache

import "imdpsim/problem"

// HashCache buckets problems by their hash.
type HashCache struct {
	buckets map[uint64][]entry
	size    int
}

type entry struct {
	key      *problem.Problem
	violated bool
}

func NewHashCache() *HashCache {
	return &HashCache{buckets: make(map[uint64][]entry)}
}

func (c *HashCache) Get(p *problem.Problem) (bool, bool) {
	for _, e := range c.buckets[p.Hash()] {
		if e.key.Equals(p) {
			return e.violated, true
		}
	}
	return false, false
}

func (c *HashCache) Put(p *problem.Problem, violated bool) {
	h := p.Hash()
	bucket := c.buckets[h]
	for i, e := range bucket {
		if e.key.Equals(p) {
			bucket[i].violated = violated
			return
		}
	}
	c.buckets[h] = append(bucket, entry{key: p.Clone(), violated: violated})
	c.size++
}

func (c *HashCache) Len() int {
	return c.size
}
