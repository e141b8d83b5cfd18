package cache

import (
	"golang.org/x/exp/slices"

	"imdpsim/problem"
)

// SortedCache keeps its entries in an array ordered by Problem.CompareTo
// and looks them up by binary search.
type SortedCache struct {
	entries []entry
}

func NewSortedCache() *SortedCache {
	return &SortedCache{}
}

func (c *SortedCache) find(p *problem.Problem) (int, bool) {
	return slices.BinarySearchFunc(c.entries, p, func(e entry, p *problem.Problem) int {
		return e.key.CompareTo(p)
	})
}

func (c *SortedCache) Get(p *problem.Problem) (bool, bool) {
	i, ok := c.find(p)
	if !ok {
		return false, false
	}
	return c.entries[i].violated, true
}

func (c *SortedCache) Put(p *problem.Problem, violated bool) {
	i, ok := c.find(p)
	if ok {
		c.entries[i].violated = violated
		return
	}
	c.entries = slices.Insert(c.entries, i, entry{key: p.Clone(), violated: violated})
}

func (c *SortedCache) Len() int {
	return len(c.entries)
}
