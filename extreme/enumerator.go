// Package extreme enumerates the extreme points (vertices) of the polytope
//
//	{x : lower_i <= x_i <= upper_i, sum(x) = 1}
//
// described by a vector of probability intervals.
package extreme

import (
	"fmt"

	"imdpsim/interval"
)

// Handler is called once per extreme point found. The point slice is scratch
// memory owned by the Enumerator and is only valid for the duration of the
// call. Returning true stops the enumeration.
type Handler func(point []float64) bool

// Enumerator performs the vertex enumeration.
//
// An Enumerator reuses its scratch buffers across calls to Enumerate and must
// not be used from several goroutines at the same time.
type Enumerator struct {
	point   []float64
	bounds  []interval.Interval
	size    int
	handler Handler
}

func NewEnumerator() *Enumerator {
	return &Enumerator{}
}

// Enumerate calls handler for every extreme point of the polytope defined by
// the first size entries of bounds.
//
// Every coordinate but at most one is fixed at one of its bounds. The remaining
// coordinate, if any, takes the value forced by the sum-to-one constraint and
// the point is kept only if that value lies within its interval. Sums and the
// forced value are compared up to interval.Rounding, the forced value is then
// clamped into its interval. The same point may be reported more than once
// when it can be reached through different choices.
//
// Returns true if some call to handler returned true.
// Panics if size is negative, larger than len(bounds), or if one of the
// intervals is invalid.
func (e *Enumerator) Enumerate(bounds []interval.Interval, size int, handler Handler) bool {
	if size < 0 || size > len(bounds) {
		panic(fmt.Sprintf("extreme: cannot enumerate %v entries of a vector of length %v", size, len(bounds)))
	}
	for i := 0; i < size; i++ {
		if !bounds[i].Valid() {
			panic(fmt.Sprintf("extreme: entry %v is not an interval: %v", i, bounds[i]))
		}
	}
	if cap(e.point) < size {
		e.point = make([]float64, size)
	}
	e.point = e.point[:size]
	e.bounds = bounds
	e.size = size
	e.handler = handler
	defer func() {
		e.bounds = nil
		e.handler = nil
	}()
	return e.enumerate(0, 0, -1)
}

// free is the index of the coordinate that is left unassigned, or -1.
func (e *Enumerator) enumerate(level int, sum float64, free int) bool {
	if sum > 1+interval.Rounding {
		return false
	}
	if level == e.size {
		if free < 0 {
			if !interval.SumsToOne(sum) {
				return false
			}
			return e.handler(e.point)
		}
		b := e.bounds[free]
		v := 1 - sum
		if !b.ContainsRounded(v) {
			return false
		}
		e.point[free] = min(max(v, b.Lower), b.Upper)
		return e.handler(e.point)
	}

	b := e.bounds[level]
	// A point interval has a single value, leaving it free gives nothing new.
	if free < 0 && !b.IsPoint() {
		if e.enumerate(level+1, sum, level) {
			return true
		}
	}
	e.point[level] = b.Lower
	if e.enumerate(level+1, sum+b.Lower, free) {
		return true
	}
	if !b.IsPoint() {
		e.point[level] = b.Upper
		if e.enumerate(level+1, sum+b.Upper, free) {
			return true
		}
	}
	return false
}
