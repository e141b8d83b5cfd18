// Package interval implements closed real intervals and the interval
// arithmetic used to describe uncertain transition probabilities.
package interval

import (
	"fmt"
	"math"
)

// Interval is the closed range [Lower, Upper].
//
// The zero value is the point interval [0, 0].
type Interval struct {
	Lower float64
	Upper float64
}

// New creates the interval [lower, upper].
// Panics if lower > upper or if either bound is NaN.
func New(lower, upper float64) Interval {
	i := Interval{Lower: lower, Upper: upper}
	i.mustValid("new")
	return i
}

// Point creates the degenerate interval [v, v].
func Point(v float64) Interval {
	return New(v, v)
}

// DomainError is raised (as a panic value) when an operation leaves the
// numeric domain of interval arithmetic, e.g. division by an interval
// containing zero or an empty result where a non-empty one is required.
type DomainError struct {
	Op      string
	Operand Interval
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("interval: %v is outside the numeric domain of %v", e.Operand, e.Op)
}

func (i Interval) mustValid(op string) {
	if math.IsNaN(i.Lower) || math.IsNaN(i.Upper) || i.Lower > i.Upper {
		panic(&DomainError{Op: op, Operand: i})
	}
}

// Valid returns true if Lower <= Upper and neither bound is NaN.
func (i Interval) Valid() bool {
	return !math.IsNaN(i.Lower) && !math.IsNaN(i.Upper) && i.Lower <= i.Upper
}

// IsPoint returns true if the interval contains exactly one value.
func (i Interval) IsPoint() bool {
	return i.Lower == i.Upper
}

// Contains returns true if lower <= v <= upper.
func (i Interval) Contains(v float64) bool {
	return i.Lower <= v && v <= i.Upper
}

// Rounding is the slack granted when a sum of probabilities is compared with
// 1. Decimal weights such as 0.3 and 0.7 do not add up to exactly 1 in
// floating point. Interval arithmetic and equality stay exact.
const Rounding = 1e-13

// SumsToOne returns true if v is 1 up to Rounding.
func SumsToOne(v float64) bool {
	return math.Abs(v-1) <= Rounding
}

// ContainsRounded is Contains with both bounds widened by Rounding.
func (i Interval) ContainsRounded(v float64) bool {
	return i.Lower-Rounding <= v && v <= i.Upper+Rounding
}

// Width is Upper - Lower.
func (i Interval) Width() float64 {
	return i.Upper - i.Lower
}

func (i Interval) Add(o Interval) Interval {
	return Interval{Lower: i.Lower + o.Lower, Upper: i.Upper + o.Upper}
}

func (i Interval) Sub(o Interval) Interval {
	return Interval{Lower: i.Lower - o.Upper, Upper: i.Upper - o.Lower}
}

func (i Interval) Mul(o Interval) Interval {
	a, b, c, d := i.Lower*o.Lower, i.Lower*o.Upper, i.Upper*o.Lower, i.Upper*o.Upper
	return Interval{
		Lower: math.Min(math.Min(a, b), math.Min(c, d)),
		Upper: math.Max(math.Max(a, b), math.Max(c, d)),
	}
}

// Div divides by o.
// Panics with a *DomainError if o contains zero.
func (i Interval) Div(o Interval) Interval {
	if o.Contains(0) {
		panic(&DomainError{Op: "div", Operand: o})
	}
	return i.Mul(Interval{Lower: 1 / o.Upper, Upper: 1 / o.Lower})
}

// Min is the range of min(x, y) for x in i and y in o.
func (i Interval) Min(o Interval) Interval {
	return Interval{Lower: math.Min(i.Lower, o.Lower), Upper: math.Min(i.Upper, o.Upper)}
}

// Max is the range of max(x, y) for x in i and y in o.
func (i Interval) Max(o Interval) Interval {
	return Interval{Lower: math.Max(i.Lower, o.Lower), Upper: math.Max(i.Upper, o.Upper)}
}

// Intersect returns the common part of i and o.
// The boolean is false if the intersection is empty, in which case the
// returned interval is not valid.
func (i Interval) Intersect(o Interval) (Interval, bool) {
	r := Interval{Lower: math.Max(i.Lower, o.Lower), Upper: math.Min(i.Upper, o.Upper)}
	return r, r.Lower <= r.Upper
}

// Equal is exact bound equality.
func (i Interval) Equal(o Interval) bool {
	return i.Lower == o.Lower && i.Upper == o.Upper
}

// Compare orders intervals by lower bound, then by upper bound.
// Returns -1, 0 or 1. Compare returns 0 only if the intervals are Equal.
func Compare(a, b Interval) int {
	switch {
	case a.Lower < b.Lower:
		return -1
	case a.Lower > b.Lower:
		return 1
	case a.Upper < b.Upper:
		return -1
	case a.Upper > b.Upper:
		return 1
	}
	return 0
}

func (i Interval) String() string {
	return fmt.Sprintf("[%v, %v]", i.Lower, i.Upper)
}

// Sum adds up all intervals in v. The sum of an empty vector is [0, 0].
func Sum(v []Interval) Interval {
	var s Interval
	for _, i := range v {
		s = s.Add(i)
	}
	return s
}

// CompareVectors orders equally long interval vectors lexicographically.
// Panics if the lengths differ.
func CompareVectors(a, b []Interval) int {
	if len(a) != len(b) {
		panic(fmt.Sprintf("interval: comparing vectors of length %v and %v", len(a), len(b)))
	}
	for k := range a {
		if c := Compare(a[k], b[k]); c != 0 {
			return c
		}
	}
	return 0
}

// EqualVectors returns true if a and b have the same length and all entries
// are Equal.
func EqualVectors(a, b []Interval) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !a[k].Equal(b[k]) {
			return false
		}
	}
	return true
}
