// Package problem holds the comparison problems decided by the solver and
// the normalizer that turns them into canonical cache keys.
//
// A comparison problem asks whether the uncertain distribution of a
// challenger over numClasses classes can always be matched by a convex
// combination of numActions uncertain defender distributions over the same
// classes.
package problem

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"imdpsim/interval"
)

// Problem is a resizable challenger/defender table.
//
// The backing storage is kept across Reset so that one Problem can be reused
// for many comparisons. Entries outside of the logical size are always zero.
// A Problem is mutable; callers that need to keep one (e.g. as a cache key)
// must Clone it.
type Problem struct {
	numClasses int
	numActions int

	challenger []interval.Interval
	// Row major, defender[a*numClasses+c]
	defender []interval.Interval
}

func New() *Problem {
	return &Problem{}
}

// FromVectors creates a problem from a challenger vector and one vector per
// defender action. Panics if the vectors differ in length.
func FromVectors(challenger []interval.Interval, defenders ...[]interval.Interval) *Problem {
	p := New()
	p.SetDimensions(len(challenger), len(defenders))
	for c, iv := range challenger {
		p.SetChallenger(c, iv)
	}
	for a, d := range defenders {
		if len(d) != len(challenger) {
			panic(fmt.Sprintf("problem: action %v has %v classes, challenger has %v", a, len(d), len(challenger)))
		}
		for c, iv := range d {
			p.SetDefender(a, c, iv)
		}
	}
	return p
}

// SetDimensions sets the logical size of the problem and zeroes all entries.
// Panics if either dimension is negative.
func (p *Problem) SetDimensions(numClasses, numActions int) {
	if numClasses < 0 || numActions < 0 {
		panic(fmt.Sprintf("problem: invalid dimensions %v classes, %v actions", numClasses, numActions))
	}
	p.clear()
	p.numClasses = numClasses
	p.numActions = numActions
	p.challenger = grow(p.challenger, numClasses)
	p.defender = grow(p.defender, numClasses*numActions)
}

// Resizes the slice to n, keeping the backing array when possible.
// The returned logical entries are zero.
func grow(s []interval.Interval, n int) []interval.Interval {
	if cap(s) < n {
		return make([]interval.Interval, n)
	}
	s = s[:n]
	clear(s)
	return s
}

func (p *Problem) clear() {
	clear(p.challenger)
	clear(p.defender)
}

// Reset zeroes all entries and sets both dimensions to zero.
func (p *Problem) Reset() {
	p.clear()
	p.numClasses = 0
	p.numActions = 0
	p.challenger = p.challenger[:0]
	p.defender = p.defender[:0]
}

func (p *Problem) NumClasses() int {
	return p.numClasses
}

func (p *Problem) NumActions() int {
	return p.numActions
}

func (p *Problem) checkClass(c int) {
	if c < 0 || c >= p.numClasses {
		panic(fmt.Sprintf("problem: class %v out of range [0, %v)", c, p.numClasses))
	}
}

func (p *Problem) checkAction(a int) {
	if a < 0 || a >= p.numActions {
		panic(fmt.Sprintf("problem: action %v out of range [0, %v)", a, p.numActions))
	}
}

func checkInterval(iv interval.Interval) {
	if !iv.Valid() {
		panic(fmt.Sprintf("problem: %v is not an interval", iv))
	}
}

func (p *Problem) SetChallenger(c int, iv interval.Interval) {
	p.checkClass(c)
	checkInterval(iv)
	p.challenger[c] = iv
}

// AddChallenger adds iv to the challenger's entry for class c.
func (p *Problem) AddChallenger(c int, iv interval.Interval) {
	p.checkClass(c)
	checkInterval(iv)
	p.challenger[c] = p.challenger[c].Add(iv)
}

func (p *Problem) Challenger(c int) interval.Interval {
	p.checkClass(c)
	return p.challenger[c]
}

// ChallengerVector returns the challenger's entries. The slice aliases the
// problem's storage.
func (p *Problem) ChallengerVector() []interval.Interval {
	return p.challenger[:p.numClasses]
}

func (p *Problem) SetDefender(a, c int, iv interval.Interval) {
	p.checkAction(a)
	p.checkClass(c)
	checkInterval(iv)
	p.defender[a*p.numClasses+c] = iv
}

// AddDefender adds iv to the entry of action a for class c.
func (p *Problem) AddDefender(a, c int, iv interval.Interval) {
	p.checkAction(a)
	p.checkClass(c)
	checkInterval(iv)
	k := a*p.numClasses + c
	p.defender[k] = p.defender[k].Add(iv)
}

func (p *Problem) Defender(a, c int) interval.Interval {
	p.checkAction(a)
	p.checkClass(c)
	return p.defender[a*p.numClasses+c]
}

// DefenderVector returns the entries of action a. The slice aliases the
// problem's storage.
func (p *Problem) DefenderVector(a int) []interval.Interval {
	p.checkAction(a)
	return p.defender[a*p.numClasses : (a+1)*p.numClasses]
}

// MaxDefenderUpper returns the largest upper bound any action offers for
// class c, or -1 if there are no actions.
func (p *Problem) MaxDefenderUpper(c int) float64 {
	p.checkClass(c)
	max := -1.0
	for a := 0; a < p.numActions; a++ {
		if u := p.defender[a*p.numClasses+c].Upper; u > max {
			max = u
		}
	}
	return max
}

// MatchingAction returns the first action whose vector is identical to the
// challenger's, or -1.
func (p *Problem) MatchingAction() int {
	for a := 0; a < p.numActions; a++ {
		if interval.EqualVectors(p.DefenderVector(a), p.ChallengerVector()) {
			return a
		}
	}
	return -1
}

// Clone returns a deep copy sized to the logical dimensions.
func (p *Problem) Clone() *Problem {
	c := &Problem{}
	c.CopyFrom(p)
	return c
}

// CopyFrom overwrites p with the contents of o, reusing p's storage.
func (p *Problem) CopyFrom(o *Problem) {
	p.SetDimensions(o.numClasses, o.numActions)
	copy(p.challenger, o.ChallengerVector())
	copy(p.defender, o.defender[:o.numClasses*o.numActions])
}

// CompareTo is a total order on problems: by number of actions, then number
// of classes, then entry by entry (challenger first, then the defender rows).
func (p *Problem) CompareTo(o *Problem) int {
	switch {
	case p.numActions != o.numActions:
		return cmpInt(p.numActions, o.numActions)
	case p.numClasses != o.numClasses:
		return cmpInt(p.numClasses, o.numClasses)
	}
	if c := interval.CompareVectors(p.ChallengerVector(), o.ChallengerVector()); c != 0 {
		return c
	}
	n := p.numClasses * p.numActions
	return interval.CompareVectors(p.defender[:n], o.defender[:n])
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	return 1
}

// Equals is true if CompareTo returns 0.
func (p *Problem) Equals(o *Problem) bool {
	return p.CompareTo(o) == 0
}

func (p *Problem) String() string {
	var buffer bytes.Buffer
	wrt := tabwriter.NewWriter(&buffer, 4, 4, 1, ' ', 0)
	fmt.Fprintf(wrt, "challenger")
	for _, iv := range p.ChallengerVector() {
		fmt.Fprintf(wrt, "\t%v", iv)
	}
	fmt.Fprintln(wrt)
	for a := 0; a < p.numActions; a++ {
		fmt.Fprintf(wrt, "action %v", a)
		for _, iv := range p.DefenderVector(a) {
			fmt.Fprintf(wrt, "\t%v", iv)
		}
		fmt.Fprintln(wrt)
	}
	wrt.Flush()
	return buffer.String()
}
