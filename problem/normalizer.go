package problem

import (
	"math"

	"golang.org/x/exp/slices"

	"imdpsim/interval"
)

// Upper limit on tightening passes over one row. A pass only ever shrinks
// the intervals, in practice a row is stable after one or two passes.
const maxTighteningPasses = 64

// Normalizer rewrites problems into a canonical representative of their
// permutation class without changing whether they are violated.
//
// A Normalizer owns scratch buffers and must not be shared between
// goroutines.
type Normalizer struct {
	lowers []float64
	uppers []float64
	next   []interval.Interval

	classPerm  []int
	actionPerm []int
	// Defender column of each class sorted independently of the action order.
	columns []interval.Interval
	tmp     []interval.Interval

	// Runs [start, end) of classes with equal signatures.
	ties                  [][2]int
	base, best, candidate *Problem
}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize tightens and canonically orders p in place.
//
// Every row (the challenger and each defender action) has its bounds
// tightened with the sum-to-one constraint. Classes and actions are then
// sorted, and identical actions are merged, so that problems which only
// differ by a permutation of classes or actions become Equal.
//
// Panics with an *interval.DomainError if a row has no distribution within
// its bounds.
func (n *Normalizer) Normalize(p *Problem) {
	n.Tighten(p)
	n.sort(p)
	n.dedup(p)
}

// Tighten tightens every row of p with the sum-to-one constraint.
func (n *Normalizer) Tighten(p *Problem) {
	n.tightenRow(p.ChallengerVector())
	for a := 0; a < p.numActions; a++ {
		n.tightenRow(p.DefenderVector(a))
	}
}

// Intersects each entry with 1 minus the sum of the other entries, until the
// row no longer changes. The sums of the other entries are taken over sorted
// bounds so that the result does not depend on the order of the entries.
//
// A forced bound within interval.Rounding of a bound of the entry is taken to
// be that bound, so rows like (0.3, 0.7) stay as they are.
func (n *Normalizer) tightenRow(row []interval.Interval) {
	size := len(row)
	if size == 0 {
		return
	}
	n.lowers = resize(n.lowers, size)
	n.uppers = resize(n.uppers, size)
	n.next = resize(n.next, size)

	for pass := 0; pass < maxTighteningPasses; pass++ {
		for i, iv := range row {
			n.lowers[i] = iv.Lower
			n.uppers[i] = iv.Upper
		}
		slices.Sort(n.lowers)
		slices.Sort(n.uppers)

		changed := false
		for i, iv := range row {
			forced := interval.Interval{
				Lower: snap(1-sumWithout(n.uppers, iv.Upper), iv.Lower, iv.Upper),
				Upper: snap(1-sumWithout(n.lowers, iv.Lower), iv.Upper, iv.Lower),
			}
			r, ok := iv.Intersect(forced)
			if !ok {
				panic(&interval.DomainError{Op: "tighten", Operand: iv})
			}
			if !r.Equal(iv) {
				changed = true
			}
			n.next[i] = r
		}
		if !changed {
			return
		}
		copy(row, n.next)
	}
}

// Returns the first of the bounds that x is within rounding of, or x.
func snap(x float64, bounds ...float64) float64 {
	for _, b := range bounds {
		if math.Abs(x-b) <= interval.Rounding {
			return b
		}
	}
	return x
}

// Sum of the sorted values, leaving out one occurrence of skip.
func sumWithout(sorted []float64, skip float64) float64 {
	sum := 0.0
	skipped := false
	for _, v := range sorted {
		if !skipped && v == skip {
			skipped = true
			continue
		}
		sum += v
	}
	return sum
}

func resize[T any](s []T, size int) []T {
	if cap(s) < size {
		return make([]T, size)
	}
	return s[:size]
}

func (n *Normalizer) sort(p *Problem) {
	classes, actions := p.numClasses, p.numActions
	if classes == 0 {
		return
	}

	// Order classes by a signature that does not depend on the action order:
	// the challenger entry and the multiset of defender entries.
	n.columns = resize(n.columns, classes*actions)
	for c := 0; c < classes; c++ {
		col := n.columns[c*actions : (c+1)*actions]
		for a := 0; a < actions; a++ {
			col[a] = p.defender[a*classes+c]
		}
		slices.SortFunc(col, interval.Compare)
	}
	n.classPerm = identity(n.classPerm, classes)
	slices.SortStableFunc(n.classPerm, func(x, y int) int {
		return n.compareClassSignatures(p, x, y)
	})
	n.permuteClasses(p)

	candidates := n.findTies(p)
	switch {
	case candidates == 1:
		n.sortActions(p)
	case candidates <= maxCanonicalCandidates:
		n.minimize(p)
	default:
		n.refine(p)
	}
}

// Upper limit on the number of class orders tried to break ties between
// classes with the same signature.
const maxCanonicalCandidates = 5040

// Records the runs of classes with equal signatures in n.ties and returns
// the number of class orders that keep the signatures sorted, capped just
// above maxCanonicalCandidates.
func (n *Normalizer) findTies(p *Problem) int {
	n.ties = n.ties[:0]
	candidates := 1
	start := 0
	for c := 1; c <= p.numClasses; c++ {
		if c < p.numClasses && n.compareClassSignatures(p, c-1, c) == 0 {
			continue
		}
		if c-start > 1 {
			n.ties = append(n.ties, [2]int{start, c})
			for k := 2; k <= c-start && candidates <= maxCanonicalCandidates; k++ {
				candidates *= k
			}
		}
		start = c
	}
	return candidates
}

// Tries every order of the tied classes and keeps the smallest problem.
func (n *Normalizer) minimize(p *Problem) {
	if n.base == nil {
		n.base, n.best, n.candidate = New(), New(), New()
	}
	n.base.CopyFrom(p)
	n.classPerm = identity(n.classPerm, p.numClasses)
	found := false
	var try func(group, k int)
	try = func(group, k int) {
		if group == len(n.ties) {
			n.candidate.SetDimensions(n.base.numClasses, n.base.numActions)
			permuteInto(n.candidate, n.base, n.classPerm)
			n.sortActions(n.candidate)
			if !found || n.candidate.CompareTo(n.best) < 0 {
				n.best.CopyFrom(n.candidate)
				found = true
			}
			return
		}
		start, end := n.ties[group][0], n.ties[group][1]
		if start+k == end {
			try(group+1, 0)
			return
		}
		for i := start + k; i < end; i++ {
			n.classPerm[start+k], n.classPerm[i] = n.classPerm[i], n.classPerm[start+k]
			try(group, k+1)
			n.classPerm[start+k], n.classPerm[i] = n.classPerm[i], n.classPerm[start+k]
		}
	}
	try(0, 0)
	p.CopyFrom(n.best)
}

// Writes src with its classes reordered by perm into dst, which must have
// the same dimensions.
func permuteInto(dst, src *Problem, perm []int) {
	for c, old := range perm {
		dst.challenger[c] = src.challenger[old]
	}
	classes := src.numClasses
	for a := 0; a < src.numActions; a++ {
		for c, old := range perm {
			dst.defender[a*classes+c] = src.defender[a*classes+old]
		}
	}
}

// Breaks ties between classes by their defender column until the order is
// stable. Used when there are too many tied orders to try them all.
func (n *Normalizer) refine(p *Problem) {
	classes, actions := p.numClasses, p.numActions
	n.sortActions(p)
	for round := 0; round < classes+actions; round++ {
		n.classPerm = identity(n.classPerm, classes)
		slices.SortStableFunc(n.classPerm, func(x, y int) int {
			if c := n.compareClassSignatures(p, x, y); c != 0 {
				return c
			}
			for a := 0; a < actions; a++ {
				if c := interval.Compare(p.defender[a*classes+x], p.defender[a*classes+y]); c != 0 {
					return c
				}
			}
			return 0
		})
		if isIdentity(n.classPerm) {
			return
		}
		n.permuteClasses(p)
		n.sortActions(p)
	}
}

// The permuted columns of n.columns follow the class order of p.
func (n *Normalizer) compareClassSignatures(p *Problem, x, y int) int {
	if c := interval.Compare(p.challenger[x], p.challenger[y]); c != 0 {
		return c
	}
	actions := p.numActions
	return interval.CompareVectors(n.columns[x*actions:(x+1)*actions], n.columns[y*actions:(y+1)*actions])
}

// Applies n.classPerm: new class c is old class classPerm[c].
func (n *Normalizer) permuteClasses(p *Problem) {
	classes, actions := p.numClasses, p.numActions
	n.tmp = resize(n.tmp, classes)
	apply := func(row []interval.Interval) {
		for c, old := range n.classPerm {
			n.tmp[c] = row[old]
		}
		copy(row, n.tmp)
	}
	apply(p.ChallengerVector())
	for a := 0; a < actions; a++ {
		apply(p.DefenderVector(a))
	}
	// Keep the sorted columns aligned with the new class order.
	n.tmp = resize(n.tmp, classes*actions)
	for c, old := range n.classPerm {
		copy(n.tmp[c*actions:(c+1)*actions], n.columns[old*actions:(old+1)*actions])
	}
	copy(n.columns, n.tmp)
}

func (n *Normalizer) sortActions(p *Problem) {
	classes, actions := p.numClasses, p.numActions
	n.actionPerm = identity(n.actionPerm, actions)
	slices.SortStableFunc(n.actionPerm, func(x, y int) int {
		return interval.CompareVectors(p.DefenderVector(x), p.DefenderVector(y))
	})
	if isIdentity(n.actionPerm) {
		return
	}
	n.tmp = resize(n.tmp, classes*actions)
	for a, old := range n.actionPerm {
		copy(n.tmp[a*classes:(a+1)*classes], p.DefenderVector(old))
	}
	copy(p.defender, n.tmp)
}

// Removes actions identical to their predecessor. Requires sorted actions.
func (n *Normalizer) dedup(p *Problem) {
	classes := p.numClasses
	if p.numActions < 2 || classes == 0 {
		return
	}
	kept := 1
	for a := 1; a < p.numActions; a++ {
		if interval.EqualVectors(p.DefenderVector(a), p.DefenderVector(kept-1)) {
			continue
		}
		if a != kept {
			copy(p.defender[kept*classes:(kept+1)*classes], p.DefenderVector(a))
		}
		kept++
	}
	clear(p.defender[kept*classes : p.numActions*classes])
	p.numActions = kept
	p.defender = p.defender[:kept*classes]
}

func identity(s []int, size int) []int {
	s = resize(s, size)
	for i := range s {
		s[i] = i
	}
	return s
}

func isIdentity(s []int) bool {
	for i, v := range s {
		if i != v {
			return false
		}
	}
	return true
}
