package violation

import (
	"fmt"

	"imdpsim/interval"
	"imdpsim/problem"
	"imdpsim/solver"
)

// Driver decides whether a state violates simulation by another state.
//
// A Driver reuses its scratch state across calls and must not be used from
// several goroutines at the same time. Use a Pool, or one Driver per
// goroutine, to decide pairs concurrently.
type Driver struct {
	graph     Graph
	partition Partition
	solver    *solver.Solver

	skipSelfComparison bool
	zeroActionShortcut bool
	exactMatch         bool

	// Local class of each block reached by the current distribution
	classes  map[int]int
	eligible []int
	problem  *problem.Problem

	stats Stats
}

func NewDriver(g Graph, p Partition, opts ...DriverOption) *Driver {
	d := &Driver{
		graph:     g,
		partition: p,

		skipSelfComparison: true,
		zeroActionShortcut: true,
		exactMatch:         true,

		classes: map[int]int{},
		problem: problem.New(),
	}
	for _, opt := range opts {
		switch t := opt.(type) {
		case skipSelfComparisonOption:
			d.skipSelfComparison = t.enabled
		case zeroActionShortcutOption:
			d.zeroActionShortcut = t.enabled
		case exactMatchOption:
			d.exactMatch = t.enabled
		case solverOption:
			d.solver = t.s
		}
	}
	if d.solver == nil {
		d.solver = solver.New()
	}
	return d
}

// Violate returns true if some distribution of state cannot be simulated by
// any combination of the distributions of compareState, with the classes
// given by the partition.
//
// An error is returned if either state is not a node of the graph or if the
// solver fails. A solver failure is never taken as a decision.
func (d *Driver) Violate(state, compareState int) (bool, error) {
	if err := d.checkState(state); err != nil {
		return false, err
	}
	if err := d.checkState(compareState); err != nil {
		return false, err
	}
	d.stats.Calls++
	if d.skipSelfComparison && state == compareState {
		d.stats.SelfComparisons++
		return false, nil
	}
	for i := 0; i < d.graph.NumSuccessors(state); i++ {
		violated, err := d.violateDistribution(d.graph.Successor(state, i), compareState)
		if err != nil {
			return false, fmt.Errorf("violation: state %v against %v: %w", state, compareState, err)
		}
		if violated {
			d.stats.Violated++
			return true, nil
		}
	}
	return false, nil
}

func (d *Driver) checkState(state int) error {
	if state < 0 || state >= d.graph.NumNodes() {
		return fmt.Errorf("%w: %v", ErrNoSuchState, state)
	}
	return nil
}

func (d *Driver) violateDistribution(dist, compareState int) (bool, error) {
	d.stats.Distributions++
	defer d.reset()

	for i := 0; i < d.graph.NumSuccessors(dist); i++ {
		block := d.partition.BlockOf(d.graph.Successor(dist, i))
		if _, ok := d.classes[block]; !ok {
			d.classes[block] = len(d.classes)
		}
	}

	for j := 0; j < d.graph.NumSuccessors(compareState); j++ {
		action := d.graph.Successor(compareState, j)
		if d.isEligible(action) {
			d.eligible = append(d.eligible, action)
		} else {
			d.stats.IneligibleActions++
		}
	}
	if len(d.eligible) == 0 && d.zeroActionShortcut {
		d.stats.ZeroActionShortcuts++
		return true, nil
	}

	d.problem.SetDimensions(len(d.classes), len(d.eligible))
	for i := 0; i < d.graph.NumSuccessors(dist); i++ {
		c := d.classes[d.partition.BlockOf(d.graph.Successor(dist, i))]
		d.problem.AddChallenger(c, d.graph.Weight(dist, i))
	}
	for a, action := range d.eligible {
		for i := 0; i < d.graph.NumSuccessors(action); i++ {
			c, ok := d.classes[d.partition.BlockOf(d.graph.Successor(action, i))]
			if !ok {
				// Eligible, so the lower bound is 0
				continue
			}
			d.problem.AddDefender(a, c, d.graph.Weight(action, i))
		}
		if d.exactMatch && interval.EqualVectors(d.problem.DefenderVector(a), d.problem.ChallengerVector()) {
			d.stats.ExactMatchShortcuts++
			return false, nil
		}
	}

	d.stats.Problems++
	return d.solver.Violated(d.problem)
}

// An action is eligible if it can put all its mass into the classes of the
// current distribution: it has no successor outside of them with a positive
// lower bound, and the upper bounds of its successors within them reach 1 up
// to interval.Rounding.
func (d *Driver) isEligible(action int) bool {
	upper := 0.0
	for i := 0; i < d.graph.NumSuccessors(action); i++ {
		w := d.graph.Weight(action, i)
		if _, ok := d.classes[d.partition.BlockOf(d.graph.Successor(action, i))]; ok {
			upper += w.Upper
		} else if w.Lower > 0 {
			return false
		}
	}
	return upper >= 1-interval.Rounding
}

func (d *Driver) reset() {
	clear(d.classes)
	d.eligible = d.eligible[:0]
	d.problem.Reset()
}

// Stats returns a snapshot of the driver's statistics.
func (d *Driver) Stats() Stats {
	return d.stats
}

// Solver returns the solver of the driver.
func (d *Driver) Solver() *solver.Solver {
	return d.solver
}
