package violation

import (
	"fmt"
)

// Stats counts the work of a driver.
type Stats struct {
	// Calls to Violate.
	Calls int64
	// Calls that returned true.
	Violated        int64
	SelfComparisons int64
	// Distributions of the state compared.
	Distributions int64
	// Actions of the compared state that were left out of a problem because
	// they put mass outside of the classes of the distribution.
	IneligibleActions   int64
	ZeroActionShortcuts int64
	ExactMatchShortcuts int64
	// Problems passed to the solver.
	Problems int64
}

// Add sums the counters of o into s.
func (s *Stats) Add(o Stats) {
	s.Calls += o.Calls
	s.Violated += o.Violated
	s.SelfComparisons += o.SelfComparisons
	s.Distributions += o.Distributions
	s.IneligibleActions += o.IneligibleActions
	s.ZeroActionShortcuts += o.ZeroActionShortcuts
	s.ExactMatchShortcuts += o.ExactMatchShortcuts
	s.Problems += o.Problems
}

func (s Stats) String() string {
	return fmt.Sprintf("calls: %v (violated: %v, self: %v), distributions: %v, ineligible actions: %v, shortcuts: zero action %v, exact match %v, problems: %v\n",
		s.Calls, s.Violated, s.SelfComparisons, s.Distributions, s.IneligibleActions,
		s.ZeroActionShortcuts, s.ExactMatchShortcuts, s.Problems)
}
