package solver

import (
	"fmt"
	"strings"
	"time"
)

// Stats counts how the solver reached its decisions.
type Stats struct {
	// Problems passed to Violated.
	Problems int64
	// Problems that were violated.
	Violated int64

	ZeroActions          int64
	UnsimulableShortcuts int64
	PreCacheHits         int64
	ExactActionShortcuts int64
	PostCacheHits        int64

	// Problems decided by enumerating extreme points.
	LPDecisions int64
	// Extreme points for which a linear program was solved.
	ExtremePoints int64
	// Time spent in the linear programming solver.
	SolverTime time.Duration
}

// Add sums the counters of o into s.
func (s *Stats) Add(o Stats) {
	s.Problems += o.Problems
	s.Violated += o.Violated
	s.ZeroActions += o.ZeroActions
	s.UnsimulableShortcuts += o.UnsimulableShortcuts
	s.PreCacheHits += o.PreCacheHits
	s.ExactActionShortcuts += o.ExactActionShortcuts
	s.PostCacheHits += o.PostCacheHits
	s.LPDecisions += o.LPDecisions
	s.ExtremePoints += o.ExtremePoints
	s.SolverTime += o.SolverTime
}

func (s Stats) String() string {
	out := strings.Builder{}
	fmt.Fprintf(&out, "problems: %v (violated: %v)\n", s.Problems, s.Violated)
	fmt.Fprintf(&out, "shortcuts: zero actions %v, unsimulable class %v, exact action %v\n",
		s.ZeroActions, s.UnsimulableShortcuts, s.ExactActionShortcuts)
	fmt.Fprintf(&out, "cache hits: pre-normalization %v, post-normalization %v\n", s.PreCacheHits, s.PostCacheHits)
	fmt.Fprintf(&out, "lp: %v problems, %v extreme points, %v\n", s.LPDecisions, s.ExtremePoints, s.SolverTime)
	return out.String()
}
