// Package solver decides comparison problems: whether some extreme point of
// the challenger's uncertain distribution cannot be matched by any
// combination of the defender's actions.
package solver

import (
	"fmt"

	"imdpsim/cache"
	"imdpsim/extreme"
	"imdpsim/interval"
	"imdpsim/lp"
	"imdpsim/problem"
)

// Solver decides comparison problems.
//
// A Solver owns scratch buffers, its statistics and its caches. It must not
// be used from several goroutines at the same time; create one per worker.
type Solver struct {
	unsimulableShortcut bool
	exactActionShortcut bool
	preCache            cache.Cache
	postCache           cache.Cache
	lp                  lp.Solver

	normalizer *problem.Normalizer
	enumerator *extreme.Enumerator
	normalized *problem.Problem

	vars   []int
	terms  []int
	coeffs []float64

	stats Stats
}

func New(opts ...Option) *Solver {
	var (
		unsimulableShortcut = true
		exactActionShortcut = true

		preCache  cache.Cache
		postCache cache.Cache

		lpSolver lp.Solver = lp.NewSimplex()
	)
	for _, opt := range opts {
		switch t := opt.(type) {
		case unsimulableShortcutOption:
			unsimulableShortcut = t.enabled
		case exactActionShortcutOption:
			exactActionShortcut = t.enabled
		case preCacheOption:
			preCache = t.c
		case postCacheOption:
			postCache = t.c
		case lpSolverOption:
			lpSolver = t.s
		}
	}
	return &Solver{
		unsimulableShortcut: unsimulableShortcut,
		exactActionShortcut: exactActionShortcut,
		preCache:            preCache,
		postCache:           postCache,
		lp:                  lpSolver,

		normalizer: problem.NewNormalizer(),
		enumerator: extreme.NewEnumerator(),
		normalized: problem.New(),
	}
}

// Violated returns true if some extreme point of the challenger of p is not
// reachable by any convex combination of distributions of the defender
// actions, i.e. the challenger cannot be simulated by the defender.
//
// p is not modified. An error is only returned if the linear programming
// solver fails, in which case no decision was made.
//
// Panics if p is malformed, e.g. if some row of p admits no distribution.
func (s *Solver) Violated(p *problem.Problem) (bool, error) {
	s.stats.Problems++
	violated, err := s.violated(p)
	if err == nil && violated {
		s.stats.Violated++
	}
	return violated, err
}

func (s *Solver) violated(p *problem.Problem) (bool, error) {
	if p.NumActions() == 0 {
		s.stats.ZeroActions++
		return true, nil
	}
	if s.unsimulableShortcut && unsimulable(p) {
		s.stats.UnsimulableShortcuts++
		return true, nil
	}
	if s.preCache != nil {
		if violated, ok := s.preCache.Get(p); ok {
			s.stats.PreCacheHits++
			return violated, nil
		}
	}

	s.normalized.CopyFrom(p)
	s.normalizer.Normalize(s.normalized)

	if s.exactActionShortcut && s.normalized.MatchingAction() >= 0 {
		s.stats.ExactActionShortcuts++
		return false, nil
	}
	if s.postCache != nil {
		if violated, ok := s.postCache.Get(s.normalized); ok {
			s.stats.PostCacheHits++
			if s.preCache != nil {
				s.preCache.Put(p, violated)
			}
			return violated, nil
		}
	}

	violated, err := s.decide(s.normalized)
	if err != nil {
		return false, err
	}
	// The caches clone what they keep, p and s.normalized are reused.
	if s.preCache != nil {
		s.preCache.Put(p, violated)
	}
	if s.postCache != nil {
		s.postCache.Put(s.normalized, violated)
	}
	return violated, nil
}

// True if the challenger needs more mass in some class than any action can
// give it, by more than rounding.
func unsimulable(p *problem.Problem) bool {
	for c := 0; c < p.NumClasses(); c++ {
		if p.Challenger(c).Lower > p.MaxDefenderUpper(c)+interval.Rounding {
			return true
		}
	}
	return false
}

// Checks every extreme point of the challenger of p with a linear program and
// stops at the first one the defender cannot reach.
func (s *Solver) decide(p *problem.Problem) (bool, error) {
	s.stats.LPDecisions++
	var err error
	points := 0
	violated := s.enumerator.Enumerate(p.ChallengerVector(), p.NumClasses(), func(point []float64) bool {
		s.stats.ExtremePoints++
		points++
		ok, e := s.feasible(p, point)
		if e != nil {
			err = e
			return true
		}
		return !ok
	})
	if err != nil {
		return false, err
	}
	// Tightening leaves every row with at least one distribution.
	if points == 0 {
		panic(fmt.Sprintf("solver: challenger %v has no extreme points", p.ChallengerVector()))
	}
	return violated, nil
}

// Stats returns a snapshot of the solver's statistics.
func (s *Solver) Stats() Stats {
	return s.stats
}
