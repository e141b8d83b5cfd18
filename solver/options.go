package solver

import (
	"imdpsim/cache"
	"imdpsim/lp"
)

type Option interface{}

type unsimulableShortcutOption struct{ enabled bool }

// Declare a problem violated as soon as the challenger's lower bound for some
// class exceeds every upper bound the defender offers for it.
//
// Default value is true.
func UnsimulableShortcut(enabled bool) Option {
	return unsimulableShortcutOption{enabled: enabled}
}

type exactActionShortcutOption struct{ enabled bool }

// Declare a normalized problem not violated if some defender action is
// identical to the challenger.
//
// Default value is true.
func ExactActionShortcut(enabled bool) Option {
	return exactActionShortcutOption{enabled: enabled}
}

type preCacheOption struct{ c cache.Cache }

// Cache decisions keyed on the problems as they are passed to the solver.
//
// Default is no cache.
func PreNormalizationCache(c cache.Cache) Option {
	return preCacheOption{c: c}
}

type postCacheOption struct{ c cache.Cache }

// Cache decisions keyed on the normalized problems.
//
// Default is no cache.
func PostNormalizationCache(c cache.Cache) Option {
	return postCacheOption{c: c}
}

type lpSolverOption struct{ s lp.Solver }

// Use s to decide the linear programs.
//
// Default is lp.NewSimplex().
func WithLPSolver(s lp.Solver) Option {
	return lpSolverOption{s: s}
}
