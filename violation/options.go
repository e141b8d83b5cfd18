package violation

import (
	"imdpsim/solver"
)

type DriverOption interface{}

type skipSelfComparisonOption struct{ enabled bool }

// A state never violates simulation by itself.
//
// Default value is true.
func SkipSelfComparison(enabled bool) DriverOption {
	return skipSelfComparisonOption{enabled: enabled}
}

type zeroActionShortcutOption struct{ enabled bool }

// Declare a distribution violated without building a problem when the
// compared state has no action that keeps its mass within the classes of the
// distribution.
//
// Default value is true.
func ZeroActionShortcut(enabled bool) DriverOption {
	return zeroActionShortcutOption{enabled: enabled}
}

type exactMatchOption struct{ enabled bool }

// Declare a distribution not violated as soon as some action of the compared
// state has exactly the same class intervals, before normalization.
//
// Default value is true.
func PreNormalizationExactMatch(enabled bool) DriverOption {
	return exactMatchOption{enabled: enabled}
}

type solverOption struct{ s *solver.Solver }

// The solver deciding the comparison problems. The driver takes ownership of
// the solver, it must not be shared with other drivers.
//
// Default value is solver.New().
func WithSolver(s *solver.Solver) DriverOption {
	return solverOption{s: s}
}

type PoolOption interface{}

type numWorkersOption struct{ n int }

// The number of drivers deciding pairs concurrently.
//
// Default value is runtime.GOMAXPROCS(0).
func NumWorkers(n int) PoolOption {
	return numWorkersOption{n: n}
}

type ignoreErrorsOption struct{}

// Keep deciding pairs when some pair fails and return all errors at the end.
// Otherwise Check stops at the first error.
func IgnoreErrors() PoolOption {
	return ignoreErrorsOption{}
}

type recoverPanicsOption struct{}

// Turn a panic while deciding a pair into an error wrapping ErrPanic. The
// error is handled like any other, see IgnoreErrors. Otherwise a panic
// crashes the program.
func RecoverPanics() PoolOption {
	return recoverPanicsOption{}
}

type driverOptionsOption struct{ opts []DriverOption }

// Options for the driver of every worker. WithSolver is ignored, use
// WithSolverFactory instead.
func WithDriverOptions(opts ...DriverOption) PoolOption {
	return driverOptionsOption{opts: opts}
}

type solverFactoryOption struct {
	newSolver func() (*solver.Solver, error)
}

// Creates the solver of each worker. Solvers and their caches must not be
// shared between workers unless the caches are safe for concurrent use.
//
// Default value creates solvers with solver.New().
func WithSolverFactory(newSolver func() (*solver.Solver, error)) PoolOption {
	return solverFactoryOption{newSolver: newSolver}
}
