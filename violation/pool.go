package violation

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"

	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"

	"imdpsim/solver"
)

// Pair asks whether State violates simulation by CompareState.
type Pair struct {
	State        int
	CompareState int
}

// Pool decides many pairs concurrently.
//
// Every worker owns a Driver and a Solver, so scratch state and caches are
// never shared unless the solver factory shares them.
type Pool struct {
	graph     Graph
	partition Partition

	numWorkers    int
	ignoreErrors  bool
	recoverPanics bool
	driverOpts    []DriverOption
	newSolver     func() (*solver.Solver, error)

	mu          sync.Mutex
	stats       Stats
	solverStats solver.Stats
}

func NewPool(g Graph, p Partition, opts ...PoolOption) *Pool {
	pool := &Pool{
		graph:      g,
		partition:  p,
		numWorkers: runtime.GOMAXPROCS(0),
		newSolver: func() (*solver.Solver, error) {
			return solver.New(), nil
		},
	}
	for _, opt := range opts {
		switch t := opt.(type) {
		case numWorkersOption:
			pool.numWorkers = t.n
		case ignoreErrorsOption:
			pool.ignoreErrors = true
		case recoverPanicsOption:
			pool.recoverPanics = true
		case driverOptionsOption:
			pool.driverOpts = append(pool.driverOpts, t.opts...)
		case solverFactoryOption:
			pool.newSolver = t.newSolver
		}
	}
	if pool.numWorkers < 1 {
		pool.numWorkers = 1
	}
	return pool
}

// Check decides every pair and returns the decisions in the order of pairs.
//
// If a pair fails, Check stops and returns the error, unless the pool ignores
// errors. Then the remaining pairs are decided, the failed pairs are reported
// as false and the errors are returned together at the end.
// Check stops when ctx is done, a decision already in progress completes
// first.
func (p *Pool) Check(ctx context.Context, pairs []Pair) ([]bool, error) {
	results := make([]bool, len(pairs))
	jobs := make(chan int)

	var (
		errMu sync.Mutex
		errs  []error
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for i := range pairs {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < p.numWorkers; w++ {
		g.Go(func() error {
			s, err := p.newSolver()
			if err != nil {
				return fmt.Errorf("violation: create solver: %w", err)
			}
			driver := NewDriver(p.graph, p.partition, append(slices.Clip(p.driverOpts), WithSolver(s))...)
			defer p.merge(driver)

			for i := range jobs {
				violated, err := p.violate(driver, pairs[i])
				if err != nil {
					if !p.ignoreErrors {
						return err
					}
					errMu.Lock()
					errs = append(errs, err)
					errMu.Unlock()
					continue
				}
				results[i] = violated
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return results, poolError{errs: errs}
	}
	return results, nil
}

// The driver resets its scratch state on the way out of a panic, so it can
// be reused for the next pair.
func (p *Pool) violate(d *Driver, pair Pair) (violated bool, err error) {
	if p.recoverPanics {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: state %v against %v: %v\nStack Trace:\n%s", ErrPanic, pair.State, pair.CompareState, r, debug.Stack())
			}
		}()
	}
	return d.Violate(pair.State, pair.CompareState)
}

func (p *Pool) merge(d *Driver) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats.Add(d.Stats())
	p.solverStats.Add(d.Solver().Stats())
}

// Stats returns the driver statistics summed over all finished workers.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// SolverStats returns the solver statistics summed over all finished
// workers. It is safe to use as the source of a solver.Collector.
func (p *Pool) SolverStats() solver.Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.solverStats
}
