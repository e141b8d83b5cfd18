package config

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"imdpsim/cache"
	"imdpsim/lp"
	"imdpsim/lp/remote"
	"imdpsim/solver"
	"imdpsim/violation"
)

// Engine holds the resources a configuration opens: the LP solver and the
// caches shared between solvers. Close it when done.
type Engine struct {
	cfg    *Config
	logger *slog.Logger

	lp     lp.Solver
	client *remote.Client
	pre    cache.Kind
	post   cache.Kind
	shared cache.Cache

	mu       sync.Mutex
	perSolve []cache.Cache
}

// Open validates the configuration and opens its resources. logger receives
// the logging of the caches.
func (c *Config) Open(logger *slog.Logger) (*Engine, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{cfg: c, logger: logger}

	var err error
	if e.pre, err = cache.ParseKind(c.Cache.Pre); err != nil {
		return nil, err
	}
	if e.post, err = cache.ParseKind(c.Cache.Post); err != nil {
		return nil, err
	}

	switch c.LP.Backend {
	case "simplex":
		e.lp = &lp.Simplex{Tolerance: c.LP.Tolerance}
	case "remote":
		e.client, err = remote.Dial(c.LP.Address, remote.Timeout(c.LP.Timeout))
		if err != nil {
			return nil, err
		}
		e.lp = e.client
	}

	// Both tiers store the decision of the problem they are keyed on, so one
	// database serves both.
	if e.pre == cache.Badger || e.post == cache.Badger {
		badgerCfg := cache.InMemoryBadgerConfig()
		if c.Cache.Path != "" {
			badgerCfg = cache.DefaultBadgerConfig(c.Cache.Path)
		}
		e.shared, err = cache.New(cache.Badger, cache.WithBadgerConfig(badgerCfg), cache.WithLogger(logger))
		if err != nil {
			e.Close()
			return nil, err
		}
	}
	return e, nil
}

func (e *Engine) newCache(kind cache.Kind) (cache.Cache, error) {
	if kind == cache.Badger {
		return e.shared, nil
	}
	c, err := cache.New(kind, cache.Capacity(e.cfg.Cache.Capacity), cache.WithLogger(e.logger))
	if err != nil {
		return nil, err
	}
	if c != nil {
		e.perSolve = append(e.perSolve, c)
	}
	return c, nil
}

// NewSolver creates a solver with its own in-process caches.
func (e *Engine) NewSolver() (*solver.Solver, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	opts := []solver.Option{
		solver.UnsimulableShortcut(e.cfg.Solver.UnsimulableShortcut),
		solver.ExactActionShortcut(e.cfg.Solver.ExactActionShortcut),
		solver.WithLPSolver(e.lp),
	}
	pre, err := e.newCache(e.pre)
	if err != nil {
		return nil, err
	}
	if pre != nil {
		opts = append(opts, solver.PreNormalizationCache(pre))
	}
	post, err := e.newCache(e.post)
	if err != nil {
		return nil, err
	}
	if post != nil {
		opts = append(opts, solver.PostNormalizationCache(post))
	}
	return solver.New(opts...), nil
}

func (e *Engine) DriverOptions() []violation.DriverOption {
	return []violation.DriverOption{
		violation.SkipSelfComparison(e.cfg.Driver.SkipSelfComparison),
		violation.ZeroActionShortcut(e.cfg.Driver.ZeroActionShortcut),
		violation.PreNormalizationExactMatch(e.cfg.Driver.PreNormalizationExactMatch),
	}
}

// PoolOptions configure a violation.Pool whose workers get their solvers from
// the engine. Panics while deciding a pair are returned as errors.
func (e *Engine) PoolOptions() []violation.PoolOption {
	opts := []violation.PoolOption{
		violation.WithDriverOptions(e.DriverOptions()...),
		violation.WithSolverFactory(e.NewSolver),
		violation.RecoverPanics(),
	}
	if e.cfg.Workers > 0 {
		opts = append(opts, violation.NumWorkers(e.cfg.Workers))
	}
	return opts
}

// Close releases the caches and the connection to a remote solver.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	var errs []error
	for _, c := range e.perSolve {
		errs = append(errs, cache.Close(c))
	}
	e.perSolve = nil
	if e.shared != nil {
		errs = append(errs, cache.Close(e.shared))
		e.shared = nil
	}
	if e.client != nil {
		errs = append(errs, e.client.Close())
		e.client = nil
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: close engine: %w", err)
	}
	return nil
}
