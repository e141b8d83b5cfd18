package config

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imdpsim/imdp"
	"imdpsim/interval"
	"imdpsim/problem"
	"imdpsim/violation"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestDecodeKeepsDefaults(t *testing.T) {
	cfg, err := Decode(strings.NewReader(`
workers: 3
solver:
  exact_action_shortcut: false
cache:
  post: sorted
lp:
  backend: remote
  address: localhost:7070
  timeout: 250ms
`))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers)
	assert.True(t, cfg.Solver.UnsimulableShortcut)
	assert.False(t, cfg.Solver.ExactActionShortcut)
	assert.True(t, cfg.Driver.SkipSelfComparison)
	assert.Equal(t, "none", cfg.Cache.Pre)
	assert.Equal(t, "sorted", cfg.Cache.Post)
	assert.Equal(t, "remote", cfg.LP.Backend)
	assert.Equal(t, 250*time.Millisecond, cfg.LP.Timeout)
}

func TestDecodeEmpty(t *testing.T) {
	cfg, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

var invalidTests = []struct {
	name   string
	config string
}{
	{"unknownCacheKind", "cache:\n  pre: lru\n"},
	{"remoteWithoutAddress", "lp:\n  backend: remote\n"},
	{"unknownBackend", "lp:\n  backend: glpk\n"},
	{"negativeWorkers", "workers: -1\n"},
	{"zeroCapacity", "cache:\n  capacity: 0\n"},
	{"unknownField", "solver:\n  magic: true\n"},
	{"notYAML", "solver: [\n"},
}

func TestDecodeInvalid(t *testing.T) {
	for _, test := range invalidTests {
		_, err := Decode(strings.NewReader(test.config))
		assert.ErrorIs(t, err, ErrInvalid, test.name)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "imdpsim.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 2\n"), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEngineSolvers(t *testing.T) {
	for _, kinds := range [][2]string{
		{"none", "none"},
		{"hash", "sorted"},
		{"ristretto", "hash"},
		{"badger", "badger"},
	} {
		cfg := Default()
		cfg.Cache.Pre, cfg.Cache.Post = kinds[0], kinds[1]
		e, err := cfg.Open(discard)
		require.NoError(t, err, kinds)

		iv := interval.New
		p := problem.FromVectors(
			[]interval.Interval{iv(0.25, 0.75), iv(0.25, 0.75)},
			[]interval.Interval{iv(0.25, 0.5), iv(0.5, 0.75)},
		)
		for i := 0; i < 2; i++ {
			s, err := e.NewSolver()
			require.NoError(t, err)
			for round := 0; round < 2; round++ {
				violated, err := s.Violated(p)
				require.NoError(t, err)
				assert.True(t, violated, kinds)
			}
		}
		assert.NoError(t, e.Close(), kinds)
	}
}

func TestEngineBadgerPath(t *testing.T) {
	cfg := Default()
	cfg.Cache.Post = "badger"
	cfg.Cache.Path = filepath.Join(t.TempDir(), "cache")
	e, err := cfg.Open(discard)
	require.NoError(t, err)
	s, err := e.NewSolver()
	require.NoError(t, err)
	iv := interval.New
	_, err = s.Violated(problem.FromVectors(
		[]interval.Interval{iv(0.25, 0.75), iv(0.25, 0.75)},
		[]interval.Interval{iv(0.25, 0.5), iv(0.5, 0.75)},
	))
	require.NoError(t, err)
	require.NoError(t, e.Close())
	assert.DirExists(t, cfg.Cache.Path)
}

func TestEngineRemoteIsLazy(t *testing.T) {
	cfg := Default()
	cfg.LP.Backend = "remote"
	cfg.LP.Address = "localhost:1"
	e, err := cfg.Open(discard)
	require.NoError(t, err)
	_, err = e.NewSolver()
	require.NoError(t, err)
	assert.NoError(t, e.Close())
}

func TestEnginePool(t *testing.T) {
	b := imdp.NewBuilder()
	t0, t1 := b.AddState(), b.AddState()
	sA, sB := b.AddState(), b.AddState()
	d := b.AddDistribution(sA)
	b.AddTransition(d, t0, interval.New(0.4, 0.6))
	b.AddTransition(d, t1, interval.New(0.4, 0.6))
	d = b.AddDistribution(sB)
	b.AddTransition(d, t0, interval.New(0.25, 0.25))
	b.AddTransition(d, t1, interval.New(0.75, 0.75))
	m, err := b.Build()
	require.NoError(t, err)
	partition := imdp.NewPartition(map[int]int{t0: 0, t1: 1, sA: 2, sB: 2})

	cfg := Default()
	cfg.Workers = 2
	cfg.Cache.Pre = "hash"
	e, err := cfg.Open(discard)
	require.NoError(t, err)
	defer e.Close()

	pool := violation.NewPool(m, partition, e.PoolOptions()...)
	results, err := pool.Check(context.Background(), []violation.Pair{
		{State: sA, CompareState: sB},
		{State: sB, CompareState: sA},
		{State: sA, CompareState: sA},
	})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, false}, results)
}

type panickingPartition struct{ violation.Partition }

func (panickingPartition) BlockOf(int) int { panic("no blocks") }

func TestEnginePoolRecoversPanics(t *testing.T) {
	b := imdp.NewBuilder()
	s0, s1 := b.AddState(), b.AddState()
	b.AddTransition(b.AddDistribution(s0), s1, interval.Point(1))
	b.AddTransition(b.AddDistribution(s1), s0, interval.Point(1))
	m, err := b.Build()
	require.NoError(t, err)

	e, err := Default().Open(discard)
	require.NoError(t, err)
	defer e.Close()

	pool := violation.NewPool(m, panickingPartition{}, e.PoolOptions()...)
	_, err = pool.Check(context.Background(), []violation.Pair{{State: s0, CompareState: s1}})
	assert.ErrorIs(t, err, violation.ErrPanic)
}
