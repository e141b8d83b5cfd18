// Package config reads the YAML configuration of the engine and turns it into
// solver, driver and pool options.
//
//	workers: 4
//	solver:
//	  unsimulable_shortcut: true
//	  exact_action_shortcut: true
//	driver:
//	  skip_self_comparison: true
//	  zero_action_shortcut: true
//	  pre_normalization_exact_match: true
//	cache:
//	  pre: hash
//	  post: badger
//	  capacity: 65536
//	  path: /var/cache/imdpsim
//	lp:
//	  backend: remote
//	  address: localhost:7070
//	  timeout: 5s
//
// Fields left out keep the value of Default.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"imdpsim/lp"
)

var ErrInvalid = errors.New("config: invalid configuration")

type Config struct {
	// Concurrent drivers of a pool. 0 uses one per CPU.
	Workers int          `yaml:"workers" validate:"gte=0"`
	Solver  SolverConfig `yaml:"solver"`
	Driver  DriverConfig `yaml:"driver"`
	Cache   CacheConfig  `yaml:"cache"`
	LP      LPConfig     `yaml:"lp"`
}

type SolverConfig struct {
	UnsimulableShortcut bool `yaml:"unsimulable_shortcut"`
	ExactActionShortcut bool `yaml:"exact_action_shortcut"`
}

type DriverConfig struct {
	SkipSelfComparison         bool `yaml:"skip_self_comparison"`
	ZeroActionShortcut         bool `yaml:"zero_action_shortcut"`
	PreNormalizationExactMatch bool `yaml:"pre_normalization_exact_match"`
}

type CacheConfig struct {
	// Kind of the cache tiers, see cache.ParseKind.
	Pre  string `yaml:"pre" validate:"oneof=none hash sorted ristretto badger"`
	Post string `yaml:"post" validate:"oneof=none hash sorted ristretto badger"`
	// Entries of a ristretto cache.
	Capacity int64 `yaml:"capacity" validate:"gt=0"`
	// Directory of a badger cache. Empty keeps the database in memory.
	Path string `yaml:"path"`
}

type LPConfig struct {
	Backend string `yaml:"backend" validate:"oneof=simplex remote"`
	// Address of the remote server.
	Address string `yaml:"address" validate:"required_if=Backend remote"`
	// Bound on a single remote solve. 0 means no bound.
	Timeout   time.Duration `yaml:"timeout" validate:"gte=0"`
	Tolerance float64       `yaml:"tolerance" validate:"gt=0"`
}

// Default enables every shortcut and no cache, and solves locally.
func Default() *Config {
	return &Config{
		Solver: SolverConfig{
			UnsimulableShortcut: true,
			ExactActionShortcut: true,
		},
		Driver: DriverConfig{
			SkipSelfComparison:         true,
			ZeroActionShortcut:         true,
			PreNormalizationExactMatch: true,
		},
		Cache: CacheConfig{
			Pre:      "none",
			Post:     "none",
			Capacity: 1 << 16,
		},
		LP: LPConfig{
			Backend:   "simplex",
			Tolerance: lp.DefaultTolerance,
		},
	}
}

var validate = validator.New()

// Decode reads a configuration on top of Default and validates it.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load decodes the configuration file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}
