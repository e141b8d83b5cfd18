package imdp

import (
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"imdpsim/interval"
)

// File is the YAML description of a model, a partition of its states and the
// state pairs to compare.
//
//	states: 2
//	blocks: [0, 0]
//	distributions:
//	  - state: 0
//	    transitions:
//	      - {to: 1, lower: 0.4, upper: 0.6}
//	      - {to: 0, lower: 0.4, upper: 0.6}
//	pairs:
//	  - {state: 0, compare: 1}
//
// States are numbered from 0. They are the first nodes of the model, so state
// i of the file is node i of the model.
type File struct {
	States        int            `yaml:"states" validate:"gte=1"`
	Blocks        []int          `yaml:"blocks"`
	Distributions []Distribution `yaml:"distributions" validate:"dive"`
	Pairs         []Pair         `yaml:"pairs" validate:"dive"`
}

type Distribution struct {
	State       int          `yaml:"state" validate:"gte=0"`
	Transitions []Transition `yaml:"transitions" validate:"min=1,dive"`
}

type Transition struct {
	To    int     `yaml:"to" validate:"gte=0"`
	Lower float64 `yaml:"lower" validate:"gte=0,lte=1"`
	Upper float64 `yaml:"upper" validate:"gte=0,lte=1,gtefield=Lower"`
}

// Pair asks whether State violates simulation by Compare.
type Pair struct {
	State   int `yaml:"state" validate:"gte=0"`
	Compare int `yaml:"compare" validate:"gte=0"`
}

var validate = validator.New()

// Decode reads and validates a model file.
func Decode(r io.Reader) (*File, error) {
	f := &File{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(f); err != nil {
		return nil, fmt.Errorf("imdp: decode model file: %w", err)
	}
	if err := validate.Struct(f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}
	if len(f.Blocks) != 0 && len(f.Blocks) != f.States {
		return nil, fmt.Errorf("%w: %v blocks for %v states", ErrInvalidModel, len(f.Blocks), f.States)
	}
	check := func(what string, s int) error {
		if s >= f.States {
			return fmt.Errorf("%w: %v %v out of range", ErrInvalidModel, what, s)
		}
		return nil
	}
	for _, d := range f.Distributions {
		if err := check("state", d.State); err != nil {
			return nil, err
		}
		for _, t := range d.Transitions {
			if err := check("transition target", t.To); err != nil {
				return nil, err
			}
		}
	}
	for _, p := range f.Pairs {
		if err := check("pair state", p.State); err != nil {
			return nil, err
		}
		if err := check("pair state", p.Compare); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Load decodes the model file at path.
func Load(path string) (*File, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("imdp: %w", err)
	}
	defer r.Close()
	return Decode(r)
}

// Model builds the model described by the file.
func (f *File) Model() (*Model, error) {
	b := NewBuilder()
	for s := 0; s < f.States; s++ {
		b.AddState()
	}
	for _, d := range f.Distributions {
		node := b.AddDistribution(d.State)
		for _, t := range d.Transitions {
			b.AddTransition(node, t.To, interval.New(t.Lower, t.Upper))
		}
	}
	return b.Build()
}

// Partition returns the blocks of the file, or the trivial partition if it
// lists none.
func (f *File) Partition() *Partition {
	blocks := make(map[int]int, f.States)
	for s := 0; s < f.States; s++ {
		if len(f.Blocks) == 0 {
			blocks[s] = 0
		} else {
			blocks[s] = f.Blocks[s]
		}
	}
	return &Partition{blocks: blocks}
}
