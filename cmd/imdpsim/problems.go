package main

import (
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"imdpsim/interval"
	"imdpsim/problem"
)

// A file of comparison problems.
//
//	problems:
//	  - name: slack
//	    challenger: [[0.4, 0.6], [0.4, 0.6]]
//	    defenders:
//	      - [[0.3, 0.5], [0.5, 0.7]]
//	      - [[0.5, 0.7], [0.3, 0.5]]
type problemFile struct {
	Problems []problemSpec `yaml:"problems" validate:"min=1,dive"`
}

type problemSpec struct {
	Name       string         `yaml:"name"`
	Challenger [][2]float64   `yaml:"challenger" validate:"min=1"`
	Defenders  [][][2]float64 `yaml:"defenders"`
}

var validate = validator.New()

func decodeProblems(r io.Reader) ([]*problem.Problem, []string, error) {
	f := &problemFile{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(f); err != nil {
		return nil, nil, fmt.Errorf("decode problems: %w", err)
	}
	if err := validate.Struct(f); err != nil {
		return nil, nil, fmt.Errorf("invalid problems: %w", err)
	}
	problems := make([]*problem.Problem, len(f.Problems))
	names := make([]string, len(f.Problems))
	for i, entry := range f.Problems {
		names[i] = entry.Name
		if names[i] == "" {
			names[i] = fmt.Sprint(i)
		}
		p, err := entry.problem()
		if err != nil {
			return nil, nil, fmt.Errorf("problem %v: %w", names[i], err)
		}
		problems[i] = p
	}
	return problems, names, nil
}

func loadProblems(path string) ([]*problem.Problem, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return decodeProblems(f)
}

// Rows must admit a distribution, otherwise the solver panics on them.
func toIntervals(bounds [][2]float64) ([]interval.Interval, error) {
	v := make([]interval.Interval, len(bounds))
	for c, b := range bounds {
		v[c] = interval.Interval{Lower: b[0], Upper: b[1]}
		if !v[c].Valid() {
			return nil, fmt.Errorf("class %v: %v is not an interval", c, v[c])
		}
	}
	if sum := interval.Sum(v); !sum.ContainsRounded(1) {
		return nil, fmt.Errorf("bounds sum to %v, which does not contain 1", sum)
	}
	return v, nil
}

func (s problemSpec) problem() (*problem.Problem, error) {
	challenger, err := toIntervals(s.Challenger)
	if err != nil {
		return nil, fmt.Errorf("challenger: %w", err)
	}
	defenders := make([][]interval.Interval, len(s.Defenders))
	for a, d := range s.Defenders {
		if len(d) != len(challenger) {
			return nil, fmt.Errorf("defender %v has %v classes, challenger has %v", a, len(d), len(challenger))
		}
		if defenders[a], err = toIntervals(d); err != nil {
			return nil, fmt.Errorf("defender %v: %w", a, err)
		}
	}
	return problem.FromVectors(challenger, defenders...), nil
}
