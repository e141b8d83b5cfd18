package lp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type variable struct {
	lower, upper float64
}

type constraint struct {
	coeffs []float64
	vars   []int
	rel    Relation
	rhs    float64
}

var simplexTests = []struct {
	name        string
	vars        []variable
	constraints []constraint
	objective   []float64
	dir         Direction
	expected    Result
}{
	{
		name:        "segment",
		vars:        []variable{{0, 1}, {0, 1}},
		constraints: []constraint{{[]float64{1, 1}, []int{0, 1}, EQ, 1}},
		expected:    Sat,
	},
	{
		name:        "tooMuchMass",
		vars:        []variable{{0, 1}, {0, 1}},
		constraints: []constraint{{[]float64{1, 1}, []int{0, 1}, EQ, 3}},
		expected:    Unsat,
	},
	{
		name: "contradictingBounds",
		vars: []variable{{0, 1}},
		constraints: []constraint{
			{[]float64{1}, []int{0}, GE, 0.5},
			{[]float64{1}, []int{0}, LE, 0.25},
		},
		expected: Unsat,
	},
	{
		name:        "negativeLowerBound",
		vars:        []variable{{-1, 1}},
		constraints: []constraint{{[]float64{1}, []int{0}, EQ, -0.5}},
		expected:    Sat,
	},
	{
		name:        "negativeRHS",
		vars:        []variable{{0, math.Inf(1)}, {0, math.Inf(1)}},
		constraints: []constraint{{[]float64{-1, -1}, []int{0, 1}, LE, -2}},
		expected:    Sat,
	},
	{
		name:        "unboundedObjective",
		vars:        []variable{{0, math.Inf(1)}, {0, math.Inf(1)}},
		constraints: []constraint{{[]float64{1, -1}, []int{0, 1}, EQ, 0}},
		objective:   []float64{1, 0},
		dir:         Maximize,
		expected:    Sat,
	},
	{
		name:     "empty",
		expected: Sat,
	},
	{
		name:        "zeroRowUnsat",
		vars:        []variable{{0, 1}},
		constraints: []constraint{{[]float64{0}, []int{0}, EQ, 1}},
		expected:    Unsat,
	},
	{
		name:        "zeroRowSat",
		vars:        []variable{{0, 1}},
		constraints: []constraint{{[]float64{0}, []int{0}, LE, 1}},
		expected:    Sat,
	},
	{
		name: "unusedVariable",
		vars: []variable{{0, 1}, {0, 1}},
		constraints: []constraint{
			{[]float64{1}, []int{0}, EQ, 0.5},
		},
		expected: Sat,
	},
}

func TestSimplex(t *testing.T) {
	solver := NewSimplex()
	for _, test := range simplexTests {
		t.Run(test.name, func(t *testing.T) {
			s, err := solver.NewSession()
			require.NoError(t, err)
			defer s.Close()
			for i, v := range test.vars {
				idx, err := s.AddVariable("x", Continuous, v.lower, v.upper)
				require.NoError(t, err)
				require.Equal(t, i, idx)
			}
			for _, c := range test.constraints {
				require.NoError(t, s.AddConstraint(c.coeffs, c.vars, c.rel, c.rhs))
			}
			if test.objective != nil {
				vars := make([]int, len(test.objective))
				for i := range vars {
					vars[i] = i
				}
				require.NoError(t, s.SetObjective(test.objective, vars))
			}
			s.SetDirection(test.dir)
			res, err := s.Solve()
			require.NoError(t, err)
			assert.Equal(t, test.expected, res)
		})
	}
}

func TestSimplexRejectsIntegerVariables(t *testing.T) {
	s, err := NewSimplex().NewSession()
	require.NoError(t, err)
	defer s.Close()
	_, err = s.AddVariable("n", Integer, 0, 10)
	require.NoError(t, err)
	_, err = s.Solve()
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestSessionErrors(t *testing.T) {
	s, err := NewSimplex().NewSession()
	require.NoError(t, err)
	_, err = s.AddVariable("x", Continuous, 1, 0)
	assert.Error(t, err)
	assert.Error(t, s.AddConstraint([]float64{1}, []int{3}, EQ, 1))
	assert.Error(t, s.AddConstraint([]float64{1, 2}, []int{}, EQ, 1))

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	_, err = s.AddVariable("x", Continuous, 0, 1)
	assert.ErrorIs(t, err, ErrSessionClosed)
	_, err = s.Solve()
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "SAT", Sat.String())
	assert.Equal(t, "UNSAT", Unsat.String())
	assert.Equal(t, "<=", LE.String())
	assert.Equal(t, "integer", Integer.String())
}
