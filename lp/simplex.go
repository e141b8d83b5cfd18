package lp

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// DefaultTolerance is the reduced cost tolerance handed to the simplex
// method.
const DefaultTolerance = 1e-10

// Simplex is a Solver backed by gonum's simplex implementation.
//
// Programs are rewritten into standard form (A*y = b, y >= 0): every
// variable is shifted by its lower bound, finite upper bounds and
// inequalities get slack columns, and rows with a negative right hand side
// are negated.
type Simplex struct {
	Tolerance float64
}

func NewSimplex() *Simplex {
	return &Simplex{Tolerance: DefaultTolerance}
}

func (s *Simplex) NewSession() (Session, error) {
	return SolveFunc(s.Solve).NewSession()
}

// Solve decides feasibility of p. Programs with an unbounded objective are
// reported as Sat.
func (s *Simplex) Solve(p *Program) (Result, error) {
	sf, trivial, err := standardForm(p)
	if err != nil {
		return Unsat, err
	}
	if trivial != nil {
		return *trivial, nil
	}
	rows, cols := len(sf.b), len(sf.c)
	if cols < rows {
		return Unsat, fmt.Errorf("%w: %v rows but only %v columns", ErrSolver, rows, cols)
	}
	_, _, err = lp.Simplex(sf.c, mat.NewDense(rows, cols, sf.a), sf.b, s.Tolerance, nil)
	switch {
	case err == nil, errors.Is(err, lp.ErrUnbounded):
		return Sat, nil
	case errors.Is(err, lp.ErrInfeasible):
		return Unsat, nil
	}
	return Unsat, fmt.Errorf("%w: %v", ErrSolver, err)
}

type standard struct {
	c []float64
	// Row major rows x len(c)
	a []float64
	b []float64
}

func resultPtr(r Result) *Result { return &r }

// Returns either the standard form of p, or the result if it is decided
// without running the simplex method.
func standardForm(p *Program) (*standard, *Result, error) {
	n := len(p.Variables)
	for i, v := range p.Variables {
		if v.Type != Continuous {
			return nil, nil, fmt.Errorf("%w: variable %v is %v", ErrUnsupported, v.Name, v.Type)
		}
		if math.IsInf(v.Lower, 0) || math.IsNaN(v.Lower) {
			return nil, nil, fmt.Errorf("%w: variable %v (index %v) has no finite lower bound", ErrUnsupported, v.Name, i)
		}
		if v.Lower > v.Upper {
			return nil, nil, fmt.Errorf("lp: variable %v has empty bounds [%v, %v]", v.Name, v.Lower, v.Upper)
		}
	}

	type row struct {
		coeffs []float64 // over the variables
		slack  float64   // coefficient of the row's own slack, 0 if none
		rhs    float64
	}
	rows := make([]row, 0, len(p.Constraints))
	used := make([]bool, n)
	for _, con := range p.Constraints {
		r := row{coeffs: make([]float64, n), rhs: con.RHS}
		for k, v := range con.Vars {
			r.coeffs[v] += con.Coeffs[k]
		}
		empty := true
		for v, a := range r.coeffs {
			if a != 0 {
				// Shift x = lower + y
				r.rhs -= a * p.Variables[v].Lower
				used[v] = true
				empty = false
			}
		}
		switch con.Relation {
		case LE:
			r.slack = 1
		case GE:
			r.slack = -1
		}
		if empty {
			// 0 rel rhs
			if (con.Relation == EQ && r.rhs != 0) || (con.Relation == LE && r.rhs < 0) || (con.Relation == GE && r.rhs > 0) {
				return nil, resultPtr(Unsat), nil
			}
			continue
		}
		rows = append(rows, r)
	}
	for v, variable := range p.Variables {
		if !used[v] || math.IsInf(variable.Upper, 1) {
			continue
		}
		r := row{coeffs: make([]float64, n), slack: 1, rhs: variable.Upper - variable.Lower}
		r.coeffs[v] = 1
		rows = append(rows, r)
	}
	if len(rows) == 0 {
		return nil, resultPtr(Sat), nil
	}

	// Unused variables sit at their lower bound and are left out.
	column := make([]int, n)
	cols := 0
	for v := range column {
		column[v] = -1
		if used[v] {
			column[v] = cols
			cols++
		}
	}
	slacks := 0
	for _, r := range rows {
		if r.slack != 0 {
			slacks++
		}
	}
	total := cols + slacks

	sf := &standard{
		c: make([]float64, total),
		a: make([]float64, len(rows)*total),
		b: make([]float64, len(rows)),
	}
	sign := 1.0
	if p.Direction == Maximize {
		sign = -1
	}
	for v, c := range p.Objective {
		if v < n && column[v] >= 0 {
			sf.c[column[v]] = sign * c
		}
	}
	slack := cols
	for i, r := range rows {
		flip := 1.0
		if r.rhs < 0 {
			flip = -1
		}
		line := sf.a[i*total : (i+1)*total]
		for v, a := range r.coeffs {
			if column[v] >= 0 {
				line[column[v]] = flip * a
			}
		}
		if r.slack != 0 {
			line[slack] = flip * r.slack
			slack++
		}
		sf.b[i] = flip * r.rhs
	}
	return sf, nil, nil
}
