package solver

import (
	"fmt"
	"time"

	"imdpsim/lp"
	"imdpsim/problem"
)

// Decides whether the distribution point over the classes of p lies in the
// convex hull of the distributions the defender actions of p allow.
//
// There is one variable F[a][c] in [0, 1] per action a and class c: the mass
// routed to class c by action a. With lambda_a = sum_c F[a][c] the weight of
// action a, the program is
//
//	sum_a F[a][c] = point[c]                              for every c
//	(1 - lower) F[a][c] - lower sum_{d != c} F[a][d] >= 0  for every a, c
//	(1 - upper) F[a][c] - upper sum_{d != c} F[a][d] <= 0  for every a, c
//
// where [lower, upper] is the interval of action a for class c. The last two
// rows say lower*lambda_a <= F[a][c] <= upper*lambda_a, i.e. F[a][.] is
// lambda_a times a distribution within the bounds of action a.
func (s *Solver) feasible(p *problem.Problem, point []float64) (bool, error) {
	classes, actions := p.NumClasses(), p.NumActions()

	session, err := s.lp.NewSession()
	if err != nil {
		return false, fmt.Errorf("solver: open lp session: %w", err)
	}
	defer session.Close()

	s.vars = resize(s.vars, actions*classes)
	for a := 0; a < actions; a++ {
		for c := 0; c < classes; c++ {
			v, err := session.AddVariable(fmt.Sprintf("F_%d_%d", a, c), lp.Continuous, 0, 1)
			if err != nil {
				return false, fmt.Errorf("solver: add variable: %w", err)
			}
			s.vars[a*classes+c] = v
		}
	}

	s.coeffs = resize(s.coeffs, actions)
	s.terms = resize(s.terms, actions)
	for c := 0; c < classes; c++ {
		for a := 0; a < actions; a++ {
			s.coeffs[a] = 1
			s.terms[a] = s.vars[a*classes+c]
		}
		if err := session.AddConstraint(s.coeffs, s.terms, lp.EQ, point[c]); err != nil {
			return false, fmt.Errorf("solver: add mass constraint: %w", err)
		}
	}

	s.coeffs = resize(s.coeffs, classes)
	for a := 0; a < actions; a++ {
		row := s.vars[a*classes : (a+1)*classes]
		for c := 0; c < classes; c++ {
			bounds := p.Defender(a, c)
			if err := session.AddConstraint(s.relative(c, bounds.Lower), row, lp.GE, 0); err != nil {
				return false, fmt.Errorf("solver: add lower bound constraint: %w", err)
			}
			if err := session.AddConstraint(s.relative(c, bounds.Upper), row, lp.LE, 0); err != nil {
				return false, fmt.Errorf("solver: add upper bound constraint: %w", err)
			}
		}
	}
	session.SetDirection(lp.Minimize)

	start := time.Now()
	res, err := session.Solve()
	s.stats.SolverTime += time.Since(start)
	if err != nil {
		return false, fmt.Errorf("solver: solve lp: %w", err)
	}
	return res == lp.Sat, nil
}

// Coefficients (1 - bound) for class c and -bound for the other classes.
func (s *Solver) relative(c int, bound float64) []float64 {
	for d := range s.coeffs {
		s.coeffs[d] = -bound
	}
	s.coeffs[c] = 1 - bound
	return s.coeffs
}

func resize[T any](s []T, size int) []T {
	if cap(s) < size {
		return make([]T, size)
	}
	return s[:size]
}
