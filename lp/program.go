package lp

import "fmt"

type Variable struct {
	Name  string
	Type  VarType
	Lower float64
	Upper float64
}

type Constraint struct {
	Coeffs   []float64
	Vars     []int
	Relation Relation
	RHS      float64
}

// Program is a linear program in the form it was built by a Session.
type Program struct {
	Variables   []Variable
	Constraints []Constraint
	// Objective[i] is the coefficient of variable i. May be shorter than
	// Variables, missing coefficients are 0.
	Objective []float64
	Direction Direction
}

// Reset empties the program keeping its storage.
func (p *Program) Reset() {
	p.Variables = p.Variables[:0]
	p.Constraints = p.Constraints[:0]
	p.Objective = p.Objective[:0]
	p.Direction = Minimize
}

func (p *Program) checkTerms(coeffs []float64, vars []int) error {
	if len(coeffs) != len(vars) {
		return fmt.Errorf("lp: %v coefficients for %v variables", len(coeffs), len(vars))
	}
	for _, v := range vars {
		if v < 0 || v >= len(p.Variables) {
			return fmt.Errorf("lp: unknown variable %v", v)
		}
	}
	return nil
}

// SolveFunc decides a complete program. It turns into a Solver whose
// sessions record the program and pass it to the function on Solve.
type SolveFunc func(*Program) (Result, error)

func (f SolveFunc) NewSession() (Session, error) {
	return &session{solve: f}, nil
}

type session struct {
	program Program
	solve   SolveFunc
	closed  bool
}

func (s *session) AddVariable(name string, typ VarType, lower, upper float64) (int, error) {
	if s.closed {
		return 0, ErrSessionClosed
	}
	if lower > upper {
		return 0, fmt.Errorf("lp: variable %v has empty bounds [%v, %v]", name, lower, upper)
	}
	s.program.Variables = append(s.program.Variables, Variable{Name: name, Type: typ, Lower: lower, Upper: upper})
	return len(s.program.Variables) - 1, nil
}

func (s *session) AddConstraint(coeffs []float64, vars []int, rel Relation, rhs float64) error {
	if s.closed {
		return ErrSessionClosed
	}
	if err := s.program.checkTerms(coeffs, vars); err != nil {
		return err
	}
	s.program.Constraints = append(s.program.Constraints, Constraint{
		Coeffs:   append([]float64(nil), coeffs...),
		Vars:     append([]int(nil), vars...),
		Relation: rel,
		RHS:      rhs,
	})
	return nil
}

func (s *session) SetObjective(coeffs []float64, vars []int) error {
	if s.closed {
		return ErrSessionClosed
	}
	if err := s.program.checkTerms(coeffs, vars); err != nil {
		return err
	}
	obj := make([]float64, len(s.program.Variables))
	for k, v := range vars {
		obj[v] += coeffs[k]
	}
	s.program.Objective = obj
	return nil
}

func (s *session) SetDirection(dir Direction) {
	s.program.Direction = dir
}

func (s *session) Solve() (Result, error) {
	if s.closed {
		return Unsat, ErrSessionClosed
	}
	return s.solve(&s.program)
}

func (s *session) Close() error {
	s.closed = true
	s.program.Reset()
	return nil
}
