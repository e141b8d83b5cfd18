// Package lp defines the linear programming sessions used to decide
// feasibility of the simulation programs, together with a simplex based
// implementation.
//
// A Session is acquired from a Solver for a single program and must be
// closed when the caller is done with it, whatever the outcome:
//
//	s, err := solver.NewSession()
//	if err != nil {
//		return err
//	}
//	defer s.Close()
package lp

import (
	"errors"
	"fmt"
)

type VarType int

const (
	Continuous VarType = iota
	Integer
)

func (t VarType) String() string {
	switch t {
	case Continuous:
		return "continuous"
	case Integer:
		return "integer"
	}
	return fmt.Sprintf("VarType(%d)", int(t))
}

type Relation int

const (
	EQ Relation = iota
	LE
	GE
)

func (r Relation) String() string {
	switch r {
	case EQ:
		return "="
	case LE:
		return "<="
	case GE:
		return ">="
	}
	return fmt.Sprintf("Relation(%d)", int(r))
}

type Direction int

const (
	Minimize Direction = iota
	Maximize
)

// Result of solving a program. Only feasibility is reported.
type Result int

const (
	Unsat Result = iota
	Sat
)

func (r Result) String() string {
	if r == Sat {
		return "SAT"
	}
	return "UNSAT"
}

var (
	// Returned when a program uses a feature the solver does not implement.
	ErrUnsupported = errors.New("lp: unsupported program")
	// Returned when a session is used after Close.
	ErrSessionClosed = errors.New("lp: session is closed")
	// Wrapped by failures of the underlying solver. Distinct from Unsat.
	ErrSolver = errors.New("lp: solver failure")
)

// Solver hands out sessions. Implementations must be safe to use from
// several goroutines, a session itself need not be.
type Solver interface {
	NewSession() (Session, error)
}

// Session builds and solves one linear program.
type Session interface {
	// AddVariable adds a variable with the bounds lower <= x <= upper and
	// returns its index. Bounds may be infinite.
	AddVariable(name string, typ VarType, lower, upper float64) (int, error)
	// AddConstraint adds sum(coeffs[k] * x[vars[k]]) rel rhs.
	// The caller may reuse coeffs and vars once the call returns.
	AddConstraint(coeffs []float64, vars []int, rel Relation, rhs float64) error
	// SetObjective sets the objective coefficients. The default objective is 0.
	SetObjective(coeffs []float64, vars []int) error
	SetDirection(dir Direction)
	Solve() (Result, error)
	// Close releases the session. Calling Close more than once is a no-op.
	Close() error
}
