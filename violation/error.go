package violation

import "fmt"

// Aggregates the errors of the pairs that failed during a Check
type poolError struct {
	errs []error
}

func (pe poolError) Error() string {
	return fmt.Sprintf("violation: %v errors occurred checking pairs.\nerror 1: %v", len(pe.errs), pe.errs[0])
}

func (pe poolError) Unwrap() []error {
	return pe.errs
}
