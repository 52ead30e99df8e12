package solve

import "fmt"

// AdapterError reports that the solving capability was unreachable, rejected
// the formulation, or answered outside its contract
type AdapterError struct {
	Solver string
	Op     string
	Err    error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("solver %s failed to %s: %v", e.Solver, e.Op, e.Err)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}
