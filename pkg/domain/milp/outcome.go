package milp

import "time"

// Status is the solver-determined result class of a solve
type Status int

const (
	StatusOptimal Status = iota
	StatusInfeasible
	StatusUnbounded
	StatusTimeout
	StatusError
)

// String method for Status enum
func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "OPTIMAL"
	case StatusInfeasible:
		return "INFEASIBLE"
	case StatusUnbounded:
		return "UNBOUNDED"
	case StatusTimeout:
		return "TIMEOUT"
	case StatusError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// SolveOutcome is the raw answer of a solving capability
type SolveOutcome struct {
	Status Status
	// Values is indexed like Formulation.Variables. Set when Status is
	// StatusOptimal, or StatusTimeout with HasIncumbent.
	Values       []float64
	Objective    float64
	HasIncumbent bool
	Solver       string
	Elapsed      time.Duration
	Nodes        int
	Message      string
}

// Value returns the value of the named variable in the given formulation
func (o *SolveOutcome) Value(f *Formulation, name string) (float64, bool) {
	idx, ok := f.VariableIndex(name)
	if !ok || idx >= len(o.Values) {
		return 0, false
	}
	return o.Values[idx], true
}
