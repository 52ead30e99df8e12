package interpret

import (
	"fmt"

	"github.com/vsinha/blend/pkg/application/dto"
	"github.com/vsinha/blend/pkg/domain/milp"
)

// InfeasibleError reports that no blend satisfies the instance
type InfeasibleError struct {
	Outcome     *milp.SolveOutcome
	Diagnostics *dto.DiagnosticReport
}

func (e *InfeasibleError) Error() string {
	if cause, ok := e.Diagnostics.Top(); ok {
		return fmt.Sprintf("no feasible blend: %s", cause.Message)
	}
	return "no feasible blend"
}

// UnboundedError reports that the objective can decrease without limit
type UnboundedError struct {
	Outcome     *milp.SolveOutcome
	Diagnostics *dto.DiagnosticReport
}

func (e *UnboundedError) Error() string {
	if cause, ok := e.Diagnostics.Top(); ok {
		return fmt.Sprintf("blend cost is unbounded: %s", cause.Message)
	}
	return "blend cost is unbounded"
}

// SolveTimeoutError reports that the solver stopped before proving optimality.
// Incumbent is the decoded best known blend, if the solver had one that
// passes the consistency check.
type SolveTimeoutError struct {
	Outcome   *milp.SolveOutcome
	Incumbent *dto.BlendResult
}

func (e *SolveTimeoutError) Error() string {
	msg := "solve stopped before optimality was proven"
	if e.Outcome != nil && e.Outcome.Elapsed > 0 {
		msg = fmt.Sprintf("%s after %s", msg, e.Outcome.Elapsed)
	}
	if e.Incumbent != nil {
		msg = fmt.Sprintf("%s (best known cost %s)", msg, e.Incumbent.TotalCost.StringFixed(2))
	}
	return msg
}

// ConsistencyError reports that an optimal outcome violates the formulation
// it claims to solve
type ConsistencyError struct {
	Constraint string
	Group      string
	Subject    string
	LHS        float64
	RHS        float64
	Violation  float64
}

func (e *ConsistencyError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("solver outcome violates %s (%s %s): lhs %g, rhs %g, violation %g",
			e.Constraint, e.Group, e.Subject, e.LHS, e.RHS, e.Violation)
	}
	return fmt.Sprintf("solver outcome violates %s (%s): lhs %g, rhs %g, violation %g",
		e.Constraint, e.Group, e.LHS, e.RHS, e.Violation)
}
