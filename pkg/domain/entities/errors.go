package entities

import "fmt"

// ValidationError reports a malformed or contradictory problem description.
// It is raised before any formulation is built and is never retried.
type ValidationError struct {
	Subject string
	Field   string
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s %s", e.Subject, e.Field, e.Reason)
}
