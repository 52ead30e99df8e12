package dto

// CauseCode identifies a diagnostic rule
type CauseCode string

const (
	CauseNoIngredients         CauseCode = "no-ingredients"
	CauseInsufficientInventory CauseCode = "insufficient-inventory"
	CauseZeroDistinct          CauseCode = "zero-distinct"
	CauseCardinalityInventory  CauseCode = "cardinality-inventory"
	CauseWindowUnreachable     CauseCode = "window-unreachable"
	CauseWindowNeedsBlend      CauseCode = "window-needs-blend"
	CauseWindowsConflict       CauseCode = "windows-conflict"
	CauseWindowOrphanProperty  CauseCode = "window-orphan-property"
	CauseUnboundedObjective    CauseCode = "unbounded-objective"
	CauseUnexplained           CauseCode = "unexplained"
)

// Cause is one candidate explanation of a failed solve. Score is in [0, 1];
// 1 means the check proves the failure on its own.
type Cause struct {
	Code     CauseCode `json:"code"`
	Score    float64   `json:"score"`
	Group    string    `json:"group"`
	Subjects []string  `json:"subjects,omitempty"`
	Message  string    `json:"message"`
}

// DiagnosticReport is a ranked, advisory list of causes
type DiagnosticReport struct {
	Status string  `json:"status"`
	Causes []Cause `json:"causes"`
}

// Top returns the highest-ranked cause
func (r *DiagnosticReport) Top() (Cause, bool) {
	if r == nil || len(r.Causes) == 0 {
		return Cause{}, false
	}
	return r.Causes[0], true
}

// Has reports whether a cause code is present
func (r *DiagnosticReport) Has(code CauseCode) bool {
	if r == nil {
		return false
	}
	for _, c := range r.Causes {
		if c.Code == code {
			return true
		}
	}
	return false
}
