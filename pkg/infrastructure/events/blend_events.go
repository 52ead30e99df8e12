package events

import "time"

const (
	FormulationBuiltEvent  = "blend.formulation.built"
	SolveCompletedEvent    = "blend.solve.completed"
	ResultInterpretedEvent = "blend.result.interpreted"
	RunFailedEvent         = "blend.run.failed"
)

// AllBlendEvents lists every event type a blend run can emit
var AllBlendEvents = []string{
	FormulationBuiltEvent,
	SolveCompletedEvent,
	ResultInterpretedEvent,
	RunFailedEvent,
}

type FormulationBuilt struct {
	Ingredients  int     `json:"ingredients"`
	Variables    int     `json:"variables"`
	Constraints  int     `json:"constraints"`
	UnboundedCap float64 `json:"unbounded_cap"`
}

type SolveCompleted struct {
	Solver    string        `json:"solver"`
	Status    string        `json:"status"`
	Objective float64       `json:"objective"`
	Nodes     int           `json:"nodes"`
	Elapsed   time.Duration `json:"elapsed"`
}

type ResultInterpreted struct {
	TotalCost     string  `json:"total_cost"`
	TotalQuantity float64 `json:"total_quantity"`
	DistinctCount int     `json:"distinct_count"`
}

type RunFailed struct {
	Stage    string `json:"stage"`
	Error    string `json:"error"`
	TopCause string `json:"top_cause,omitempty"`
}
