// Package interpret turns raw solver outcomes into domain-level blend results.
package interpret

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/vsinha/blend/pkg/application/dto"
	"github.com/vsinha/blend/pkg/application/services/solve"
	"github.com/vsinha/blend/pkg/domain/entities"
	"github.com/vsinha/blend/pkg/domain/milp"
)

// DefaultTolerance is the relative feasibility tolerance used to re-check outcomes
const DefaultTolerance = 1e-6

// moneyPlaces is the number of decimal places kept on cost amounts
const moneyPlaces = 6

// Interpreter maps solver outcomes onto BlendResult or typed errors.
// It holds only its tolerance and is safe for concurrent use.
type Interpreter struct {
	tolerance float64
}

// NewInterpreter creates an interpreter. A non-positive tolerance selects DefaultTolerance.
func NewInterpreter(tolerance float64) *Interpreter {
	if tolerance <= 0 || math.IsNaN(tolerance) {
		tolerance = DefaultTolerance
	}
	return &Interpreter{tolerance: tolerance}
}

// Tolerance returns the feasibility tolerance in use
func (i *Interpreter) Tolerance() float64 {
	return i.tolerance
}

// Interpret derives the result of a solve. f must be the formulation built
// from instance and outcome the adapter's answer for it.
func (i *Interpreter) Interpret(instance *entities.ProblemInstance, f *milp.Formulation, outcome *milp.SolveOutcome) (*dto.BlendResult, error) {
	if instance == nil || f == nil || outcome == nil {
		return nil, fmt.Errorf("instance, formulation and outcome are required")
	}
	if f.Metadata.NumIngredients() != len(instance.Ingredients) {
		return nil, fmt.Errorf("formulation covers %d ingredients, instance has %d",
			f.Metadata.NumIngredients(), len(instance.Ingredients))
	}

	switch outcome.Status {
	case milp.StatusOptimal:
		return i.decode(instance, f, outcome)
	case milp.StatusInfeasible:
		return nil, &InfeasibleError{Outcome: outcome}
	case milp.StatusUnbounded:
		return nil, &UnboundedError{Outcome: outcome}
	case milp.StatusTimeout:
		timeoutErr := &SolveTimeoutError{Outcome: outcome}
		if outcome.HasIncumbent && len(outcome.Values) == len(f.Variables) {
			if incumbent, err := i.decode(instance, f, outcome); err == nil {
				timeoutErr.Incumbent = incumbent
			}
		}
		return nil, timeoutErr
	case milp.StatusError:
		msg := outcome.Message
		if msg == "" {
			msg = "solver reported an error"
		}
		return nil, &solve.AdapterError{Solver: outcome.Solver, Op: "solve", Err: errors.New(msg)}
	default:
		return nil, &solve.AdapterError{Solver: outcome.Solver, Op: "decode", Err: fmt.Errorf("unknown status %d", outcome.Status)}
	}
}

func (i *Interpreter) decode(instance *entities.ProblemInstance, f *milp.Formulation, outcome *milp.SolveOutcome) (*dto.BlendResult, error) {
	values := outcome.Values
	if len(values) != len(f.Variables) {
		return nil, &solve.AdapterError{
			Solver: outcome.Solver,
			Op:     "decode",
			Err:    fmt.Errorf("outcome has %d values for %d variables", len(values), len(f.Variables)),
		}
	}
	if err := i.checkDomains(f, values); err != nil {
		return nil, err
	}
	if err := i.checkConstraints(f, values); err != nil {
		return nil, err
	}
	objective := f.ObjectiveValue(values)
	if diff := math.Abs(objective - outcome.Objective); diff > i.tolerance*math.Max(1, math.Abs(objective)) {
		return nil, &ConsistencyError{
			Constraint: "objective",
			Group:      "objective",
			LHS:        outcome.Objective,
			RHS:        objective,
			Violation:  diff,
		}
	}

	n := len(instance.Ingredients)
	quantities := make([]float64, n)
	total := 0.0
	for j := 0; j < n; j++ {
		q := values[f.Metadata.QuantityIndex(j)]
		if q <= i.tolerance {
			q = 0
		}
		quantities[j] = q
		total += q
	}

	result := &dto.BlendResult{
		IngredientCost: decimal.Zero,
		ActivationFees: decimal.Zero,
		Objective:      objective,
		TotalQuantity:  total,
		Properties:     make([]dto.PropertyReading, 0, len(instance.Windows)),
		Used:           make([]dto.UsageLine, 0, n),
		Solver:         outcome.Solver,
		Elapsed:        outcome.Elapsed,
		Nodes:          outcome.Nodes,
	}

	for j := 0; j < n; j++ {
		ingredient := &instance.Ingredients[j]
		active := math.Round(values[f.Metadata.ActivationIndex(j)]) == 1
		fee := decimal.Zero
		if active {
			fee = decimal.NewFromFloat(ingredient.ActivationFee)
			result.ActivationFees = result.ActivationFees.Add(fee)
		}
		if quantities[j] == 0 {
			continue
		}
		cost := decimal.NewFromFloat(ingredient.UnitCost).Mul(decimal.NewFromFloat(quantities[j])).Round(moneyPlaces)
		result.IngredientCost = result.IngredientCost.Add(cost)
		result.Used = append(result.Used, dto.UsageLine{
			ID:                 ingredient.ID,
			Quantity:           quantities[j],
			Share:              quantities[j] / total,
			IngredientCost:     cost,
			ActivationFee:      fee,
			UnboundedInventory: f.Metadata.EffectivelyUnbounded[j],
		})
	}
	result.DistinctCount = len(result.Used)
	result.TotalCost = result.IngredientCost.Add(result.ActivationFees)

	for _, window := range instance.Windows {
		result.Properties = append(result.Properties, dto.PropertyReading{
			Property: window.Property,
			Min:      window.Min,
			Max:      window.Max,
			Achieved: achievedRatio(instance, quantities, total, window.Property),
		})
	}

	return result, nil
}

// achievedRatio returns Σ c·x / Σ x, or 0 for an empty blend
func achievedRatio(instance *entities.ProblemInstance, quantities []float64, total float64, property string) float64 {
	if total == 0 {
		return 0
	}
	sum := 0.0
	for j := range instance.Ingredients {
		sum += instance.Ingredients[j].Contribution(property) * quantities[j]
	}
	return sum / total
}

func (i *Interpreter) checkDomains(f *milp.Formulation, values []float64) error {
	for idx, v := range f.Variables {
		value := values[idx]
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return &ConsistencyError{Constraint: v.Name, Group: "domain", LHS: value, RHS: v.Lower, Violation: math.Inf(1)}
		}
		scale := i.tolerance * math.Max(1, math.Abs(value))
		if value < v.Lower-scale {
			return &ConsistencyError{Constraint: v.Name, Group: "domain", LHS: value, RHS: v.Lower, Violation: v.Lower - value}
		}
		if value > v.Upper+scale {
			return &ConsistencyError{Constraint: v.Name, Group: "domain", LHS: value, RHS: v.Upper, Violation: value - v.Upper}
		}
		if v.Kind == milp.Binary {
			if gap := math.Abs(value - math.Round(value)); gap > i.tolerance {
				return &ConsistencyError{Constraint: v.Name, Group: "integrality", LHS: value, RHS: math.Round(value), Violation: gap}
			}
		}
	}
	return nil
}

func (i *Interpreter) checkConstraints(f *milp.Formulation, values []float64) error {
	for _, c := range f.Constraints {
		lhs := milp.Dot(c.Terms, values)
		scale := math.Max(1, math.Abs(c.RHS))
		for _, t := range c.Terms {
			scale = math.Max(scale, math.Abs(t.Coef*values[t.Var]))
		}

		var violation float64
		switch c.Op {
		case milp.LessEq:
			violation = lhs - c.RHS
		case milp.GreaterEq:
			violation = c.RHS - lhs
		case milp.Equal:
			violation = math.Abs(lhs - c.RHS)
		}
		if violation > i.tolerance*scale {
			return &ConsistencyError{
				Constraint: c.Name,
				Group:      string(c.Group),
				Subject:    c.Subject,
				LHS:        lhs,
				RHS:        c.RHS,
				Violation:  violation,
			}
		}
	}
	return nil
}
