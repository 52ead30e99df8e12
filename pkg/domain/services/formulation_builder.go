package services

import (
	"fmt"
	"math"

	"github.com/vsinha/blend/pkg/domain/entities"
	"github.com/vsinha/blend/pkg/domain/milp"
)

// FormulationBuilder translates a ProblemInstance into a MILP formulation.
// It holds no state and is safe for concurrent use.
type FormulationBuilder struct{}

// NewFormulationBuilder creates a new formulation builder
func NewFormulationBuilder() *FormulationBuilder {
	return &FormulationBuilder{}
}

// UnboundedCap returns the linking constant used for unlimited inventory.
// Any ingredient quantity is bounded by the batch maximum, so a value strictly
// above it is a valid big-M.
func UnboundedCap(batchMax float64) float64 {
	return 2*batchMax + 1
}

// QuantityVarName names the continuous quantity variable of an ingredient
func QuantityVarName(id entities.IngredientID) string {
	return fmt.Sprintf("x[%s]", id)
}

// ActivationVarName names the binary activation variable of an ingredient
func ActivationVarName(id entities.IngredientID) string {
	return fmt.Sprintf("z[%s]", id)
}

// Build creates the formulation for an instance.
//
// Variables: x[j] ≥ 0 at index j and binary z[j] at index n+j.
// Rows, in order: batch.min, batch.max, link per ingredient, window.min and
// window.max per window, cardinality.
func (b *FormulationBuilder) Build(instance *entities.ProblemInstance) (*milp.Formulation, error) {
	if instance == nil {
		return nil, &entities.ValidationError{Subject: "instance", Field: "value", Reason: "cannot be nil"}
	}
	if err := instance.Validate(); err != nil {
		return nil, err
	}

	n := len(instance.Ingredients)
	f := &milp.Formulation{
		Variables:   make([]milp.Variable, 2*n),
		Objective:   make([]milp.Term, 0, 2*n),
		Constraints: make([]milp.Constraint, 0, 2+n+2*len(instance.Windows)+1),
		Metadata: milp.Metadata{
			IngredientIDs:        make([]string, n),
			BigM:                 make([]float64, n),
			EffectivelyUnbounded: make([]bool, n),
			UnboundedCap:         UnboundedCap(instance.Batch.Max),
		},
	}

	for j := range instance.Ingredients {
		ingredient := &instance.Ingredients[j]
		f.Metadata.IngredientIDs[j] = string(ingredient.ID)
		f.Variables[j] = milp.Variable{
			Name:  QuantityVarName(ingredient.ID),
			Kind:  milp.Continuous,
			Lower: 0,
			Upper: math.Inf(1),
		}
		f.Variables[n+j] = milp.Variable{
			Name:  ActivationVarName(ingredient.ID),
			Kind:  milp.Binary,
			Lower: 0,
			Upper: 1,
		}
	}

	// Objective: Σ cost·x + Σ fee·z
	for j := range instance.Ingredients {
		if c := instance.Ingredients[j].UnitCost; c != 0 {
			f.Objective = append(f.Objective, milp.Term{Var: j, Coef: c})
		}
	}
	for j := range instance.Ingredients {
		if fee := instance.Ingredients[j].ActivationFee; fee != 0 {
			f.Objective = append(f.Objective, milp.Term{Var: n + j, Coef: fee})
		}
	}

	f.Constraints = append(f.Constraints, b.batchConstraints(instance)...)
	f.Constraints = append(f.Constraints, b.linkConstraints(instance, f)...)
	perProperty := make(map[string]int, len(instance.Windows))
	for _, window := range instance.Windows {
		perProperty[window.Property]++
	}
	for k, window := range instance.Windows {
		// several windows on one property are told apart by their position
		label := window.Property
		if perProperty[window.Property] > 1 {
			label = fmt.Sprintf("%s#%d", window.Property, k)
		}
		f.Constraints = append(f.Constraints, b.windowConstraints(instance, window, label)...)
	}
	f.Constraints = append(f.Constraints, b.cardinalityConstraint(instance))

	return f, nil
}

func (b *FormulationBuilder) batchConstraints(instance *entities.ProblemInstance) []milp.Constraint {
	total := make([]milp.Term, len(instance.Ingredients))
	for j := range instance.Ingredients {
		total[j] = milp.Term{Var: j, Coef: 1}
	}
	// The lower row is kept even when Min is 0 so every formulation has the same shape.
	return []milp.Constraint{
		{
			Name:  string(milp.GroupBatchMin),
			Group: milp.GroupBatchMin,
			Terms: total,
			Op:    milp.GreaterEq,
			RHS:   instance.Batch.Min,
		},
		{
			Name:  string(milp.GroupBatchMax),
			Group: milp.GroupBatchMax,
			Terms: append([]milp.Term(nil), total...),
			Op:    milp.LessEq,
			RHS:   instance.Batch.Max,
		},
	}
}

// linkConstraints emits x_j - M_j·z_j ≤ 0 with M_j the ingredient's own inventory
func (b *FormulationBuilder) linkConstraints(instance *entities.ProblemInstance, f *milp.Formulation) []milp.Constraint {
	n := len(instance.Ingredients)
	rows := make([]milp.Constraint, 0, n)
	for j := range instance.Ingredients {
		ingredient := &instance.Ingredients[j]
		bigM := ingredient.Inventory
		if ingredient.HasUnlimitedInventory() {
			bigM = f.Metadata.UnboundedCap
			f.Metadata.EffectivelyUnbounded[j] = true
		}
		f.Metadata.BigM[j] = bigM

		terms := []milp.Term{{Var: j, Coef: 1}}
		if bigM != 0 {
			terms = append(terms, milp.Term{Var: n + j, Coef: -bigM})
		}
		rows = append(rows, milp.Constraint{
			Name:    fmt.Sprintf("%s[%s]", milp.GroupLink, ingredient.ID),
			Group:   milp.GroupLink,
			Subject: string(ingredient.ID),
			Terms:   terms,
			Op:      milp.LessEq,
			RHS:     0,
		})
	}
	return rows
}

// windowConstraints linearizes lo ≤ Σ c_j·x_j / Σ x_j ≤ hi by multiplying
// through by Σ x_j: Σ (c_j - lo)·x_j ≥ 0 and Σ (c_j - hi)·x_j ≤ 0.
func (b *FormulationBuilder) windowConstraints(instance *entities.ProblemInstance, window entities.PropertyWindow, label string) []milp.Constraint {
	lower := make([]milp.Term, 0, len(instance.Ingredients))
	upper := make([]milp.Term, 0, len(instance.Ingredients))
	for j := range instance.Ingredients {
		contribution := instance.Ingredients[j].Contribution(window.Property)
		if coef := contribution - window.Min; coef != 0 {
			lower = append(lower, milp.Term{Var: j, Coef: coef})
		}
		if coef := contribution - window.Max; coef != 0 {
			upper = append(upper, milp.Term{Var: j, Coef: coef})
		}
	}
	return []milp.Constraint{
		{
			Name:    fmt.Sprintf("%s[%s]", milp.GroupWindowMin, label),
			Group:   milp.GroupWindowMin,
			Subject: window.Property,
			Terms:   lower,
			Op:      milp.GreaterEq,
			RHS:     0,
		},
		{
			Name:    fmt.Sprintf("%s[%s]", milp.GroupWindowMax, label),
			Group:   milp.GroupWindowMax,
			Subject: window.Property,
			Terms:   upper,
			Op:      milp.LessEq,
			RHS:     0,
		},
	}
}

func (b *FormulationBuilder) cardinalityConstraint(instance *entities.ProblemInstance) milp.Constraint {
	n := len(instance.Ingredients)
	terms := make([]milp.Term, n)
	for j := 0; j < n; j++ {
		terms[j] = milp.Term{Var: n + j, Coef: 1}
	}
	return milp.Constraint{
		Name:  string(milp.GroupCardinality),
		Group: milp.GroupCardinality,
		Terms: terms,
		Op:    milp.LessEq,
		RHS:   float64(instance.MaxDistinct),
	}
}
