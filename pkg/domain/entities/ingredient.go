package entities

import (
	"fmt"
	"math"
	"sort"
)

// IngredientID represents a unique ingredient identifier
type IngredientID string

// Unlimited marks an ingredient whose inventory has no practical cap
var Unlimited = math.Inf(1)

// Ingredient represents one blendable component with its economics and properties
type Ingredient struct {
	ID            IngredientID
	UnitCost      float64
	ActivationFee float64
	Contributions map[string]float64
	Inventory     float64
}

// NewIngredient creates a validated Ingredient. The contribution map is copied.
func NewIngredient(
	id IngredientID,
	unitCost float64,
	activationFee float64,
	contributions map[string]float64,
	inventory float64,
) (*Ingredient, error) {
	ingredient := &Ingredient{
		ID:            id,
		UnitCost:      unitCost,
		ActivationFee: activationFee,
		Contributions: copyContributions(contributions),
		Inventory:     inventory,
	}
	if err := ingredient.Validate(); err != nil {
		return nil, err
	}
	return ingredient, nil
}

// Validate checks the ingredient invariants
func (i *Ingredient) Validate() error {
	subject := "ingredient " + string(i.ID)
	if i.ID == "" {
		return &ValidationError{Subject: "ingredient", Field: "id", Reason: "cannot be empty"}
	}
	if err := nonNegativeFinite(subject, "unit cost", i.UnitCost); err != nil {
		return err
	}
	if err := nonNegativeFinite(subject, "activation fee", i.ActivationFee); err != nil {
		return err
	}
	if math.IsNaN(i.Inventory) {
		return &ValidationError{Subject: subject, Field: "inventory", Reason: "must be a number"}
	}
	if i.Inventory < 0 {
		return &ValidationError{
			Subject: subject,
			Field:   "inventory",
			Reason:  fmt.Sprintf("cannot be negative, got %g", i.Inventory),
		}
	}
	for _, property := range i.PropertyNames() {
		value := i.Contributions[property]
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return &ValidationError{
				Subject: subject,
				Field:   "contribution " + property,
				Reason:  fmt.Sprintf("must be finite, got %g", value),
			}
		}
	}
	return nil
}

// Contribution returns the per-unit contribution to a property, 0 when absent
func (i *Ingredient) Contribution(property string) float64 {
	return i.Contributions[property]
}

// HasUnlimitedInventory reports whether the inventory is unbounded
func (i *Ingredient) HasUnlimitedInventory() bool {
	return math.IsInf(i.Inventory, 1)
}

// PropertyNames returns the contributed property names in sorted order
func (i *Ingredient) PropertyNames() []string {
	names := make([]string, 0, len(i.Contributions))
	for name := range i.Contributions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func copyContributions(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func nonNegativeFinite(subject, field string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return &ValidationError{Subject: subject, Field: field, Reason: fmt.Sprintf("must be finite, got %g", value)}
	}
	if value < 0 {
		return &ValidationError{Subject: subject, Field: field, Reason: fmt.Sprintf("cannot be negative, got %g", value)}
	}
	return nil
}
