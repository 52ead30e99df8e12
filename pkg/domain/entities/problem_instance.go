package entities

import (
	"fmt"
	"math"
	"sort"
)

// QuantityBounds holds the allowed range of total blended quantity (grist)
type QuantityBounds struct {
	Min float64
	Max float64
}

// ProblemInstance represents one complete blend optimization request
type ProblemInstance struct {
	Ingredients []Ingredient
	Batch       QuantityBounds
	Windows     []PropertyWindow
	MaxDistinct int
}

// NewProblemInstance creates a validated ProblemInstance. Ingredients and windows
// are copied so later changes to the arguments do not leak into the instance.
func NewProblemInstance(
	ingredients []Ingredient,
	batch QuantityBounds,
	windows []PropertyWindow,
	maxDistinct int,
) (*ProblemInstance, error) {
	instance := &ProblemInstance{
		Ingredients: make([]Ingredient, len(ingredients)),
		Batch:       batch,
		Windows:     make([]PropertyWindow, len(windows)),
		MaxDistinct: maxDistinct,
	}
	for i, ingredient := range ingredients {
		ingredient.Contributions = copyContributions(ingredient.Contributions)
		instance.Ingredients[i] = ingredient
	}
	copy(instance.Windows, windows)

	if err := instance.Validate(); err != nil {
		return nil, err
	}
	return instance, nil
}

// Validate checks every invariant of the instance and its parts
func (p *ProblemInstance) Validate() error {
	if math.IsNaN(p.Batch.Min) || math.IsInf(p.Batch.Min, 0) || p.Batch.Min < 0 {
		return &ValidationError{
			Subject: "batch",
			Field:   "minimum quantity",
			Reason:  fmt.Sprintf("must be finite and non-negative, got %g", p.Batch.Min),
		}
	}
	if math.IsNaN(p.Batch.Max) || math.IsInf(p.Batch.Max, 0) {
		return &ValidationError{
			Subject: "batch",
			Field:   "maximum quantity",
			Reason:  fmt.Sprintf("must be finite, got %g", p.Batch.Max),
		}
	}
	if p.Batch.Min > p.Batch.Max {
		return &ValidationError{
			Subject: "batch",
			Field:   "minimum quantity",
			Reason:  fmt.Sprintf("(%g) cannot exceed maximum quantity (%g)", p.Batch.Min, p.Batch.Max),
		}
	}
	if p.MaxDistinct < 0 {
		return &ValidationError{
			Subject: "instance",
			Field:   "max distinct",
			Reason:  fmt.Sprintf("cannot be negative, got %d", p.MaxDistinct),
		}
	}

	seen := make(map[IngredientID]bool, len(p.Ingredients))
	for i := range p.Ingredients {
		ingredient := &p.Ingredients[i]
		if err := ingredient.Validate(); err != nil {
			return err
		}
		if seen[ingredient.ID] {
			return &ValidationError{
				Subject: "ingredient " + string(ingredient.ID),
				Field:   "id",
				Reason:  "is duplicated",
			}
		}
		seen[ingredient.ID] = true
	}

	for i := range p.Windows {
		if err := p.Windows[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Ingredient returns the ingredient with the given id
func (p *ProblemInstance) Ingredient(id IngredientID) (*Ingredient, bool) {
	for i := range p.Ingredients {
		if p.Ingredients[i].ID == id {
			return &p.Ingredients[i], true
		}
	}
	return nil, false
}

// TotalInventory sums every ingredient inventory; +Inf when any is unlimited
func (p *ProblemInstance) TotalInventory() float64 {
	total := 0.0
	for i := range p.Ingredients {
		total += p.Ingredients[i].Inventory
	}
	return total
}

// CardinalityBinding reports whether MaxDistinct actually restricts the blend
func (p *ProblemInstance) CardinalityBinding() bool {
	return p.MaxDistinct < len(p.Ingredients)
}

// PropertyNames returns every property contributed by any ingredient, sorted
func (p *ProblemInstance) PropertyNames() []string {
	set := make(map[string]bool)
	for i := range p.Ingredients {
		for name := range p.Ingredients[i].Contributions {
			set[name] = true
		}
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithBatchMax returns a copy of the instance with a different maximum batch size
func (p *ProblemInstance) WithBatchMax(max float64) (*ProblemInstance, error) {
	batch := p.Batch
	batch.Max = max
	return NewProblemInstance(p.Ingredients, batch, p.Windows, p.MaxDistinct)
}

// WithBatchMin returns a copy of the instance with a different minimum batch size
func (p *ProblemInstance) WithBatchMin(min float64) (*ProblemInstance, error) {
	batch := p.Batch
	batch.Min = min
	return NewProblemInstance(p.Ingredients, batch, p.Windows, p.MaxDistinct)
}

// WithMaxDistinct returns a copy of the instance with a different cardinality limit
func (p *ProblemInstance) WithMaxDistinct(maxDistinct int) (*ProblemInstance, error) {
	return NewProblemInstance(p.Ingredients, p.Batch, p.Windows, maxDistinct)
}

// WithInventory returns a copy of the instance with one ingredient's inventory replaced
func (p *ProblemInstance) WithInventory(id IngredientID, inventory float64) (*ProblemInstance, error) {
	ingredients := make([]Ingredient, len(p.Ingredients))
	copy(ingredients, p.Ingredients)
	found := false
	for i := range ingredients {
		if ingredients[i].ID == id {
			ingredients[i].Inventory = inventory
			found = true
		}
	}
	if !found {
		return nil, fmt.Errorf("ingredient not found: %s", id)
	}
	return NewProblemInstance(ingredients, p.Batch, p.Windows, p.MaxDistinct)
}
