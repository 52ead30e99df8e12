package entities

import (
	"fmt"
	"math"
)

// PropertyWindow bounds the ratio of a weighted property sum to the total blended quantity
type PropertyWindow struct {
	Property string
	Min      float64
	Max      float64
}

// NewPropertyWindow creates a validated PropertyWindow
func NewPropertyWindow(property string, min, max float64) (*PropertyWindow, error) {
	window := &PropertyWindow{Property: property, Min: min, Max: max}
	if err := window.Validate(); err != nil {
		return nil, err
	}
	return window, nil
}

// Validate checks the window invariants
func (w *PropertyWindow) Validate() error {
	if w.Property == "" {
		return &ValidationError{Subject: "property window", Field: "property", Reason: "cannot be empty"}
	}
	subject := "window " + w.Property
	for _, bound := range []struct {
		name  string
		value float64
	}{{"minimum ratio", w.Min}, {"maximum ratio", w.Max}} {
		if math.IsNaN(bound.value) || math.IsInf(bound.value, 0) {
			return &ValidationError{
				Subject: subject,
				Field:   bound.name,
				Reason:  fmt.Sprintf("must be finite, got %g", bound.value),
			}
		}
	}
	if w.Min > w.Max {
		return &ValidationError{
			Subject: subject,
			Field:   "minimum ratio",
			Reason:  fmt.Sprintf("(%g) cannot exceed maximum ratio (%g)", w.Min, w.Max),
		}
	}
	return nil
}

// Contains reports whether a ratio lies inside the window, widened by tol
func (w PropertyWindow) Contains(ratio, tol float64) bool {
	return ratio >= w.Min-tol && ratio <= w.Max+tol
}

// String renders the window as "property in [min, max]"
func (w PropertyWindow) String() string {
	return fmt.Sprintf("%s in [%g, %g]", w.Property, w.Min, w.Max)
}
