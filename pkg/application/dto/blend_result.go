package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/blend/pkg/domain/entities"
)

// BlendResult contains the domain-level answer of an optimal solve
type BlendResult struct {
	TotalCost      decimal.Decimal   `json:"total_cost"`
	IngredientCost decimal.Decimal   `json:"ingredient_cost"`
	ActivationFees decimal.Decimal   `json:"activation_fees"`
	Objective      float64           `json:"objective"`
	TotalQuantity  float64           `json:"total_quantity"`
	Properties     []PropertyReading `json:"properties"`
	Used           []UsageLine       `json:"used"`
	DistinctCount  int               `json:"distinct_count"`
	Solver         string            `json:"solver"`
	Elapsed        time.Duration     `json:"elapsed"`
	Nodes          int               `json:"nodes"`
}

// UsageLine is one activated ingredient with a non-negligible quantity
type UsageLine struct {
	ID                 entities.IngredientID `json:"id"`
	Quantity           float64               `json:"quantity"`
	Share              float64               `json:"share"`
	IngredientCost     decimal.Decimal       `json:"ingredient_cost"`
	ActivationFee      decimal.Decimal       `json:"activation_fee"`
	UnboundedInventory bool                  `json:"unbounded_inventory,omitempty"`
}

// PropertyReading is the achieved ratio of one style window
type PropertyReading struct {
	Property string  `json:"property"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Achieved float64 `json:"achieved"`
}

// Quantity returns the used quantity of an ingredient, 0 when it is not used
func (r *BlendResult) Quantity(id entities.IngredientID) float64 {
	for _, line := range r.Used {
		if line.ID == id {
			return line.Quantity
		}
	}
	return 0
}

// Reading returns the achieved reading for a window property
func (r *BlendResult) Reading(property string) (PropertyReading, bool) {
	for _, reading := range r.Properties {
		if reading.Property == property {
			return reading, true
		}
	}
	return PropertyReading{}, false
}
