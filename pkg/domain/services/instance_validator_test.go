package services

import (
	"strings"
	"testing"

	"github.com/vsinha/blend/pkg/domain/entities"
)

func TestInstanceValidator_Warnings(t *testing.T) {
	instance := &entities.ProblemInstance{
		Ingredients: []entities.Ingredient{
			{ID: "Pilsner", UnitCost: 1, Contributions: map[string]float64{"color": 1}, Inventory: 100},
			{ID: "Roasted", UnitCost: 3, Contributions: map[string]float64{"color": 12}, Inventory: 0},
		},
		Batch: entities.QuantityBounds{Min: 10, Max: 50},
		Windows: []entities.PropertyWindow{
			{Property: "color", Min: 1, Max: 5},
			{Property: "color", Min: 2, Max: 4},
			{Property: "haze", Min: 0, Max: 1},
		},
		MaxDistinct: 2,
	}

	report := NewInstanceValidator().Validate(instance)
	if !report.Valid() {
		t.Fatalf("Expected no hard errors, got %v", report.Errors)
	}
	if len(report.OrphanedProperties) != 1 || report.OrphanedProperties[0] != "haze" {
		t.Errorf("Expected orphaned property haze, got %v", report.OrphanedProperties)
	}
	if len(report.DuplicateWindows) != 1 || report.DuplicateWindows[0] != "color" {
		t.Errorf("Expected duplicate window on color, got %v", report.DuplicateWindows)
	}
	if len(report.EmptyStock) != 1 || report.EmptyStock[0] != "Roasted" {
		t.Errorf("Expected Roasted to be reported as empty stock, got %v", report.EmptyStock)
	}
	if len(report.Warnings) != 3 {
		t.Errorf("Expected 3 warnings, got %d: %v", len(report.Warnings), report.Warnings)
	}
	if len(report.Notes) != 1 || !strings.Contains(report.Notes[0], "does not restrict") {
		t.Errorf("Expected a non-binding cardinality note, got %v", report.Notes)
	}
}

func TestInstanceValidator_Errors(t *testing.T) {
	instance := &entities.ProblemInstance{
		Ingredients: []entities.Ingredient{{ID: "A", UnitCost: -1, Inventory: 1}},
		Batch:       entities.QuantityBounds{Min: 0, Max: 1},
		MaxDistinct: 1,
	}
	report := NewInstanceValidator().Validate(instance)
	if report.Valid() {
		t.Fatal("Expected validation to fail")
	}
	if !strings.Contains(report.Errors[0], "unit cost cannot be negative") {
		t.Errorf("Unexpected error text: %s", report.Errors[0])
	}
}

func TestInstanceValidator_NonBindingCardinalityIsNotAWarning(t *testing.T) {
	instance := &entities.ProblemInstance{
		Ingredients: []entities.Ingredient{
			{ID: "Pilsner", UnitCost: 1, Contributions: map[string]float64{"color": 2}, Inventory: 100},
			{ID: "Munich", UnitCost: 1.3, Contributions: map[string]float64{"color": 5}, Inventory: 60},
		},
		Batch:       entities.QuantityBounds{Min: 10, Max: 50},
		Windows:     []entities.PropertyWindow{{Property: "color", Min: 2.5, Max: 5}},
		MaxDistinct: 2,
	}

	report := NewInstanceValidator().Validate(instance)
	if len(report.Warnings) != 0 {
		t.Errorf("Expected no warnings for an ordinary instance, got %v", report.Warnings)
	}
	if len(report.Notes) != 1 {
		t.Errorf("Expected one note, got %v", report.Notes)
	}

	instance.MaxDistinct = 1
	if report := NewInstanceValidator().Validate(instance); len(report.Notes) != 0 {
		t.Errorf("Expected no note when cardinality binds, got %v", report.Notes)
	}
}
