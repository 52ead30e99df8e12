package services

import (
	"fmt"

	"github.com/vsinha/blend/pkg/domain/entities"
)

// InstanceValidator inspects a problem instance for hard errors and for
// suspicious but legal input worth reporting to the caller
type InstanceValidator struct{}

// NewInstanceValidator creates a new instance validator
func NewInstanceValidator() *InstanceValidator {
	return &InstanceValidator{}
}

// ValidationReport contains the results of instance validation
type ValidationReport struct {
	Errors             []string
	Warnings           []string
	Notes              []string // informational, logged at debug verbosity
	OrphanedProperties []string
	EmptyStock         []entities.IngredientID
	DuplicateWindows   []string
}

// Valid reports whether the instance has no hard errors
func (r *ValidationReport) Valid() bool {
	return len(r.Errors) == 0
}

// Validate performs the invariant check plus advisory checks
func (v *InstanceValidator) Validate(instance *entities.ProblemInstance) *ValidationReport {
	report := &ValidationReport{
		Errors:             make([]string, 0),
		Warnings:           make([]string, 0),
		Notes:              make([]string, 0),
		OrphanedProperties: make([]string, 0),
		EmptyStock:         make([]entities.IngredientID, 0),
		DuplicateWindows:   make([]string, 0),
	}

	if err := instance.Validate(); err != nil {
		report.Errors = append(report.Errors, err.Error())
		return report
	}

	report.OrphanedProperties = v.detectOrphanedProperties(instance)
	for _, property := range report.OrphanedProperties {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("window %s references a property no ingredient contributes; it is treated as 0", property))
	}

	report.DuplicateWindows = v.detectDuplicateWindows(instance)
	for _, property := range report.DuplicateWindows {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("property %s has several windows; all of them must hold", property))
	}

	for i := range instance.Ingredients {
		if instance.Ingredients[i].Inventory == 0 {
			report.EmptyStock = append(report.EmptyStock, instance.Ingredients[i].ID)
		}
	}
	if len(report.EmptyStock) > 0 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("ingredients with zero inventory can never be used: %v", report.EmptyStock))
	}

	if len(instance.Ingredients) > 0 && !instance.CardinalityBinding() {
		report.Notes = append(report.Notes,
			fmt.Sprintf("max distinct %d does not restrict %d ingredients", instance.MaxDistinct, len(instance.Ingredients)))
	}

	return report
}

// detectOrphanedProperties finds window properties that no ingredient contributes to
func (v *InstanceValidator) detectOrphanedProperties(instance *entities.ProblemInstance) []string {
	contributed := make(map[string]bool)
	for _, name := range instance.PropertyNames() {
		contributed[name] = true
	}

	orphaned := make([]string, 0)
	seen := make(map[string]bool)
	for _, window := range instance.Windows {
		if !contributed[window.Property] && !seen[window.Property] {
			orphaned = append(orphaned, window.Property)
			seen[window.Property] = true
		}
	}
	return orphaned
}

// detectDuplicateWindows finds properties constrained by more than one window
func (v *InstanceValidator) detectDuplicateWindows(instance *entities.ProblemInstance) []string {
	counts := make(map[string]int)
	duplicates := make([]string, 0)
	for _, window := range instance.Windows {
		counts[window.Property]++
		if counts[window.Property] == 2 {
			duplicates = append(duplicates, window.Property)
		}
	}
	return duplicates
}
