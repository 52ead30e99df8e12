// Package diagnostics ranks likely causes of infeasible or unbounded blends.
//
// The checks are cheap necessary conditions evaluated on the instance alone.
// They never prove feasibility and their ranking is advisory.
package diagnostics

import (
	"fmt"
	"math"
	"sort"

	"github.com/vsinha/blend/pkg/application/dto"
	"github.com/vsinha/blend/pkg/domain/entities"
	"github.com/vsinha/blend/pkg/domain/milp"
)

// Scores for each rule. A score of 1 means the rule alone proves infeasibility.
const (
	scoreProof             = 1.0
	scoreCardinality       = 0.95
	scoreWindowUnreachable = 0.9
	scoreSingleSource      = 0.85
	scoreConflictSingle    = 0.8
	scoreNeedsBlend        = 0.3
	scoreConflict          = 0.2
	scoreUnboundedSuspect  = 0.5
)

// Analyzer evaluates diagnostic rules. It is stateless and safe for concurrent use.
type Analyzer struct{}

// NewAnalyzer creates a new diagnostics analyzer
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Infeasible returns ranked candidate causes for an infeasible instance
func (a *Analyzer) Infeasible(instance *entities.ProblemInstance) *dto.DiagnosticReport {
	report := &dto.DiagnosticReport{Status: milp.StatusInfeasible.String(), Causes: make([]dto.Cause, 0)}
	if instance == nil || len(instance.Ingredients) == 0 {
		report.Causes = append(report.Causes, dto.Cause{
			Code:    dto.CauseNoIngredients,
			Score:   scoreProof,
			Group:   "instance",
			Message: "the instance has no ingredients",
		})
		return report
	}

	stocked := stockedIngredients(instance)
	report.Causes = append(report.Causes, a.batchCauses(instance, stocked)...)
	for _, window := range instance.Windows {
		report.Causes = append(report.Causes, a.windowCauses(instance, stocked, window)...)
	}
	if cause, ok := a.windowsConflict(instance, stocked); ok {
		report.Causes = append(report.Causes, cause)
	}

	if len(report.Causes) == 0 {
		report.Causes = append(report.Causes, dto.Cause{
			Code:    dto.CauseUnexplained,
			Score:   0,
			Message: "no single rule explains the infeasibility; windows, inventories and the cardinality limit interact",
		})
	}
	rank(report.Causes)
	return report
}

// Unbounded returns candidate causes for an unbounded formulation
func (a *Analyzer) Unbounded(instance *entities.ProblemInstance, f *milp.Formulation) *dto.DiagnosticReport {
	report := &dto.DiagnosticReport{Status: milp.StatusUnbounded.String(), Causes: make([]dto.Cause, 0)}

	unlimited := make([]string, 0)
	if instance != nil {
		for i := range instance.Ingredients {
			if instance.Ingredients[i].HasUnlimitedInventory() {
				unlimited = append(unlimited, string(instance.Ingredients[i].ID))
			}
		}
	}
	negative := make([]string, 0)
	if f != nil {
		for _, term := range f.Objective {
			if term.Coef < 0 && term.Var < len(f.Variables) {
				negative = append(negative, f.Variables[term.Var].Name)
			}
		}
	}

	if len(unlimited) > 0 || len(negative) > 0 {
		score := scoreUnboundedSuspect
		if len(negative) > 0 {
			score = scoreProof
		}
		subjects := append(append([]string(nil), unlimited...), negative...)
		report.Causes = append(report.Causes, dto.Cause{
			Code:     dto.CauseUnboundedObjective,
			Score:    score,
			Group:    "objective",
			Subjects: subjects,
			Message: fmt.Sprintf("%d ingredient(s) with unlimited inventory and %d negative objective coefficient(s)",
				len(unlimited), len(negative)),
		})
	} else {
		report.Causes = append(report.Causes, dto.Cause{
			Code:    dto.CauseUnexplained,
			Score:   0,
			Message: "all costs are non-negative and every quantity is capped; the solver report is suspect",
		})
	}
	rank(report.Causes)
	return report
}

func (a *Analyzer) batchCauses(instance *entities.ProblemInstance, stocked []*entities.Ingredient) []dto.Cause {
	causes := make([]dto.Cause, 0)
	total := instance.TotalInventory()
	if total < instance.Batch.Min {
		causes = append(causes, dto.Cause{
			Code:    dto.CauseInsufficientInventory,
			Score:   scoreProof,
			Group:   string(milp.GroupBatchMin),
			Message: fmt.Sprintf("insufficient total inventory: %g available, minimum batch is %g", total, instance.Batch.Min),
		})
		return causes
	}

	if instance.Batch.Min <= 0 {
		return causes
	}
	if instance.MaxDistinct == 0 {
		causes = append(causes, dto.Cause{
			Code:    dto.CauseZeroDistinct,
			Score:   scoreProof,
			Group:   string(milp.GroupCardinality),
			Message: fmt.Sprintf("no ingredient may be used but the minimum batch is %g", instance.Batch.Min),
		})
		return causes
	}

	// fewest ingredients whose combined stock reaches the minimum batch
	largest := append([]*entities.Ingredient(nil), stocked...)
	sort.SliceStable(largest, func(i, j int) bool {
		return largest[i].Inventory > largest[j].Inventory
	})
	needed := 0
	reached := 0.0
	subjects := make([]string, 0)
	for _, ingredient := range largest {
		if reached >= instance.Batch.Min {
			break
		}
		reached += ingredient.Inventory
		needed++
		subjects = append(subjects, string(ingredient.ID))
	}
	if needed > instance.MaxDistinct {
		causes = append(causes, dto.Cause{
			Code:     dto.CauseCardinalityInventory,
			Score:    scoreCardinality,
			Group:    string(milp.GroupCardinality),
			Subjects: subjects,
			Message: fmt.Sprintf("at least %d ingredients are needed to reach the minimum batch %g but at most %d may be used",
				needed, instance.Batch.Min, instance.MaxDistinct),
		})
	}
	return causes
}

func (a *Analyzer) windowCauses(instance *entities.ProblemInstance, stocked []*entities.Ingredient, window entities.PropertyWindow) []dto.Cause {
	causes := make([]dto.Cause, 0)
	if len(stocked) == 0 {
		return causes
	}

	if !contributed(instance, window.Property) {
		if !window.Contains(0, 0) {
			causes = append(causes, dto.Cause{
				Code:     dto.CauseWindowOrphanProperty,
				Score:    scoreWindowUnreachable,
				Group:    windowGroup(window, 0),
				Subjects: []string{window.Property},
				Message: fmt.Sprintf("no ingredient contributes %s, so its ratio is 0 and misses %s",
					window.Property, window.String()),
			})
		}
		return causes
	}

	low, high := math.Inf(1), math.Inf(-1)
	inside := make([]string, 0)
	for _, ingredient := range stocked {
		c := ingredient.Contribution(window.Property)
		low = math.Min(low, c)
		high = math.Max(high, c)
		if window.Contains(c, 0) {
			inside = append(inside, string(ingredient.ID))
		}
	}

	if window.Max < low || window.Min > high {
		reach := low
		if window.Min > high {
			reach = high
		}
		causes = append(causes, dto.Cause{
			Code:     dto.CauseWindowUnreachable,
			Score:    scoreWindowUnreachable,
			Group:    windowGroup(window, reach),
			Subjects: []string{window.Property},
			Message: fmt.Sprintf("stocked ingredients give %s ratios in [%g, %g], which cannot reach %s",
				window.Property, low, high, window.String()),
		})
		return causes
	}

	if len(inside) == 0 {
		score := scoreNeedsBlend
		if instance.MaxDistinct < 2 {
			score = scoreSingleSource
		}
		causes = append(causes, dto.Cause{
			Code:     dto.CauseWindowNeedsBlend,
			Score:    score,
			Group:    string(milp.GroupWindowMin),
			Subjects: []string{window.Property},
			Message: fmt.Sprintf("no single ingredient meets %s; at least two must be blended (max distinct %d)",
				window.String(), instance.MaxDistinct),
		})
	}
	return causes
}

// windowsConflict reports when no single stocked ingredient satisfies every window
func (a *Analyzer) windowsConflict(instance *entities.ProblemInstance, stocked []*entities.Ingredient) (dto.Cause, bool) {
	if len(instance.Windows) < 2 || len(stocked) == 0 {
		return dto.Cause{}, false
	}
	for _, ingredient := range stocked {
		all := true
		for _, window := range instance.Windows {
			if !window.Contains(ingredient.Contribution(window.Property), 0) {
				all = false
				break
			}
		}
		if all {
			return dto.Cause{}, false
		}
	}

	properties := make([]string, 0, len(instance.Windows))
	for _, window := range instance.Windows {
		properties = append(properties, window.Property)
	}
	score := scoreConflict
	if instance.MaxDistinct == 1 {
		score = scoreConflictSingle
	}
	return dto.Cause{
		Code:     dto.CauseWindowsConflict,
		Score:    score,
		Group:    "window",
		Subjects: properties,
		Message:  "no single ingredient satisfies every window at once; only a blend can",
	}, true
}

func stockedIngredients(instance *entities.ProblemInstance) []*entities.Ingredient {
	stocked := make([]*entities.Ingredient, 0, len(instance.Ingredients))
	for i := range instance.Ingredients {
		if instance.Ingredients[i].Inventory > 0 {
			stocked = append(stocked, &instance.Ingredients[i])
		}
	}
	return stocked
}

func contributed(instance *entities.ProblemInstance, property string) bool {
	for i := range instance.Ingredients {
		if _, ok := instance.Ingredients[i].Contributions[property]; ok {
			return true
		}
	}
	return false
}

// windowGroup names the window row a ratio falls short of
func windowGroup(window entities.PropertyWindow, ratio float64) string {
	if ratio < window.Min {
		return string(milp.GroupWindowMin)
	}
	return string(milp.GroupWindowMax)
}

// rank orders causes by score descending, then by code
func rank(causes []dto.Cause) {
	sort.SliceStable(causes, func(i, j int) bool {
		if causes[i].Score != causes[j].Score {
			return causes[i].Score > causes[j].Score
		}
		return causes[i].Code < causes[j].Code
	})
}
