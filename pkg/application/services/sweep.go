package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/vsinha/blend/pkg/application/dto"
	"github.com/vsinha/blend/pkg/domain/entities"
)

// SweepItem is one instance of a parameter sweep
type SweepItem struct {
	Label    string
	Value    float64
	Instance *entities.ProblemInstance
}

// Sweep solves independent instances in parallel with at most workers
// concurrent solves (0 uses the configured default). Every item gets its own
// result or error; a failing item does not stop the others. The returned error
// is only set when ctx ended before all items ran.
func (s *BlendService) Sweep(ctx context.Context, items []SweepItem, workers int) ([]dto.SweepPoint, error) {
	if workers <= 0 {
		workers = s.config.SweepWorkers
	}
	points := make([]dto.SweepPoint, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, item := range items {
		points[i] = dto.SweepPoint{Index: i, Label: item.Label, Value: item.Value}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				points[i].Err = err
				return nil
			}
			result, err := s.Run(gctx, item.Instance)
			points[i].Result = result
			points[i].Err = err
			return nil
		})
	}
	_ = g.Wait()

	return points, ctx.Err()
}

// BatchMaxSweep builds one item per batch maximum
func BatchMaxSweep(base *entities.ProblemInstance, values []float64) ([]SweepItem, error) {
	items := make([]SweepItem, 0, len(values))
	for _, v := range values {
		instance, err := base.WithBatchMax(v)
		if err != nil {
			return nil, fmt.Errorf("batch max %g: %w", v, err)
		}
		items = append(items, SweepItem{Label: "batch-max", Value: v, Instance: instance})
	}
	return items, nil
}

// BatchMinSweep builds one item per batch minimum
func BatchMinSweep(base *entities.ProblemInstance, values []float64) ([]SweepItem, error) {
	items := make([]SweepItem, 0, len(values))
	for _, v := range values {
		instance, err := base.WithBatchMin(v)
		if err != nil {
			return nil, fmt.Errorf("batch min %g: %w", v, err)
		}
		items = append(items, SweepItem{Label: "batch-min", Value: v, Instance: instance})
	}
	return items, nil
}

// MaxDistinctSweep builds one item per cardinality limit
func MaxDistinctSweep(base *entities.ProblemInstance, values []int) ([]SweepItem, error) {
	items := make([]SweepItem, 0, len(values))
	for _, v := range values {
		instance, err := base.WithMaxDistinct(v)
		if err != nil {
			return nil, fmt.Errorf("max distinct %d: %w", v, err)
		}
		items = append(items, SweepItem{Label: "max-distinct", Value: float64(v), Instance: instance})
	}
	return items, nil
}

// InventorySweep builds one item per inventory level of a single ingredient
func InventorySweep(base *entities.ProblemInstance, id entities.IngredientID, values []float64) ([]SweepItem, error) {
	items := make([]SweepItem, 0, len(values))
	for _, v := range values {
		instance, err := base.WithInventory(id, v)
		if err != nil {
			return nil, fmt.Errorf("inventory %s=%g: %w", id, v, err)
		}
		items = append(items, SweepItem{Label: "inventory:" + string(id), Value: v, Instance: instance})
	}
	return items, nil
}
