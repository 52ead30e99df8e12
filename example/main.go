package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/vsinha/blend/pkg/application/services"
	"github.com/vsinha/blend/pkg/application/services/interpret"
	"github.com/vsinha/blend/pkg/application/services/solve"
	"github.com/vsinha/blend/pkg/infrastructure/solvers/branchbound"
	testdata "github.com/vsinha/blend/pkg/infrastructure/testing"
)

func main() {
	ctx := context.Background()

	// Six malts, a 180-200 kg grist and two style windows
	repo, instance := testdata.BuildBrewTestData()

	adapter, err := solve.NewAdapter(branchbound.New(branchbound.DefaultConfig()), solve.Config{
		DefaultTimeLimit: 30 * time.Second,
	})
	if err != nil {
		fmt.Printf("❌ Setup failed: %v\n", err)
		return
	}
	service, err := services.NewBlendService(adapter, services.BlendConfig{}, services.WithServiceLogger(logr.Discard()))
	if err != nil {
		fmt.Printf("❌ Setup failed: %v\n", err)
		return
	}

	fmt.Println("🍺 Blending a pale ale grist...")
	fmt.Printf("Catalog: %d malts | Batch: %g-%g kg | Max distinct: %d\n",
		repo.Count(), instance.Batch.Min, instance.Batch.Max, instance.MaxDistinct)
	for _, w := range instance.Windows {
		fmt.Printf("  %s\n", w.String())
	}
	fmt.Println()

	result, err := service.Run(ctx, instance)
	if err != nil {
		fmt.Printf("❌ Blend failed: %v\n", err)
		return
	}

	fmt.Printf("📊 Cheapest grist: %s (%d malts, %.1f kg)\n",
		result.TotalCost.StringFixed(2), result.DistinctCount, result.TotalQuantity)
	for _, line := range result.Used {
		fmt.Printf("  %-10s %7.2f kg  %5.1f%%  %s\n",
			line.ID, line.Quantity, 100*line.Share, line.IngredientCost.Add(line.ActivationFee).StringFixed(2))
	}
	for _, p := range result.Properties {
		fmt.Printf("  %s = %.3f (window %g-%g)\n", p.Property, p.Achieved, p.Min, p.Max)
	}
	fmt.Println()

	// How does the grist cost react to less Roasted malt on hand?
	items, err := services.InventorySweep(instance, "Roasted", []float64{20, 10, 5, 0})
	if err != nil {
		fmt.Printf("❌ Sweep setup failed: %v\n", err)
		return
	}
	points, err := service.Sweep(ctx, items, 0)
	if err != nil {
		fmt.Printf("❌ Sweep failed: %v\n", err)
		return
	}

	fmt.Println("📦 Roasted malt stock sweep:")
	for _, p := range points {
		var infeasible *interpret.InfeasibleError
		switch {
		case p.Err == nil:
			fmt.Printf("  %5g kg: %s\n", p.Value, p.Result.TotalCost.StringFixed(2))
		case errors.As(p.Err, &infeasible):
			fmt.Printf("  %5g kg: infeasible (%v)\n", p.Value, p.Err)
		default:
			fmt.Printf("  %5g kg: error %v\n", p.Value, p.Err)
		}
	}
	fmt.Println()

	fmt.Println("✅ Blend analysis complete!")
}
