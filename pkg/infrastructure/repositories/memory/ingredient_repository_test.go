package memory

import (
	"strings"
	"sync"
	"testing"

	"github.com/vsinha/blend/pkg/domain/entities"
)

func TestIngredientRepository_SaveIngredient(t *testing.T) {
	repo := NewIngredientRepository(10)

	ingredient := &entities.Ingredient{
		ID:            "Crystal60",
		UnitCost:      3.0,
		ActivationFee: 25.0,
		Contributions: map[string]float64{"color": 6.0, "body": 1.2},
		Inventory:     40,
	}

	err := repo.SaveIngredient(ingredient)
	if err != nil {
		t.Fatalf("Failed to save ingredient: %v", err)
	}

	retrieved, err := repo.GetIngredient("Crystal60")
	if err != nil {
		t.Fatalf("Failed to get ingredient: %v", err)
	}

	if retrieved.UnitCost != ingredient.UnitCost {
		t.Errorf("Expected unit cost %g, got %g", ingredient.UnitCost, retrieved.UnitCost)
	}
	if retrieved.ActivationFee != ingredient.ActivationFee {
		t.Errorf("Expected activation fee %g, got %g", ingredient.ActivationFee, retrieved.ActivationFee)
	}
	if retrieved.Contribution("color") != 6.0 {
		t.Errorf("Expected color contribution 6, got %g", retrieved.Contribution("color"))
	}

	// Stored copy is isolated from the caller's map
	ingredient.Contributions["color"] = 100
	retrieved, _ = repo.GetIngredient("Crystal60")
	if retrieved.Contribution("color") != 6.0 {
		t.Errorf("Expected stored contribution to stay 6, got %g", retrieved.Contribution("color"))
	}
}

func TestIngredientRepository_SaveIngredient_Duplicate(t *testing.T) {
	repo := NewIngredientRepository(10)

	first := &entities.Ingredient{ID: "Pilsner", UnitCost: 1.8, Inventory: 160}
	if err := repo.SaveIngredient(first); err != nil {
		t.Fatalf("Failed to save ingredient first time: %v", err)
	}

	duplicate := &entities.Ingredient{ID: "Pilsner", UnitCost: 9.9, Inventory: 1}
	err := repo.SaveIngredient(duplicate)
	if err == nil {
		t.Fatal("Expected error when saving duplicate id, got none")
	}
	if !strings.Contains(err.Error(), "duplicate ingredient id") {
		t.Errorf("Expected error message to contain 'duplicate ingredient id', got: %v", err)
	}

	retrieved, err := repo.GetIngredient("Pilsner")
	if err != nil {
		t.Fatalf("Failed to get original ingredient: %v", err)
	}
	if retrieved.UnitCost != 1.8 {
		t.Errorf("Expected original unit cost 1.8, got %g", retrieved.UnitCost)
	}
}

func TestIngredientRepository_RejectsInvalid(t *testing.T) {
	repo := NewIngredientRepository(1)
	err := repo.SaveIngredient(&entities.Ingredient{ID: "Bad", UnitCost: 1, Inventory: -5})
	if err == nil {
		t.Fatal("Expected validation error for negative inventory")
	}
	if repo.Count() != 0 {
		t.Errorf("Expected nothing stored, got %d", repo.Count())
	}
}

func TestIngredientRepository_GetIngredients(t *testing.T) {
	repo := NewIngredientRepository(3)
	err := repo.LoadIngredients([]*entities.Ingredient{
		{ID: "Pilsner", UnitCost: 1.8, Inventory: 160},
		{ID: "Vienna", UnitCost: 2.1, Inventory: 80},
		{ID: "Munich", UnitCost: 2.2, Inventory: 80},
	})
	if err != nil {
		t.Fatalf("LoadIngredients failed: %v", err)
	}

	selected, err := repo.GetIngredients([]entities.IngredientID{"Munich", "Pilsner"})
	if err != nil {
		t.Fatalf("GetIngredients failed: %v", err)
	}
	if len(selected) != 2 || selected[0].ID != "Munich" || selected[1].ID != "Pilsner" {
		t.Errorf("Expected [Munich Pilsner] in request order, got %v", selected)
	}

	if _, err := repo.GetIngredients([]entities.IngredientID{"Wheat"}); err == nil {
		t.Error("Expected error for unknown ingredient")
	}

	all, err := repo.GetAllIngredients()
	if err != nil {
		t.Fatalf("GetAllIngredients failed: %v", err)
	}
	if len(all) != 3 || all[0].ID != "Pilsner" || all[2].ID != "Munich" {
		t.Errorf("Expected insertion order, got %d ingredients", len(all))
	}
}

func TestIngredientRepository_ConcurrentReads(t *testing.T) {
	repo := NewIngredientRepository(1)
	if err := repo.SaveIngredient(&entities.Ingredient{ID: "Wheat", UnitCost: 2, Inventory: 60}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.GetIngredient("Wheat"); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
}
