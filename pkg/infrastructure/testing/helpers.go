// Package testing holds shared blend fixtures for package tests and the example program.
package testing

import (
	"fmt"

	"github.com/vsinha/blend/pkg/domain/entities"
	"github.com/vsinha/blend/pkg/infrastructure/repositories/memory"
)

// BrewOptimalCost is the minimum cost of the brew scenario
const BrewOptimalCost = 393.742857142857

// BuildBrewTestData builds the six-malt brewing scenario: a 180-200 kg grist,
// color in [2.5, 5.0], body in [1.15, 1.45] and at most four malts
func BuildBrewTestData() (*memory.IngredientRepository, *entities.ProblemInstance) {
	repo := memory.NewIngredientRepository(6)

	malts := []*entities.Ingredient{
		malt("Pilsner", 1.8, 0, 1.0, 1.0, 160),
		malt("Vienna", 2.1, 0, 2.0, 1.4, 80),
		malt("Munich", 2.2, 0, 3.0, 1.6, 80),
		malt("Crystal60", 3.0, 25, 6.0, 1.2, 40),
		malt("Roasted", 3.4, 25, 12.0, 0.8, 20),
		malt("Wheat", 2.0, 0, 1.0, 1.5, 60),
	}
	if err := repo.LoadIngredients(malts); err != nil {
		panic(fmt.Sprintf("brew fixture: %v", err))
	}

	ingredients := make([]entities.Ingredient, len(malts))
	for i, m := range malts {
		ingredients[i] = *m
	}
	instance := mustInstance(
		ingredients,
		entities.QuantityBounds{Min: 180, Max: 200},
		[]entities.PropertyWindow{
			{Property: "color", Min: 2.5, Max: 5.0},
			{Property: "body", Min: 1.15, Max: 1.45},
		},
		4,
	)
	return repo, instance
}

// ScenarioA is the two-malt blend whose optimum uses 250/3 kg Pilsner and
// 50/3 kg Munich for a cost of 105
func ScenarioA() *entities.ProblemInstance {
	return mustInstance(
		[]entities.Ingredient{
			*malt("Pilsner", 1.0, 0, 2.0, 1.1, 150),
			*malt("Munich", 1.3, 0, 5.0, 1.3, 60),
		},
		entities.QuantityBounds{Min: 100, Max: 150},
		[]entities.PropertyWindow{
			{Property: "color", Min: 2.5, Max: 5.0},
			{Property: "body", Min: 1.0, Max: 1.4},
		},
		2,
	)
}

// ScenarioB has a single ingredient whose color can never reach its window
func ScenarioB() *entities.ProblemInstance {
	return mustInstance(
		[]entities.Ingredient{
			{ID: "Pale", UnitCost: 1.0, Contributions: map[string]float64{"color": 1.0}, Inventory: 100},
		},
		entities.QuantityBounds{Min: 10, Max: 50},
		[]entities.PropertyWindow{{Property: "color", Min: 2.0, Max: 3.0}},
		1,
	)
}

// ScenarioC asks for a 200 kg batch from 150 kg of total stock
func ScenarioC() *entities.ProblemInstance {
	return mustInstance(
		[]entities.Ingredient{
			*malt("Pilsner", 1.0, 0, 2.0, 1.1, 100),
			*malt("Munich", 1.3, 0, 5.0, 1.3, 50),
		},
		entities.QuantityBounds{Min: 200, Max: 250},
		[]entities.PropertyWindow{{Property: "color", Min: 2.5, Max: 5.0}},
		2,
	)
}

func malt(id string, cost, fee, color, body, stock float64) *entities.Ingredient {
	ingredient, err := entities.NewIngredient(
		entities.IngredientID(id), cost, fee,
		map[string]float64{"color": color, "body": body},
		stock,
	)
	if err != nil {
		panic(fmt.Sprintf("fixture malt %s: %v", id, err))
	}
	return ingredient
}

func mustInstance(ingredients []entities.Ingredient, batch entities.QuantityBounds, windows []entities.PropertyWindow, maxDistinct int) *entities.ProblemInstance {
	instance, err := entities.NewProblemInstance(ingredients, batch, windows, maxDistinct)
	if err != nil {
		panic(fmt.Sprintf("fixture instance: %v", err))
	}
	return instance
}
