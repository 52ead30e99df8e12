package memory

import (
	"fmt"
	"sync"

	"github.com/vsinha/blend/pkg/domain/entities"
	"github.com/vsinha/blend/pkg/domain/repositories"
)

// IngredientRepository provides in-memory ingredient catalog storage
type IngredientRepository struct {
	mu             sync.RWMutex
	ingredients    []entities.Ingredient
	ingredientsMap map[entities.IngredientID]int
}

// NewIngredientRepository creates a new in-memory ingredient repository
func NewIngredientRepository(expectedIngredients int) *IngredientRepository {
	return &IngredientRepository{
		ingredients:    make([]entities.Ingredient, 0, expectedIngredients),
		ingredientsMap: make(map[entities.IngredientID]int, expectedIngredients),
	}
}

// Verify interface compliance
var _ repositories.IngredientRepository = (*IngredientRepository)(nil)

// LoadIngredients loads ingredients into the repository, rejecting duplicates
func (r *IngredientRepository) LoadIngredients(ingredients []*entities.Ingredient) error {
	for _, ingredient := range ingredients {
		if err := r.SaveIngredient(ingredient); err != nil {
			return err
		}
	}
	return nil
}

// SaveIngredient validates and stores an ingredient
func (r *IngredientRepository) SaveIngredient(ingredient *entities.Ingredient) error {
	if err := ingredient.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.ingredientsMap[ingredient.ID]; exists {
		return fmt.Errorf("duplicate ingredient id: %s", ingredient.ID)
	}
	stored := *ingredient
	stored.Contributions = make(map[string]float64, len(ingredient.Contributions))
	for k, v := range ingredient.Contributions {
		stored.Contributions[k] = v
	}
	r.ingredientsMap[stored.ID] = len(r.ingredients)
	r.ingredients = append(r.ingredients, stored)
	return nil
}

// GetIngredient returns a copy of the ingredient with the given id
func (r *IngredientRepository) GetIngredient(id entities.IngredientID) (*entities.Ingredient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	index, exists := r.ingredientsMap[id]
	if !exists {
		return nil, fmt.Errorf("ingredient not found: %s", id)
	}
	ingredient := r.ingredients[index]
	return &ingredient, nil
}

// GetIngredients returns the requested ingredients in the requested order
func (r *IngredientRepository) GetIngredients(ids []entities.IngredientID) ([]entities.Ingredient, error) {
	out := make([]entities.Ingredient, 0, len(ids))
	for _, id := range ids {
		ingredient, err := r.GetIngredient(id)
		if err != nil {
			return nil, err
		}
		out = append(out, *ingredient)
	}
	return out, nil
}

// GetAllIngredients returns every ingredient in insertion order
func (r *IngredientRepository) GetAllIngredients() ([]*entities.Ingredient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ingredients := make([]*entities.Ingredient, 0, len(r.ingredients))
	for i := range r.ingredients {
		ingredient := r.ingredients[i]
		ingredients = append(ingredients, &ingredient)
	}
	return ingredients, nil
}

// Count returns the number of stored ingredients
func (r *IngredientRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ingredients)
}
