package repositories

import "github.com/vsinha/blend/pkg/domain/entities"

// IngredientRepository provides access to the ingredient catalog
type IngredientRepository interface {
	GetIngredient(id entities.IngredientID) (*entities.Ingredient, error)
	GetIngredients(ids []entities.IngredientID) ([]entities.Ingredient, error)
	GetAllIngredients() ([]*entities.Ingredient, error)
	LoadIngredients(ingredients []*entities.Ingredient) error
}
