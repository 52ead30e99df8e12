// Package yamlfile reads blend problem descriptions from YAML documents.
//
// A document names the batch bounds, windows and cardinality limit, and takes
// its ingredients from an inline list, a CSV catalog, or both:
//
//	catalog: malts.csv      # relative to the YAML file
//	use: [Pilsner, Munich]  # optional subset, in this order
//	ingredients:
//	  - id: Water
//	    unit_cost: 0.01
//	    inventory: unlimited
//	batch: {min: 180, max: 200}
//	max_distinct: 4
//	windows:
//	  - {property: color, min: 2.5, max: 5.0}
package yamlfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/vsinha/blend/pkg/domain/entities"
	"github.com/vsinha/blend/pkg/domain/repositories"
	"github.com/vsinha/blend/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/blend/pkg/infrastructure/repositories/memory"
)

// Document is the YAML shape of a problem file
type Document struct {
	Catalog     string       `yaml:"catalog,omitempty"`
	Use         []string     `yaml:"use,omitempty"`
	Ingredients []Ingredient `yaml:"ingredients,omitempty"`
	Batch       Batch        `yaml:"batch"`
	MaxDistinct *int         `yaml:"max_distinct,omitempty"`
	Windows     []Window     `yaml:"windows,omitempty"`
}

type Ingredient struct {
	ID            string             `yaml:"id"`
	UnitCost      float64            `yaml:"unit_cost"`
	ActivationFee float64            `yaml:"activation_fee,omitempty"`
	Inventory     Inventory          `yaml:"inventory"`
	Contributions map[string]float64 `yaml:"contributions,omitempty"`
}

type Batch struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

type Window struct {
	Property string  `yaml:"property"`
	Min      float64 `yaml:"min"`
	Max      float64 `yaml:"max"`
}

// Inventory accepts a number or one of "unlimited", "inf"; a missing value is unlimited
type Inventory struct {
	Value float64
	set   bool
}

// UnmarshalYAML implements yaml.Unmarshaler
func (i *Inventory) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: inventory must be a scalar", node.Line)
	}
	v, err := csv.ParseInventory(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	i.Value = v
	i.set = true
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (i Inventory) MarshalYAML() (any, error) {
	if !i.set || i.Value > 1e308 {
		return "unlimited", nil
	}
	return i.Value, nil
}

// Amount returns the inventory, unlimited when the key was absent
func (i Inventory) Amount() float64 {
	if !i.set {
		return entities.Unlimited
	}
	return i.Value
}

// Loader builds problem instances from YAML files
type Loader struct {
	csv *csv.Loader
}

// NewLoader creates a new YAML loader
func NewLoader() *Loader {
	return &Loader{csv: csv.NewLoader()}
}

// Load reads and resolves a problem file
func (l *Loader) Load(path string) (*entities.ProblemInstance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read problem file %s: %w", path, err)
	}
	instance, err := l.Parse(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("problem file %s: %w", path, err)
	}
	return instance, nil
}

// Parse decodes a problem document. baseDir resolves a relative catalog path.
func (l *Loader) Parse(data []byte, baseDir string) (*entities.ProblemInstance, error) {
	var doc Document
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode YAML: %w", err)
	}

	repo := memory.NewIngredientRepository(len(doc.Ingredients))
	if doc.Catalog != "" {
		path := doc.Catalog
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		catalog, err := l.csv.LoadIngredients(path)
		if err != nil {
			return nil, err
		}
		if err := repo.LoadIngredients(catalog); err != nil {
			return nil, err
		}
	}
	for _, ing := range doc.Ingredients {
		ingredient, err := entities.NewIngredient(
			entities.IngredientID(ing.ID), ing.UnitCost, ing.ActivationFee, ing.Contributions, ing.Inventory.Amount())
		if err != nil {
			return nil, err
		}
		if err := repo.SaveIngredient(ingredient); err != nil {
			return nil, err
		}
	}

	ingredients, err := selectIngredients(repo, doc.Use)
	if err != nil {
		return nil, err
	}

	windows := make([]entities.PropertyWindow, len(doc.Windows))
	for i, w := range doc.Windows {
		windows[i] = entities.PropertyWindow{Property: w.Property, Min: w.Min, Max: w.Max}
	}
	maxDistinct := len(ingredients)
	if doc.MaxDistinct != nil {
		maxDistinct = *doc.MaxDistinct
	}

	return entities.NewProblemInstance(
		ingredients,
		entities.QuantityBounds{Min: doc.Batch.Min, Max: doc.Batch.Max},
		windows,
		maxDistinct,
	)
}

func selectIngredients(repo repositories.IngredientRepository, use []string) ([]entities.Ingredient, error) {
	if len(use) > 0 {
		ids := make([]entities.IngredientID, len(use))
		for i, id := range use {
			ids[i] = entities.IngredientID(id)
		}
		return repo.GetIngredients(ids)
	}
	all, err := repo.GetAllIngredients()
	if err != nil {
		return nil, err
	}
	ingredients := make([]entities.Ingredient, len(all))
	for i, ingredient := range all {
		ingredients[i] = *ingredient
	}
	return ingredients, nil
}

// Encode renders an instance as a self-contained problem document
func Encode(instance *entities.ProblemInstance) ([]byte, error) {
	doc := Document{
		Batch: Batch{Min: instance.Batch.Min, Max: instance.Batch.Max},
	}
	maxDistinct := instance.MaxDistinct
	doc.MaxDistinct = &maxDistinct
	for _, ing := range instance.Ingredients {
		doc.Ingredients = append(doc.Ingredients, Ingredient{
			ID:            string(ing.ID),
			UnitCost:      ing.UnitCost,
			ActivationFee: ing.ActivationFee,
			Inventory:     Inventory{Value: ing.Inventory, set: !ing.HasUnlimitedInventory()},
			Contributions: ing.Contributions,
		})
	}
	for _, w := range instance.Windows {
		doc.Windows = append(doc.Windows, Window{Property: w.Property, Min: w.Min, Max: w.Max})
	}
	return yaml.Marshal(doc)
}
