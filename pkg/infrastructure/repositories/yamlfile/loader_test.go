package yamlfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/blend/pkg/domain/entities"
	fixtures "github.com/vsinha/blend/pkg/infrastructure/testing"
)

func TestLoader_InlineIngredients(t *testing.T) {
	doc := `
batch: {min: 100, max: 150}
max_distinct: 2
windows:
  - {property: color, min: 2.5, max: 5.0}
ingredients:
  - id: Pilsner
    unit_cost: 1.0
    inventory: 150
    contributions: {color: 2.0}
  - id: Water
    unit_cost: 0.01
    inventory: unlimited
`
	instance, err := NewLoader().Parse([]byte(doc), "")
	require.NoError(t, err)

	require.Len(t, instance.Ingredients, 2)
	assert.Equal(t, entities.IngredientID("Pilsner"), instance.Ingredients[0].ID)
	assert.Equal(t, 150.0, instance.Ingredients[0].Inventory)
	assert.True(t, instance.Ingredients[1].HasUnlimitedInventory())
	assert.Equal(t, 2, instance.MaxDistinct)
	assert.Equal(t, entities.QuantityBounds{Min: 100, Max: 150}, instance.Batch)
	assert.Equal(t, "color", instance.Windows[0].Property)
}

func TestLoader_CatalogWithSubset(t *testing.T) {
	dir := t.TempDir()
	catalog := "id,unit_cost,activation_fee,inventory,color,body\n" +
		"Pilsner,1.8,0,160,1.0,1.0\n" +
		"Munich,2.2,0,80,3.0,1.6\n" +
		"Roasted,3.4,25,20,12.0,0.8\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "malts.csv"), []byte(catalog), 0o644))
	doc := `
catalog: malts.csv
use: [Roasted, Pilsner]
batch: {min: 10, max: 20}
`
	path := filepath.Join(dir, "problem.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	instance, err := NewLoader().Load(path)
	require.NoError(t, err)

	require.Len(t, instance.Ingredients, 2)
	assert.Equal(t, entities.IngredientID("Roasted"), instance.Ingredients[0].ID)
	assert.Equal(t, 25.0, instance.Ingredients[0].ActivationFee)
	// max_distinct defaults to the number of ingredients
	assert.Equal(t, 2, instance.MaxDistinct)
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "malformed yaml", doc: "batch: [1, 2"},
		{name: "bad inventory", doc: "batch: {min: 0, max: 1}\ningredients:\n  - {id: A, unit_cost: 1, inventory: lots}\n"},
		{name: "duplicate id", doc: "batch: {min: 0, max: 1}\ningredients:\n  - {id: A, unit_cost: 1, inventory: 1}\n  - {id: A, unit_cost: 2, inventory: 1}\n"},
		{name: "unknown subset id", doc: "batch: {min: 0, max: 1}\nuse: [B]\ningredients:\n  - {id: A, unit_cost: 1, inventory: 1}\n"},
		{name: "inverted batch", doc: "batch: {min: 5, max: 1}\n"},
		{name: "missing catalog", doc: "catalog: nowhere.csv\nbatch: {min: 0, max: 1}\n"},
		{name: "misspelled ingredient key", doc: "batch: {min: 0, max: 1}\ningredients:\n  - {id: A, unit_cst: 1, inventory: 1}\n"},
		{name: "misspelled window key", doc: "batch: {min: 0, max: 1}\nwindows:\n  - {property: color, minimum: 1, max: 2}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader().Parse([]byte(tt.doc), t.TempDir())
			assert.Error(t, err)
		})
	}

	_, err := NewLoader().Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEncode_RoundTrip(t *testing.T) {
	_, brew := fixtures.BuildBrewTestData()
	water, err := entities.NewIngredient("Water", 0.01, 0, nil, entities.Unlimited)
	require.NoError(t, err)
	brew.Ingredients = append(brew.Ingredients, *water)

	data, err := Encode(brew)
	require.NoError(t, err)
	assert.Contains(t, string(data), "inventory: unlimited")

	decoded, err := NewLoader().Parse(data, "")
	require.NoError(t, err)
	if diff := cmp.Diff(brew, decoded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_ExampleBrewProblem(t *testing.T) {
	instance, err := NewLoader().Load(filepath.Join("..", "..", "..", "..", "example", "data", "brew.yaml"))
	require.NoError(t, err)

	_, want := fixtures.BuildBrewTestData()
	if diff := cmp.Diff(want, instance); diff != "" {
		t.Errorf("example problem differs from brew fixture (-want +got):\n%s", diff)
	}
}

func TestLoader_RejectsUnknownKeys(t *testing.T) {
	doc := `
batch: {min: 10, max: 20}
max_distnct: 1
ingredients:
  - {id: A, unit_cost: 1, inventory: 100}
  - {id: B, unit_cost: 2, inventory: 100}
`
	_, err := NewLoader().Parse([]byte(doc), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_distnct")
}
