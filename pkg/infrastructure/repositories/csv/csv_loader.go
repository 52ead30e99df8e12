package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/vsinha/blend/pkg/domain/entities"
)

// fixedColumns precede one column per property in an ingredient catalog
var fixedColumns = []string{"id", "unit_cost", "activation_fee", "inventory"}

// Loader handles loading ingredient catalogs from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadIngredients loads an ingredient catalog from a CSV file
func (l *Loader) LoadIngredients(filename string) ([]*entities.Ingredient, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open ingredients file %s: %w", filename, err)
	}
	defer file.Close()

	return l.ReadIngredients(file)
}

// ReadIngredients parses a catalog with header
// id,unit_cost,activation_fee,inventory,<property>...
// An inventory of "unlimited", "inf" or an empty cell means unbounded stock.
// An empty property cell means the ingredient does not contribute it.
func (l *Loader) ReadIngredients(r io.Reader) ([]*entities.Ingredient, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read ingredients CSV: %w", err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("ingredients CSV must have header and at least one data row")
	}

	header := records[0]
	if !validateHeader(header, fixedColumns) {
		return nil, fmt.Errorf("ingredients CSV header mismatch. Expected prefix: %v, Got: %v", fixedColumns, header)
	}
	properties := make([]string, 0, len(header)-len(fixedColumns))
	for _, name := range header[len(fixedColumns):] {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("ingredients CSV header has an empty property column")
		}
		properties = append(properties, name)
	}

	ingredients := make([]*entities.Ingredient, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) != len(header) {
			return nil, fmt.Errorf("ingredients CSV row %d: expected %d columns, got %d", i+2, len(header), len(record))
		}

		ingredient, err := parseIngredient(record, properties)
		if err != nil {
			return nil, fmt.Errorf("ingredients CSV row %d: %w", i+2, err)
		}
		ingredients = append(ingredients, ingredient)
	}

	return ingredients, nil
}

func parseIngredient(record []string, properties []string) (*entities.Ingredient, error) {
	id := strings.TrimSpace(record[0])

	unitCost, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid unit_cost: %s", record[1])
	}

	activationFee := 0.0
	if s := strings.TrimSpace(record[2]); s != "" {
		activationFee, err = strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid activation_fee: %s", record[2])
		}
	}

	inventory, err := ParseInventory(record[3])
	if err != nil {
		return nil, err
	}

	contributions := make(map[string]float64, len(properties))
	for k, property := range properties {
		cell := strings.TrimSpace(record[len(fixedColumns)+k])
		if cell == "" {
			continue
		}
		value, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s contribution: %s", property, cell)
		}
		contributions[property] = value
	}

	return entities.NewIngredient(entities.IngredientID(id), unitCost, activationFee, contributions, inventory)
}

// ParseInventory parses an inventory cell; "unlimited", "inf" and "" mean unbounded
func ParseInventory(s string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unlimited", "inf", "+inf":
		return entities.Unlimited, nil
	}
	inventory, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid inventory: %s", s)
	}
	return inventory, nil
}

// validateHeader checks that header starts with the expected columns
func validateHeader(header, expected []string) bool {
	if len(header) < len(expected) {
		return false
	}
	for i, col := range expected {
		if strings.TrimSpace(strings.ToLower(header[i])) != col {
			return false
		}
	}
	return true
}
