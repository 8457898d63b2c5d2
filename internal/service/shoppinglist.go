package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IngredientTotal is one consolidated line of the shopping-list report:
// the summed amount of a (name, unit) pair across every recipe in the
// user's cart.
type IngredientTotal struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int64  `json:"amount"`
}

// ShoppingListService consolidates ingredient amounts across a user's
// shopping-cart recipes.
type ShoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// Aggregate sums ingredient amounts over every recipe in the user's
// shopping cart, grouped by (name, unit) and sorted by name then unit. An empty
// cart yields an empty slice, not an error.
func (s *ShoppingListService) Aggregate(ctx context.Context, userID uuid.UUID) ([]IngredientTotal, error) {
	var totals []IngredientTotal
	err := s.db.WithContext(ctx).
		Table("recipe_ingredients").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN shopping_list_entries ON shopping_list_entries.recipe_id = recipe_ingredients.recipe_id").
		Where("shopping_list_entries.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name ASC, ingredients.measurement_unit ASC").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return totals, nil
}

// RenderText formats the report as the downloadable plain-text artifact.
// An empty report renders to empty content.
func RenderText(totals []IngredientTotal) string {
	if len(totals) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Shopping list:\n")
	for _, t := range totals {
		fmt.Fprintf(&b, "%s (%s) - %d\n", t.Name, t.MeasurementUnit, t.Amount)
	}
	return b.String()
}
