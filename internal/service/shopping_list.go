package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// shoppingListHeader is the first line of every rendered shopping list.
const shoppingListHeader = "Список покупок:"

// ShoppingListItem is one aggregated (name, unit) group.
type ShoppingListItem struct {
	Name            string
	MeasurementUnit string
	Total           int
}

// ShoppingListService renders a user's shopping cart as a flat text list.
type ShoppingListService struct {
	db *gorm.DB
}

// NewShoppingListService creates a new ShoppingListService instance
func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// Aggregate sums ingredient amounts across every recipe in the user's cart,
// grouped by exact (name, measurement unit) equality. The same ingredient
// name under two different units yields two rows. Rows are ordered by name,
// then unit, so repeated calls over the same data render identically.
func (s *ShoppingListService) Aggregate(ctx context.Context, userID uuid.UUID) ([]ShoppingListItem, error) {
	var items []ShoppingListItem
	err := s.db.WithContext(ctx).
		Table("recipe_ingredients").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS total").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN shopping_cart_entries ON shopping_cart_entries.recipe_id = recipe_ingredients.recipe_id").
		Where("shopping_cart_entries.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name ASC, ingredients.measurement_unit ASC").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// BuildList renders the aggregated cart as text: the fixed header followed by
// one "{name} - {total} {unit}" line per group. An empty cart renders just
// the header.
func (s *ShoppingListService) BuildList(ctx context.Context, userID uuid.UUID) (string, error) {
	items, err := s.Aggregate(ctx, userID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(shoppingListHeader)
	for _, item := range items {
		b.WriteString(fmt.Sprintf("\n%s - %d %s", item.Name, item.Total, item.MeasurementUnit))
	}
	return b.String(), nil
}
