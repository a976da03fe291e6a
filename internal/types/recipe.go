package types

import (
	"time"

	"github.com/google/uuid"

	"github.com/tastebook/backend/internal/models"
)

// IngredientAmount is the read shape of one recipe ingredient with its
// resolved catalog fields.
type IngredientAmount struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
	Amount          int       `json:"amount"`
}

// Author is the read shape of a recipe author.
type Author struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsSubscribed bool      `json:"is_subscribed"`
}

// Recipe is the fully hydrated read shape of a recipe. It always carries
// resolved ingredient and tag objects, never foreign-key ids.
type Recipe struct {
	ID               uuid.UUID          `json:"id"`
	Author           Author             `json:"author"`
	Name             string             `json:"name"`
	ImageURL         string             `json:"image"`
	Text             string             `json:"text"`
	CookingTime      int                `json:"cooking_time"`
	Ingredients      []IngredientAmount `json:"ingredients"`
	Tags             []models.Tag       `json:"tags"`
	IsFavorited      bool               `json:"is_favorited"`
	IsInShoppingCart bool               `json:"is_in_shopping_cart"`
	FavoriteCount    int64              `json:"favorite_count"`
	CreatedAt        time.Time          `json:"created_at"`
}

// RecipeSummary is the lightweight recipe shape returned by the favorite,
// shopping-cart and subscription endpoints.
type RecipeSummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	ImageURL    string    `json:"image"`
	CookingTime int       `json:"cooking_time"`
}

// SubscriptionEntry describes one followed author with a bounded preview of
// their recipes.
type SubscriptionEntry struct {
	Author       Author          `json:"author"`
	RecipesCount int64           `json:"recipes_count"`
	Recipes      []RecipeSummary `json:"recipes"`
}

// NewRecipeSummary builds the lightweight shape from a stored recipe.
func NewRecipeSummary(r *models.Recipe) RecipeSummary {
	return RecipeSummary{
		ID:          r.ID,
		Name:        r.Name,
		ImageURL:    r.ImageURL,
		CookingTime: r.CookingTime,
	}
}
