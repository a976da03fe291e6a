package types

import "github.com/google/uuid"

// RegisterRequest represents the request body for user registration
type RegisterRequest struct {
	Username  string `json:"username" binding:"required,max=150"`
	Email     string `json:"email" binding:"required,email,max=254"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// IngredientAmountInput is one (ingredient, amount) pair of a recipe write.
// Amount bounds are re-checked in the service so callers that bypass the HTTP
// layer get the same field-level errors.
type IngredientAmountInput struct {
	IngredientID uuid.UUID `json:"id" binding:"required"`
	Amount       int       `json:"amount" binding:"required"`
}

// CreateRecipeRequest represents the request body for creating a recipe
type CreateRecipeRequest struct {
	Name        string                  `json:"name" binding:"required,max=255"`
	Image       string                  `json:"image" binding:"required"`
	Text        string                  `json:"text" binding:"required"`
	CookingTime int                     `json:"cooking_time" binding:"required"`
	Ingredients []IngredientAmountInput `json:"ingredients" binding:"required"`
	Tags        []uuid.UUID             `json:"tags" binding:"required"`
}

// UpdateRecipeRequest represents the request body for updating a recipe
type UpdateRecipeRequest struct {
	Name        string                  `json:"name" binding:"required,max=255"`
	Image       string                  `json:"image"`
	Text        string                  `json:"text" binding:"required"`
	CookingTime int                     `json:"cooking_time" binding:"required"`
	Ingredients []IngredientAmountInput `json:"ingredients" binding:"required"`
	Tags        []uuid.UUID             `json:"tags" binding:"required"`
}

// CreateTagRequest represents the request body for creating a tag
type CreateTagRequest struct {
	Name  string `json:"name" binding:"required,max=256"`
	Color string `json:"color" binding:"required"`
	Slug  string `json:"slug"`
}
