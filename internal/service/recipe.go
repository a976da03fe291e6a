package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tastebook/backend/internal/models"
	"github.com/tastebook/backend/internal/types"
)

// Principal is the authenticated identity a handler resolved for the current
// request. Services never reach into request-scoped state; the caller passes
// the principal explicitly.
type Principal struct {
	UserID  uuid.UUID
	IsAdmin bool
}

// RecipeInput carries the write shape of a recipe: scalar fields plus the
// nested ingredient-amount pairs and tag ids.
type RecipeInput struct {
	Name        string
	ImageURL    string
	Text        string
	CookingTime int
	Ingredients []types.IngredientAmountInput
	TagIDs      []uuid.UUID
}

// ListRecipesFilter narrows recipe listings.
type ListRecipesFilter struct {
	AuthorID         *uuid.UUID
	TagSlugs         []string
	IsFavorited      bool
	IsInShoppingCart bool
}

// RecipeService handles recipe authoring and reads
type RecipeService struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, logger *zap.Logger) *RecipeService {
	return &RecipeService{db: db, logger: logger}
}

// CreateRecipe persists a recipe together with its ingredient-amount and tag
// links in a single transaction. Nothing is written if any step fails.
func (s *RecipeService) CreateRecipe(ctx context.Context, author Principal, input RecipeInput) (*types.Recipe, error) {
	if err := validateRecipeInput(input); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("author_id = ? AND name = ?", author.UserID, input.Name).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, newConflictError("recipe %q already exists for this author", input.Name)
	}

	recipe := models.Recipe{
		AuthorID:    author.UserID,
		Name:        input.Name,
		ImageURL:    input.ImageURL,
		Text:        input.Text,
		CookingTime: input.CookingTime,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return translateStoreError(err, "recipe",
				fmt.Sprintf("recipe %q already exists for this author", input.Name))
		}
		return s.insertLinks(tx, &recipe, input)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("recipe created",
		zap.String("recipe_id", recipe.ID.String()),
		zap.String("author_id", author.UserID.String()))

	return s.GetRecipe(ctx, &author.UserID, recipe.ID)
}

// UpdateRecipe replaces a recipe's scalar fields and all of its links. The
// existing links are deleted and rebuilt from the input rather than diffed;
// the surrounding transaction guarantees the recipe is never left without
// its ingredients.
func (s *RecipeService) UpdateRecipe(ctx context.Context, principal Principal, id uuid.UUID, input RecipeInput) (*types.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		return nil, translateStoreError(err, "recipe", "")
	}
	if recipe.AuthorID != principal.UserID && !principal.IsAdmin {
		return nil, newPermissionError("only the author may update this recipe")
	}
	if err := validateRecipeInput(input); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("author_id = ? AND name = ? AND id <> ?", recipe.AuthorID, input.Name, recipe.ID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, newConflictError("recipe %q already exists for this author", input.Name)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).
			Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}

		updates := map[string]any{
			"name":         input.Name,
			"text":         input.Text,
			"cooking_time": input.CookingTime,
		}
		if input.ImageURL != "" {
			updates["image_url"] = input.ImageURL
		}
		if err := tx.Model(&recipe).Updates(updates).Error; err != nil {
			return translateStoreError(err, "recipe",
				fmt.Sprintf("recipe %q already exists for this author", input.Name))
		}

		return s.insertLinks(tx, &recipe, input)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("recipe updated", zap.String("recipe_id", recipe.ID.String()))

	return s.GetRecipe(ctx, &principal.UserID, recipe.ID)
}

// DeleteRecipe removes a recipe, its links and any favorite or shopping-cart
// rows pointing at it. Author-only, like update. The delete is permanent so
// the author may reuse the name.
func (s *RecipeService) DeleteRecipe(ctx context.Context, principal Principal, id uuid.UUID) error {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		return translateStoreError(err, "recipe", "")
	}
	if recipe.AuthorID != principal.UserID && !principal.IsAdmin {
		return newPermissionError("only the author may delete this recipe")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).
			Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).
			Delete(&models.FavoriteRecipe{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).
			Delete(&models.ShoppingCartEntry{}).Error; err != nil {
			return err
		}
		return tx.Delete(&recipe).Error
	})
}

// GetRecipe retrieves the fully hydrated read shape of a recipe. The viewer,
// when present, determines the is_favorited / is_in_shopping_cart flags.
func (s *RecipeService) GetRecipe(ctx context.Context, viewer *uuid.UUID, id uuid.UUID) (*types.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Ingredients.Ingredient").
		Preload("Tags").
		First(&recipe, "id = ?", id).Error
	if err != nil {
		return nil, translateStoreError(err, "recipe", "")
	}
	return s.hydrate(ctx, viewer, &recipe)
}

// ListRecipes lists hydrated recipes, newest first.
func (s *RecipeService) ListRecipes(ctx context.Context, viewer *uuid.UUID, filter ListRecipesFilter) ([]*types.Recipe, error) {
	query := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Ingredients.Ingredient").
		Preload("Tags").
		Order("recipes.created_at DESC")

	if filter.AuthorID != nil {
		query = query.Where("recipes.author_id = ?", *filter.AuthorID)
	}
	if len(filter.TagSlugs) > 0 {
		query = query.
			Joins("JOIN recipe_tags ON recipe_tags.recipe_id = recipes.id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs).
			Distinct("recipes.*")
	}
	if filter.IsFavorited && viewer != nil {
		query = query.
			Joins("JOIN favorite_recipes ON favorite_recipes.recipe_id = recipes.id").
			Where("favorite_recipes.user_id = ?", *viewer)
	}
	if filter.IsInShoppingCart && viewer != nil {
		query = query.
			Joins("JOIN shopping_cart_entries ON shopping_cart_entries.recipe_id = recipes.id").
			Where("shopping_cart_entries.user_id = ?", *viewer)
	}

	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}

	result := make([]*types.Recipe, 0, len(recipes))
	for i := range recipes {
		view, err := s.hydrate(ctx, viewer, &recipes[i])
		if err != nil {
			return nil, err
		}
		result = append(result, view)
	}
	return result, nil
}

// insertLinks writes the ingredient-amount and tag link rows for a recipe.
// Must run inside the caller's transaction.
func (s *RecipeService) insertLinks(tx *gorm.DB, recipe *models.Recipe, input RecipeInput) error {
	for _, item := range input.Ingredients {
		var ingredient models.Ingredient
		if err := tx.First(&ingredient, "id = ?", item.IngredientID).Error; err != nil {
			return translateStoreError(err, "ingredient", "")
		}
		link := models.RecipeIngredient{
			RecipeID:     recipe.ID,
			IngredientID: ingredient.ID,
			Amount:       item.Amount,
		}
		if err := tx.Create(&link).Error; err != nil {
			return translateStoreError(err, "ingredient",
				"ingredient already added to this recipe")
		}
	}

	for _, tagID := range input.TagIDs {
		var tag models.Tag
		if err := tx.First(&tag, "id = ?", tagID).Error; err != nil {
			return translateStoreError(err, "tag", "")
		}
		if err := tx.Model(recipe).Association("Tags").Append(&tag); err != nil {
			return err
		}
	}
	return nil
}

func (s *RecipeService) hydrate(ctx context.Context, viewer *uuid.UUID, recipe *models.Recipe) (*types.Recipe, error) {
	view := &types.Recipe{
		ID: recipe.ID,
		Author: types.Author{
			ID:        recipe.Author.ID,
			Username:  recipe.Author.Username,
			FirstName: recipe.Author.FirstName,
			LastName:  recipe.Author.LastName,
		},
		Name:        recipe.Name,
		ImageURL:    recipe.ImageURL,
		Text:        recipe.Text,
		CookingTime: recipe.CookingTime,
		Tags:        recipe.Tags,
		Ingredients: make([]types.IngredientAmount, 0, len(recipe.Ingredients)),
		CreatedAt:   recipe.CreatedAt,
	}
	for _, link := range recipe.Ingredients {
		view.Ingredients = append(view.Ingredients, types.IngredientAmount{
			ID:              link.Ingredient.ID,
			Name:            link.Ingredient.Name,
			MeasurementUnit: link.Ingredient.MeasurementUnit,
			Amount:          link.Amount,
		})
	}

	if err := s.db.WithContext(ctx).Model(&models.FavoriteRecipe{}).
		Where("recipe_id = ?", recipe.ID).
		Count(&view.FavoriteCount).Error; err != nil {
		return nil, err
	}

	if viewer == nil {
		return view, nil
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.FavoriteRecipe{}).
		Where("user_id = ? AND recipe_id = ?", *viewer, recipe.ID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	view.IsFavorited = count > 0

	if err := s.db.WithContext(ctx).Model(&models.ShoppingCartEntry{}).
		Where("user_id = ? AND recipe_id = ?", *viewer, recipe.ID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	view.IsInShoppingCart = count > 0

	if err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("subscriber_id = ? AND target_user_id = ?", *viewer, recipe.AuthorID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	view.Author.IsSubscribed = count > 0

	return view, nil
}

func validateRecipeInput(input RecipeInput) error {
	if input.CookingTime < 1 {
		return newValidationError("cooking_time", "must be greater than or equal to 1")
	}
	if len(input.Ingredients) == 0 {
		return newValidationError("ingredients", "at least one ingredient is required")
	}

	seen := make(map[uuid.UUID]struct{}, len(input.Ingredients))
	for i, item := range input.Ingredients {
		if item.Amount < 1 {
			return newValidationError(
				fmt.Sprintf("ingredients[%d].amount", i),
				"must be greater than or equal to 1")
		}
		if _, ok := seen[item.IngredientID]; ok {
			return newValidationError(
				fmt.Sprintf("ingredients[%d].id", i),
				"ingredient already added")
		}
		seen[item.IngredientID] = struct{}{}
	}

	seenTags := make(map[uuid.UUID]struct{}, len(input.TagIDs))
	for i, tagID := range input.TagIDs {
		if _, ok := seenTags[tagID]; ok {
			return newValidationError(
				fmt.Sprintf("tags[%d]", i), "tag already added")
		}
		seenTags[tagID] = struct{}{}
	}
	return nil
}
