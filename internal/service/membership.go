package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tastebook/backend/internal/models"
	"github.com/tastebook/backend/internal/types"
)

// MembershipKind selects which (user, recipe) membership set a toggle
// operates on.
type MembershipKind int

const (
	MembershipFavorite MembershipKind = iota
	MembershipShoppingCart
)

func (k MembershipKind) String() string {
	switch k {
	case MembershipFavorite:
		return "favorites"
	case MembershipShoppingCart:
		return "shopping cart"
	default:
		return "unknown"
	}
}

func (k MembershipKind) entryName() string {
	switch k {
	case MembershipFavorite:
		return "favorite entry"
	default:
		return "shopping cart entry"
	}
}

// MembershipService implements the idempotency-guarded add/remove toggles for
// favorites and shopping-cart entries. Adding an existing pair and removing a
// missing pair are distinct errors, never silent no-ops. The unique index on
// (user_id, recipe_id) is the real race guard; the existence checks here only
// shape the error message.
type MembershipService struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewMembershipService creates a new MembershipService instance
func NewMembershipService(db *gorm.DB, logger *zap.Logger) *MembershipService {
	return &MembershipService{db: db, logger: logger}
}

// Add inserts a (user, recipe) pair into the given membership set and returns
// the recipe summary. The pair already existing is a conflict.
func (s *MembershipService) Add(ctx context.Context, userID, recipeID uuid.UUID, kind MembershipKind) (*types.RecipeSummary, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		return nil, translateStoreError(err, "recipe", "")
	}

	exists, err := s.exists(ctx, userID, recipeID, kind)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, newConflictError("recipe already in %s", kind)
	}

	if err := s.insert(ctx, userID, recipeID, kind); err != nil {
		return nil, translateStoreError(err, "recipe",
			"recipe already in "+kind.String())
	}

	s.logger.Info("membership added",
		zap.String("kind", kind.String()),
		zap.String("user_id", userID.String()),
		zap.String("recipe_id", recipeID.String()))

	summary := types.NewRecipeSummary(&recipe)
	return &summary, nil
}

// Remove deletes the single matching (user, recipe) pair. A missing pair is
// reported as not found.
func (s *MembershipService) Remove(ctx context.Context, userID, recipeID uuid.UUID, kind MembershipKind) error {
	var result *gorm.DB
	switch kind {
	case MembershipFavorite:
		result = s.db.WithContext(ctx).
			Where("user_id = ? AND recipe_id = ?", userID, recipeID).
			Delete(&models.FavoriteRecipe{})
	default:
		result = s.db.WithContext(ctx).
			Where("user_id = ? AND recipe_id = ?", userID, recipeID).
			Delete(&models.ShoppingCartEntry{})
	}
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return newNotFoundError(kind.entryName())
	}

	s.logger.Info("membership removed",
		zap.String("kind", kind.String()),
		zap.String("user_id", userID.String()),
		zap.String("recipe_id", recipeID.String()))
	return nil
}

func (s *MembershipService) exists(ctx context.Context, userID, recipeID uuid.UUID, kind MembershipKind) (bool, error) {
	var count int64
	query := s.db.WithContext(ctx)
	switch kind {
	case MembershipFavorite:
		query = query.Model(&models.FavoriteRecipe{})
	default:
		query = query.Model(&models.ShoppingCartEntry{})
	}
	err := query.Where("user_id = ? AND recipe_id = ?", userID, recipeID).Count(&count).Error
	return count > 0, err
}

func (s *MembershipService) insert(ctx context.Context, userID, recipeID uuid.UUID, kind MembershipKind) error {
	switch kind {
	case MembershipFavorite:
		return s.db.WithContext(ctx).Create(&models.FavoriteRecipe{
			UserID:   userID,
			RecipeID: recipeID,
		}).Error
	default:
		return s.db.WithContext(ctx).Create(&models.ShoppingCartEntry{
			UserID:   userID,
			RecipeID: recipeID,
		}).Error
	}
}
