package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tastebook/backend/internal/models"
	"github.com/tastebook/backend/internal/types"
)

// DefaultRecipesPreviewLimit bounds the per-author recipe preview in
// subscription listings when the caller does not pass a limit.
const DefaultRecipesPreviewLimit = 3

// SubscriptionService handles user-to-user follow toggles and listings.
type SubscriptionService struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSubscriptionService creates a new SubscriptionService instance
func NewSubscriptionService(db *gorm.DB, logger *zap.Logger) *SubscriptionService {
	return &SubscriptionService{db: db, logger: logger}
}

// Subscribe makes subscriberID follow targetID. Following oneself is invalid
// regardless of prior state; an existing pair is a conflict.
func (s *SubscriptionService) Subscribe(ctx context.Context, subscriberID, targetID uuid.UUID) (*types.Author, error) {
	if subscriberID == targetID {
		return nil, newValidationError("target_user", "cannot subscribe to yourself")
	}

	var target models.User
	if err := s.db.WithContext(ctx).First(&target, "id = ?", targetID).Error; err != nil {
		return nil, translateStoreError(err, "user", "")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("subscriber_id = ? AND target_user_id = ?", subscriberID, targetID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, newConflictError("already subscribed to %s", target.Username)
	}

	sub := models.Subscription{SubscriberID: subscriberID, TargetUserID: targetID}
	if err := s.db.WithContext(ctx).Create(&sub).Error; err != nil {
		return nil, translateStoreError(err, "user",
			"already subscribed to "+target.Username)
	}

	s.logger.Info("subscription created",
		zap.String("subscriber_id", subscriberID.String()),
		zap.String("target_user_id", targetID.String()))

	return &types.Author{
		ID:           target.ID,
		Username:     target.Username,
		FirstName:    target.FirstName,
		LastName:     target.LastName,
		IsSubscribed: true,
	}, nil
}

// Unsubscribe removes an existing follow pair; a missing pair is not found.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, subscriberID, targetID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("subscriber_id = ? AND target_user_id = ?", subscriberID, targetID).
		Delete(&models.Subscription{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return newNotFoundError("subscription")
	}
	return nil
}

// ListSubscriptions returns every author the user follows, each with their
// recipe count and a preview of at most recipesLimit recipes, newest first.
func (s *SubscriptionService) ListSubscriptions(ctx context.Context, subscriberID uuid.UUID, recipesLimit int) ([]types.SubscriptionEntry, error) {
	if recipesLimit <= 0 {
		recipesLimit = DefaultRecipesPreviewLimit
	}

	var subs []models.Subscription
	err := s.db.WithContext(ctx).
		Preload("TargetUser").
		Where("subscriber_id = ?", subscriberID).
		Order("created_at ASC").
		Find(&subs).Error
	if err != nil {
		return nil, err
	}

	entries := make([]types.SubscriptionEntry, 0, len(subs))
	for _, sub := range subs {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Recipe{}).
			Where("author_id = ?", sub.TargetUserID).
			Count(&count).Error; err != nil {
			return nil, err
		}

		var recipes []models.Recipe
		if err := s.db.WithContext(ctx).
			Where("author_id = ?", sub.TargetUserID).
			Order("created_at DESC").
			Limit(recipesLimit).
			Find(&recipes).Error; err != nil {
			return nil, err
		}

		preview := make([]types.RecipeSummary, 0, len(recipes))
		for i := range recipes {
			preview = append(preview, types.NewRecipeSummary(&recipes[i]))
		}

		entries = append(entries, types.SubscriptionEntry{
			Author: types.Author{
				ID:           sub.TargetUser.ID,
				Username:     sub.TargetUser.Username,
				FirstName:    sub.TargetUser.FirstName,
				LastName:     sub.TargetUser.LastName,
				IsSubscribed: true,
			},
			RecipesCount: count,
			Recipes:      preview,
		})
	}
	return entries, nil
}
