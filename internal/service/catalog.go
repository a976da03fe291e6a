package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/tastebook/backend/internal/models"
)

// IngredientFilter narrows ingredient catalog searches. StartsWith matches
// the beginning of the name, Contains matches anywhere; both are
// case-insensitive.
type IngredientFilter struct {
	StartsWith string
	Contains   string
}

// tagInput mirrors models.Tag for struct-level validation.
type tagInput struct {
	Name  string `validate:"required,max=256"`
	Color string `validate:"required,hexcolor,len=7"`
	Slug  string `validate:"required,max=50"`
}

// CatalogService serves the ingredient and tag catalogs.
type CatalogService struct {
	db       *gorm.DB
	validate *validator.Validate
}

// NewCatalogService creates a new CatalogService instance
func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db, validate: validator.New()}
}

// ListIngredients lists catalog ingredients matching the filter, by name.
func (s *CatalogService) ListIngredients(ctx context.Context, filter IngredientFilter) ([]models.Ingredient, error) {
	query := s.db.WithContext(ctx).Order("name ASC")
	if filter.StartsWith != "" {
		query = query.Where("LOWER(name) LIKE ?", strings.ToLower(filter.StartsWith)+"%")
	}
	if filter.Contains != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter.Contains)+"%")
	}

	var ingredients []models.Ingredient
	if err := query.Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

// GetIngredient loads one catalog ingredient.
func (s *CatalogService) GetIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, "id = ?", id).Error; err != nil {
		return nil, translateStoreError(err, "ingredient", "")
	}
	return &ingredient, nil
}

// CreateIngredient adds an ingredient to the catalog.
func (s *CatalogService) CreateIngredient(ctx context.Context, name, measurementUnit string) (*models.Ingredient, error) {
	if strings.TrimSpace(name) == "" {
		return nil, newValidationError("name", "is required")
	}
	if strings.TrimSpace(measurementUnit) == "" {
		return nil, newValidationError("measurement_unit", "is required")
	}

	ingredient := models.Ingredient{Name: name, MeasurementUnit: measurementUnit}
	if err := s.db.WithContext(ctx).Create(&ingredient).Error; err != nil {
		return nil, err
	}
	return &ingredient, nil
}

// ListTags returns all tags ordered by name.
func (s *CatalogService) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// GetTag loads one tag.
func (s *CatalogService) GetTag(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, "id = ?", id).Error; err != nil {
		return nil, translateStoreError(err, "tag", "")
	}
	return &tag, nil
}

// CreateTag validates and persists a tag. The slug is generated from the name
// when absent; a duplicate slug is a conflict.
func (s *CatalogService) CreateTag(ctx context.Context, name, color, tagSlug string) (*models.Tag, error) {
	if tagSlug == "" {
		tagSlug = slug.Make(name)
	}

	input := tagInput{Name: name, Color: color, Slug: tagSlug}
	if err := s.validate.Struct(input); err != nil {
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) && len(invalid) > 0 {
			field := strings.ToLower(invalid[0].Field())
			return nil, newValidationError(field, "failed on "+invalid[0].Tag()+" validation")
		}
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Tag{}).
		Where("slug = ?", input.Slug).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, newConflictError("tag with slug %q already exists", input.Slug)
	}

	tag := models.Tag{Name: input.Name, Color: input.Color, Slug: input.Slug}
	if err := s.db.WithContext(ctx).Create(&tag).Error; err != nil {
		return nil, translateStoreError(err, "tag",
			"tag with slug "+input.Slug+" already exists")
	}
	return &tag, nil
}
