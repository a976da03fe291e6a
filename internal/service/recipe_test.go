package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tastebook/backend/internal/models"
	"github.com/tastebook/backend/internal/testhelpers"
	"github.com/tastebook/backend/internal/types"
)

func recipeFixture(t *testing.T) (*RecipeService, *models.User, *models.Ingredient, *models.Tag, *gorm.DB) {
	db := testhelpers.SetupTestDB(t)
	svc := NewRecipeService(db, zap.NewNop())
	author := testhelpers.CreateTestUser(t, db, "chef")
	salt := testhelpers.CreateTestIngredient(t, db, "Salt", "g")
	vegan := testhelpers.CreateTestTag(t, db, "Vegan", "vegan")
	return svc, author, salt, vegan, db
}

func TestCreateRecipeHydratesResult(t *testing.T) {
	svc, author, salt, vegan, db := recipeFixture(t)

	recipe, err := svc.CreateRecipe(context.Background(), Principal{UserID: author.ID}, RecipeInput{
		Name:        "Soup",
		ImageURL:    "http://example.com/soup.jpg",
		Text:        "Boil water, add salt.",
		CookingTime: 30,
		Ingredients: []types.IngredientAmountInput{{IngredientID: salt.ID, Amount: 10}},
		TagIDs:      []uuid.UUID{vegan.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, "Soup", recipe.Name)
	assert.Equal(t, "chef", recipe.Author.Username)
	require.Len(t, recipe.Ingredients, 1)
	assert.Equal(t, "Salt", recipe.Ingredients[0].Name)
	assert.Equal(t, "g", recipe.Ingredients[0].MeasurementUnit)
	assert.Equal(t, 10, recipe.Ingredients[0].Amount)
	require.Len(t, recipe.Tags, 1)
	assert.Equal(t, "Vegan", recipe.Tags[0].Name)
	assert.Equal(t, "vegan", recipe.Tags[0].Slug)

	var linkCount int64
	require.NoError(t, db.Model(&models.RecipeIngredient{}).Count(&linkCount).Error)
	assert.EqualValues(t, 1, linkCount)
}

func TestCreateRecipeDuplicateNameConflicts(t *testing.T) {
	svc, author, salt, _, _ := recipeFixture(t)

	input := RecipeInput{
		Name:        "Soup",
		Text:        "text",
		CookingTime: 10,
		Ingredients: []types.IngredientAmountInput{{IngredientID: salt.ID, Amount: 1}},
	}
	_, err := svc.CreateRecipe(context.Background(), Principal{UserID: author.ID}, input)
	require.NoError(t, err)

	_, err = svc.CreateRecipe(context.Background(), Principal{UserID: author.ID}, input)
	var conflict *ConflictError
	assert.ErrorAs(t, err, &conflict)

	// A different name for the same author is fine.
	input.Name = "Stew"
	_, err = svc.CreateRecipe(context.Background(), Principal{UserID: author.ID}, input)
	assert.NoError(t, err)
}

func TestCreateRecipeDuplicateIngredientRejectedBeforeWrite(t *testing.T) {
	svc, author, salt, _, db := recipeFixture(t)

	_, err := svc.CreateRecipe(context.Background(), Principal{UserID: author.ID}, RecipeInput{
		Name:        "Soup",
		Text:        "text",
		CookingTime: 10,
		Ingredients: []types.IngredientAmountInput{
			{IngredientID: salt.ID, Amount: 10},
			{IngredientID: salt.ID, Amount: 20},
		},
	})
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "ingredients[1].id", validation.Field)

	var count int64
	require.NoError(t, db.Model(&models.Recipe{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestCreateRecipeInvalidAmount(t *testing.T) {
	svc, author, salt, _, _ := recipeFixture(t)

	_, err := svc.CreateRecipe(context.Background(), Principal{UserID: author.ID}, RecipeInput{
		Name:        "Soup",
		Text:        "text",
		CookingTime: 10,
		Ingredients: []types.IngredientAmountInput{{IngredientID: salt.ID, Amount: 0}},
	})
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "ingredients[0].amount", validation.Field)
}

func TestCreateRecipeInvalidCookingTime(t *testing.T) {
	svc, author, salt, _, _ := recipeFixture(t)

	_, err := svc.CreateRecipe(context.Background(), Principal{UserID: author.ID}, RecipeInput{
		Name:        "Soup",
		Text:        "text",
		CookingTime: 0,
		Ingredients: []types.IngredientAmountInput{{IngredientID: salt.ID, Amount: 5}},
	})
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "cooking_time", validation.Field)
}

func TestCreateRecipeUnknownTagRollsBackEverything(t *testing.T) {
	svc, author, salt, vegan, db := recipeFixture(t)

	_, err := svc.CreateRecipe(context.Background(), Principal{UserID: author.ID}, RecipeInput{
		Name:        "Soup",
		Text:        "text",
		CookingTime: 10,
		Ingredients: []types.IngredientAmountInput{{IngredientID: salt.ID, Amount: 5}},
		TagIDs:      []uuid.UUID{vegan.ID, uuid.New(), uuid.New()},
	})
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "tag", notFound.Resource)

	var recipeCount, linkCount int64
	require.NoError(t, db.Model(&models.Recipe{}).Count(&recipeCount).Error)
	require.NoError(t, db.Model(&models.RecipeIngredient{}).Count(&linkCount).Error)
	assert.EqualValues(t, 0, recipeCount)
	assert.EqualValues(t, 0, linkCount)
}

func TestCreateRecipeUnknownIngredient(t *testing.T) {
	svc, author, _, _, db := recipeFixture(t)

	_, err := svc.CreateRecipe(context.Background(), Principal{UserID: author.ID}, RecipeInput{
		Name:        "Soup",
		Text:        "text",
		CookingTime: 10,
		Ingredients: []types.IngredientAmountInput{{IngredientID: uuid.New(), Amount: 5}},
	})
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "ingredient", notFound.Resource)

	var count int64
	require.NoError(t, db.Model(&models.Recipe{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestUpdateRecipeNonAuthorForbidden(t *testing.T) {
	svc, author, salt, _, db := recipeFixture(t)
	stranger := testhelpers.CreateTestUser(t, db, "stranger")

	recipe, err := svc.CreateRecipe(context.Background(), Principal{UserID: author.ID}, RecipeInput{
		Name:        "Soup",
		Text:        "text",
		CookingTime: 10,
		Ingredients: []types.IngredientAmountInput{{IngredientID: salt.ID, Amount: 5}},
	})
	require.NoError(t, err)

	_, err = svc.UpdateRecipe(context.Background(), Principal{UserID: stranger.ID}, recipe.ID, RecipeInput{
		Name:        "Hijacked",
		Text:        "text",
		CookingTime: 5,
		Ingredients: []types.IngredientAmountInput{{IngredientID: salt.ID, Amount: 1}},
	})
	var permission *PermissionError
	assert.ErrorAs(t, err, &permission)

	// An admin may update someone else's recipe.
	_, err = svc.UpdateRecipe(context.Background(), Principal{UserID: stranger.ID, IsAdmin: true}, recipe.ID, RecipeInput{
		Name:        "Moderated",
		Text:        "text",
		CookingTime: 5,
		Ingredients: []types.IngredientAmountInput{{IngredientID: salt.ID, Amount: 1}},
	})
	assert.NoError(t, err)
}

func TestUpdateRecipeRebuildsLinks(t *testing.T) {
	svc, author, salt, vegan, db := recipeFixture(t)
	pepper := testhelpers.CreateTestIngredient(t, db, "Pepper", "g")
	spicy := testhelpers.CreateTestTag(t, db, "Spicy", "spicy")

	recipe, err := svc.CreateRecipe(context.Background(), Principal{UserID: author.ID}, RecipeInput{
		Name:        "Soup",
		Text:        "text",
		CookingTime: 10,
		Ingredients: []types.IngredientAmountInput{{IngredientID: salt.ID, Amount: 5}},
		TagIDs:      []uuid.UUID{vegan.ID},
	})
	require.NoError(t, err)

	updated, err := svc.UpdateRecipe(context.Background(), Principal{UserID: author.ID}, recipe.ID, RecipeInput{
		Name:        "Pepper Soup",
		Text:        "new text",
		CookingTime: 20,
		Ingredients: []types.IngredientAmountInput{{IngredientID: pepper.ID, Amount: 3}},
		TagIDs:      []uuid.UUID{spicy.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, "Pepper Soup", updated.Name)
	assert.Equal(t, 20, updated.CookingTime)
	require.Len(t, updated.Ingredients, 1)
	assert.Equal(t, "Pepper", updated.Ingredients[0].Name)
	require.Len(t, updated.Tags, 1)
	assert.Equal(t, "spicy", updated.Tags[0].Slug)

	// The old links are gone, not merely superseded.
	var linkCount int64
	require.NoError(t, db.Model(&models.RecipeIngredient{}).
		Where("recipe_id = ?", recipe.ID).Count(&linkCount).Error)
	assert.EqualValues(t, 1, linkCount)
}

func TestUpdateRecipeFailureKeepsOldLinks(t *testing.T) {
	svc, author, salt, vegan, _ := recipeFixture(t)

	recipe, err := svc.CreateRecipe(context.Background(), Principal{UserID: author.ID}, RecipeInput{
		Name:        "Soup",
		Text:        "text",
		CookingTime: 10,
		Ingredients: []types.IngredientAmountInput{{IngredientID: salt.ID, Amount: 5}},
		TagIDs:      []uuid.UUID{vegan.ID},
	})
	require.NoError(t, err)

	// The unknown tag id fails inside the transaction, after the clear step;
	// rollback must restore the original links.
	_, err = svc.UpdateRecipe(context.Background(), Principal{UserID: author.ID}, recipe.ID, RecipeInput{
		Name:        "Soup",
		Text:        "text",
		CookingTime: 10,
		Ingredients: []types.IngredientAmountInput{{IngredientID: salt.ID, Amount: 7}},
		TagIDs:      []uuid.UUID{uuid.New()},
	})
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)

	current, err := svc.GetRecipe(context.Background(), nil, recipe.ID)
	require.NoError(t, err)
	require.Len(t, current.Ingredients, 1)
	assert.Equal(t, 5, current.Ingredients[0].Amount)
	require.Len(t, current.Tags, 1)
	assert.Equal(t, "vegan", current.Tags[0].Slug)
}

func TestDeleteRecipe(t *testing.T) {
	svc, author, salt, _, db := recipeFixture(t)
	stranger := testhelpers.CreateTestUser(t, db, "stranger")

	recipe, err := svc.CreateRecipe(context.Background(), Principal{UserID: author.ID}, RecipeInput{
		Name:        "Soup",
		Text:        "text",
		CookingTime: 10,
		Ingredients: []types.IngredientAmountInput{{IngredientID: salt.ID, Amount: 5}},
	})
	require.NoError(t, err)

	err = svc.DeleteRecipe(context.Background(), Principal{UserID: stranger.ID}, recipe.ID)
	var permission *PermissionError
	assert.ErrorAs(t, err, &permission)

	require.NoError(t, svc.DeleteRecipe(context.Background(), Principal{UserID: author.ID}, recipe.ID))

	_, err = svc.GetRecipe(context.Background(), nil, recipe.ID)
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestDeleteRecipeFreesName(t *testing.T) {
	svc, author, salt, _, _ := recipeFixture(t)

	input := RecipeInput{
		Name:        "Soup",
		Text:        "text",
		CookingTime: 10,
		Ingredients: []types.IngredientAmountInput{{IngredientID: salt.ID, Amount: 5}},
	}
	recipe, err := svc.CreateRecipe(context.Background(), Principal{UserID: author.ID}, input)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteRecipe(context.Background(), Principal{UserID: author.ID}, recipe.ID))

	// The name is free again after deletion.
	recreated, err := svc.CreateRecipe(context.Background(), Principal{UserID: author.ID}, input)
	require.NoError(t, err)
	assert.Equal(t, "Soup", recreated.Name)
	assert.NotEqual(t, recipe.ID, recreated.ID)
}

func TestDeleteRecipeCascadesMemberships(t *testing.T) {
	svc, author, salt, _, db := recipeFixture(t)

	recipe, err := svc.CreateRecipe(context.Background(), Principal{UserID: author.ID}, RecipeInput{
		Name:        "Soup",
		Text:        "text",
		CookingTime: 10,
		Ingredients: []types.IngredientAmountInput{{IngredientID: salt.ID, Amount: 5}},
	})
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.FavoriteRecipe{UserID: author.ID, RecipeID: recipe.ID}).Error)
	require.NoError(t, db.Create(&models.ShoppingCartEntry{UserID: author.ID, RecipeID: recipe.ID}).Error)

	require.NoError(t, svc.DeleteRecipe(context.Background(), Principal{UserID: author.ID}, recipe.ID))

	var favorites, cart int64
	require.NoError(t, db.Model(&models.FavoriteRecipe{}).
		Where("recipe_id = ?", recipe.ID).Count(&favorites).Error)
	require.NoError(t, db.Model(&models.ShoppingCartEntry{}).
		Where("recipe_id = ?", recipe.ID).Count(&cart).Error)
	assert.EqualValues(t, 0, favorites)
	assert.EqualValues(t, 0, cart)
}

func TestListRecipesFilters(t *testing.T) {
	svc, author, salt, vegan, db := recipeFixture(t)
	other := testhelpers.CreateTestUser(t, db, "other")

	_, err := svc.CreateRecipe(context.Background(), Principal{UserID: author.ID}, RecipeInput{
		Name:        "Vegan Soup",
		Text:        "text",
		CookingTime: 10,
		Ingredients: []types.IngredientAmountInput{{IngredientID: salt.ID, Amount: 5}},
		TagIDs:      []uuid.UUID{vegan.ID},
	})
	require.NoError(t, err)
	_, err = svc.CreateRecipe(context.Background(), Principal{UserID: other.ID}, RecipeInput{
		Name:        "Plain Soup",
		Text:        "text",
		CookingTime: 10,
		Ingredients: []types.IngredientAmountInput{{IngredientID: salt.ID, Amount: 5}},
	})
	require.NoError(t, err)

	all, err := svc.ListRecipes(context.Background(), nil, ListRecipesFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byAuthor, err := svc.ListRecipes(context.Background(), nil, ListRecipesFilter{AuthorID: &author.ID})
	require.NoError(t, err)
	require.Len(t, byAuthor, 1)
	assert.Equal(t, "Vegan Soup", byAuthor[0].Name)

	byTag, err := svc.ListRecipes(context.Background(), nil, ListRecipesFilter{TagSlugs: []string{"vegan"}})
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, "Vegan Soup", byTag[0].Name)
}
