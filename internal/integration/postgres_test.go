package integration

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tastebook/backend/internal/models"
	"github.com/tastebook/backend/internal/service"
	"github.com/tastebook/backend/internal/testdb"
	"github.com/tastebook/backend/internal/types"
)

// These tests run the real storage path against a containerized postgres.
// They need a working Docker daemon, so they are opt-in.
func requireIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("INTEGRATION_TESTS") == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run postgres integration tests")
	}
}

func TestRecipeLifecycleOnPostgres(t *testing.T) {
	requireIntegration(t)

	tdb := testdb.SetupTestDB(t)
	defer tdb.Close()
	db := tdb.DB

	author := models.User{Username: "chef", Email: "chef@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&author).Error)
	salt := models.Ingredient{Name: "Salt", MeasurementUnit: "g"}
	require.NoError(t, db.Create(&salt).Error)

	recipes := service.NewRecipeService(db, zap.NewNop())
	input := service.RecipeInput{
		Name:        "Soup",
		Text:        "text",
		CookingTime: 10,
		Ingredients: []types.IngredientAmountInput{{IngredientID: salt.ID, Amount: 100}},
	}

	created, err := recipes.CreateRecipe(context.Background(), service.Principal{UserID: author.ID}, input)
	require.NoError(t, err)
	assert.Equal(t, "Soup", created.Name)

	// The composite unique index enforces the per-author name constraint at
	// the database level too.
	_, err = recipes.CreateRecipe(context.Background(), service.Principal{UserID: author.ID}, input)
	var conflict *service.ConflictError
	assert.ErrorAs(t, err, &conflict)

	require.NoError(t, recipes.DeleteRecipe(context.Background(), service.Principal{UserID: author.ID}, created.ID))
}

func TestShoppingListAggregationOnPostgres(t *testing.T) {
	requireIntegration(t)

	tdb := testdb.SetupTestDB(t)
	defer tdb.Close()
	db := tdb.DB

	user := models.User{Username: "shopper", Email: "shopper@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)
	salt := models.Ingredient{Name: "Salt", MeasurementUnit: "g"}
	require.NoError(t, db.Create(&salt).Error)

	recipes := service.NewRecipeService(db, zap.NewNop())
	for _, spec := range []struct {
		name   string
		amount int
	}{{"Soup", 100}, {"Stew", 50}} {
		recipe, err := recipes.CreateRecipe(context.Background(), service.Principal{UserID: user.ID}, service.RecipeInput{
			Name:        spec.name,
			Text:        "text",
			CookingTime: 10,
			Ingredients: []types.IngredientAmountInput{{IngredientID: salt.ID, Amount: spec.amount}},
		})
		require.NoError(t, err)
		require.NoError(t, db.Create(&models.ShoppingCartEntry{UserID: user.ID, RecipeID: recipe.ID}).Error)
	}

	list, err := service.NewShoppingListService(db).BuildList(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Список покупок:\nSalt - 150 g", list)
}
