package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tastebook/backend/internal/api"
	"github.com/tastebook/backend/internal/router"
	"github.com/tastebook/backend/internal/service"
	"github.com/tastebook/backend/internal/testhelpers"
	"github.com/tastebook/backend/internal/types"
)

func setupTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDB(t)
	logger := zap.NewNop()

	authService := service.NewAuthService(db, "test-secret", logger)
	recipeService := service.NewRecipeService(db, logger)
	membershipService := service.NewMembershipService(db, logger)
	shoppingListService := service.NewShoppingListService(db)
	subscriptionService := service.NewSubscriptionService(db, logger)
	catalogService := service.NewCatalogService(db)

	engine := router.SetupRouter(
		api.NewAuthHandler(authService),
		api.NewRecipeHandler(recipeService, membershipService, shoppingListService, nil, authService),
		api.NewCatalogHandler(catalogService, authService),
		api.NewUserHandler(subscriptionService, authService),
		nil,
		logger,
	)
	return engine, db
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func registerUser(t *testing.T, engine *gin.Engine, username string) string {
	t.Helper()
	w := doJSON(t, engine, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username":   username,
		"email":      username + "@example.com",
		"first_name": "Test",
		"last_name":  "User",
		"password":   "s3cure-password",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func createRecipeViaAPI(t *testing.T, engine *gin.Engine, db *gorm.DB, token, name string) types.Recipe {
	t.Helper()
	salt := testhelpers.CreateTestIngredient(t, db, name+" ingredient", "g")
	tag := testhelpers.CreateTestTag(t, db, name+" tag", name+"-tag")

	w := doJSON(t, engine, http.MethodPost, "/api/v1/recipes", token, gin.H{
		"name":         name,
		"image":        "http://example.com/image.jpg",
		"text":         "Cook it.",
		"cooking_time": 15,
		"ingredients":  []gin.H{{"id": salt.ID, "amount": 100}},
		"tags":         []string{tag.ID.String()},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var recipe types.Recipe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recipe))
	return recipe
}

func TestCreateAndGetRecipeOverHTTP(t *testing.T) {
	engine, db := setupTestRouter(t)
	token := registerUser(t, engine, "chef")

	recipe := createRecipeViaAPI(t, engine, db, token, "Soup")
	assert.Equal(t, "Soup", recipe.Name)
	assert.Equal(t, "chef", recipe.Author.Username)
	require.Len(t, recipe.Ingredients, 1)
	assert.Equal(t, 100, recipe.Ingredients[0].Amount)
	require.Len(t, recipe.Tags, 1)

	// Anonymous read works and carries unset viewer flags.
	w := doJSON(t, engine, http.MethodGet, "/api/v1/recipes/"+recipe.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var fetched types.Recipe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.Equal(t, recipe.ID, fetched.ID)
	assert.False(t, fetched.IsFavorited)
	assert.False(t, fetched.IsInShoppingCart)
}

func TestCreateRecipeRequiresAuth(t *testing.T) {
	engine, _ := setupTestRouter(t)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/recipes", "", gin.H{
		"name":         "Soup",
		"image":        "http://example.com/image.jpg",
		"text":         "Cook it.",
		"cooking_time": 15,
		"ingredients":  []gin.H{},
		"tags":         []string{},
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDuplicateRecipeNameReturns409(t *testing.T) {
	engine, db := setupTestRouter(t)
	token := registerUser(t, engine, "chef")

	recipe := createRecipeViaAPI(t, engine, db, token, "Soup")

	salt := testhelpers.CreateTestIngredient(t, db, "Salt", "g")
	w := doJSON(t, engine, http.MethodPost, "/api/v1/recipes", token, gin.H{
		"name":         recipe.Name,
		"image":        "http://example.com/image.jpg",
		"text":         "Cook it again.",
		"cooking_time": 15,
		"ingredients":  []gin.H{{"id": salt.ID, "amount": 1}},
		"tags":         []string{},
	})
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
}

func TestFavoriteToggleOverHTTP(t *testing.T) {
	engine, db := setupTestRouter(t)
	token := registerUser(t, engine, "chef")
	recipe := createRecipeViaAPI(t, engine, db, token, "Soup")

	path := fmt.Sprintf("/api/v1/recipes/%s/favorite", recipe.ID)

	w := doJSON(t, engine, http.MethodPost, path, token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var summary types.RecipeSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, recipe.ID, summary.ID)

	// Adding twice conflicts.
	w = doJSON(t, engine, http.MethodPost, path, token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, engine, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	// Removing twice is not found.
	w = doJSON(t, engine, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDownloadShoppingCartOverHTTP(t *testing.T) {
	engine, db := setupTestRouter(t)
	token := registerUser(t, engine, "shopper")
	recipe := createRecipeViaAPI(t, engine, db, token, "Soup")

	w := doJSON(t, engine, http.MethodPost,
		fmt.Sprintf("/api/v1/recipes/%s/shopping_cart", recipe.ID), token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, engine, http.MethodGet, "/api/v1/recipes/download_shopping_cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "shopping_list.txt")
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, w.Body.String(), "Список покупок:")
	assert.Contains(t, w.Body.String(), "Soup ingredient - 100 g")
}

func TestSubscriptionFlowOverHTTP(t *testing.T) {
	engine, db := setupTestRouter(t)
	followerToken := registerUser(t, engine, "follower")
	chefToken := registerUser(t, engine, "chef")
	createRecipeViaAPI(t, engine, db, chefToken, "Soup")

	// Resolve the chef's id from their own profile.
	w := doJSON(t, engine, http.MethodGet, "/api/v1/users/me", chefToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))

	w = doJSON(t, engine, http.MethodPost, "/api/v1/users/"+me.ID+"/subscribe", followerToken, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, engine, http.MethodGet, "/api/v1/users/subscriptions?recipes_limit=1", followerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Subscriptions []types.SubscriptionEntry `json:"subscriptions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Subscriptions, 1)
	assert.Equal(t, "chef", resp.Subscriptions[0].Author.Username)
	assert.Len(t, resp.Subscriptions[0].Recipes, 1)

	w = doJSON(t, engine, http.MethodDelete, "/api/v1/users/"+me.ID+"/subscribe", followerToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
