package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tastebook/backend/internal/middleware"
	"github.com/tastebook/backend/internal/service"
	"github.com/tastebook/backend/internal/types"
)

type RecipeHandler struct {
	recipeService       *service.RecipeService
	membershipService   *service.MembershipService
	shoppingListService *service.ShoppingListService
	imageStore          service.ImageStore
	authService         *service.AuthService
}

func NewRecipeHandler(
	recipeService *service.RecipeService,
	membershipService *service.MembershipService,
	shoppingListService *service.ShoppingListService,
	imageStore service.ImageStore,
	authService *service.AuthService,
) *RecipeHandler {
	return &RecipeHandler{
		recipeService:       recipeService,
		membershipService:   membershipService,
		shoppingListService: shoppingListService,
		imageStore:          imageStore,
		authService:         authService,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", middleware.OptionalAuthMiddleware(h.authService), h.ListRecipes)
		recipes.GET("/download_shopping_cart", middleware.AuthMiddleware(h.authService), h.DownloadShoppingCart)
		recipes.GET("/:id", middleware.OptionalAuthMiddleware(h.authService), h.GetRecipe)
		recipes.POST("", middleware.AuthMiddleware(h.authService), h.CreateRecipe)
		recipes.PUT("/:id", middleware.AuthMiddleware(h.authService), h.UpdateRecipe)
		recipes.DELETE("/:id", middleware.AuthMiddleware(h.authService), h.DeleteRecipe)
		recipes.POST("/:id/favorite", middleware.AuthMiddleware(h.authService), h.AddMembership(service.MembershipFavorite))
		recipes.DELETE("/:id/favorite", middleware.AuthMiddleware(h.authService), h.RemoveMembership(service.MembershipFavorite))
		recipes.POST("/:id/shopping_cart", middleware.AuthMiddleware(h.authService), h.AddMembership(service.MembershipShoppingCart))
		recipes.DELETE("/:id/shopping_cart", middleware.AuthMiddleware(h.authService), h.RemoveMembership(service.MembershipShoppingCart))
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	var viewer *uuid.UUID
	if id, ok := middleware.CurrentUserID(c); ok {
		viewer = &id
	}

	filter := service.ListRecipesFilter{
		IsFavorited:      c.Query("is_favorited") == "1",
		IsInShoppingCart: c.Query("is_in_shopping_cart") == "1",
	}
	if author := c.Query("author"); author != "" {
		authorID, err := uuid.Parse(author)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid author id"})
			return
		}
		filter.AuthorID = &authorID
	}
	if tags := c.Query("tags"); tags != "" {
		filter.TagSlugs = strings.Split(tags, ",")
	}

	recipes, err := h.recipeService.ListRecipes(c.Request.Context(), viewer, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	var viewer *uuid.UUID
	if userID, ok := middleware.CurrentUserID(c); ok {
		viewer = &userID
	}

	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), viewer, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	principal, ok := h.principal(c)
	if !ok {
		return
	}

	imageURL, err := h.resolveImage(c, req.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image payload"})
		return
	}

	recipe, err := h.recipeService.CreateRecipe(c.Request.Context(), principal, service.RecipeInput{
		Name:        req.Name,
		ImageURL:    imageURL,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		Ingredients: req.Ingredients,
		TagIDs:      req.Tags,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	var req types.UpdateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	principal, ok := h.principal(c)
	if !ok {
		return
	}

	imageURL := ""
	if req.Image != "" {
		imageURL, err = h.resolveImage(c, req.Image)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image payload"})
			return
		}
	}

	recipe, err := h.recipeService.UpdateRecipe(c.Request.Context(), principal, id, service.RecipeInput{
		Name:        req.Name,
		ImageURL:    imageURL,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		Ingredients: req.Ingredients,
		TagIDs:      req.Tags,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	principal, ok := h.principal(c)
	if !ok {
		return
	}

	if err := h.recipeService.DeleteRecipe(c.Request.Context(), principal, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "recipe deleted"})
}

// AddMembership returns the add-toggle handler for the given membership kind.
func (h *RecipeHandler) AddMembership(kind service.MembershipKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		recipeID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
			return
		}

		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			return
		}

		summary, err := h.membershipService.Add(c.Request.Context(), userID, recipeID, kind)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, summary)
	}
}

// RemoveMembership returns the remove-toggle handler for the given kind.
func (h *RecipeHandler) RemoveMembership(kind service.MembershipKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		recipeID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
			return
		}

		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			return
		}

		if err := h.membershipService.Remove(c.Request.Context(), userID, recipeID, kind); err != nil {
			respondError(c, err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

// DownloadShoppingCart renders the aggregated shopping list as an attachment.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	list, err := h.shoppingListService.BuildList(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="shopping_list.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(list))
}

func (h *RecipeHandler) principal(c *gin.Context) (service.Principal, bool) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return service.Principal{}, false
	}
	isAdmin, _ := c.Get("is_admin")
	return service.Principal{UserID: userID, IsAdmin: isAdmin == true}, true
}

// resolveImage stores inline base64 payloads through the image store and
// passes plain URLs through untouched.
func (h *RecipeHandler) resolveImage(c *gin.Context, image string) (string, error) {
	if !strings.HasPrefix(image, "data:") || h.imageStore == nil {
		return image, nil
	}
	return h.imageStore.StoreBase64(c.Request.Context(), image)
}
