package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tastebook/backend/internal/middleware"
	"github.com/tastebook/backend/internal/service"
	"github.com/tastebook/backend/internal/types"
)

// CatalogHandler serves the ingredient and tag catalogs.
type CatalogHandler struct {
	catalogService *service.CatalogService
	authService    *service.AuthService
}

func NewCatalogHandler(catalogService *service.CatalogService, authService *service.AuthService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService, authService: authService}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	ingredients := router.Group("/ingredients")
	{
		ingredients.GET("", h.ListIngredients)
		ingredients.GET("/:id", h.GetIngredient)
	}

	tags := router.Group("/tags")
	{
		tags.GET("", h.ListTags)
		tags.GET("/:id", h.GetTag)
		tags.POST("", middleware.AuthMiddleware(h.authService), h.CreateTag)
	}
}

func (h *CatalogHandler) ListIngredients(c *gin.Context) {
	filter := service.IngredientFilter{
		StartsWith: c.Query("starts_with"),
		Contains:   c.Query("contains"),
	}

	ingredients, err := h.catalogService.ListIngredients(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ingredients": ingredients})
}

func (h *CatalogHandler) GetIngredient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ingredient id"})
		return
	}

	ingredient, err := h.catalogService.GetIngredient(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ingredient)
}

func (h *CatalogHandler) ListTags(c *gin.Context) {
	tags, err := h.catalogService.ListTags(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

func (h *CatalogHandler) GetTag(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tag id"})
		return
	}

	tag, err := h.catalogService.GetTag(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tag)
}

// CreateTag is restricted to administrators.
func (h *CatalogHandler) CreateTag(c *gin.Context) {
	if isAdmin, _ := c.Get("is_admin"); isAdmin != true {
		c.JSON(http.StatusForbidden, gin.H{"error": "administrator access required"})
		return
	}

	var req types.CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tag, err := h.catalogService.CreateTag(c.Request.Context(), req.Name, req.Color, req.Slug)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tag)
}
