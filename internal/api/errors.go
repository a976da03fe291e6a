package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tastebook/backend/internal/service"
)

// respondError translates a service error into an HTTP status and JSON body.
// Unclassified errors become a generic 500 without leaking internals.
func respondError(c *gin.Context, err error) {
	var (
		validationErr *service.ValidationError
		conflictErr   *service.ConflictError
		notFoundErr   *service.NotFoundError
		permissionErr *service.PermissionError
	)

	switch {
	case errors.As(err, &validationErr):
		body := gin.H{"error": validationErr.Message}
		if validationErr.Field != "" {
			body["field"] = validationErr.Field
		}
		c.JSON(http.StatusBadRequest, body)
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{"error": conflictErr.Message})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
	case errors.As(err, &permissionErr):
		c.JSON(http.StatusForbidden, gin.H{"error": permissionErr.Message})
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
