package http

import (
	"errors"
	"net/http"

	"premier-open-group/pkg/logger"
	"premier-open-group/services/portal/internal/usecase"

	"github.com/gin-gonic/gin"
)

// respondError maps usecase errors onto status codes. Unexpected errors are
// logged and answered with a generic message.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	var verr *usecase.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "fields": verr.Fields})
	case errors.Is(err, usecase.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, usecase.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		log.Error("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
