package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"squadup/backend/internal/relation"
)

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

// respondError maps a relation error kind to an HTTP status. Unclassified
// errors become opaque 500s; their details belong in logs, not responses.
func respondError(c *gin.Context, err error) {
	switch relation.KindOf(err) {
	case relation.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case relation.KindInvalidReference:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case relation.KindConflict:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case relation.KindForbidden:
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case relation.KindValidation:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// pathID parses a numeric path parameter. ok is false after an error response
// has already been written.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}
