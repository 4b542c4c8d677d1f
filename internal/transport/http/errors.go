package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/blog/backend/internal/domain"
	"github.com/iamasit07/blog/backend/internal/transport/http/middleware"
)

// writeError maps service errors onto status codes with a JSON message.
func writeError(c *gin.Context, err error) {
	var status int
	var message string

	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		status, message = http.StatusUnauthorized, "Unauthenticated"
	case errors.Is(err, domain.ErrForbidden):
		status, message = http.StatusForbidden, middleware.InvalidTokenMessage
	case errors.Is(err, domain.ErrNotAuthor):
		status, message = http.StatusForbidden, "Only the author can delete this post"
	case errors.Is(err, domain.ErrNotFound):
		status, message = http.StatusNotFound, "Not found"
	case errors.Is(err, domain.ErrInvalidCredentials):
		status, message = http.StatusBadRequest, "Please check your credentials"
	case errors.Is(err, domain.ErrConflict):
		// duplicate registration keeps the 400 clients already handle
		status, message = http.StatusBadRequest, "Email already registered"
	case errors.Is(err, domain.ErrValidation):
		status, message = http.StatusBadRequest, "Missing required fields"
	default:
		log.Printf("[HTTP] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		status, message = http.StatusInternalServerError, "Internal server error"
	}

	c.AbortWithStatusJSON(status, gin.H{"message": message})
}

// bindJSON decodes the request body into v. Bodies cut off by the size
// limit get 413, anything else unreadable gets 400.
func bindJSON(c *gin.Context, v interface{}) bool {
	err := c.ShouldBindJSON(v)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"message": "Request body too large"})
		return false
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid input"})
	return false
}
