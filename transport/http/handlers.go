package http

import (
	"errors"
	"net/http"

	"github.com/fidena/fidena/core"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error   string       `json:"error"`
	Details []core.Issue `json:"details,omitempty"`
}

// respondError maps domain errors to status codes. Anything unrecognized
// is logged and answered with fallback as a 500.
func respondError(c *gin.Context, logger *zap.Logger, err error, fallback string) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid request data", Details: verr.Issues})
	case errors.Is(err, core.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Email already registered"})
	case errors.Is(err, core.ErrChallengeNotFound):
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid or expired challenge"})
	case errors.Is(err, core.ErrUserNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: "User not found"})
	default:
		logger.Error(fallback,
			zap.Error(err),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path))
		c.JSON(http.StatusInternalServerError, errorResponse{Error: fallback})
	}
}

// callerID returns the identity injected by the gate
func callerID(c *gin.Context) (string, bool) {
	id := c.GetHeader(UserIDHeader)
	if id == "" {
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return "", false
	}
	return id, true
}
