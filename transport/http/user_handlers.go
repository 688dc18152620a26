package http

import (
	"net/http"
	"time"

	"github.com/fidena/fidena/core"
	"github.com/fidena/fidena/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandlers struct {
	users  *service.UserService
	logger *zap.Logger
}

func NewUserHandlers(users *service.UserService, logger *zap.Logger) *UserHandlers {
	return &UserHandlers{users: users, logger: logger}
}

type userResponse struct {
	ID                    string                `json:"id"`
	Email                 *string               `json:"email"`
	RegistrationType      core.RegistrationType `json:"registrationType"`
	CompletedRegistration bool                  `json:"completedRegistration"`
	CreatedAt             time.Time             `json:"createdAt"`
	UpdatedAt             time.Time             `json:"updatedAt"`
}

// Me returns the profile of the signed in user
func (h *UserHandlers) Me(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	user, err := h.users.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch user")
		return
	}

	c.JSON(http.StatusOK, userResponse{
		ID:                    user.ID,
		Email:                 user.Email,
		RegistrationType:      user.RegistrationType,
		CompletedRegistration: user.CompletedRegistration,
		CreatedAt:             user.CreatedAt,
		UpdatedAt:             user.UpdatedAt,
	})
}

func (h *UserHandlers) CompleteRegistration(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	if err := h.users.CompleteRegistration(c.Request.Context(), userID); err != nil {
		respondError(c, h.logger, err, "Failed to complete registration")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
