package handler

import (
	"ai-content-consultant/internal/service"
	"ai-content-consultant/pkg/log"

	"github.com/gin-gonic/gin"
)

// AuthHandler rotates refresh tokens.
type AuthHandler struct {
	userService service.UserService
}

func NewAuthHandler(userService service.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "refreshToken is required")
		return
	}

	accessToken, refreshToken, err := h.userService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		fail(c, "RefreshToken", err)
		return
	}
	log.Info("token refreshed")
	ok(c, "Token refreshed successfully", gin.H{"token": accessToken, "refreshToken": refreshToken})
}
