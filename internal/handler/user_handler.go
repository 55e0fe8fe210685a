package handler

import (
	"net/http"

	"ai-content-consultant/internal/middleware"
	"ai-content-consultant/internal/service"
	"ai-content-consultant/pkg/log"

	"github.com/gin-gonic/gin"
)

// UserHandler serves account endpoints.
type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "username and password are required")
		return
	}
	user, err := h.userService.Register(req.Username, req.Password)
	if err != nil {
		fail(c, "Register", err)
		return
	}
	log.Infof("user '%s' registered", user.Username)
	ok(c, "User registered successfully", user)
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "username and password are required")
		return
	}
	accessToken, refreshToken, err := h.userService.Login(req.Username, req.Password)
	if err != nil {
		fail(c, "Login", err)
		return
	}
	ok(c, "Login successful", gin.H{"token": accessToken, "refreshToken": refreshToken})
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "authentication required"})
		return
	}
	ok(c, "success", user)
}

type PreferencesRequest struct {
	PreferredPlatform string `json:"preferredPlatform" binding:"required"`
}

// UpdatePreferences sets the user's default platform.
func (h *UserHandler) UpdatePreferences(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	var req PreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "preferredPlatform is required")
		return
	}
	updated, err := h.userService.SetPreferredPlatform(user.Username, req.PreferredPlatform)
	if err != nil {
		fail(c, "UpdatePreferences", err)
		return
	}
	ok(c, "Preferences updated", updated)
}

func (h *UserHandler) Logout(c *gin.Context) {
	if err := h.userService.Logout(c.Request.Context(), middleware.CurrentToken(c)); err != nil {
		fail(c, "Logout", err)
		return
	}
	ok(c, "Logged out", nil)
}
