package handler

import (
	"strconv"

	"ai-content-consultant/internal/middleware"
	"ai-content-consultant/internal/service"

	"github.com/gin-gonic/gin"
)

// IdeaHandler serves the saved-ideas endpoints of the current user.
type IdeaHandler struct {
	ideaService service.IdeaService
}

func NewIdeaHandler(ideaService service.IdeaService) *IdeaHandler {
	return &IdeaHandler{ideaService: ideaService}
}

// Save stores an idea. Without a platform the user's preferred one is used.
func (h *IdeaHandler) Save(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	var req service.SaveIdeaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed idea: "+err.Error())
		return
	}
	if req.Platform == "" {
		req.Platform = user.PreferredPlatform
	}
	saved, err := h.ideaService.Save(user.ID, req)
	if err != nil {
		fail(c, "SaveIdea", err)
		return
	}
	ok(c, "Idea saved", saved)
}

func (h *IdeaHandler) List(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "0"))
	result, err := h.ideaService.List(user.ID, page, size)
	if err != nil {
		fail(c, "ListIdeas", err)
		return
	}
	ok(c, "success", result)
}

func (h *IdeaHandler) Delete(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	if err := h.ideaService.Delete(user.ID, c.Param("id")); err != nil {
		fail(c, "DeleteIdea", err)
		return
	}
	ok(c, "Idea deleted", nil)
}
