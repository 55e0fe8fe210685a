package handler

import (
	"strconv"
	"strings"

	"ai-content-consultant/internal/service"

	"github.com/gin-gonic/gin"
)

const maxPreviewTopK = 20

// SearchHandler previews what retrieval returns for a query.
type SearchHandler struct {
	searchService service.SearchService
}

func NewSearchHandler(searchService service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

func (h *SearchHandler) SearchExamples(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		badRequest(c, "query must not be empty")
		return
	}
	topK, err := strconv.Atoi(c.DefaultQuery("topK", "5"))
	if err != nil || topK < 1 {
		badRequest(c, "topK must be a positive integer")
		return
	}
	if topK > maxPreviewTopK {
		topK = maxPreviewTopK
	}

	examples, err := h.searchService.SearchExamples(c.Request.Context(), query, c.Query("platform"), topK)
	if err != nil {
		fail(c, "SearchExamples", err)
		return
	}
	ok(c, "success", examples)
}
