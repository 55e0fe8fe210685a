package handler

import (
	"net/http"

	"ai-content-consultant/internal/middleware"
	"ai-content-consultant/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler feeds the example corpus. Routes sit behind AdminAuthMiddleware.
type AdminHandler struct {
	ingestService service.IngestService
}

func NewAdminHandler(ingestService service.IngestService) *AdminHandler {
	return &AdminHandler{ingestService: ingestService}
}

// EnqueueExamples queues an inline batch for embedding and indexing.
func (h *AdminHandler) EnqueueExamples(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	var batch service.ExampleBatch
	if err := c.ShouldBindJSON(&batch); err != nil {
		badRequest(c, "malformed example batch: "+err.Error())
		return
	}
	receipt, err := h.ingestService.EnqueueExamples(c.Request.Context(), user.ID, batch)
	if err != nil {
		fail(c, "EnqueueExamples", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"code": http.StatusAccepted, "message": "Examples queued", "data": receipt})
}

// UploadManifest stores a trending manifest sent as the multipart "file" field.
func (h *AdminHandler) UploadManifest(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		fail(c, "UploadManifest", err)
		return
	}
	defer file.Close()

	receipt, err := h.ingestService.UploadManifest(c.Request.Context(), user.ID, fileHeader.Filename, file)
	if err != nil {
		fail(c, "UploadManifest", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"code": http.StatusAccepted, "message": "Manifest queued", "data": receipt})
}
