// Package handler holds the gin HTTP handlers.
package handler

import (
	"net/http"

	"ai-content-consultant/internal/domain"
	"ai-content-consultant/pkg/log"

	"github.com/gin-gonic/gin"
)

func ok(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": message, "data": data})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": message})
}

// fail maps err to its status. Internal errors are logged and hidden.
func fail(c *gin.Context, op string, err error) {
	status := domain.StatusCode(err)
	message := err.Error()
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway {
		log.Errorf("%s: %v", op, err)
		message = "internal server error"
	} else {
		log.Warnf("%s: %v", op, err)
	}
	c.JSON(status, gin.H{"code": status, "message": message})
}
