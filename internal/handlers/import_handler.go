package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"quiz-platform/internal/service"
)

type ImportHandler struct {
	Service *service.ImportService
}

func NewImportHandler(s *service.ImportService) *ImportHandler {
	return &ImportHandler{Service: s}
}

// ImportUsers accepts a multipart xlsx upload under the "file" field and
// seeds accounts from it.
func (h *ImportHandler) ImportUsers(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing file upload", "error": err.Error()})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not read upload", "error": err.Error()})
		return
	}
	defer file.Close()

	report, err := h.Service.ImportWorkbook(context.Background(), file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Upload failed", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Upload successful",
		"users":   report.Imported,
		"skipped": report.Skipped,
		"batchId": report.BatchID,
	})
}
