package handler

import (
	"mime/multipart"
	"net/http"

	"automarket/internal/service"

	"github.com/gin-gonic/gin"
)

// openImage reads the multipart field, checks size and content type and
// returns the opened file. It writes the error response itself on failure.
func openImage(c *gin.Context, field string) (multipart.File, bool) {
	header, err := c.FormFile(field)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": field + " required"})
		return nil, false
	}
	if err := service.ValidateImage(header.Size, header.Header.Get("Content-Type")); err != nil {
		respondError(c, "upload", err)
		return nil, false
	}
	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return nil, false
	}
	return f, true
}
