package files

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"petplaza/internal/images"
)

// Handler handles HTTP requests for the files service
type Handler struct {
	service *Service
}

// NewHandler creates a new files handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Upload handles POST /files. Expects a multipart form with a "photo"
// field; the image is normalized before it is stored.
func (h *Handler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Success: false,
			Error:   "photo field is required",
			Code:    "INVALID_REQUEST",
			Details: err.Error(),
		})
		return
	}

	if fileHeader.Size > images.MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Success: false,
			Error:   "photo exceeds the 5 MiB upload limit",
			Code:    "FILE_TOO_LARGE",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Success: false,
			Error:   "failed to read upload",
			Code:    "INVALID_REQUEST",
			Details: err.Error(),
		})
		return
	}
	defer file.Close()

	// One extra byte past the limit is enough to reject oversized bodies
	data, err := io.ReadAll(io.LimitReader(file, images.MaxUploadBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Success: false,
			Error:   "failed to read upload",
			Code:    "INVALID_REQUEST",
			Details: err.Error(),
		})
		return
	}

	response, err := h.service.Upload(c.Request.Context(), data)
	if err != nil {
		switch {
		case errors.Is(err, images.ErrTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
				Success: false,
				Error:   err.Error(),
				Code:    "FILE_TOO_LARGE",
			})
		case errors.Is(err, images.ErrUnsupported), errors.Is(err, images.ErrEmptyUpload):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Success: false,
				Error:   err.Error(),
				Code:    "INVALID_IMAGE",
			})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Success: false,
				Error:   "failed to store photo",
				Code:    "UPLOAD_FAILED",
				Details: err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, response)
}

// DownloadURL handles GET /files/:key/url
func (h *Handler) DownloadURL(c *gin.Context) {
	fileKey := c.Param("key")
	if fileKey == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Success: false,
			Error:   "file key is required",
			Code:    "INVALID_FILE_KEY",
		})
		return
	}

	response, err := h.service.DownloadURL(c.Request.Context(), "photos/"+fileKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Success: false,
			Error:   "failed to generate download URL",
			Code:    "GENERATION_FAILED",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

// Delete handles DELETE /files/:key
func (h *Handler) Delete(c *gin.Context) {
	fileKey := c.Param("key")
	if fileKey == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Success: false,
			Error:   "file key is required",
			Code:    "INVALID_FILE_KEY",
		})
		return
	}

	if err := h.service.Delete(c.Request.Context(), "photos/"+fileKey); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Success: false,
			Error:   "failed to delete photo",
			Code:    "DELETE_FAILED",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Photo deleted successfully",
		"file_key": fileKey,
	})
}

// Health handles GET /health
func (h *Handler) Health(c *gin.Context) {
	if err := h.service.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": "files-service",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "files-service",
	})
}
