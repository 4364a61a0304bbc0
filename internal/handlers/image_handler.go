package handlers

import (
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"concoevents/internal/helpers"
)

// ImageHandler stores event images on local disk under uploadDir and
// serves them back through the /uploads static route.
type ImageHandler struct {
	uploadDir string
}

func NewImageHandler(uploadDir string) *ImageHandler {
	return &ImageHandler{uploadDir: uploadDir}
}

type DeleteImageRequest struct {
	ImageURL string `json:"imageUrl" binding:"required"`
}

func (h *ImageHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "No image file provided.")
		return
	}

	filename, err := helpers.UploadFile(c, fileHeader, h.uploadDir)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	helpers.RespondWithData(c, http.StatusOK, gin.H{
		"imageUrl":     path.Join("/uploads", filename),
		"originalName": fileHeader.Filename,
		"size":         fileHeader.Size,
	}, "Image uploaded successfully.")
}

func (h *ImageHandler) Delete(c *gin.Context) {
	var req DeleteImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Image URL is required.")
		return
	}

	// Only names under /uploads are deletable; reject anything that
	// escapes the upload directory.
	filename := path.Base(path.Clean(req.ImageURL))
	if !strings.HasPrefix(path.Clean(req.ImageURL), "/uploads/") || filename == "." || filename == "/" {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid image URL.")
		return
	}

	if err := helpers.DeleteFile(filepath.Join(h.uploadDir, filename)); err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Image not found.")
		return
	}

	helpers.RespondWithData(c, http.StatusOK, nil, "Image deleted successfully.")
}
