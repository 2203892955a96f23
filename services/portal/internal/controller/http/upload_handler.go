package http

import (
	"mime/multipart"
	"net/http"

	"premier-open-group/pkg/logger"
	"premier-open-group/services/portal/internal/entity"
	"premier-open-group/services/portal/internal/usecase"

	"github.com/gin-gonic/gin"
)

// The whole multipart body may hold a full batch plus form overhead.
const maxUploadBody = usecase.MaxFilesPerBatch*usecase.MaxImageSize + 1<<20

type UploadHandler struct {
	uploadUseCase usecase.UploadUseCase
	logger        *logger.Logger
}

func NewUploadHandler(uploadUseCase usecase.UploadUseCase, logger *logger.Logger) *UploadHandler {
	return &UploadHandler{
		uploadUseCase: uploadUseCase,
		logger:        logger,
	}
}

type GalleryBatchRequest struct {
	Items    []entity.GalleryItem    `json:"items" binding:"required"`
	Settings *entity.GallerySettings `json:"settings"`
}

// Upload godoc
// @Summary      Upload images
// @Description  Upload up to 20 images (jpeg, png, webp, gif, at most 5 MB each). Invalid files are rejected individually and failed uploads do not undo the others.
// @Tags         admin
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        bucket  path      string  true  "Bucket (posts, programs, awards, gallery, member-photos)"
// @Param        files   formData  file    true  "Image files"
// @Success      200  {object}  entity.BatchResult
// @Failure      400  {object}  map[string]interface{}
// @Router       /admin/uploads/{bucket} [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBody)

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form: " + err.Error()})
		return
	}
	headers := form.File["files"]

	files := make([]usecase.ImageFile, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read " + header.Filename})
			return
		}
		opened = append(opened, f)
		files = append(files, usecase.ImageFile{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Body:        f,
		})
	}

	result, err := h.uploadUseCase.UploadBatch(c.Request.Context(), c.GetString("user_id"), c.Param("bucket"), files)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CommitGallery godoc
// @Summary      Create gallery items from uploaded images
// @Description  Insert all staged items in one write. Every item needs a non-empty title, otherwise nothing is stored.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body  GalleryBatchRequest  true  "Staged items and optional settings applied to all of them"
// @Success      201  {array}   map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Router       /admin/gallery/batch [post]
func (h *UploadHandler) CommitGallery(c *gin.Context) {
	var req GalleryBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.uploadUseCase.CommitGalleryBatch(c.Request.Context(), req.Items, req.Settings)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"created": len(created), "items": created})
}
