package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"legalresearch-engine/models"
	"legalresearch-engine/repository"
	"legalresearch-engine/security/validate"
	"legalresearch-engine/storage"
)

// SourceFileHandler handles HTTP requests for uploaded PDF source files.
type SourceFileHandler struct {
	repo    *repository.SourceFileRepository
	storage storage.Storage
	cfg     validate.Config
}

func NewSourceFileHandler(repo *repository.SourceFileRepository, store storage.Storage) *SourceFileHandler {
	return &SourceFileHandler{repo: repo, storage: store, cfg: validate.DefaultConfig()}
}

// Upload handles POST /api/files/upload: stores a PDF via the object
// storage client and records a SourceFile.
func (h *SourceFileHandler) Upload(c *gin.Context) {
	userID, err := uuid.Parse(c.PostForm("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   gin.H{"code": "INVALID_USER_ID", "message": "Invalid user_id format"},
		})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   gin.H{"code": "MISSING_FILE", "message": "File is required"},
		})
		return
	}

	fileResult := validate.ValidateFile(h.cfg, fileHeader.Filename, fileHeader.Size)
	if !fileResult.IsValid {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error":   gin.H{"code": "INVALID_FILE", "violations": fileResult.Violations},
		})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "FILE_OPEN_ERROR", "message": err.Error()},
		})
		return
	}
	defer src.Close()

	fileID := uuid.New()
	storagePath, err := h.storage.Upload(c.Request.Context(), fileID, fileHeader.Filename, src)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "UPLOAD_FAILED", "message": err.Error()},
		})
		return
	}

	file := &models.SourceFile{
		ID:          fileID,
		UserID:      userID,
		Filename:    fileHeader.Filename,
		MimeType:    "application/pdf",
		Size:        fileHeader.Size,
		StoragePath: storagePath,
	}
	if err := h.repo.Create(c.Request.Context(), file); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "CREATE_FAILED", "message": err.Error()},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    gin.H{"id": file.ID, "storage_path": file.StoragePath},
	})
}

// List handles GET /api/files?user_id=...
func (h *SourceFileHandler) List(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   gin.H{"code": "INVALID_USER_ID", "message": "Invalid user_id format"},
		})
		return
	}

	files, err := h.repo.ListByUserID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "LIST_FAILED", "message": err.Error()},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": files})
}
