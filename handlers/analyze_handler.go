package handlers

import (
	"io"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"legalresearch-engine/security/validate"
	"legalresearch-engine/service"
)

// AnalyzeHandler handles HTTP requests for case analysis.
type AnalyzeHandler struct {
	analyzeService *service.AnalyzeService
}

func NewAnalyzeHandler(analyzeService *service.AnalyzeService) *AnalyzeHandler {
	return &AnalyzeHandler{analyzeService: analyzeService}
}

// AnalyzeRequest is the request body for POST /api/analyze.
type AnalyzeRequest struct {
	UserID    string `json:"user_id" binding:"required"`
	CaseText  string `json:"case_text" binding:"required"`
	CaseTitle string `json:"case_title"`
}

// Analyze handles POST /api/analyze.
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_USER_ID",
				"message": "Invalid user_id format",
			},
		})
		return
	}

	result, err := h.analyzeService.Analyze(c.Request.Context(), userID, req.CaseText, req.CaseTitle, c.ClientIP())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ANALYZE_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	if result.Blocked {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error": gin.H{
				"code":       "INPUT_REJECTED",
				"violations": result.Violations,
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"request_id":           result.RequestID,
			"analysis":             result.Analysis,
			"citations":            result.Citations,
			"has_hallucinations":   result.HallucinationReport.HasHallucinations,
			"suspected_fake_refs":  result.HallucinationReport.SuspectedFakeRefs,
			"confidence_score":     result.HallucinationReport.ConfidenceScore,
		},
	})
}

// AnalyzePDF handles POST /api/analyze/pdf: a multipart PDF upload
// variant that parses the PDF before the rest of the pipeline.
func (h *AnalyzeHandler) AnalyzePDF(c *gin.Context) {
	userIDStr := c.PostForm("user_id")
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_USER_ID",
				"message": "Invalid user_id format",
			},
		})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "File is required",
			},
		})
		return
	}

	fileResult := validate.ValidateFile(validate.DefaultConfig(), fileHeader.Filename, fileHeader.Size)
	if !fileResult.IsValid {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error": gin.H{
				"code":       "INVALID_FILE",
				"violations": fileResult.Violations,
			},
		})
		return
	}

	tmp, err := os.CreateTemp("", "analyze-upload-*.pdf")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{"code": "TEMP_FILE_ERROR", "message": err.Error()},
		})
		return
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{"code": "FILE_OPEN_ERROR", "message": err.Error()},
		})
		return
	}
	defer src.Close()

	if _, err := io.Copy(tmp, src); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{"code": "FILE_WRITE_ERROR", "message": err.Error()},
		})
		return
	}

	result, err := h.analyzeService.AnalyzeFile(c.Request.Context(), userID, tmp.Name(), c.ClientIP())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ANALYZE_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	if result.Blocked {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error": gin.H{
				"code":       "INPUT_REJECTED",
				"violations": result.Violations,
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"request_id":          result.RequestID,
			"analysis":            result.Analysis,
			"citations":           result.Citations,
			"has_hallucinations":  result.HallucinationReport.HasHallucinations,
			"suspected_fake_refs": result.HallucinationReport.SuspectedFakeRefs,
			"confidence_score":    result.HallucinationReport.ConfidenceScore,
		},
	})
}
