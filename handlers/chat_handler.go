package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"legalresearch-engine/chat"
)

// ChatHandler handles HTTP requests for the chat session layer.
type ChatHandler struct {
	engine *chat.Engine
}

func NewChatHandler(engine *chat.Engine) *ChatHandler {
	return &ChatHandler{engine: engine}
}

// StartSessionRequest is the request body for POST /api/chat/sessions.
type StartSessionRequest struct {
	UserID    string `json:"user_id" binding:"required"`
	CaseText  string `json:"case_text" binding:"required"`
	CaseTitle string `json:"case_title"`
}

// StartSession handles POST /api/chat/sessions.
func (h *ChatHandler) StartSession(c *gin.Context) {
	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   gin.H{"code": "INVALID_REQUEST", "message": err.Error()},
		})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   gin.H{"code": "INVALID_USER_ID", "message": "Invalid user_id format"},
		})
		return
	}

	session, err := h.engine.StartSession(c.Request.Context(), userID, req.CaseText, req.CaseTitle)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "START_SESSION_FAILED", "message": err.Error()},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"session_id":      session.ID,
			"state":           session.State,
			"initial_context": session.InitialContext,
		},
	})
}

// SendMessageRequest is the request body for
// POST /api/chat/sessions/:id/messages.
type SendMessageRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	Message string `json:"message" binding:"required"`
	// UseRAG toggles Mode A retrieval for this message; nil means the
	// default of true, matching the send_message(..., use_rag=true)
	// contract.
	UseRAG *bool `json:"use_rag"`
}

func (r SendMessageRequest) useRAG() bool {
	if r.UseRAG == nil {
		return true
	}
	return *r.UseRAG
}

// SendMessage handles POST /api/chat/sessions/:id/messages.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   gin.H{"code": "INVALID_SESSION_ID", "message": "Invalid session id"},
		})
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   gin.H{"code": "INVALID_REQUEST", "message": err.Error()},
		})
		return
	}

	result, err := h.engine.SendMessage(c.Request.Context(), sessionID, req.UserID, c.ClientIP(), req.Message, req.useRAG())
	if err != nil {
		if errors.Is(err, chat.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   gin.H{"code": "SESSION_NOT_FOUND", "message": err.Error()},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "SEND_MESSAGE_FAILED", "message": err.Error()},
		})
		return
	}

	if result.Blocked {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error":   gin.H{"code": "INPUT_REJECTED", "violations": result.Violations},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"reply":              result.Reply,
			"degraded":           result.Degraded,
			"state":              result.Session.State,
			"cited_precedents":   result.CitedPrecedents,
			"follow_up_questions": result.FollowUpQuestions,
		},
	})
}

// DeleteSession handles DELETE /api/chat/sessions/:id.
func (h *ChatHandler) DeleteSession(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   gin.H{"code": "INVALID_SESSION_ID", "message": "Invalid session id"},
		})
		return
	}

	if err := h.engine.Terminate(c.Request.Context(), sessionID); err != nil {
		if errors.Is(err, chat.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   gin.H{"code": "SESSION_NOT_FOUND", "message": err.Error()},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "DELETE_SESSION_FAILED", "message": err.Error()},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
