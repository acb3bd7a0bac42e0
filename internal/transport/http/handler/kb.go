package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"policyqa/internal/app"
	"policyqa/internal/transport/http/response"
)

type KBHandler struct {
	kbService *app.KBService
}

type AskKBRequest struct {
	Question string `json:"question" binding:"required"`
}

func NewKBHandler(kbService *app.KBService) *KBHandler {
	return &KBHandler{kbService: kbService}
}

// Ask answers a question from the pre-indexed shared knowledge base.
func (h *KBHandler) Ask(c *gin.Context) {
	if _, ok := getUserIDFromContext(c); !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	var req AskKBRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.kbService.Ask(c.Request.Context(), req.Question)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrEmptyKnowledgeBase):
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, "knowledge base is empty")
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "question is required")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "knowledge base question failed")
		}
		return
	}
	response.OK(c, result)
}
