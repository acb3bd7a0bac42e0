package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"policyqa/internal/app"
	"policyqa/internal/transport/http/response"
)

type AnalyticsHandler struct {
	analyticsService *app.AnalyticsService
}

type AskAnalyticsRequest struct {
	Question string `json:"question" binding:"required"`
}

func NewAnalyticsHandler(analyticsService *app.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// Ask routes an aggregate claims question to the analytics agent. The
// request is either JSON {"question"} against the configured claims file,
// or a multipart form with a "file" CSV and a "question" field.
func (h *AnalyticsHandler) Ask(c *gin.Context) {
	if _, ok := getUserIDFromContext(c); !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		h.askUploadedCSV(c)
		return
	}

	var req AskAnalyticsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	answer, err := h.analyticsService.Ask(c.Request.Context(), req.Question)
	if err != nil {
		if errors.Is(err, app.ErrNoClaimsData) {
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, "claims data not available")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "analytics question failed")
		return
	}
	response.OK(c, gin.H{"answer": answer})
}

func (h *AnalyticsHandler) askUploadedCSV(c *gin.Context) {
	question := strings.TrimSpace(c.PostForm("question"))
	if question == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "question is required")
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file")
		return
	}
	if file.Size > maxUploadSize {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file too large (max 16MB)")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
		return
	}
	defer f.Close()

	answer, err := h.analyticsService.AskCSV(c.Request.Context(), f, question)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "failed to analyze claims data: "+err.Error())
		return
	}
	response.OK(c, gin.H{"answer": answer})
}
