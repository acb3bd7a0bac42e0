package handler

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"policyqa/internal/app"
	"policyqa/internal/pkg/fsutil"
	"policyqa/internal/report"
	"policyqa/internal/transport/http/response"
)

const maxUploadSize = 16 << 20 // 16 MB

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
}

type DocumentHandler struct {
	documentService *app.DocumentService
	uploadDir       string
}

type AskDocumentRequest struct {
	Filename string `json:"filename" binding:"required"`
	Question string `json:"question" binding:"required"`
	TopK     int    `json:"top_k"`
}

type SummarizeDocumentRequest struct {
	Filename string `json:"filename" binding:"required"`
}

type DeleteDocumentRequest struct {
	Filename string `json:"filename" binding:"required"`
}

func NewDocumentHandler(documentService *app.DocumentService, uploadDir string) *DocumentHandler {
	return &DocumentHandler{documentService: documentService, uploadDir: uploadDir}
}

// Upload accepts a multipart form with "file" (PDF or DOCX), validates it as
// an insurance document, and indexes it into the caller's session.
func (h *DocumentHandler) Upload(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
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
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "only PDF and DOCX files are allowed")
		return
	}

	filename := fsutil.SanitizeFilename(file.Filename)
	if filename == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid filename")
		return
	}
	path := fsutil.SafeJoin(h.uploadDir, filename)
	if err := c.SaveUploadedFile(file, path); err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to save file")
		return
	}

	result, err := h.documentService.Upload(c.Request.Context(), app.UploadInput{
		UserID:   userID,
		Filename: filename,
		Path:     path,
	})
	if err != nil {
		var rejection *app.RejectionError
		switch {
		case errors.As(err, &rejection):
			response.Error(c, http.StatusBadRequest, response.CodeDocumentRejected, rejection.Reason)
		case errors.Is(err, app.ErrEmptyDocument):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "document contains no extractable text")
		default:
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "failed to process document: "+err.Error())
		}
		return
	}
	response.OK(c, result)
}

func (h *DocumentHandler) List(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	response.OK(c, gin.H{"documents": h.documentService.ListDocuments(userID)})
}

func (h *DocumentHandler) Ask(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	var req AskDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.documentService.Ask(c.Request.Context(), app.AskInput{
		UserID:   userID,
		Filename: req.Filename,
		Question: req.Question,
		TopK:     req.TopK,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrDocumentNotFound):
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, err.Error())
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "answer question failed")
		}
		return
	}
	response.OK(c, result)
}

func (h *DocumentHandler) Summarize(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	var req SummarizeDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.documentService.Summarize(c.Request.Context(), userID, req.Filename)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrDocumentNotFound):
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "summarize document failed")
		}
		return
	}
	response.OK(c, result)
}

// Delete removes a document from the session and from disk. Deleting a
// document that is already gone succeeds.
func (h *DocumentHandler) Delete(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	var req DeleteDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	if err := h.documentService.Delete(userID, fsutil.SanitizeFilename(req.Filename)); err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid filename")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete document failed")
		return
	}
	response.OK(c, gin.H{"deleted": req.Filename})
}

// Compare accepts a multipart form with numbered file0/label0..fileN/labelN
// pairs and returns a benefit-by-benefit comparison. A missing label falls
// back to the filename.
func (h *DocumentHandler) Compare(c *gin.Context) {
	if _, ok := getUserIDFromContext(c); !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid multipart form")
		return
	}

	var compareFiles []app.CompareFile
	for i := 0; ; i++ {
		files := form.File[fmt.Sprintf("file%d", i)]
		if len(files) == 0 {
			break
		}
		file := files[0]
		if file.Size > maxUploadSize {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file too large (max 16MB)")
			return
		}
		ext := strings.ToLower(filepath.Ext(file.Filename))
		if !allowedExtensions[ext] {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "only PDF and DOCX files are allowed")
			return
		}
		filename := fsutil.SanitizeFilename(file.Filename)
		path := fsutil.SafeJoin(h.uploadDir, fmt.Sprintf("compare_%d_%s", i, filename))
		if err := c.SaveUploadedFile(file, path); err != nil {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to save file")
			return
		}
		label := strings.TrimSpace(c.PostForm(fmt.Sprintf("label%d", i)))
		if label == "" {
			label = filename
		}
		compareFiles = append(compareFiles, app.CompareFile{Label: label, Path: path})
	}
	if len(compareFiles) < 2 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "at least two files are required")
		return
	}

	result, err := h.documentService.Compare(c.Request.Context(), compareFiles)
	if err != nil {
		var rejection *app.RejectionError
		switch {
		case errors.As(err, &rejection):
			response.Error(c, http.StatusBadRequest, response.CodeDocumentRejected, rejection.Reason)
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "compare plans failed")
		}
		return
	}
	response.OK(c, result)
}

// Report renders the caller's conversation history to a PDF and returns a
// download link for it.
func (h *DocumentHandler) Report(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	filename, err := h.documentService.ExportReport(c.Request.Context(), userID, getUsernameFromContext(c))
	if err != nil {
		if errors.Is(err, report.ErrEmptyHistory) {
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, "no conversation history to export")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "generate report failed")
		return
	}
	response.OK(c, gin.H{
		"filename":     filename,
		"download_url": "/uploads/" + filename,
	})
}

func (h *DocumentHandler) History(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	response.OK(c, gin.H{"history": h.documentService.History(c.Request.Context(), userID)})
}
