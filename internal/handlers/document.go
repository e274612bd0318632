package handlers

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskflow-api/internal/constants"
	"github.com/yukikurage/taskflow-api/internal/dto"
	apierrors "github.com/yukikurage/taskflow-api/internal/errors"
	"github.com/yukikurage/taskflow-api/internal/logger"
	"github.com/yukikurage/taskflow-api/internal/middleware"
	"github.com/yukikurage/taskflow-api/internal/services"
)

type DocumentHandler struct {
	documentService *services.DocumentService
}

func NewDocumentHandler(documentService *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// ListDocuments returns document metadata for the task, newest first
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	docs, err := h.documentService.ListDocuments(task.ID)
	if err != nil {
		logger.FromContext(c.Request.Context()).Error("Failed to list documents", "task_id", task.ID, "error", err)
		apierrors.InternalError(c, "Failed to load documents")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"documents": dto.ToTaskDocumentDTOs(docs),
	})
}

// UploadDocument accepts a multipart form with a single "file" field
func (h *DocumentHandler) UploadDocument(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.UnauthorizedWithRedirect(c, "", constants.RouteLogin)
		return
	}
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	if limit := h.documentService.MaxSize(); limit > 0 {
		// room for the multipart envelope around the file
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+1<<20)
	}

	header, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			apierrors.RequestTooLarge(c, services.ErrFileTooLarge.Error())
			return
		}
		apierrors.BadRequest(c, services.ErrFileRequired.Error())
		return
	}
	if limit := h.documentService.MaxSize(); limit > 0 && header.Size > limit {
		apierrors.RequestTooLarge(c, services.ErrFileTooLarge.Error())
		return
	}

	file, err := header.Open()
	if err != nil {
		apierrors.BadRequest(c, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	doc, err := h.documentService.UploadDocument(c.Request.Context(), services.UploadInput{
		TaskID:      task.ID,
		UploadedBy:  user.ID,
		FileName:    header.Filename,
		Size:        header.Size,
		ContentType: contentType(header),
		Body:        file,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrFileRequired):
			apierrors.BadRequest(c, err.Error())
		case errors.Is(err, services.ErrFileTooLarge):
			apierrors.RequestTooLarge(c, err.Error())
		default:
			logger.FromContext(c.Request.Context()).Error("Failed to upload document", "task_id", task.ID, "error", err)
			apierrors.InternalError(c, "Failed to upload document")
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDocumentDTO(*doc))
}

// DownloadDocument streams a stored document as an attachment
func (h *DocumentHandler) DownloadDocument(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	doc, err := h.documentService.GetDocument(task.ID, c.Param("document_id"))
	if err != nil {
		if errors.Is(err, services.ErrDocumentNotFound) {
			apierrors.NotFound(c, "Document not found")
			return
		}
		logger.FromContext(c.Request.Context()).Error("Failed to load document", "task_id", task.ID, "error", err)
		apierrors.InternalError(c, "Failed to load document")
		return
	}

	body, err := h.documentService.Download(c.Request.Context(), doc.FilePath)
	if err != nil {
		if errors.Is(err, services.ErrDocumentNotFound) {
			apierrors.NotFound(c, "Document content not found")
			return
		}
		logger.FromContext(c.Request.Context()).Error("Failed to read document", "path", doc.FilePath, "error", err)
		apierrors.InternalError(c, "Failed to download document")
		return
	}
	defer body.Close()

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": doc.FileName})
	if disposition == "" {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", disposition)
	c.Header("Content-Type", "application/octet-stream")
	c.Header("Content-Length", strconv.FormatInt(doc.FileSize, 10))
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, body); err != nil {
		logger.FromContext(c.Request.Context()).Warn("Document stream interrupted", "path", doc.FilePath, "error", err)
	}
}

func contentType(header *multipart.FileHeader) string {
	if ct := header.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
