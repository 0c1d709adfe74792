package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/renovation-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/renovation-tracker-api/internal/errors"
	"github.com/yukikurage/renovation-tracker-api/internal/services"
	"github.com/yukikurage/renovation-tracker-api/internal/utils"
)

// multipartOverhead is the room left for form fields and part headers.
const multipartOverhead = 1 << 20

type DocumentHandler struct {
	documentService *services.DocumentService
}

func NewDocumentHandler(documentService *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
	}
}

// ListDocuments returns the caller's documents
// Can filter by project_id
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	projectID, ok := parseOptionalID(c, "project_id")
	if !ok {
		return
	}

	documents, total, err := h.documentService.List(c.Request.Context(), userID, services.ListDocumentsInput{
		ProjectID:  projectID,
		Pagination: utils.GetPaginationParams(c),
	})
	if err != nil {
		respondDocumentError(c, err)
		return
	}

	setTotalCount(c, total)
	c.JSON(http.StatusOK, dto.ToDocumentDTOs(documents))
}

// GetDocument returns the metadata of one document
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	document, err := h.documentService.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondDocumentError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDocumentDTO(*document))
}

// UploadDocument accepts a multipart form with a PDF "file" and its "project_id".
func (h *DocumentHandler) UploadDocument(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	// Bodies far beyond the limit are cut off while parsing; the exact limit is enforced by the service.
	maxBytes := h.documentService.MaxUploadBytes()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 2*maxBytes+multipartOverhead)

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			apierrors.PayloadTooLarge(c, services.ErrPayloadTooLarge.Error())
			return
		}
		apierrors.BadRequestWithDetails(c, "Invalid multipart form", gin.H{"field": "file", "reason": "multipart/form-data body is required"})
		return
	}

	projectIDs := form.Value["project_id"]
	if len(projectIDs) == 0 {
		apierrors.BadRequestWithDetails(c, "project_id is required", gin.H{"field": "project_id", "reason": "is required"})
		return
	}
	projectID, err := strconv.ParseUint(projectIDs[0], 10, 64)
	if err != nil || projectID == 0 {
		apierrors.BadRequestWithDetails(c, "Invalid project_id", gin.H{"field": "project_id", "reason": "must be a positive integer"})
		return
	}

	files := form.File["file"]
	if len(files) == 0 {
		apierrors.BadRequestWithDetails(c, "file is required", gin.H{"field": "file", "reason": "is required"})
		return
	}
	header := files[0]

	file, err := header.Open()
	if err != nil {
		apierrors.InternalErrorFrom(c, "Failed to read upload", err)
		return
	}
	defer file.Close()

	document, err := h.documentService.Upload(c.Request.Context(), userID, services.UploadInput{
		ProjectID:   projectID,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		respondDocumentError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToDocumentDTO(*document))
}

// DeleteDocument deletes the blob and then the record
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.documentService.Delete(c.Request.Context(), userID, id); err != nil {
		respondDocumentError(c, err)
		return
	}

	respondDeleted(c, "Document")
}

// GetDownloadLink issues a time-limited URL for the document bytes
func (h *DocumentHandler) GetDownloadLink(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	link, err := h.documentService.DownloadLink(c.Request.Context(), userID, id)
	if err != nil {
		respondDocumentError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.DownloadLinkDTO{URL: link.URL, ExpiresAt: link.ExpiresAt})
}

func respondDocumentError(c *gin.Context, err error) {
	if respondValidationError(c, err) {
		return
	}

	switch {
	case errors.Is(err, services.ErrDocumentNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrForbidden):
		apierrors.Forbidden(c, "Project not found or not owned by you")
	case errors.Is(err, services.ErrPayloadTooLarge):
		apierrors.PayloadTooLarge(c, services.ErrPayloadTooLarge.Error())
	case errors.Is(err, services.ErrUnsupportedMediaType):
		apierrors.UnsupportedMediaType(c, services.ErrUnsupportedMediaType.Error())
	case errors.Is(err, services.ErrBlobStore):
		apierrors.DependencyFailed(c, "Blob store operation failed", err)
	case errors.Is(err, services.ErrInconsistentState):
		apierrors.InconsistentState(c, "Document storage is in an inconsistent state", err)
	default:
		apierrors.InternalErrorFrom(c, "", err)
	}
}
