package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/renovation-tracker-api/internal/constants"
	"github.com/yukikurage/renovation-tracker-api/internal/models"
	"github.com/yukikurage/renovation-tracker-api/internal/repository"
	"github.com/yukikurage/renovation-tracker-api/internal/storage"
	"github.com/yukikurage/renovation-tracker-api/internal/utils"
)

// sniffLen is how much of an upload is inspected for its real content type.
const sniffLen = 3072

var (
	ErrDocumentNotFound     = errors.New("document not found")
	ErrPayloadTooLarge      = errors.New("file exceeds the maximum upload size")
	ErrUnsupportedMediaType = errors.New("only PDF documents are accepted")
	ErrBlobStore            = errors.New("blob store operation failed")
	ErrInconsistentState    = errors.New("document storage is in an inconsistent state")
)

// OrphanRecorder counts blobs left behind without a document record.
type OrphanRecorder interface {
	OrphanBlob()
}

// DocumentServiceConfig holds the upload and link limits.
type DocumentServiceConfig struct {
	MaxUploadBytes int64
	DownloadURLTTL time.Duration
}

// DocumentService coordinates the blob store and document records.
type DocumentService struct {
	docRepo  repository.DocumentRepository
	resolver repository.OwnershipResolver
	store    storage.BlobStore
	orphans  OrphanRecorder
	maxBytes int64
	linkTTL  time.Duration
	now      func() time.Time
}

// NewDocumentService creates a new DocumentService. orphans may be nil.
func NewDocumentService(docRepo repository.DocumentRepository, resolver repository.OwnershipResolver, store storage.BlobStore, orphans OrphanRecorder, cfg DocumentServiceConfig) *DocumentService {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = constants.MaxUploadBytes
	}
	if cfg.DownloadURLTTL <= 0 {
		cfg.DownloadURLTTL = constants.DefaultDownloadURLTTL
	}
	return &DocumentService{
		docRepo:  docRepo,
		resolver: resolver,
		store:    store,
		orphans:  orphans,
		maxBytes: cfg.MaxUploadBytes,
		linkTTL:  cfg.DownloadURLTTL,
		now:      time.Now,
	}
}

// MaxUploadBytes returns the upload size limit.
func (s *DocumentService) MaxUploadBytes() int64 {
	return s.maxBytes
}

// UploadInput describes one uploaded file.
type UploadInput struct {
	ProjectID   uint64
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ListDocumentsInput represents filters for listing documents
type ListDocumentsInput struct {
	ProjectID  *uint64
	Pagination utils.PaginationParams
}

// DownloadLink is a time-limited, read-only URL for a document.
type DownloadLink struct {
	URL       string
	ExpiresAt time.Time
}

// List returns the caller's documents
func (s *DocumentService) List(ctx context.Context, userID uint64, input ListDocumentsInput) ([]models.Document, int64, error) {
	documents, total, err := s.docRepo.List(ctx, repository.DocumentFilter{
		OwnerUserID: userID,
		ProjectID:   input.ProjectID,
		Pagination:  input.Pagination,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list documents: %w", err)
	}
	return documents, total, nil
}

// Get returns a single document owned by the caller
func (s *DocumentService) Get(ctx context.Context, userID, id uint64) (*models.Document, error) {
	document, err := s.resolver.Document(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFoundOrUnauthorized) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to find document: %w", err)
	}
	return document, nil
}

// Upload validates the file, writes the blob and only then records the document.
// Type and size are checked before the blob store is touched.
func (s *DocumentService) Upload(ctx context.Context, userID uint64, input UploadInput) (*models.Document, error) {
	if input.FileName == "" || input.Body == nil {
		return nil, newValidationError("file", "is required")
	}
	if input.Size > s.maxBytes {
		return nil, ErrPayloadTooLarge
	}
	if input.Size <= 0 {
		return nil, newValidationError("file", "must not be empty")
	}
	if !isPDFMediaType(input.ContentType) {
		return nil, ErrUnsupportedMediaType
	}

	body, err := sniffPDF(input.Body)
	if err != nil {
		return nil, err
	}

	if err := ensureParentOwned(ctx, s.resolver, models.KindProject, input.ProjectID, userID); err != nil {
		return nil, err
	}

	key := storage.BuildDocumentKey(input.ProjectID, input.FileName, s.now())
	location, err := s.store.Put(ctx, key, body, input.Size, constants.PDFContentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBlobStore, err)
	}

	document := &models.Document{
		ProjectID:    input.ProjectID,
		OwnerUserID:  userID,
		FileName:     input.FileName,
		FileLocation: location,
		ContentType:  constants.PDFContentType,
		SizeBytes:    input.Size,
	}
	if err := s.docRepo.Create(ctx, document); err != nil {
		// The blob stays behind for out-of-band reconciliation.
		logrus.WithFields(logrus.Fields{
			"blob_key":   key,
			"location":   location,
			"project_id": input.ProjectID,
			"user_id":    userID,
		}).WithError(err).Error("Document insert failed after blob write, orphaned blob")
		if s.orphans != nil {
			s.orphans.OrphanBlob()
		}
		return nil, fmt.Errorf("%w: %v", ErrInconsistentState, err)
	}

	return document, nil
}

// Delete removes the blob first and the record only once the blob is confirmed gone.
// If the blob cannot be deleted the record is kept.
func (s *DocumentService) Delete(ctx context.Context, userID, id uint64) error {
	document, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}

	key, err := s.store.KeyFromLocation(document.FileLocation)
	if err != nil {
		return fmt.Errorf("%w: document %d has unusable location: %v", ErrInconsistentState, document.ID, err)
	}

	if err := s.store.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrBlobNotFound) {
		return fmt.Errorf("%w: %v", ErrBlobStore, err)
	}

	if err := s.docRepo.DeleteScoped(ctx, document.ID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFoundOrUnauthorized) {
			return ErrDocumentNotFound
		}
		return fmt.Errorf("failed to delete document: %w", err)
	}

	return nil
}

// DownloadLink presigns a read-only URL for a document owned by the caller.
func (s *DocumentService) DownloadLink(ctx context.Context, userID, id uint64) (*DownloadLink, error) {
	document, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	key, err := s.store.KeyFromLocation(document.FileLocation)
	if err != nil {
		return nil, fmt.Errorf("%w: document %d has unusable location: %v", ErrInconsistentState, document.ID, err)
	}

	expiresAt := s.now().Add(s.linkTTL)
	url, err := s.store.PresignGet(ctx, key, s.linkTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBlobStore, err)
	}

	return &DownloadLink{URL: url, ExpiresAt: expiresAt}, nil
}

// DescendantBlobs lists the blob locations of every document matched by filter.
func (s *DocumentService) DescendantBlobs(ctx context.Context, filter repository.DocumentFilter) ([]string, error) {
	filter.Pagination = utils.PaginationParams{}
	documents, _, err := s.docRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list descendant documents: %w", err)
	}

	locations := make([]string, 0, len(documents))
	for _, d := range documents {
		locations = append(locations, d.FileLocation)
	}
	return locations, nil
}

// ReleaseBlobs deletes blobs whose records were already removed by a cascade.
// Failures leave orphaned blobs, which are logged and counted but not returned.
func (s *DocumentService) ReleaseBlobs(ctx context.Context, locations []string) {
	for _, location := range locations {
		key, err := s.store.KeyFromLocation(location)
		if err == nil {
			err = s.store.Delete(ctx, key)
		}
		if err != nil && !errors.Is(err, storage.ErrBlobNotFound) {
			logrus.WithField("location", location).WithError(err).Error("Failed to delete blob after cascade, orphaned blob")
			if s.orphans != nil {
				s.orphans.OrphanBlob()
			}
		}
	}
}

func isPDFMediaType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == constants.PDFContentType
}

// sniffPDF checks the leading bytes and returns a reader positioned at the start of the content.
func sniffPDF(body io.Reader) (io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:n]

	if !mimetype.Detect(head).Is(constants.PDFContentType) {
		return nil, ErrUnsupportedMediaType
	}

	if seeker, ok := body.(io.Seeker); ok {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("failed to rewind upload: %w", err)
		}
		return body, nil
	}
	return io.MultiReader(bytes.NewReader(head), body), nil
}
