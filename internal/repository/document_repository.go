package repository

import (
	"context"

	"github.com/yukikurage/renovation-tracker-api/internal/database"
	"github.com/yukikurage/renovation-tracker-api/internal/models"
	"gorm.io/gorm"
)

// GormDocumentRepository is a GORM implementation of DocumentRepository
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &GormDocumentRepository{db: db}
}

// Create creates a new document record
func (r *GormDocumentRepository) Create(ctx context.Context, document *models.Document) error {
	return r.db.WithContext(ctx).Create(document).Error
}

// List retrieves the owner's documents, optionally for a single project
func (r *GormDocumentRepository) List(ctx context.Context, filter DocumentFilter) ([]models.Document, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Document{}).Scopes(DocumentOwnedBy(filter.OwnerUserID))

	if filter.ProjectID != nil {
		query = query.Where("documents.project_id = ?", *filter.ProjectID)
	}
	if filter.PropertyID != nil {
		query = query.Where("documents.project_id IN (SELECT projects.id FROM projects WHERE projects.property_id = ?)", *filter.PropertyID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	documents := []models.Document{}
	if err := query.Order("documents.id DESC").
		Scopes(database.Paginate(filter.Pagination)).
		Find(&documents).Error; err != nil {
		return nil, 0, err
	}

	return documents, total, nil
}

// DeleteScoped deletes a document record owned by ownerUserID
func (r *GormDocumentRepository) DeleteScoped(ctx context.Context, id, ownerUserID uint64) error {
	return scopedDelete(r.db.WithContext(ctx).
		Scopes(DocumentOwnedBy(ownerUserID)).
		Where("documents.id = ?", id), &models.Document{})
}
