package repository

import (
	"context"

	"github.com/yukikurage/renovation-tracker-api/internal/database"
	"github.com/yukikurage/renovation-tracker-api/internal/models"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates a new project
func (r *GormProjectRepository) Create(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

// List retrieves the owner's projects, optionally for a single property
func (r *GormProjectRepository) List(ctx context.Context, filter ProjectFilter) ([]models.Project, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Project{}).Scopes(ProjectOwnedBy(filter.OwnerUserID))

	if filter.PropertyID != nil {
		query = query.Where("projects.property_id = ?", *filter.PropertyID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	projects := []models.Project{}
	if err := query.Order("projects.id DESC").
		Scopes(database.Paginate(filter.Pagination)).
		Find(&projects).Error; err != nil {
		return nil, 0, err
	}

	return projects, total, nil
}

// UpdateScoped applies the given columns to a project owned by ownerUserID
func (r *GormProjectRepository) UpdateScoped(ctx context.Context, id, ownerUserID uint64, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.Project{}).
		Scopes(ProjectOwnedBy(ownerUserID)).
		Where("projects.id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFoundOrUnauthorized
	}
	return nil
}

// DeleteScoped deletes a project; its documents go with it via ON DELETE CASCADE
func (r *GormProjectRepository) DeleteScoped(ctx context.Context, id, ownerUserID uint64) error {
	return scopedDelete(r.db.WithContext(ctx).
		Scopes(ProjectOwnedBy(ownerUserID)).
		Where("projects.id = ?", id), &models.Project{})
}
