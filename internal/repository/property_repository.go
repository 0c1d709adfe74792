package repository

import (
	"context"

	"github.com/yukikurage/renovation-tracker-api/internal/database"
	"github.com/yukikurage/renovation-tracker-api/internal/models"
	"gorm.io/gorm"
)

// GormPropertyRepository is a GORM implementation of PropertyRepository
type GormPropertyRepository struct {
	db *gorm.DB
}

// NewPropertyRepository creates a new PropertyRepository
func NewPropertyRepository(db *gorm.DB) PropertyRepository {
	return &GormPropertyRepository{db: db}
}

// Create creates a new property
func (r *GormPropertyRepository) Create(ctx context.Context, property *models.Property) error {
	return r.db.WithContext(ctx).Create(property).Error
}

// List retrieves the owner's properties, newest first
func (r *GormPropertyRepository) List(ctx context.Context, filter PropertyFilter) ([]models.Property, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Property{}).Scopes(PropertyOwnedBy(filter.OwnerUserID))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	properties := []models.Property{}
	if err := query.Order("properties.id DESC").
		Scopes(database.Paginate(filter.Pagination)).
		Find(&properties).Error; err != nil {
		return nil, 0, err
	}

	return properties, total, nil
}

// UpdateScoped applies the given columns to a property owned by ownerUserID
func (r *GormPropertyRepository) UpdateScoped(ctx context.Context, id, ownerUserID uint64, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.Property{}).
		Scopes(PropertyOwnedBy(ownerUserID)).
		Where("properties.id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFoundOrUnauthorized
	}
	return nil
}

// DeleteScoped deletes a property; projects and documents go with it via ON DELETE CASCADE
func (r *GormPropertyRepository) DeleteScoped(ctx context.Context, id, ownerUserID uint64) error {
	return scopedDelete(r.db.WithContext(ctx).
		Scopes(PropertyOwnedBy(ownerUserID)).
		Where("properties.id = ?", id), &models.Property{})
}
