package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/renovation-tracker-api/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrNotFoundOrUnauthorized is the single signal for a missing or foreign entity.
	ErrNotFoundOrUnauthorized = errors.New("entity not found or not owned by principal")
	ErrUnknownEntityKind      = errors.New("unknown entity kind")
)

// Ownership predicates. Each level checks its own owner column and that the parent
// chain resolves to the same owner.
const (
	projectParentOwned = "EXISTS (SELECT 1 FROM properties WHERE properties.id = projects.property_id AND properties.owner_user_id = ?)"

	documentParentOwned = "EXISTS (SELECT 1 FROM projects JOIN properties ON properties.id = projects.property_id " +
		"WHERE projects.id = documents.project_id AND projects.owner_user_id = ? AND properties.owner_user_id = ?)"
)

// PropertyOwnedBy scopes a query on properties to userID.
func PropertyOwnedBy(userID uint64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("properties.owner_user_id = ?", userID)
	}
}

// ProjectOwnedBy scopes a query on projects to userID through the property chain.
func ProjectOwnedBy(userID uint64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("projects.owner_user_id = ?", userID).
			Where(projectParentOwned, userID)
	}
}

// DocumentOwnedBy scopes a query on documents to userID through the project and property chain.
func DocumentOwnedBy(userID uint64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("documents.owner_user_id = ?", userID).
			Where(documentParentOwned, userID, userID)
	}
}

// GormOwnershipResolver is a GORM implementation of OwnershipResolver
type GormOwnershipResolver struct {
	db *gorm.DB
}

// NewOwnershipResolver creates a new OwnershipResolver
func NewOwnershipResolver(db *gorm.DB) OwnershipResolver {
	return &GormOwnershipResolver{db: db}
}

func (r *GormOwnershipResolver) ResolveScoped(ctx context.Context, kind models.EntityKind, id, userID uint64) (interface{}, error) {
	switch kind {
	case models.KindProperty:
		return r.Property(ctx, id, userID)
	case models.KindProject:
		return r.Project(ctx, id, userID)
	case models.KindDocument:
		return r.Document(ctx, id, userID)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntityKind, kind)
	}
}

func (r *GormOwnershipResolver) Property(ctx context.Context, id, userID uint64) (*models.Property, error) {
	var property models.Property
	err := r.db.WithContext(ctx).
		Scopes(PropertyOwnedBy(userID)).
		Where("properties.id = ?", id).
		Take(&property).Error
	if err != nil {
		return nil, translateMiss(err)
	}
	return &property, nil
}

func (r *GormOwnershipResolver) Project(ctx context.Context, id, userID uint64) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).
		Scopes(ProjectOwnedBy(userID)).
		Where("projects.id = ?", id).
		Take(&project).Error
	if err != nil {
		return nil, translateMiss(err)
	}
	return &project, nil
}

func (r *GormOwnershipResolver) Document(ctx context.Context, id, userID uint64) (*models.Document, error) {
	var document models.Document
	err := r.db.WithContext(ctx).
		Scopes(DocumentOwnedBy(userID)).
		Where("documents.id = ?", id).
		Take(&document).Error
	if err != nil {
		return nil, translateMiss(err)
	}
	return &document, nil
}

func translateMiss(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFoundOrUnauthorized
	}
	return err
}

// scopedDelete runs a single DELETE under the ownership scope; zero rows is a miss.
func scopedDelete(db *gorm.DB, model interface{}) error {
	result := db.Delete(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFoundOrUnauthorized
	}
	return nil
}
