package repository

import (
	"context"

	"github.com/yukikurage/renovation-tracker-api/internal/models"
	"github.com/yukikurage/renovation-tracker-api/internal/utils"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByUsername finds a user by exact, case-sensitive username
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// FindOwnerTree loads a user with every property, project and document they own
	FindOwnerTree(ctx context.Context, id uint64) (*models.User, error)

	// Delete deletes a user; the database cascades to everything they own
	Delete(ctx context.Context, id uint64) error
}

// PropertyRepository defines the interface for property data access.
// Every read and write is scoped to the owning user.
type PropertyRepository interface {
	Create(ctx context.Context, property *models.Property) error
	List(ctx context.Context, filter PropertyFilter) ([]models.Property, int64, error)
	UpdateScoped(ctx context.Context, id, ownerUserID uint64, updates map[string]interface{}) error
	DeleteScoped(ctx context.Context, id, ownerUserID uint64) error
}

// PropertyFilter holds filtering options for listing properties
type PropertyFilter struct {
	OwnerUserID uint64
	Pagination  utils.PaginationParams
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	List(ctx context.Context, filter ProjectFilter) ([]models.Project, int64, error)
	UpdateScoped(ctx context.Context, id, ownerUserID uint64, updates map[string]interface{}) error
	DeleteScoped(ctx context.Context, id, ownerUserID uint64) error
}

// ProjectFilter holds filtering options for listing projects
type ProjectFilter struct {
	OwnerUserID uint64
	PropertyID  *uint64
	Pagination  utils.PaginationParams
}

// DocumentRepository defines the interface for document data access
type DocumentRepository interface {
	Create(ctx context.Context, document *models.Document) error
	List(ctx context.Context, filter DocumentFilter) ([]models.Document, int64, error)
	DeleteScoped(ctx context.Context, id, ownerUserID uint64) error
}

// DocumentFilter holds filtering options for listing documents
type DocumentFilter struct {
	OwnerUserID uint64
	ProjectID   *uint64
	PropertyID  *uint64
	Pagination  utils.PaginationParams
}

// OwnershipResolver looks entities up with the ownership chain baked into the query.
// A miss never distinguishes "does not exist" from "belongs to someone else".
type OwnershipResolver interface {
	// ResolveScoped dispatches on kind and returns *models.Property, *models.Project or *models.Document
	ResolveScoped(ctx context.Context, kind models.EntityKind, id, userID uint64) (interface{}, error)

	Property(ctx context.Context, id, userID uint64) (*models.Property, error)
	Project(ctx context.Context, id, userID uint64) (*models.Project, error)
	Document(ctx context.Context, id, userID uint64) (*models.Document, error)
}
