package repository

import (
	"context"
	"errors"

	"github.com/yukikurage/renovation-tracker-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// ErrDuplicateUsername is returned when the unique username index rejects an insert.
var ErrDuplicateUsername = errors.New("user repository: username already exists")

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateUsername
		}
		return err
	}
	return nil
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindOwnerTree loads the user and the owned hierarchy. Every level is filtered by
// owner so a mismatched row further down can never leak into the tree.
func (r *GormUserRepository) FindOwnerTree(ctx context.Context, id uint64) (*models.User, error) {
	ownedBy := func(table string) func(db *gorm.DB) *gorm.DB {
		return func(db *gorm.DB) *gorm.DB {
			return db.Where(table+".owner_user_id = ?", id).Order(table + ".id")
		}
	}

	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Properties", ownedBy("properties")).
		Preload("Properties.Projects", ownedBy("projects")).
		Preload("Properties.Projects.Documents", ownedBy("documents")).
		First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Delete deletes a user and, through foreign key cascades, everything they own
func (r *GormUserRepository) Delete(ctx context.Context, id uint64) error {
	return scopedDelete(r.db.WithContext(ctx).Where("users.id = ?", id), &models.User{})
}
