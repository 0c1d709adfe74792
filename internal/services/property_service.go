package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yukikurage/renovation-tracker-api/internal/models"
	"github.com/yukikurage/renovation-tracker-api/internal/repository"
	"github.com/yukikurage/renovation-tracker-api/internal/utils"
	"gorm.io/gorm"
)

const maxNameLength = 255

var ErrPropertyNotFound = errors.New("property not found")

// BlobReleaser removes the blobs of documents deleted by a database cascade.
type BlobReleaser interface {
	DescendantBlobs(ctx context.Context, filter repository.DocumentFilter) ([]string, error)
	ReleaseBlobs(ctx context.Context, locations []string)
}

// PropertyService handles property business logic
type PropertyService struct {
	propertyRepo repository.PropertyRepository
	resolver     repository.OwnershipResolver
	blobs        BlobReleaser
}

// NewPropertyService creates a new PropertyService
func NewPropertyService(propertyRepo repository.PropertyRepository, resolver repository.OwnershipResolver, blobs BlobReleaser) *PropertyService {
	return &PropertyService{
		propertyRepo: propertyRepo,
		resolver:     resolver,
		blobs:        blobs,
	}
}

// CreatePropertyInput represents input for creating a property
type CreatePropertyInput struct {
	Name    string
	Address string
}

// UpdatePropertyInput represents input for updating a property
type UpdatePropertyInput struct {
	Name    *string
	Address *string
}

// Create creates a property owned by userID
func (s *PropertyService) Create(ctx context.Context, userID uint64, input CreatePropertyInput) (*models.Property, error) {
	name, err := validateName(input.Name)
	if err != nil {
		return nil, err
	}

	property := &models.Property{
		OwnerUserID: userID,
		Name:        name,
		Address:     input.Address,
	}
	if err := s.propertyRepo.Create(ctx, property); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, ErrForbidden
		}
		return nil, fmt.Errorf("failed to create property: %w", err)
	}

	return property, nil
}

// Get returns a property owned by userID
func (s *PropertyService) Get(ctx context.Context, userID, id uint64) (*models.Property, error) {
	property, err := s.resolver.Property(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFoundOrUnauthorized) {
			return nil, ErrPropertyNotFound
		}
		return nil, fmt.Errorf("failed to find property: %w", err)
	}
	return property, nil
}

// List returns every property owned by userID
func (s *PropertyService) List(ctx context.Context, userID uint64, pagination utils.PaginationParams) ([]models.Property, int64, error) {
	properties, total, err := s.propertyRepo.List(ctx, repository.PropertyFilter{
		OwnerUserID: userID,
		Pagination:  pagination,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list properties: %w", err)
	}
	return properties, total, nil
}

// Update applies only the provided fields
func (s *PropertyService) Update(ctx context.Context, userID, id uint64, input UpdatePropertyInput) (*models.Property, error) {
	updates := map[string]interface{}{}
	if input.Name != nil {
		name, err := validateName(*input.Name)
		if err != nil {
			return nil, err
		}
		updates["name"] = name
	}
	if input.Address != nil {
		updates["address"] = *input.Address
	}

	if len(updates) == 0 {
		return s.Get(ctx, userID, id)
	}

	if err := s.propertyRepo.UpdateScoped(ctx, id, userID, updates); err != nil {
		if errors.Is(err, repository.ErrNotFoundOrUnauthorized) {
			return nil, ErrPropertyNotFound
		}
		return nil, fmt.Errorf("failed to update property: %w", err)
	}

	return s.Get(ctx, userID, id)
}

// Delete deletes a property. Projects and documents are removed by the database
// cascade, then the blobs of the removed documents are released.
func (s *PropertyService) Delete(ctx context.Context, userID, id uint64) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}

	locations, err := s.blobs.DescendantBlobs(ctx, repository.DocumentFilter{OwnerUserID: userID, PropertyID: &id})
	if err != nil {
		return err
	}

	if err := s.propertyRepo.DeleteScoped(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFoundOrUnauthorized) {
			return ErrPropertyNotFound
		}
		return fmt.Errorf("failed to delete property: %w", err)
	}

	s.blobs.ReleaseBlobs(ctx, locations)
	return nil
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", newValidationError("name", "is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", newValidationError("name", fmt.Sprintf("must be at most %d characters", maxNameLength))
	}
	return name, nil
}
