package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/renovation-tracker-api/internal/models"
	"github.com/yukikurage/renovation-tracker-api/internal/repository"
	"github.com/yukikurage/renovation-tracker-api/internal/utils"
	"gorm.io/gorm"
)

var ErrProjectNotFound = errors.New("project not found")

// ProjectService handles project business logic
type ProjectService struct {
	projectRepo repository.ProjectRepository
	resolver    repository.OwnershipResolver
	blobs       BlobReleaser
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectRepo repository.ProjectRepository, resolver repository.OwnershipResolver, blobs BlobReleaser) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		resolver:    resolver,
		blobs:       blobs,
	}
}

// CreateProjectInput represents input for creating a project
type CreateProjectInput struct {
	PropertyID     uint64
	Name           string
	Description    string
	StartDate      *time.Time
	CompletionDate *time.Time
}

// UpdateProjectInput represents input for updating a project
type UpdateProjectInput struct {
	PropertyID          *uint64
	Name                *string
	Description         *string
	StartDate           *time.Time
	ClearStartDate      bool
	CompletionDate      *time.Time
	ClearCompletionDate bool
}

// ListProjectsInput represents filters for listing projects
type ListProjectsInput struct {
	PropertyID *uint64
	Pagination utils.PaginationParams
}

// Create creates a project under a property owned by userID
func (s *ProjectService) Create(ctx context.Context, userID uint64, input CreateProjectInput) (*models.Project, error) {
	name, err := validateName(input.Name)
	if err != nil {
		return nil, err
	}
	if err := validateSchedule(input.StartDate, input.CompletionDate); err != nil {
		return nil, err
	}

	if err := s.ensurePropertyOwned(ctx, input.PropertyID, userID); err != nil {
		return nil, err
	}

	project := &models.Project{
		PropertyID:     input.PropertyID,
		OwnerUserID:    userID,
		Name:           name,
		Description:    input.Description,
		StartDate:      input.StartDate,
		CompletionDate: input.CompletionDate,
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, ErrForbidden
		}
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// Get returns a project owned by userID
func (s *ProjectService) Get(ctx context.Context, userID, id uint64) (*models.Project, error) {
	project, err := s.resolver.Project(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFoundOrUnauthorized) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// List returns projects owned by userID, optionally under one property
func (s *ProjectService) List(ctx context.Context, userID uint64, input ListProjectsInput) ([]models.Project, int64, error) {
	projects, total, err := s.projectRepo.List(ctx, repository.ProjectFilter{
		OwnerUserID: userID,
		PropertyID:  input.PropertyID,
		Pagination:  input.Pagination,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, total, nil
}

// Update applies only the provided fields. Moving a project requires the target property to be owned too.
func (s *ProjectService) Update(ctx context.Context, userID, id uint64, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		name, err := validateName(*input.Name)
		if err != nil {
			return nil, err
		}
		updates["name"] = name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}

	start, completion := project.StartDate, project.CompletionDate
	if input.ClearStartDate {
		start = nil
		updates["start_date"] = nil
	} else if input.StartDate != nil {
		start = input.StartDate
		updates["start_date"] = *input.StartDate
	}
	if input.ClearCompletionDate {
		completion = nil
		updates["completion_date"] = nil
	} else if input.CompletionDate != nil {
		completion = input.CompletionDate
		updates["completion_date"] = *input.CompletionDate
	}
	if err := validateSchedule(start, completion); err != nil {
		return nil, err
	}

	if input.PropertyID != nil && *input.PropertyID != project.PropertyID {
		if err := s.ensurePropertyOwned(ctx, *input.PropertyID, userID); err != nil {
			return nil, err
		}
		updates["property_id"] = *input.PropertyID
	}

	if len(updates) == 0 {
		return project, nil
	}

	if err := s.projectRepo.UpdateScoped(ctx, id, userID, updates); err != nil {
		if errors.Is(err, repository.ErrNotFoundOrUnauthorized) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return s.Get(ctx, userID, id)
}

// Delete deletes a project; its documents are removed by the database cascade
// and their blobs released afterwards.
func (s *ProjectService) Delete(ctx context.Context, userID, id uint64) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}

	locations, err := s.blobs.DescendantBlobs(ctx, repository.DocumentFilter{OwnerUserID: userID, ProjectID: &id})
	if err != nil {
		return err
	}

	if err := s.projectRepo.DeleteScoped(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFoundOrUnauthorized) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to delete project: %w", err)
	}

	s.blobs.ReleaseBlobs(ctx, locations)
	return nil
}

// ensurePropertyOwned maps a property miss to ErrForbidden
func (s *ProjectService) ensurePropertyOwned(ctx context.Context, propertyID, userID uint64) error {
	if propertyID == 0 {
		return newValidationError("property_id", "is required")
	}
	return ensureParentOwned(ctx, s.resolver, models.KindProperty, propertyID, userID)
}

func validateSchedule(start, completion *time.Time) error {
	if start != nil && completion != nil && completion.Before(*start) {
		return newValidationError("completion_date", "must not be before start_date")
	}
	return nil
}
