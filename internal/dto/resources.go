package dto

import (
	"time"

	"github.com/yukikurage/renovation-tracker-api/internal/models"
)

// PropertyDTO represents a property in API responses
type PropertyDTO struct {
	ID          uint64    `json:"id"`
	OwnerUserID uint64    `json:"owner_user_id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProjectDTO represents a renovation project in API responses
type ProjectDTO struct {
	ID             uint64     `json:"id"`
	PropertyID     uint64     `json:"property_id"`
	OwnerUserID    uint64     `json:"owner_user_id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	StartDate      *time.Time `json:"start_date"`
	CompletionDate *time.Time `json:"completion_date"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// DocumentDTO represents a stored document in API responses
type DocumentDTO struct {
	ID           uint64    `json:"id"`
	ProjectID    uint64    `json:"project_id"`
	OwnerUserID  uint64    `json:"owner_user_id"`
	FileName     string    `json:"file_name"`
	FileLocation string    `json:"file_location"`
	ContentType  string    `json:"content_type"`
	SizeBytes    int64     `json:"size_bytes"`
	CreatedAt    time.Time `json:"created_at"`
}

// DownloadLinkDTO is a presigned, time-limited URL
type DownloadLinkDTO struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ToPropertyDTO converts a Property model to PropertyDTO
func ToPropertyDTO(property models.Property) PropertyDTO {
	return PropertyDTO{
		ID:          property.ID,
		OwnerUserID: property.OwnerUserID,
		Name:        property.Name,
		Address:     property.Address,
		CreatedAt:   property.CreatedAt,
		UpdatedAt:   property.UpdatedAt,
	}
}

// ToPropertyDTOs converts a slice of properties, never returning nil
func ToPropertyDTOs(properties []models.Property) []PropertyDTO {
	result := make([]PropertyDTO, 0, len(properties))
	for _, p := range properties {
		result = append(result, ToPropertyDTO(p))
	}
	return result
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	return ProjectDTO{
		ID:             project.ID,
		PropertyID:     project.PropertyID,
		OwnerUserID:    project.OwnerUserID,
		Name:           project.Name,
		Description:    project.Description,
		StartDate:      project.StartDate,
		CompletionDate: project.CompletionDate,
		CreatedAt:      project.CreatedAt,
		UpdatedAt:      project.UpdatedAt,
	}
}

// ToProjectDTOs converts a slice of projects, never returning nil
func ToProjectDTOs(projects []models.Project) []ProjectDTO {
	result := make([]ProjectDTO, 0, len(projects))
	for _, p := range projects {
		result = append(result, ToProjectDTO(p))
	}
	return result
}

// ToDocumentDTO converts a Document model to DocumentDTO
func ToDocumentDTO(document models.Document) DocumentDTO {
	return DocumentDTO{
		ID:           document.ID,
		ProjectID:    document.ProjectID,
		OwnerUserID:  document.OwnerUserID,
		FileName:     document.FileName,
		FileLocation: document.FileLocation,
		ContentType:  document.ContentType,
		SizeBytes:    document.SizeBytes,
		CreatedAt:    document.CreatedAt,
	}
}

// ToDocumentDTOs converts a slice of documents, never returning nil
func ToDocumentDTOs(documents []models.Document) []DocumentDTO {
	result := make([]DocumentDTO, 0, len(documents))
	for _, d := range documents {
		result = append(result, ToDocumentDTO(d))
	}
	return result
}
