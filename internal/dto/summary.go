package dto

import (
	"time"

	"github.com/yukikurage/renovation-tracker-api/internal/models"
)

// OwnerSummaryDTO is the nested owner tree
type OwnerSummaryDTO struct {
	ID         uint64               `json:"id"`
	Username   string               `json:"username"`
	Properties []PropertySummaryDTO `json:"properties"`
}

type PropertySummaryDTO struct {
	ID        uint64              `json:"id"`
	Name      string              `json:"name"`
	Address   string              `json:"address"`
	CreatedAt time.Time           `json:"created_at"`
	Projects  []ProjectSummaryDTO `json:"projects"`
}

type ProjectSummaryDTO struct {
	ID             uint64               `json:"id"`
	Name           string               `json:"name"`
	Description    string               `json:"description"`
	StartDate      *time.Time           `json:"start_date"`
	CompletionDate *time.Time           `json:"completion_date"`
	CreatedAt      time.Time            `json:"created_at"`
	Documents      []DocumentSummaryDTO `json:"documents"`
}

type DocumentSummaryDTO struct {
	ID           uint64    `json:"id"`
	FileName     string    `json:"file_name"`
	FileLocation string    `json:"file_location"`
	CreatedAt    time.Time `json:"created_at"`
}

// ToOwnerSummaryDTO converts a user loaded with its owned tree
func ToOwnerSummaryDTO(user models.User) OwnerSummaryDTO {
	summary := OwnerSummaryDTO{
		ID:         user.ID,
		Username:   user.Username,
		Properties: make([]PropertySummaryDTO, 0, len(user.Properties)),
	}

	for _, property := range user.Properties {
		p := PropertySummaryDTO{
			ID:        property.ID,
			Name:      property.Name,
			Address:   property.Address,
			CreatedAt: property.CreatedAt,
			Projects:  make([]ProjectSummaryDTO, 0, len(property.Projects)),
		}
		for _, project := range property.Projects {
			j := ProjectSummaryDTO{
				ID:             project.ID,
				Name:           project.Name,
				Description:    project.Description,
				StartDate:      project.StartDate,
				CompletionDate: project.CompletionDate,
				CreatedAt:      project.CreatedAt,
				Documents:      make([]DocumentSummaryDTO, 0, len(project.Documents)),
			}
			for _, document := range project.Documents {
				j.Documents = append(j.Documents, DocumentSummaryDTO{
					ID:           document.ID,
					FileName:     document.FileName,
					FileLocation: document.FileLocation,
					CreatedAt:    document.CreatedAt,
				})
			}
			p.Projects = append(p.Projects, j)
		}
		summary.Properties = append(summary.Properties, p)
	}

	return summary
}
