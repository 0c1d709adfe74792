package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/renovation-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/renovation-tracker-api/internal/errors"
	"github.com/yukikurage/renovation-tracker-api/internal/services"
	"github.com/yukikurage/renovation-tracker-api/internal/utils"
)

const dateLayout = "2006-01-02"

// optionalDate distinguishes an absent date, an explicit null and a value.
type optionalDate struct {
	Set   bool
	Value *time.Time
}

// UnmarshalJSON accepts null, YYYY-MM-DD or RFC 3339.
func (d *optionalDate) UnmarshalJSON(data []byte) error {
	d.Set = true
	if bytes.Equal(data, []byte("null")) {
		d.Value = nil
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if raw == "" {
		d.Value = nil
		return nil
	}

	for _, layout := range []string{dateLayout, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			d.Value = &t
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", raw)
}

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

type createProjectRequest struct {
	PropertyID     uint64       `json:"property_id" binding:"required"`
	Name           string       `json:"name" binding:"required,max=255"`
	Description    string       `json:"description"`
	StartDate      optionalDate `json:"start_date"`
	CompletionDate optionalDate `json:"completion_date"`
}

type updateProjectRequest struct {
	PropertyID     *uint64      `json:"property_id" binding:"omitempty,min=1"`
	Name           *string      `json:"name" binding:"omitempty,max=255"`
	Description    *string      `json:"description"`
	StartDate      optionalDate `json:"start_date"`
	CompletionDate optionalDate `json:"completion_date"`
}

// CreateProject creates a project under a property owned by the caller
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req createProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.Create(c.Request.Context(), userID, services.CreateProjectInput{
		PropertyID:     req.PropertyID,
		Name:           req.Name,
		Description:    req.Description,
		StartDate:      req.StartDate.Value,
		CompletionDate: req.CompletionDate.Value,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// ListProjects returns the caller's projects
// Can filter by property_id
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	propertyID, ok := parseOptionalID(c, "property_id")
	if !ok {
		return
	}

	projects, total, err := h.projectService.List(c.Request.Context(), userID, services.ListProjectsInput{
		PropertyID: propertyID,
		Pagination: utils.GetPaginationParams(c),
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	setTotalCount(c, total)
	c.JSON(http.StatusOK, dto.ToProjectDTOs(projects))
}

// GetProject returns one project owned by the caller
func (h *ProjectHandler) GetProject(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	project, err := h.projectService.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// UpdateProject applies the fields present in the body.
// A null date clears it.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req updateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.Update(c.Request.Context(), userID, id, services.UpdateProjectInput{
		PropertyID:          req.PropertyID,
		Name:                req.Name,
		Description:         req.Description,
		StartDate:           req.StartDate.Value,
		ClearStartDate:      req.StartDate.Set && req.StartDate.Value == nil,
		CompletionDate:      req.CompletionDate.Value,
		ClearCompletionDate: req.CompletionDate.Set && req.CompletionDate.Value == nil,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// DeleteProject removes a project with its documents
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.projectService.Delete(c.Request.Context(), userID, id); err != nil {
		respondProjectError(c, err)
		return
	}

	respondDeleted(c, "Project")
}

func respondProjectError(c *gin.Context, err error) {
	if respondValidationError(c, err) {
		return
	}

	switch {
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrForbidden):
		apierrors.Forbidden(c, "Property not found or not owned by you")
	default:
		apierrors.InternalErrorFrom(c, "", err)
	}
}
