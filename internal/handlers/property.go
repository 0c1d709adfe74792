package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/renovation-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/renovation-tracker-api/internal/errors"
	"github.com/yukikurage/renovation-tracker-api/internal/services"
	"github.com/yukikurage/renovation-tracker-api/internal/utils"
)

type PropertyHandler struct {
	propertyService *services.PropertyService
}

func NewPropertyHandler(propertyService *services.PropertyService) *PropertyHandler {
	return &PropertyHandler{
		propertyService: propertyService,
	}
}

// Owner ids are never bound from the body; the principal is always the owner.
type createPropertyRequest struct {
	Name    string `json:"name" binding:"required,max=255"`
	Address string `json:"address" binding:"max=1000"`
}

type updatePropertyRequest struct {
	Name    *string `json:"name" binding:"omitempty,max=255"`
	Address *string `json:"address" binding:"omitempty,max=1000"`
}

// CreateProperty creates a property owned by the caller
func (h *PropertyHandler) CreateProperty(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req createPropertyRequest
	if !bindJSON(c, &req) {
		return
	}

	property, err := h.propertyService.Create(c.Request.Context(), userID, services.CreatePropertyInput{
		Name:    req.Name,
		Address: req.Address,
	})
	if err != nil {
		respondPropertyError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToPropertyDTO(*property))
}

// ListProperties returns the caller's properties
func (h *PropertyHandler) ListProperties(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	properties, total, err := h.propertyService.List(c.Request.Context(), userID, utils.GetPaginationParams(c))
	if err != nil {
		respondPropertyError(c, err)
		return
	}

	setTotalCount(c, total)
	c.JSON(http.StatusOK, dto.ToPropertyDTOs(properties))
}

// GetProperty returns one property owned by the caller
func (h *PropertyHandler) GetProperty(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	property, err := h.propertyService.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondPropertyError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPropertyDTO(*property))
}

// UpdateProperty applies the fields present in the body
func (h *PropertyHandler) UpdateProperty(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req updatePropertyRequest
	if !bindJSON(c, &req) {
		return
	}

	property, err := h.propertyService.Update(c.Request.Context(), userID, id, services.UpdatePropertyInput{
		Name:    req.Name,
		Address: req.Address,
	})
	if err != nil {
		respondPropertyError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPropertyDTO(*property))
}

// DeleteProperty removes a property with its projects and documents
func (h *PropertyHandler) DeleteProperty(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.propertyService.Delete(c.Request.Context(), userID, id); err != nil {
		respondPropertyError(c, err)
		return
	}

	respondDeleted(c, "Property")
}

func respondPropertyError(c *gin.Context, err error) {
	if respondValidationError(c, err) {
		return
	}

	switch {
	case errors.Is(err, services.ErrPropertyNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrForbidden):
		apierrors.Forbidden(c, "")
	default:
		apierrors.InternalErrorFrom(c, "", err)
	}
}
