package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/renovation-tracker-api/internal/constants"
)

// PaginationParams holds the pagination parameters.
// Enabled is false when the client asked for neither page nor limit.
type PaginationParams struct {
	Enabled bool
	Page    int
	Limit   int
	Offset  int
}

// GetPaginationParams extracts and validates pagination parameters from the request
func GetPaginationParams(c *gin.Context) PaginationParams {
	pageStr, hasPage := c.GetQuery("page")
	limitStr, hasLimit := c.GetQuery("limit")
	if !hasPage && !hasLimit {
		return PaginationParams{}
	}

	page, _ := strconv.Atoi(pageStr)
	limit, _ := strconv.Atoi(limitStr)

	return NewPaginationParams(page, limit)
}

// NewPaginationParams clamps page and limit into the allowed range.
func NewPaginationParams(page, limit int) PaginationParams {
	if page < constants.MinPageSize {
		page = constants.MinPageSize
	}
	if limit < constants.MinPageSize || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}

	return PaginationParams{
		Enabled: true,
		Page:    page,
		Limit:   limit,
		Offset:  (page - 1) * limit,
	}
}
