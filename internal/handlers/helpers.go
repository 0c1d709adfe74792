package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yukikurage/renovation-tracker-api/internal/constants"
	apierrors "github.com/yukikurage/renovation-tracker-api/internal/errors"
	"github.com/yukikurage/renovation-tracker-api/internal/middleware"
	"github.com/yukikurage/renovation-tracker-api/internal/services"
)

var jsonFieldNamesOnce sync.Once

// useJSONFieldNames makes validator report fields by their json tag.
func useJSONFieldNames() {
	jsonFieldNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// bindJSON binds the request body and writes a 400 on failure.
func bindJSON(c *gin.Context, obj interface{}) bool {
	useJSONFieldNames()
	if err := c.ShouldBindJSON(obj); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
			first := validationErrs[0]
			apierrors.BadRequestWithDetails(c, "Invalid request body", gin.H{
				"field":  first.Field(),
				"reason": fmt.Sprintf("failed on the '%s' rule", first.Tag()),
			})
			return false
		}
		apierrors.BadRequest(c, "Invalid request body")
		return false
	}
	return true
}

// requireUserID reads the authenticated user, answering 401 when absent.
func requireUserID(c *gin.Context) (uint64, bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return 0, false
	}
	return userID, true
}

// parseID reads a positive numeric path parameter.
func parseID(c *gin.Context, param string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		apierrors.BadRequestWithDetails(c, "Invalid "+param, gin.H{"field": param, "reason": "must be a positive integer"})
		return 0, false
	}
	return id, true
}

// parseOptionalID reads an optional numeric query filter.
func parseOptionalID(c *gin.Context, key string) (*uint64, bool) {
	raw, present := c.GetQuery(key)
	if !present || raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		apierrors.BadRequestWithDetails(c, "Invalid "+key, gin.H{"field": key, "reason": "must be a positive integer"})
		return nil, false
	}
	return &id, true
}

func setTotalCount(c *gin.Context, total int64) {
	c.Header(constants.HeaderTotalCount, strconv.FormatInt(total, 10))
}

func respondDeleted(c *gin.Context, what string) {
	c.JSON(http.StatusOK, gin.H{
		"message": what + " deleted successfully",
	})
}

// respondValidationError reports the offending field of a service validation failure.
func respondValidationError(c *gin.Context, err error) bool {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		apierrors.BadRequestWithDetails(c, validationErr.Error(), gin.H{
			"field":  validationErr.Field,
			"reason": validationErr.Message,
		})
		return true
	}
	return false
}
