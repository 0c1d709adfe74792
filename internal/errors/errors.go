package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/renovation-tracker-api/internal/constants"
)

// Error codes
const (
	// Authentication errors
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeMissingToken       = "MISSING_TOKEN"
	ErrCodeInvalidToken       = "INVALID_TOKEN"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"

	// Authorization errors
	ErrCodeForbidden = "FORBIDDEN"

	// Validation errors
	ErrCodeInvalidInput         = "INVALID_INPUT"
	ErrCodePayloadTooLarge      = "PAYLOAD_TOO_LARGE"
	ErrCodeUnsupportedMediaType = "UNSUPPORTED_MEDIA_TYPE"

	// Resource errors
	ErrCodeNotFound = "NOT_FOUND"
	ErrCodeConflict = "CONFLICT"

	// Service errors
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeDependencyFailed   = "DEPENDENCY_FAILED"
	ErrCodeInconsistentState  = "INCONSISTENT_STATE"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// APIError represents a standardized API error response
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new APIError
func NewAPIError(code, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

// NewAPIErrorWithDetails creates a new APIError with details
func NewAPIErrorWithDetails(code, message string, details interface{}) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, statusCode int, err *APIError) {
	c.JSON(statusCode, err)
}

// AbortWithError sends an error response and stops the handler chain
func AbortWithError(c *gin.Context, statusCode int, err *APIError) {
	c.AbortWithStatusJSON(statusCode, err)
}

// Helper functions for common error responses

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, NewAPIError(ErrCodeUnauthorized, message))
}

// InvalidCredentials sends a 401 response for failed logins
func InvalidCredentials(c *gin.Context) {
	RespondWithError(c, http.StatusUnauthorized, NewAPIError(ErrCodeInvalidCredentials, "Invalid username or password"))
}

// MissingToken aborts with 401 when no bearer token was presented
func MissingToken(c *gin.Context, message string) {
	if message == "" {
		message = "Token required for authentication"
	}
	AbortWithError(c, http.StatusUnauthorized, NewAPIError(ErrCodeMissingToken, message))
}

// InvalidToken aborts with 403 when the bearer token is malformed, expired or revoked
func InvalidToken(c *gin.Context) {
	AbortWithError(c, http.StatusForbidden, NewAPIError(ErrCodeInvalidToken, "Invalid or expired token"))
}

// Forbidden sends a 403 response
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Access denied"
	}
	RespondWithError(c, http.StatusForbidden, NewAPIError(ErrCodeForbidden, message))
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, NewAPIError(ErrCodeNotFound, message))
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	RespondWithError(c, http.StatusBadRequest, NewAPIError(ErrCodeInvalidInput, message))
}

// BadRequestWithDetails sends a 400 response with details
func BadRequestWithDetails(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, http.StatusBadRequest, NewAPIErrorWithDetails(ErrCodeInvalidInput, message, details))
}

// PayloadTooLarge sends a 400 response for oversized uploads
func PayloadTooLarge(c *gin.Context, message string) {
	RespondWithError(c, http.StatusBadRequest, NewAPIError(ErrCodePayloadTooLarge, message))
}

// UnsupportedMediaType sends a 400 response for rejected upload types
func UnsupportedMediaType(c *gin.Context, message string) {
	RespondWithError(c, http.StatusBadRequest, NewAPIError(ErrCodeUnsupportedMediaType, message))
}

// Conflict sends a 409 response
func Conflict(c *gin.Context, message string) {
	if message == "" {
		message = "Resource conflict"
	}
	RespondWithError(c, http.StatusConflict, NewAPIError(ErrCodeConflict, message))
}

// DependencyFailed logs err and sends a 502 response. Backend detail is only
// exposed outside release mode.
func DependencyFailed(c *gin.Context, message string, err error) {
	logFailure(c, err).Error(message)
	RespondWithError(c, http.StatusBadGateway, NewAPIErrorWithDetails(ErrCodeDependencyFailed, message, debugDetails(err)))
}

// InconsistentState logs err and sends a 500 response
func InconsistentState(c *gin.Context, message string, err error) {
	logFailure(c, err).Error(message)
	RespondWithError(c, http.StatusInternalServerError, NewAPIErrorWithDetails(ErrCodeInconsistentState, message, debugDetails(err)))
}

// InternalErrorFrom logs err with request context and sends a 500 response
func InternalErrorFrom(c *gin.Context, message string, err error) {
	if message == "" {
		message = "Internal server error"
	}
	logFailure(c, err).Error(message)
	RespondWithError(c, http.StatusInternalServerError, NewAPIErrorWithDetails(ErrCodeInternalError, message, debugDetails(err)))
}

// ServiceUnavailable sends a 503 response
func ServiceUnavailable(c *gin.Context, message string) {
	if message == "" {
		message = "Service temporarily unavailable"
	}
	AbortWithError(c, http.StatusServiceUnavailable, NewAPIError(ErrCodeServiceUnavailable, message))
}

func logFailure(c *gin.Context, err error) *logrus.Entry {
	entry := logrus.NewEntry(logrus.StandardLogger())
	if c.Request != nil {
		entry = entry.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		})
	}
	if requestID, ok := c.Get(constants.ContextKeyRequestID); ok {
		entry = entry.WithField("request_id", requestID)
	}
	if userID, ok := c.Get(constants.ContextKeyUserID); ok {
		entry = entry.WithField("user_id", userID)
	}
	if err != nil {
		entry = entry.WithError(err)
	}
	return entry
}

func debugDetails(err error) interface{} {
	if err == nil || gin.Mode() == gin.ReleaseMode {
		return nil
	}
	return gin.H{"error": err.Error()}
}
