package constants

import "time"

// Context keys
const (
	ContextKeyUserID    = "user_id"
	ContextKeyPrincipal = "principal"
	ContextKeyRequestID = "request_id"
)

// HTTP headers
const (
	HeaderRequestID  = "X-Request-ID"
	HeaderTotalCount = "X-Total-Count"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Credentials
const (
	MaxUsernameLength = 50
	MinPasswordLength = 4
	DefaultBcryptCost = 10
)

// Database pool
const (
	DefaultDBMaxOpenConns    = 25
	DefaultDBMaxIdleConns    = 5
	DefaultDBConnMaxLifetime = 30 * time.Minute
)

// Tokens and links
const (
	DefaultTokenTTL       = time.Hour
	DefaultDownloadURLTTL = time.Hour
)

// Uploads
const (
	MaxUploadBytes     int64 = 10 << 20
	PDFContentType           = "application/pdf"
	DocumentKeyPrefix        = "documents"
	MaxStoredNameRunes       = 120
)
