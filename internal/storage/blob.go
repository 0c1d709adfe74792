package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/yukikurage/renovation-tracker-api/internal/constants"
)

var (
	ErrBlobNotFound    = errors.New("blob not found")
	ErrInvalidLocation = errors.New("blob location does not belong to this store")
)

// BlobStore holds document bytes addressed by key.
type BlobStore interface {
	// Put stores size bytes from r under key and returns the locator persisted on the document.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)

	// Get opens the blob for reading. Callers close the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the blob. A missing blob returns ErrBlobNotFound.
	Delete(ctx context.Context, key string) error

	// PresignGet returns a read-only URL valid for ttl.
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)

	// KeyFromLocation reverses Put's locator back into a key.
	KeyFromLocation(location string) (string, error)
}

// BuildDocumentKey returns a collision-resistant key namespaced by project.
func BuildDocumentKey(projectID uint64, fileName string, now time.Time) string {
	return path.Join(
		constants.DocumentKeyPrefix,
		fmt.Sprintf("%d", projectID),
		fmt.Sprintf("%d-%s-%s", now.UnixMilli(), uuid.NewString(), SanitizeFileName(fileName)),
	)
}

// SanitizeFileName strips path components and anything outside a conservative character set.
func SanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))

	var b strings.Builder
	count := 0
	for _, r := range name {
		if count >= constants.MaxStoredNameRunes {
			break
		}
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
		count++
	}

	cleaned := strings.Trim(b.String(), ".")
	if cleaned == "" {
		return "document.pdf"
	}
	return cleaned
}
