package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/renovation-tracker-api/internal/constants"
	apierrors "github.com/yukikurage/renovation-tracker-api/internal/errors"
	"github.com/yukikurage/renovation-tracker-api/internal/storage"
)

// BlobHandler serves the bytes behind local download links.
type BlobHandler struct {
	links storage.LinkResolver
	store storage.BlobStore
}

func NewBlobHandler(links storage.LinkResolver, store storage.BlobStore) *BlobHandler {
	return &BlobHandler{
		links: links,
		store: store,
	}
}

// ServeBlob streams the document named by a signed link token. The token is the only credential.
func (h *BlobHandler) ServeBlob(c *gin.Context) {
	key, err := h.links.ResolveLink(c.Param("token"))
	if err != nil {
		apierrors.InvalidToken(c)
		return
	}

	body, err := h.store.Get(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			apierrors.NotFound(c, "Document content not found")
			return
		}
		apierrors.DependencyFailed(c, "Blob store operation failed", err)
		return
	}
	defer body.Close()

	c.DataFromReader(http.StatusOK, -1, constants.PDFContentType, body, map[string]string{
		"Content-Disposition": fmt.Sprintf("inline; filename=%q", path.Base(key)),
		"Cache-Control":       "private, no-store",
	})
}
