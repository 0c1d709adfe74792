package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/renovation-tracker-api/internal/models"
	"github.com/yukikurage/renovation-tracker-api/internal/repository"
)

// ensureParentOwned resolves the parent a new or moved child will hang off.
// A parent that does not resolve for userID is ErrForbidden, not a 404.
func ensureParentOwned(ctx context.Context, resolver repository.OwnershipResolver, kind models.EntityKind, id, userID uint64) error {
	if _, err := resolver.ResolveScoped(ctx, kind, id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFoundOrUnauthorized) {
			return ErrForbidden
		}
		return fmt.Errorf("failed to verify %s: %w", kind, err)
	}
	return nil
}
