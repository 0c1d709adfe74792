package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/renovation-tracker-api/internal/repository"
)

// AccountService handles removal of a user and everything they own
type AccountService struct {
	userRepo repository.UserRepository
	blobs    BlobReleaser
}

// NewAccountService creates a new AccountService
func NewAccountService(userRepo repository.UserRepository, blobs BlobReleaser) *AccountService {
	return &AccountService{
		userRepo: userRepo,
		blobs:    blobs,
	}
}

// DeleteAccount deletes the user; the database cascades through properties,
// projects and documents, then the document blobs are released.
func (s *AccountService) DeleteAccount(ctx context.Context, userID uint64) error {
	locations, err := s.blobs.DescendantBlobs(ctx, repository.DocumentFilter{OwnerUserID: userID})
	if err != nil {
		return err
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFoundOrUnauthorized) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete account: %w", err)
	}

	s.blobs.ReleaseBlobs(ctx, locations)
	return nil
}
