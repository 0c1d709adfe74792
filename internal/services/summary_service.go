package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/renovation-tracker-api/internal/models"
	"github.com/yukikurage/renovation-tracker-api/internal/repository"
	"gorm.io/gorm"
)

// SummaryService builds the per-owner tree
type SummaryService struct {
	userRepo repository.UserRepository
}

// NewSummaryService creates a new SummaryService
func NewSummaryService(userRepo repository.UserRepository) *SummaryService {
	return &SummaryService{userRepo: userRepo}
}

// OwnerSummary returns the user with every owned property, project and document.
func (s *SummaryService) OwnerSummary(ctx context.Context, userID uint64) (*models.User, error) {
	user, err := s.userRepo.FindOwnerTree(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// an authenticated principal without a user row
			logrus.WithField("user_id", userID).Warn("Summary requested for missing user")
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load summary: %w", err)
	}
	return user, nil
}
