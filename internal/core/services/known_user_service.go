package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/usersearch/internal/core/domain"
	"github.com/custodia-labs/usersearch/internal/core/ports/driven"
	"github.com/custodia-labs/usersearch/internal/core/ports/driving"
	"github.com/custodia-labs/usersearch/internal/logger"
)

// Ensure KnownUserService implements the interface.
var _ driving.KnownUserService = (*KnownUserService)(nil)

// KnownUserService manages the local known-users table.
type KnownUserService struct {
	repo     driven.KnownUserRepository
	profiles driven.ProfileFetcher
}

// NewKnownUserService creates a known-user service. profiles may be nil.
func NewKnownUserService(repo driven.KnownUserRepository, profiles driven.ProfileFetcher) *KnownUserService {
	return &KnownUserService{repo: repo, profiles: profiles}
}

// Add stores a user, fetching its profile when no display name is given.
// A failed fetch still stores the bare id.
func (s *KnownUserService) Add(ctx context.Context, userID, displayName string) (domain.UserProfile, error) {
	userID = strings.TrimSpace(userID)
	if !domain.IsUserID(userID) {
		return domain.UserProfile{}, fmt.Errorf("%w: %q is not a user id", domain.ErrInvalidInput, userID)
	}

	profile := domain.UserProfile{ID: userID, DisplayName: strings.TrimSpace(displayName)}
	if profile.DisplayName == "" && s.profiles != nil {
		fetched, err := s.profiles.GetProfile(ctx, userID)
		if err != nil {
			logger.Warn("profile for %s unavailable: %v", userID, err)
		} else {
			profile = fetched
			profile.ID = userID
		}
	}

	if err := s.repo.Upsert(ctx, profile); err != nil {
		return domain.UserProfile{}, fmt.Errorf("storing %s: %w", userID, err)
	}
	return profile, nil
}

// Remove forgets a user.
func (s *KnownUserService) Remove(ctx context.Context, userID string) error {
	if userID == "" {
		return domain.ErrInvalidInput
	}
	return s.repo.Remove(ctx, userID)
}

// List returns every known user.
func (s *KnownUserService) List(ctx context.Context) ([]domain.UserProfile, error) {
	return s.repo.List(ctx)
}
