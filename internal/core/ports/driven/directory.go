package driven

import (
	"context"

	"github.com/custodia-labs/usersearch/internal/core/domain"
)

// DirectoryClient searches the homeserver's user directory.
type DirectoryClient interface {
	// Search returns at most limit users matching term, minus exclude.
	// Network failures wrap domain.ErrTransport.
	Search(ctx context.Context, term string, limit int, exclude domain.ExclusionSet) ([]domain.UserProfile, error)
}

// ProfileFetcher fetches a single user profile.
type ProfileFetcher interface {
	// GetProfile returns the profile for userID.
	// Returns domain.ErrNotFound if the user does not exist.
	GetProfile(ctx context.Context, userID string) (domain.UserProfile, error)
}
