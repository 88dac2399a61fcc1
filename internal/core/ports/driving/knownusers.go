package driving

import (
	"context"

	"github.com/custodia-labs/usersearch/internal/core/domain"
)

// KnownUserService maintains the users the account already knows.
type KnownUserService interface {
	// Add stores a user. When displayName is empty and a profile fetcher
	// is available, the profile is fetched from the homeserver.
	Add(ctx context.Context, userID, displayName string) (domain.UserProfile, error)

	// Remove forgets a user.
	Remove(ctx context.Context, userID string) error

	// List returns every known user ordered by display name.
	List(ctx context.Context) ([]domain.UserProfile, error)
}
