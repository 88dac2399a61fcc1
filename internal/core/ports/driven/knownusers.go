package driven

import (
	"context"

	"github.com/custodia-labs/usersearch/internal/core/domain"
)

// KnownUserStore queries users the account already shares rooms with.
// Backed by the local database; results are live.
type KnownUserStore interface {
	// Watch opens a live query for users matching term, minus exclude.
	// The current result is sent first, then a new one every time the
	// underlying data changes. The channel is closed when ctx is done.
	// An update with Err set ends the subscription.
	Watch(ctx context.Context, term string, exclude domain.ExclusionSet) (<-chan KnownUsersUpdate, error)
}

// KnownUsersUpdate is one value of a live known-users query.
type KnownUsersUpdate struct {
	Users []domain.UserProfile
	Err   error
}

// KnownUserRepository maintains the local known-users table.
// The search only reads through the embedded KnownUserStore.
type KnownUserRepository interface {
	KnownUserStore

	// Upsert stores users, replacing existing profiles with the same id.
	// Open live queries are refreshed.
	Upsert(ctx context.Context, users ...domain.UserProfile) error

	// Remove deletes a user. Removing an unknown id is not an error.
	Remove(ctx context.Context, userID string) error

	// List returns every known user ordered by display name.
	List(ctx context.Context) ([]domain.UserProfile, error)
}
