package driven

import (
	"context"

	"github.com/custodia-labs/usersearch/internal/core/domain"
)

// IdentityListener receives identity notifications.
// Listeners must not block.
type IdentityListener func(domain.IdentityEvent)

// IdentityService maps third-party identifiers to user ids.
type IdentityService interface {
	// LookUp returns the user id bound to email, if any.
	// found is false when no account is linked.
	LookUp(ctx context.Context, email string) (userID string, found bool, err error)

	// Consent reports whether the user agreed to share identifiers
	// with the identity server.
	Consent() bool

	// SetConsent records the user's consent and notifies listeners.
	SetConsent(ctx context.Context, granted bool) error

	// CurrentServerURL returns the configured identity server, or "".
	CurrentServerURL() string

	// Subscribe registers listener for server and consent changes.
	// The returned function removes it; calling it more than once is safe.
	Subscribe(listener IdentityListener) (unsubscribe func())
}
