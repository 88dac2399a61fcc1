package driving

import (
	"context"

	"github.com/custodia-labs/usersearch/internal/core/domain"
)

// UserSearch coordinates the user search pipelines and the selection.
// No method blocks on collaborator work; results are observed through
// State or Subscribe.
type UserSearch interface {
	// SetSearchTerm stores term and fans it out to every pipeline.
	SetSearchTerm(term string)

	// ClearSearch stores the empty term and resets every slot to idle.
	ClearSearch()

	// ToggleSelection selects id if absent, deselects it otherwise.
	ToggleSelection(id string)

	// RemoveSelection deselects id. Removing an absent id is a no-op.
	RemoveSelection(id string)

	// ClearSelection empties the selection.
	ClearSelection()

	// SetExclusions replaces the exclusion set used by every pipeline.
	SetExclusions(ids []string)

	// SetIdentityConsent records identity server consent.
	SetIdentityConsent(ctx context.Context, granted bool) error

	// State returns a snapshot of the aggregate view state.
	State() domain.ViewState

	// Subscribe registers fn to be called with every new view state.
	Subscribe(fn func(domain.ViewState)) (unsubscribe func())

	// Close stops the pipelines and releases collaborator subscriptions.
	Close() error
}
