package services

import (
	"context"

	"github.com/custodia-labs/usersearch/internal/core/domain"
	"github.com/custodia-labs/usersearch/internal/core/ports/driving"
)

// AwaitSettled blocks until search reports a view for term in which no
// pipeline is pending, or until ctx is done. The last view seen is
// returned in both cases.
func AwaitSettled(ctx context.Context, search driving.UserSearch, term string) (domain.ViewState, error) {
	updates := make(chan domain.ViewState, 1)
	unsubscribe := search.Subscribe(func(view domain.ViewState) {
		// Subscribers run on one goroutine, so only the newest view is kept.
		select {
		case <-updates:
		default:
		}
		updates <- view
	})
	defer unsubscribe()

	view := search.State()
	for view.Term != term || view.Pending {
		select {
		case <-ctx.Done():
			return view, ctx.Err()
		case view = <-updates:
		}
	}
	return view, nil
}
