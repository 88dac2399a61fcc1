package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/custodia-labs/usersearch/internal/core/domain"
	"github.com/custodia-labs/usersearch/internal/core/ports/driven"
)

// Ensure KnownUserStore implements the interface.
var _ driven.KnownUserRepository = (*KnownUserStore)(nil)

// KnownUserStore is an in-memory implementation of driven.KnownUserRepository.
type KnownUserStore struct {
	mu       sync.RWMutex
	users    map[string]domain.UserProfile
	watchers map[uint64]chan struct{}
	nextID   uint64
}

// NewKnownUserStore creates a new in-memory known-users store.
func NewKnownUserStore(users ...domain.UserProfile) *KnownUserStore {
	s := &KnownUserStore{
		users:    make(map[string]domain.UserProfile),
		watchers: make(map[uint64]chan struct{}),
	}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

// Upsert stores users, replacing existing profiles with the same id.
func (s *KnownUserStore) Upsert(_ context.Context, users ...domain.UserProfile) error {
	for _, u := range users {
		if u.ID == "" {
			return fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
		}
	}

	s.mu.Lock()
	for _, u := range users {
		s.users[u.ID] = u
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

// Remove deletes a user.
func (s *KnownUserStore) Remove(_ context.Context, userID string) error {
	s.mu.Lock()
	_, ok := s.users[userID]
	delete(s.users, userID)
	s.mu.Unlock()

	if ok {
		s.notify()
	}
	return nil
}

// List returns every known user ordered by display name.
func (s *KnownUserStore) List(_ context.Context) ([]domain.UserProfile, error) {
	return s.query("", domain.ExclusionSet{}), nil
}

// Watch opens a live query that is re-run after every change.
func (s *KnownUserStore) Watch(ctx context.Context, term string, exclude domain.ExclusionSet) (<-chan driven.KnownUsersUpdate, error) {
	changed := make(chan struct{}, 1)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = changed
	s.mu.Unlock()

	out := make(chan driven.KnownUsersUpdate, 1)
	go func() {
		defer close(out)
		defer func() {
			s.mu.Lock()
			delete(s.watchers, id)
			s.mu.Unlock()
		}()

		for {
			select {
			case out <- driven.KnownUsersUpdate{Users: s.query(term, exclude)}:
			case <-ctx.Done():
				return
			}

			select {
			case <-changed:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// query returns users whose id or display name contains term,
// case-insensitively, ordered by display name.
func (s *KnownUserStore) query(term string, exclude domain.ExclusionSet) []domain.UserProfile {
	term = strings.ToLower(strings.TrimSpace(term))

	s.mu.RLock()
	users := lo.Filter(lo.Values(s.users), func(u domain.UserProfile, _ int) bool {
		if exclude.Contains(u.ID) {
			return false
		}
		return strings.Contains(strings.ToLower(u.ID), term) ||
			strings.Contains(strings.ToLower(u.DisplayName), term)
	})
	s.mu.RUnlock()

	sort.Slice(users, func(i, j int) bool {
		a, b := strings.ToLower(users[i].Name()), strings.ToLower(users[j].Name())
		if a != b {
			return a < b
		}
		return users[i].ID < users[j].ID
	})
	return users
}

// notify wakes every live query.
func (s *KnownUserStore) notify() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
