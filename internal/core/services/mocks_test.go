package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/usersearch/internal/core/domain"
	"github.com/custodia-labs/usersearch/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockKnownStore implements driven.KnownUserStore for testing. Every Watch
// emits the users whose id or display name contains the term and keeps the
// channel open so tests can push further updates. With closeEmpty set the
// channel is closed before any value is sent.
type mockKnownStore struct {
	mu         sync.Mutex
	users      []domain.UserProfile
	err        error
	closeEmpty bool
	terms      []string
	channels   []chan driven.KnownUsersUpdate
}

func (m *mockKnownStore) Watch(_ context.Context, term string, exclude domain.ExclusionSet) (<-chan driven.KnownUsersUpdate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.terms = append(m.terms, term)
	if m.err != nil {
		return nil, m.err
	}

	ch := make(chan driven.KnownUsersUpdate, 8)
	if m.closeEmpty {
		close(ch)
		return ch, nil
	}
	ch <- driven.KnownUsersUpdate{Users: matchUsers(m.users, term, exclude)}
	m.channels = append(m.channels, ch)
	return ch, nil
}

// push sends an update on the most recent subscription.
func (m *mockKnownStore) push(update driven.KnownUsersUpdate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.channels) > 0 {
		m.channels[len(m.channels)-1] <- update
	}
}

func (m *mockKnownStore) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.terms...)
}

// mockDirectory implements driven.DirectoryClient for testing. Terms listed
// in block wait for their channel to close before answering, ignoring
// cancellation like a slow server would.
type mockDirectory struct {
	mu    sync.Mutex
	users []domain.UserProfile
	err   error
	block map[string]chan struct{}
	terms []string
	limit int
}

func (m *mockDirectory) Search(_ context.Context, term string, limit int, exclude domain.ExclusionSet) ([]domain.UserProfile, error) {
	m.mu.Lock()
	m.terms = append(m.terms, term)
	m.limit = limit
	wait := m.block[term]
	users, err := m.users, m.err
	m.mu.Unlock()

	if wait != nil {
		<-wait
	}
	if err != nil {
		return nil, err
	}
	return matchUsers(users, term, exclude), nil
}

func (m *mockDirectory) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.terms...)
}

// mockProfiles implements driven.ProfileFetcher for testing.
type mockProfiles struct {
	mu       sync.Mutex
	profiles map[string]domain.UserProfile
	err      error
	ids      []string
}

func (m *mockProfiles) GetProfile(_ context.Context, userID string) (domain.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids = append(m.ids, userID)
	if m.err != nil {
		return domain.UserProfile{}, m.err
	}
	profile, ok := m.profiles[userID]
	if !ok {
		return domain.UserProfile{}, domain.ErrNotFound
	}
	return profile, nil
}

func (m *mockProfiles) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ids...)
}

// mockIdentity implements driven.IdentityService for testing.
type mockIdentity struct {
	mu           sync.Mutex
	matches      map[string]string
	err          error
	consent      bool
	server       string
	consentErr   error
	listeners    map[int]driven.IdentityListener
	next         int
	lookups      []string
	lookupTimes  []time.Time
	unsubscribes int
}

func newMockIdentity(matches map[string]string) *mockIdentity {
	return &mockIdentity{
		matches:   matches,
		consent:   true,
		server:    "https://id.example.com",
		listeners: make(map[int]driven.IdentityListener),
	}
}

func (m *mockIdentity) LookUp(_ context.Context, email string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups = append(m.lookups, email)
	m.lookupTimes = append(m.lookupTimes, time.Now())
	if m.err != nil {
		return "", false, m.err
	}
	id, ok := m.matches[email]
	return id, ok, nil
}

func (m *mockIdentity) Consent() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.consent
}

func (m *mockIdentity) SetConsent(_ context.Context, granted bool) error {
	m.mu.Lock()
	if m.consentErr != nil {
		m.mu.Unlock()
		return m.consentErr
	}
	m.consent = granted
	m.mu.Unlock()

	m.emit(domain.IdentityEvent{Kind: domain.IdentityConsentChanged, Consent: granted})
	return nil
}

func (m *mockIdentity) CurrentServerURL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.server
}

func (m *mockIdentity) Subscribe(listener driven.IdentityListener) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.next
	m.next++
	m.listeners[id] = listener
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.unsubscribes++
		delete(m.listeners, id)
	}
}

func (m *mockIdentity) emit(event domain.IdentityEvent) {
	m.mu.Lock()
	listeners := make([]driven.IdentityListener, 0, len(m.listeners))
	for _, l := range m.listeners {
		listeners = append(listeners, l)
	}
	m.mu.Unlock()

	for _, l := range listeners {
		l(event)
	}
}

func (m *mockIdentity) lookupCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lookups...)
}

func (m *mockIdentity) listenerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.listeners)
}

func (m *mockIdentity) unsubscribeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unsubscribes
}

func matchUsers(users []domain.UserProfile, term string, exclude domain.ExclusionSet) []domain.UserProfile {
	term = strings.ToLower(strings.TrimSpace(term))
	result := []domain.UserProfile{}
	for _, u := range users {
		if exclude.Contains(u.ID) {
			continue
		}
		if strings.Contains(strings.ToLower(u.ID), term) || strings.Contains(strings.ToLower(u.DisplayName), term) {
			result = append(result, u)
		}
	}
	return result
}
