package picker

import (
	"context"
	"sync"

	"github.com/custodia-labs/usersearch/internal/core/domain"
)

// mockUserSearch records the calls the picker makes.
type mockUserSearch struct {
	mu         sync.Mutex
	terms      []string
	toggled    []string
	cleared    int
	unselected int
	consent    []bool
	consentErr error
	view       domain.ViewState
}

func (m *mockUserSearch) SetSearchTerm(term string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.terms = append(m.terms, term)
}

func (m *mockUserSearch) ClearSearch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleared++
}

func (m *mockUserSearch) ToggleSelection(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toggled = append(m.toggled, id)
}

func (m *mockUserSearch) RemoveSelection(string) {}

func (m *mockUserSearch) ClearSelection() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unselected++
}

func (m *mockUserSearch) SetExclusions([]string) {}

func (m *mockUserSearch) SetIdentityConsent(_ context.Context, granted bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.consent = append(m.consent, granted)
	return m.consentErr
}

func (m *mockUserSearch) State() domain.ViewState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view
}

func (m *mockUserSearch) Subscribe(func(domain.ViewState)) func() {
	return func() {}
}

func (m *mockUserSearch) Close() error { return nil }

// mockKnownUsers records added users.
type mockKnownUsers struct {
	added  []domain.UserProfile
	addErr error
}

func (m *mockKnownUsers) Add(_ context.Context, userID, displayName string) (domain.UserProfile, error) {
	if m.addErr != nil {
		return domain.UserProfile{}, m.addErr
	}
	p := domain.UserProfile{ID: userID, DisplayName: displayName}
	m.added = append(m.added, p)
	return p, nil
}

func (m *mockKnownUsers) Remove(context.Context, string) error { return nil }

func (m *mockKnownUsers) List(context.Context) ([]domain.UserProfile, error) {
	return m.added, nil
}
