package mcp

import (
	"context"
	"sync"

	"github.com/custodia-labs/usersearch/internal/core/domain"
)

// mockUserSearch is a mock implementation of driving.UserSearch. Setting a
// term settles immediately with the configured results.
type mockUserSearch struct {
	mu         sync.Mutex
	view       domain.ViewState
	results    domain.ViewState
	exclusions []string
	consentErr error
	subs       map[int]func(domain.ViewState)
	nextSub    int
}

func newMockUserSearch() *mockUserSearch {
	return &mockUserSearch{subs: make(map[int]func(domain.ViewState))}
}

func (m *mockUserSearch) SetSearchTerm(term string) {
	m.mu.Lock()
	m.view.Term = term
	m.view.Known = m.results.Known
	m.view.Directory = m.results.Directory
	m.view.Email = m.results.Email
	m.mu.Unlock()
}

func (m *mockUserSearch) ClearSearch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.view.Term = ""
	m.view.Known = domain.IdleSlot[[]domain.UserProfile]()
	m.view.Directory = domain.IdleSlot[[]domain.UserProfile]()
	m.view.Email = domain.IdleSlot[*domain.ThreePidUser]()
}

func (m *mockUserSearch) ToggleSelection(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, sel := range m.view.Selections {
		if sel == id {
			m.view.Selections = append(m.view.Selections[:i], m.view.Selections[i+1:]...)
			m.view.SelectedProfiles = append(m.view.SelectedProfiles[:i], m.view.SelectedProfiles[i+1:]...)
			return
		}
	}
	m.view.Selections = append(m.view.Selections, id)
	m.view.SelectedProfiles = append(m.view.SelectedProfiles, domain.UserProfile{ID: id})
}

func (m *mockUserSearch) RemoveSelection(id string) {
	m.mu.Lock()
	selected := false
	for _, sel := range m.view.Selections {
		selected = selected || sel == id
	}
	m.mu.Unlock()
	if selected {
		m.ToggleSelection(id)
	}
}

func (m *mockUserSearch) ClearSelection() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.view.Selections = nil
	m.view.SelectedProfiles = nil
}

func (m *mockUserSearch) SetExclusions(ids []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exclusions = ids
}

func (m *mockUserSearch) SetIdentityConsent(_ context.Context, granted bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.consentErr != nil {
		return m.consentErr
	}
	m.view.IdentityConsent = granted
	return nil
}

func (m *mockUserSearch) State() domain.ViewState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view
}

func (m *mockUserSearch) Subscribe(fn func(domain.ViewState)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

func (m *mockUserSearch) Close() error {
	return nil
}

// mockKnownUserService is a mock implementation of driving.KnownUserService.
type mockKnownUserService struct {
	users []domain.UserProfile
	err   error
}

func (m *mockKnownUserService) Add(_ context.Context, userID, displayName string) (domain.UserProfile, error) {
	if m.err != nil {
		return domain.UserProfile{}, m.err
	}
	profile := domain.UserProfile{ID: userID, DisplayName: displayName}
	m.users = append(m.users, profile)
	return profile, nil
}

func (m *mockKnownUserService) Remove(_ context.Context, _ string) error {
	return m.err
}

func (m *mockKnownUserService) List(_ context.Context) ([]domain.UserProfile, error) {
	return m.users, m.err
}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings domain.AppSettings
	err      error
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	if m.err != nil {
		return nil, m.err
	}
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return m.err
}

func (m *mockSettingsService) SetDirectoryURL(url string) error {
	m.settings.Directory.BaseURL = url
	return m.err
}

func (m *mockSettingsService) SetIdentityServer(url string) error {
	m.settings.Identity.ServerURL = url
	return m.err
}

func (m *mockSettingsService) SetSingleSelection(single bool) error {
	m.settings.Search.SingleSelection = single
	return m.err
}

func (m *mockSettingsService) Validate() error {
	return m.err
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}
