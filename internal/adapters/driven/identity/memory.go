package identity

import (
	"context"
	"strings"
	"sync"

	"github.com/custodia-labs/usersearch/internal/core/domain"
	"github.com/custodia-labs/usersearch/internal/core/ports/driven"
)

// Ensure Memory implements the interface.
var _ driven.IdentityService = (*Memory)(nil)

// Memory is an in-memory identity service. Lookups follow the same consent
// and server rules as Service.
type Memory struct {
	listeners listeners

	mu       sync.RWMutex
	server   string
	consent  bool
	mappings map[string]string
}

// NewMemory creates an identity service answering for serverURL.
func NewMemory(serverURL string, consent bool) *Memory {
	return &Memory{
		server:   serverURL,
		consent:  consent,
		mappings: make(map[string]string),
	}
}

// Link binds email to userID.
func (m *Memory) Link(email, userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mappings[strings.ToLower(email)] = userID
}

// Unlink removes the binding for email.
func (m *Memory) Unlink(email string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.mappings, strings.ToLower(email))
}

// LookUp returns the user id bound to email.
func (m *Memory) LookUp(ctx context.Context, email string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.consent {
		return "", false, domain.ErrConsentRequired
	}
	if m.server == "" {
		return "", false, domain.ErrIdentityUnavailable
	}
	userID, ok := m.mappings[strings.ToLower(strings.TrimSpace(email))]
	return userID, ok, nil
}

// Consent reports the consent flag.
func (m *Memory) Consent() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.consent
}

// SetConsent records consent and notifies listeners when it changed.
func (m *Memory) SetConsent(_ context.Context, granted bool) error {
	m.mu.Lock()
	changed := m.consent != granted
	m.consent = granted
	event := domain.IdentityEvent{Kind: domain.IdentityConsentChanged, ServerURL: m.server, Consent: granted}
	m.mu.Unlock()

	if changed {
		m.listeners.emit(event)
	}
	return nil
}

// CurrentServerURL returns the configured server.
func (m *Memory) CurrentServerURL() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.server
}

// SetServerURL switches server and notifies listeners when it changed.
func (m *Memory) SetServerURL(serverURL string) {
	m.mu.Lock()
	changed := m.server != serverURL
	m.server = serverURL
	event := domain.IdentityEvent{Kind: domain.IdentityServerChanged, ServerURL: serverURL, Consent: m.consent}
	m.mu.Unlock()

	if changed {
		m.listeners.emit(event)
	}
}

// Subscribe registers listener for server and consent changes.
func (m *Memory) Subscribe(listener driven.IdentityListener) func() {
	return m.listeners.add(listener)
}
