package identity

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/custodia-labs/usersearch/internal/adapters/driven/matrix"
	"github.com/custodia-labs/usersearch/internal/core/domain"
	"github.com/custodia-labs/usersearch/internal/core/ports/driven"
	"github.com/custodia-labs/usersearch/internal/logger"
)

// Config keys read by the service.
const (
	KeyServerURL = "identity.server_url"
	KeyConsent   = "identity.consent"
)

// Hash algorithms understood by the lookup endpoint.
const (
	AlgorithmSHA256 = "sha256"
	AlgorithmNone   = "none"
)

// errCodeInvalidPepper is returned when the pepper rotated since hash_details.
const errCodeInvalidPepper = "M_INVALID_PEPPER"

var log = logger.Component("identity")

// Ensure Service implements the interface.
var _ driven.IdentityService = (*Service)(nil)

// OpenIDProvider issues OpenID tokens for registering with the identity
// server. *matrix.Client implements it.
type OpenIDProvider interface {
	RequestOpenIDToken(ctx context.Context) (*matrix.OpenIDToken, error)
}

// Option configures a Service.
type Option func(*Service)

// WithAccessToken uses token for the identity server instead of
// registering with an OpenID token.
func WithAccessToken(token string) Option {
	return func(s *Service) { s.staticToken = token }
}

// WithClientOptions passes options to the identity server client.
func WithClientOptions(opts ...matrix.Option) Option {
	return func(s *Service) { s.clientOpts = append(s.clientOpts, opts...) }
}

// Service is the identity server backed implementation.
type Service struct {
	config      driven.ConfigStore
	homeserver  OpenIDProvider
	staticToken string
	clientOpts  []matrix.Option
	listeners   listeners

	mu      sync.Mutex
	server  string
	consent bool
	client  *matrix.Client
	hash    *hashDetails
}

type hashDetails struct {
	Pepper     string   `json:"lookup_pepper"`
	Algorithms []string `json:"algorithms"`
}

type registerResponse struct {
	Token string `json:"token"`
}

type lookupRequest struct {
	Addresses []string `json:"addresses"`
	Algorithm string   `json:"algorithm"`
	Pepper    string   `json:"pepper"`
}

type lookupResponse struct {
	Mappings map[string]string `json:"mappings"`
}

// NewService creates a service reading consent and the server URL from
// config. homeserver may be nil when WithAccessToken is given.
func NewService(config driven.ConfigStore, homeserver OpenIDProvider, opts ...Option) *Service {
	s := &Service{
		config:     config,
		homeserver: homeserver,
		server:     config.GetString(KeyServerURL),
		consent:    config.GetBool(KeyConsent),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Consent reports whether the user agreed to identity lookups.
func (s *Service) Consent() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.consent
}

// CurrentServerURL returns the identity server in use.
func (s *Service) CurrentServerURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.server
}

// Subscribe registers listener for server and consent changes.
func (s *Service) Subscribe(listener driven.IdentityListener) func() {
	return s.listeners.add(listener)
}

// SetConsent persists the consent flag and notifies listeners when it
// changed.
func (s *Service) SetConsent(_ context.Context, granted bool) error {
	if err := s.config.Set(KeyConsent, granted); err != nil {
		return fmt.Errorf("saving consent: %w", err)
	}

	s.mu.Lock()
	changed := s.consent != granted
	s.consent = granted
	event := s.eventLocked(domain.IdentityConsentChanged)
	s.mu.Unlock()

	if changed {
		log.Info("consent set to %t", granted)
		s.listeners.emit(event)
	}
	return nil
}

// SetServerURL persists the identity server and notifies listeners when
// it changed. An empty url disables lookups.
func (s *Service) SetServerURL(serverURL string) error {
	serverURL = strings.TrimRight(serverURL, "/")
	if err := s.config.Set(KeyServerURL, serverURL); err != nil {
		return fmt.Errorf("saving identity server: %w", err)
	}
	s.apply(serverURL, s.Consent())
	return nil
}

// Reload re-reads the config and notifies listeners about what changed.
// It is meant to be registered with the config file watcher.
func (s *Service) Reload() {
	s.apply(strings.TrimRight(s.config.GetString(KeyServerURL), "/"), s.config.GetBool(KeyConsent))
}

func (s *Service) apply(serverURL string, consent bool) {
	s.mu.Lock()
	var events []domain.IdentityEvent
	if serverURL != s.server {
		s.server = serverURL
		s.client = nil
		s.hash = nil
		events = append(events, s.eventLocked(domain.IdentityServerChanged))
	}
	if consent != s.consent {
		s.consent = consent
		events = append(events, s.eventLocked(domain.IdentityConsentChanged))
	}
	s.mu.Unlock()

	for _, event := range events {
		log.Info("%s: server=%q consent=%t", event.Kind, event.ServerURL, event.Consent)
		s.listeners.emit(event)
	}
}

func (s *Service) eventLocked(kind domain.IdentityEventKind) domain.IdentityEvent {
	return domain.IdentityEvent{Kind: kind, ServerURL: s.server, Consent: s.consent}
}

// LookUp returns the user id bound to email.
func (s *Service) LookUp(ctx context.Context, email string) (string, bool, error) {
	s.mu.Lock()
	consent, server := s.consent, s.server
	s.mu.Unlock()

	if !consent {
		return "", false, domain.ErrConsentRequired
	}
	if server == "" {
		return "", false, domain.ErrIdentityUnavailable
	}

	client, details, err := s.session(ctx, server)
	if err != nil {
		return "", false, err
	}

	userID, found, err := lookUp(ctx, client, details, email)
	if err != nil {
		var apiErr *matrix.APIError
		if errors.As(err, &apiErr) && (apiErr.ErrCode == errCodeInvalidPepper || errors.Is(err, domain.ErrUnauthorized)) {
			s.invalidate(client)
		}
		return "", false, fmt.Errorf("identity lookup: %w", err)
	}
	return userID, found, nil
}

// session returns the registered client and hash details for server,
// establishing them on first use.
func (s *Service) session(ctx context.Context, server string) (*matrix.Client, *hashDetails, error) {
	s.mu.Lock()
	client, details := s.client, s.hash
	s.mu.Unlock()

	if client == nil || client.BaseURL() != server {
		token, err := s.register(ctx, server)
		if err != nil {
			return nil, nil, err
		}
		client = matrix.NewClient(server, token, s.clientOpts...)
		details = nil
	}

	if details == nil {
		details = &hashDetails{}
		if err := client.Do(ctx, http.MethodGet, "/_matrix/identity/v2/hash_details", nil, details); err != nil {
			return nil, nil, fmt.Errorf("hash details: %w", err)
		}
	}

	s.mu.Lock()
	if s.server == server {
		s.client, s.hash = client, details
	}
	s.mu.Unlock()
	return client, details, nil
}

func (s *Service) register(ctx context.Context, server string) (string, error) {
	if s.staticToken != "" {
		return s.staticToken, nil
	}
	if s.homeserver == nil {
		return "", fmt.Errorf("%w: no homeserver session to register with", domain.ErrIdentityUnavailable)
	}

	openID, err := s.homeserver.RequestOpenIDToken(ctx)
	if err != nil {
		return "", fmt.Errorf("requesting openid token: %w", err)
	}

	var resp registerResponse
	anon := matrix.NewClient(server, "", s.clientOpts...)
	if err := anon.Do(ctx, http.MethodPost, "/_matrix/identity/v2/account/register", openID, &resp); err != nil {
		return "", fmt.Errorf("registering with identity server: %w", err)
	}
	log.Debug("registered with %s", server)
	return resp.Token, nil
}

func (s *Service) invalidate(client *matrix.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == client {
		s.client = nil
		s.hash = nil
	}
}

func lookUp(ctx context.Context, client *matrix.Client, details *hashDetails, email string) (string, bool, error) {
	algorithm, err := chooseAlgorithm(details.Algorithms)
	if err != nil {
		return "", false, err
	}

	address := HashAddress(email, algorithm, details.Pepper)
	req := lookupRequest{
		Addresses: []string{address},
		Algorithm: algorithm,
		Pepper:    details.Pepper,
	}

	var resp lookupResponse
	if err := client.Do(ctx, http.MethodPost, "/_matrix/identity/v2/lookup", req, &resp); err != nil {
		return "", false, err
	}

	userID, found := resp.Mappings[address]
	return userID, found && userID != "", nil
}

func chooseAlgorithm(supported []string) (string, error) {
	switch {
	case slices.Contains(supported, AlgorithmSHA256):
		return AlgorithmSHA256, nil
	case slices.Contains(supported, AlgorithmNone):
		return AlgorithmNone, nil
	default:
		return "", fmt.Errorf("%w: no supported hash algorithm in %v", domain.ErrIdentityUnavailable, supported)
	}
}

// HashAddress formats an email address for the lookup endpoint.
func HashAddress(email, algorithm, pepper string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if algorithm == AlgorithmNone {
		return email + " email"
	}
	sum := sha256.Sum256([]byte(email + " email " + pepper))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
