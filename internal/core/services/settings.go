package services

import (
	"fmt"
	"time"

	"github.com/custodia-labs/usersearch/internal/core/domain"
	"github.com/custodia-labs/usersearch/internal/core/ports/driven"
	"github.com/custodia-labs/usersearch/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyDebounce        = "search.debounce"
	keySampleInterval  = "search.sample_interval"
	keyDirectoryLimit  = "search.directory_limit"
	keySingleSelection = "search.single_selection"
	keyDirectoryURL    = "directory.base_url"
	keyIdentityURL     = "identity.server_url"
	keyIdentityConsent = "identity.consent"
	keyDataDir         = "storage.data_dir"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings. Missing or invalid values
// fall back to the defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Search: domain.SearchSettings{
			Debounce:        s.getDuration(keyDebounce, defaults.Search.Debounce),
			SampleInterval:  s.getDuration(keySampleInterval, defaults.Search.SampleInterval),
			DirectoryLimit:  s.getInt(keyDirectoryLimit, defaults.Search.DirectoryLimit),
			SingleSelection: s.getBool(keySingleSelection, defaults.Search.SingleSelection),
		},
		Directory: domain.DirectorySettings{
			BaseURL: s.configStore.GetString(keyDirectoryURL),
		},
		Identity: domain.IdentitySettings{
			ServerURL: s.configStore.GetString(keyIdentityURL),
			Consent:   s.configStore.GetBool(keyIdentityConsent),
		},
		Storage: domain.StorageSettings{
			DataDir: s.configStore.GetString(keyDataDir),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := settings.Search.Validate(); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
	}{
		{keyDebounce, settings.Search.Debounce.String()},
		{keySampleInterval, settings.Search.SampleInterval.String()},
		{keyDirectoryLimit, settings.Search.DirectoryLimit},
		{keySingleSelection, settings.Search.SingleSelection},
		{keyDirectoryURL, settings.Directory.BaseURL},
		{keyIdentityURL, settings.Identity.ServerURL},
		{keyDataDir, settings.Storage.DataDir},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	return nil
}

// SetDirectoryURL configures the homeserver base URL.
func (s *SettingsService) SetDirectoryURL(url string) error {
	if !isHTTPURL(url) {
		return fmt.Errorf("%w: invalid homeserver url %q", domain.ErrInvalidInput, url)
	}

	return s.set(keyDirectoryURL, url)
}

// SetIdentityServer configures the identity server URL. An empty URL
// disables identity lookups.
func (s *SettingsService) SetIdentityServer(url string) error {
	if url != "" && !isHTTPURL(url) {
		return fmt.Errorf("%w: invalid identity server url %q", domain.ErrInvalidInput, url)
	}

	return s.set(keyIdentityURL, url)
}

// SetSingleSelection switches between single and multi selection.
func (s *SettingsService) SetSingleSelection(single bool) error {
	return s.set(keySingleSelection, single)
}

// Validate checks that the stored settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if err := settings.Search.Validate(); err != nil {
		return err
	}
	if !settings.Directory.IsConfigured() {
		return fmt.Errorf("%w: homeserver url is not configured", domain.ErrInvalidInput)
	}
	if !isHTTPURL(settings.Directory.BaseURL) {
		return fmt.Errorf("%w: invalid homeserver url %q", domain.ErrInvalidInput, settings.Directory.BaseURL)
	}
	if settings.Identity.IsConfigured() && !isHTTPURL(settings.Identity.ServerURL) {
		return fmt.Errorf("%w: invalid identity server url %q", domain.ErrInvalidInput, settings.Identity.ServerURL)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// LoadSearchSettings reads the coordinator settings from configStore.
func LoadSearchSettings(configStore driven.ConfigStore) domain.SearchSettings {
	settings, _ := NewSettingsService(configStore).Get()
	return settings.Search
}

// Helper methods for reading config with defaults.

func (s *SettingsService) set(key string, value any) error {
	if err := s.configStore.Set(key, value); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetDuration(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func isHTTPURL(url string) bool {
	return validate.Var(url, "required,http_url") == nil
}
