// Package env reads process environment overrides and layers them over a
// driven.ConfigStore.
package env

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/custodia-labs/usersearch/internal/core/ports/driven"
)

// Config is the environment surface of the CLI. Secrets are only ever read
// from the environment; the other fields override the config file.
type Config struct {
	AccessToken    string        `env:"USERSEARCH_ACCESS_TOKEN"`
	IdentityToken  string        `env:"USERSEARCH_IDENTITY_TOKEN"`
	HomeserverURL  string        `env:"USERSEARCH_HOMESERVER_URL"`
	IdentityURL    string        `env:"USERSEARCH_IDENTITY_URL"`
	ConfigDir      string        `env:"USERSEARCH_CONFIG_DIR"`
	DataDir        string        `env:"USERSEARCH_DATA_DIR"`
	Debounce       time.Duration `env:"USERSEARCH_DEBOUNCE"`
	SampleInterval time.Duration `env:"USERSEARCH_SAMPLE_INTERVAL"`
	RequestTimeout time.Duration `env:"USERSEARCH_REQUEST_TIMEOUT" envDefault:"30s"`
}

// Load parses the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Overrides returns the config keys the environment sets.
func (c Config) Overrides() map[string]any {
	overrides := make(map[string]any)
	if c.HomeserverURL != "" {
		overrides["directory.base_url"] = c.HomeserverURL
	}
	if c.IdentityURL != "" {
		overrides["identity.server_url"] = c.IdentityURL
	}
	if c.DataDir != "" {
		overrides["storage.data_dir"] = c.DataDir
	}
	if c.Debounce > 0 {
		overrides["search.debounce"] = c.Debounce.String()
	}
	if c.SampleInterval > 0 {
		overrides["search.sample_interval"] = c.SampleInterval.String()
	}
	return overrides
}

// Ensure OverlayStore implements the interface.
var _ driven.ConfigStore = (*OverlayStore)(nil)

// OverlayStore answers reads from the environment first and falls back to
// the wrapped store. Writes go to the wrapped store, except writes that
// only echo an environment value back, so environment values are never
// persisted.
type OverlayStore struct {
	driven.ConfigStore
	overrides map[string]any
}

// NewOverlayStore layers cfg's overrides over base.
func NewOverlayStore(base driven.ConfigStore, cfg Config) *OverlayStore {
	return &OverlayStore{ConfigStore: base, overrides: cfg.Overrides()}
}

// Get retrieves a configuration value by key.
func (s *OverlayStore) Get(key string) (any, bool) {
	if v, ok := s.overrides[key]; ok {
		return v, true
	}
	return s.ConfigStore.Get(key)
}

// GetString retrieves a string configuration value.
func (s *OverlayStore) GetString(key string) string {
	if v, ok := s.overrides[key].(string); ok {
		return v
	}
	return s.ConfigStore.GetString(key)
}

// GetDuration retrieves a duration configuration value.
func (s *OverlayStore) GetDuration(key string) time.Duration {
	if v, ok := s.overrides[key].(string); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return s.ConfigStore.GetDuration(key)
}

// Set stores value in the wrapped store unless it is the environment value
// of an overridden key.
func (s *OverlayStore) Set(key string, value any) error {
	if v, ok := s.overrides[key]; ok && fmt.Sprint(v) == fmt.Sprint(value) {
		return nil
	}
	return s.ConfigStore.Set(key, value)
}

// Overridden reports whether key comes from the environment.
func (s *OverlayStore) Overridden(key string) bool {
	_, ok := s.overrides[key]
	return ok
}
