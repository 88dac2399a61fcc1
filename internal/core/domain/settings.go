package domain

import (
	"fmt"
	"time"
)

// Default timing and paging policy.
const (
	// DefaultDebounce is the quiet period of the known-users and
	// directory pipelines.
	DefaultDebounce = 300 * time.Millisecond

	// DefaultSampleInterval is the tick of the identity pipeline.
	DefaultSampleInterval = 300 * time.Millisecond

	// DefaultDirectoryLimit bounds the directory result list.
	DefaultDirectoryLimit = 50
)

// SearchSettings configures a coordinator.
type SearchSettings struct {
	// Debounce is the quiet period before the local and directory
	// pipelines query their collaborator.
	Debounce time.Duration

	// SampleInterval is how often the identity pipeline takes the most
	// recent gated term.
	SampleInterval time.Duration

	// DirectoryLimit is the maximum number of directory matches requested.
	DirectoryLimit int

	// SingleSelection restricts the selection to at most one user.
	SingleSelection bool
}

// DefaultSearchSettings returns the default settings.
func DefaultSearchSettings() SearchSettings {
	return SearchSettings{
		Debounce:       DefaultDebounce,
		SampleInterval: DefaultSampleInterval,
		DirectoryLimit: DefaultDirectoryLimit,
	}
}

// Validate checks the settings for invalid values.
func (s SearchSettings) Validate() error {
	if s.Debounce <= 0 {
		return fmt.Errorf("%w: debounce must be positive, got %s", ErrInvalidInput, s.Debounce)
	}
	if s.SampleInterval <= 0 {
		return fmt.Errorf("%w: sample interval must be positive, got %s", ErrInvalidInput, s.SampleInterval)
	}
	if s.DirectoryLimit <= 0 {
		return fmt.Errorf("%w: directory limit must be positive, got %d", ErrInvalidInput, s.DirectoryLimit)
	}
	return nil
}

// AppSettings is the persisted application configuration.
type AppSettings struct {
	Search    SearchSettings
	Directory DirectorySettings
	Identity  IdentitySettings
	Storage   StorageSettings
}

// DirectorySettings locates the homeserver that serves the user directory
// and profiles.
type DirectorySettings struct {
	BaseURL string
}

// IsConfigured returns true if a homeserver is set.
func (d DirectorySettings) IsConfigured() bool {
	return d.BaseURL != ""
}

// IdentitySettings locates the identity server. Consent is owned by the
// identity service and only reported here.
type IdentitySettings struct {
	ServerURL string
	Consent   bool
}

// IsConfigured returns true if an identity server is set.
func (i IdentitySettings) IsConfigured() bool {
	return i.ServerURL != ""
}

// StorageSettings locates local data. An empty DataDir means the
// configuration directory.
type StorageSettings struct {
	DataDir string
}

// DefaultAppSettings returns the default application settings.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Search: DefaultSearchSettings(),
	}
}
