package driving

import "github.com/custodia-labs/usersearch/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings. Identity consent is not written;
	// it changes through UserSearch.SetIdentityConsent.
	Save(settings *domain.AppSettings) error

	// SetDirectoryURL configures the homeserver base URL.
	SetDirectoryURL(url string) error

	// SetIdentityServer configures the identity server URL.
	SetIdentityServer(url string) error

	// SetSingleSelection switches between single and multi selection.
	SetSingleSelection(single bool) error

	// Validate checks that the stored settings are usable.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
