package driving

import "github.com/custodia-labs/ragkit/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, with secrets resolved.
	Get() (*domain.AppSettings, error)

	// Set stores a single configuration key and persists it.
	Set(key string, value any) error

	// Lookup returns the raw value of a configuration key.
	Lookup(key string) (any, bool)

	// Path returns the configuration file path.
	Path() string

	// Validate checks that the settings can build every required service.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
