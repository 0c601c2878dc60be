package driving

import "github.com/custodia-labs/archa/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetEmbeddingProvider switches the active embedding provider.
	// Existing vector partitions are left untouched.
	SetEmbeddingProvider(provider domain.ProviderKind, apiKey string) error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
