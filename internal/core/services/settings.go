package services

import (
	"fmt"

	"github.com/custodia-labs/archa/internal/core/domain"
	"github.com/custodia-labs/archa/internal/core/ports/driven"
	"github.com/custodia-labs/archa/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider   = "embedding.provider"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyFragmentLength  = "fragmenter.length"
	keyFragmentOverlap = "fragmenter.overlap"
	keyVectorWeight    = "search.vector_weight"
	keyLexicalWeight   = "search.lexical_weight"
	keySearchFanout    = "search.fanout"
	keyStorageDataDir  = "storage.data_dir"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings, falling back to defaults
// for unset keys.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL), // No default - empty means the provider's own endpoint
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		Fragmenter: domain.FragmenterSettings{
			Length:  s.getInt(keyFragmentLength, defaults.Fragmenter.Length),
			Overlap: s.getInt(keyFragmentOverlap, defaults.Fragmenter.Overlap),
		},
		Search: domain.SearchSettings{
			VectorWeight:  s.getFloat(keyVectorWeight, defaults.Search.VectorWeight),
			LexicalWeight: s.getFloat(keyLexicalWeight, defaults.Search.LexicalWeight),
			Fanout:        s.getInt(keySearchFanout, defaults.Search.Fanout),
		},
		Storage: domain.StorageSettings{
			DataDir: s.configStore.GetString(keyStorageDataDir),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := s.configStore.Set(keyEmbedProvider, settings.Embedding.Provider.String()); err != nil {
		return fmt.Errorf("save embedding provider: %w", err)
	}
	if err := s.configStore.Set(keyEmbedBaseURL, settings.Embedding.BaseURL); err != nil {
		return fmt.Errorf("save embedding base_url: %w", err)
	}
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}

	if err := s.configStore.Set(keyFragmentLength, settings.Fragmenter.Length); err != nil {
		return fmt.Errorf("save fragmenter length: %w", err)
	}
	if err := s.configStore.Set(keyFragmentOverlap, settings.Fragmenter.Overlap); err != nil {
		return fmt.Errorf("save fragmenter overlap: %w", err)
	}

	if err := s.configStore.Set(keyVectorWeight, settings.Search.VectorWeight); err != nil {
		return fmt.Errorf("save vector weight: %w", err)
	}
	if err := s.configStore.Set(keyLexicalWeight, settings.Search.LexicalWeight); err != nil {
		return fmt.Errorf("save lexical weight: %w", err)
	}
	if err := s.configStore.Set(keySearchFanout, settings.Search.Fanout); err != nil {
		return fmt.Errorf("save search fanout: %w", err)
	}

	if settings.Storage.DataDir != "" {
		if err := s.configStore.Set(keyStorageDataDir, settings.Storage.DataDir); err != nil {
			return fmt.Errorf("save data dir: %w", err)
		}
	}

	return nil
}

// SetEmbeddingProvider switches the active embedding provider. Existing
// vector partitions are left untouched; documents archived under another
// provider become searchable again when that provider is reactivated.
func (s *SettingsService) SetEmbeddingProvider(provider domain.ProviderKind, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s: %w", provider, domain.ErrAuthRequired)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	if provider.IsLocal() {
		// The local provider runs in-process and has no endpoint or key.
		settings.Embedding.BaseURL = ""
		settings.Embedding.APIKey = ""
	} else {
		settings.Embedding.APIKey = apiKey
	}

	return s.Save(settings)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// getProvider reads a provider kind with a fallback default.
func (s *SettingsService) getProvider(key string, def domain.ProviderKind) domain.ProviderKind {
	v := s.configStore.GetString(key)
	if v == "" {
		return def
	}
	kind := domain.ProviderKind(v)
	if !kind.IsValid() {
		return def
	}
	return kind
}

// getInt reads an int with a fallback default.
func (s *SettingsService) getInt(key string, def int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return def
	}
	return s.configStore.GetInt(key)
}

// getFloat reads a float with a fallback default. TOML stores floats and
// ints as distinct types, so both are accepted.
func (s *SettingsService) getFloat(key string, def float64) float64 {
	v, ok := s.configStore.Get(key)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return def
	}
}
