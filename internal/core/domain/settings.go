package domain

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the active embedding provider kind.
	Provider ProviderKind

	// BaseURL overrides the API endpoint (remote provider only).
	BaseURL string

	// APIKey is the API credential (remote provider only).
	APIKey string
}

// IsConfigured returns true if the embedding provider is usable.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// FragmenterSettings holds text splitting configuration.
type FragmenterSettings struct {
	// Length is the fragment window size in characters.
	Length int

	// Overlap is the number of characters shared by consecutive fragments.
	Overlap int
}

// SearchSettings holds hybrid ranking configuration.
type SearchSettings struct {
	// VectorWeight is the blend weight of the vector similarity signal.
	VectorWeight float64

	// LexicalWeight is the blend weight of the keyword signal.
	LexicalWeight float64

	// Fanout multiplies the result limit to size the fragment candidate
	// pool, so enough distinct documents survive aggregation.
	Fanout int
}

// StorageSettings holds persistence configuration.
type StorageSettings struct {
	// DataDir is the directory holding the database. Empty means the
	// default under the user's home directory.
	DataDir string
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// Fragmenter holds text splitting settings.
	Fragmenter FragmenterSettings

	// Search holds hybrid ranking settings.
	Search SearchSettings

	// Storage holds persistence settings.
	Storage StorageSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// The local embedding provider is active out of the box; the remote
// provider must be configured explicitly with an API key.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: ProviderLocal,
		},
		Fragmenter: FragmenterSettings{
			Length:  2000,
			Overlap: 150,
		},
		Search: SearchSettings{
			VectorWeight:  0.7,
			LexicalWeight: 0.3,
			Fanout:        5,
		},
		Storage: StorageSettings{},
	}
}
