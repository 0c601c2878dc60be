package domain

const unknownDescription = "Unknown"

// ProviderKind identifies an embedding provider variant.
//
// The set is closed: every kind has a fixed, known dimensionality, which
// prevents vectors from different providers being compared by accident.
// The active kind is process-wide configuration fixed at startup; switching
// it does not migrate or delete records of the other kind - they stay in
// their own partition and become queryable again if the caller switches back.
type ProviderKind string

// Available embedding providers.
const (
	// ProviderLocal is the in-process feature-hashing embedder.
	// No external dependency, always available.
	ProviderLocal ProviderKind = "local"

	// ProviderOpenAI is the OpenAI embeddings API.
	// Requires an API key.
	ProviderOpenAI ProviderKind = "openai"
)

// Embedding dimensionality per provider kind.
const (
	// LocalDimensions is the vector size of the local provider.
	LocalDimensions = 384

	// OpenAIDimensions is the vector size of the remote provider.
	OpenAIDimensions = 1536
)

// IsValid returns true if the provider kind is recognised.
func (k ProviderKind) IsValid() bool {
	switch k {
	case ProviderLocal, ProviderOpenAI:
		return true
	default:
		return false
	}
}

// Dimensions returns the fixed vector size for the kind, or 0 when unknown.
func (k ProviderKind) Dimensions() int {
	switch k {
	case ProviderLocal:
		return LocalDimensions
	case ProviderOpenAI:
		return OpenAIDimensions
	default:
		return 0
	}
}

// RequiresAPIKey returns true if this provider needs a credential.
func (k ProviderKind) RequiresAPIKey() bool {
	return k == ProviderOpenAI
}

// IsLocal returns true if this provider runs in-process.
func (k ProviderKind) IsLocal() bool {
	return k == ProviderLocal
}

// String returns the string representation.
func (k ProviderKind) String() string {
	return string(k)
}

// Description returns a human-readable description of the kind.
func (k ProviderKind) Description() string {
	switch k {
	case ProviderLocal:
		return "Local (in-process feature hashing, 384 dimensions)"
	case ProviderOpenAI:
		return "OpenAI (text-embedding-3-small, 1536 dimensions)"
	default:
		return unknownDescription
	}
}

// AllProviderKinds returns every available provider kind.
func AllProviderKinds() []ProviderKind {
	return []ProviderKind{ProviderLocal, ProviderOpenAI}
}
