package driven

import "context"

// EmbeddingProvider maps text to fixed-dimension vectors.
//
// The active provider is process-wide configuration fixed at startup. Each
// provider owns one vector-index partition, keyed by ProviderID; switching
// the configured provider never migrates or deletes the other partition.
//
// Implementations:
//   - local: in-process feature hashing, 384 dimensions, always available
//   - openai: remote API, 1536 dimensions, requires an API key
type EmbeddingProvider interface {
	// Vectorize generates an embedding for the given text.
	Vectorize(ctx context.Context, text string) ([]float32, error)

	// VectorizeBatch generates embeddings for multiple texts. Results are
	// ordered to match the input. All-or-nothing: a single failure fails
	// the batch.
	VectorizeBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the fixed embedding vector size.
	Dimensions() int

	// ProviderID returns the partition key for this provider.
	ProviderID() string

	// ModelName returns the name of the underlying model.
	ModelName() string

	// Ping validates the provider is usable with a lightweight check.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
