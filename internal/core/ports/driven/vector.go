package driven

import (
	"context"

	"github.com/custodia-labs/archa/internal/core/domain"
)

// VectorIndex stores fragment embeddings in one partition per provider and
// answers nearest-neighbour similarity queries within a partition.
// Partitions are never compared or merged.
type VectorIndex interface {
	// EnsurePartition creates the partition for a provider if it does not
	// exist, recording its dimensionality. An existing partition with a
	// different dimensionality is an error.
	EnsurePartition(ctx context.Context, providerID string, dimensions int) error

	// Upsert writes embedding records into the provider's partition.
	Upsert(ctx context.Context, providerID string, records []domain.EmbeddingRecord) error

	// DeleteByDocument removes all records of a document from the
	// provider's partition.
	DeleteByDocument(ctx context.Context, providerID, documentID string) error

	// QueryNearest returns the k most similar fragments in the provider's
	// partition, ordered by similarity descending with ties broken by
	// ordinal then fragment ID. The filter, when non-nil, restricts
	// candidates before ranking.
	QueryNearest(ctx context.Context, providerID string, query []float32, k int, filter *VectorFilter) ([]VectorHit, error)

	// Partitions returns the provider IDs that have a partition.
	Partitions(ctx context.Context) ([]string, error)

	// Close releases resources.
	Close() error
}

// VectorFilter restricts similarity search candidates before ranking.
// Zero-value fields do not filter.
type VectorFilter struct {
	// DocumentID restricts candidates to fragments of one document.
	DocumentID string

	// DocumentIDs restricts candidates to fragments of any listed
	// document. Ignored when DocumentID is set.
	DocumentIDs []string
}

// VectorHit is a similarity search result.
type VectorHit struct {
	// FragmentID is the matched fragment.
	FragmentID string

	// DocumentID is its parent document.
	DocumentID string

	// Ordinal is the fragment position within the document.
	Ordinal int

	// Text is the fragment content.
	Text string

	// Similarity is cosine similarity mapped to [0,1].
	Similarity float64
}
