package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/archa/internal/core/domain"
	"github.com/custodia-labs/archa/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is an in-memory implementation of driven.VectorIndex using a
// brute-force cosine scan, with one record map per provider partition.
type VectorIndex struct {
	mu         sync.RWMutex
	partitions map[string]*partition
}

type partition struct {
	dimensions int
	records    map[string]domain.EmbeddingRecord
}

// NewVectorIndex creates a new in-memory vector index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{
		partitions: make(map[string]*partition),
	}
}

// EnsurePartition creates the partition for a provider if missing.
func (v *VectorIndex) EnsurePartition(_ context.Context, providerID string, dimensions int) error {
	if dimensions <= 0 {
		return &domain.ValidationError{
			Field:  "dimensions",
			Reason: fmt.Sprintf("must be positive, got %d", dimensions),
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if p, ok := v.partitions[providerID]; ok {
		if p.dimensions != dimensions {
			return fmt.Errorf("partition %s has %d dimensions, provider declares %d",
				providerID, p.dimensions, dimensions)
		}
		return nil
	}

	v.partitions[providerID] = &partition{
		dimensions: dimensions,
		records:    make(map[string]domain.EmbeddingRecord),
	}
	return nil
}

// Upsert writes embedding records into the provider's partition.
func (v *VectorIndex) Upsert(_ context.Context, providerID string, records []domain.EmbeddingRecord) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	p, ok := v.partitions[providerID]
	if !ok {
		return fmt.Errorf("looking up partition %s: %w", providerID, domain.ErrNotFound)
	}

	for _, r := range records {
		if len(r.Vector) != p.dimensions {
			return fmt.Errorf("record %s has %d dimensions, partition %s expects %d",
				r.FragmentID, len(r.Vector), providerID, p.dimensions)
		}
	}
	for _, r := range records {
		p.records[r.FragmentID] = r
	}
	return nil
}

// DeleteByDocument removes all records of a document from the provider's
// partition. A missing partition is a no-op.
func (v *VectorIndex) DeleteByDocument(_ context.Context, providerID, documentID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	p, ok := v.partitions[providerID]
	if !ok {
		return nil
	}
	for id, r := range p.records {
		if r.DocumentID == documentID {
			delete(p.records, id)
		}
	}
	return nil
}

// QueryNearest scans the provider's partition and returns the k most
// similar fragments, filtered before ranking.
func (v *VectorIndex) QueryNearest(
	_ context.Context, providerID string, query []float32, k int, filter *driven.VectorFilter,
) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, nil
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	p, ok := v.partitions[providerID]
	if !ok {
		return nil, nil
	}
	if len(query) != p.dimensions {
		return nil, fmt.Errorf("query vector has %d dimensions, partition %s expects %d",
			len(query), providerID, p.dimensions)
	}

	var allowed map[string]bool
	switch {
	case filter != nil && filter.DocumentID != "":
		allowed = map[string]bool{filter.DocumentID: true}
	case filter != nil && len(filter.DocumentIDs) > 0:
		allowed = make(map[string]bool, len(filter.DocumentIDs))
		for _, id := range filter.DocumentIDs {
			allowed[id] = true
		}
	}

	var hits []driven.VectorHit //nolint:prealloc // filtered below
	for _, r := range p.records {
		if allowed != nil && !allowed[r.DocumentID] {
			continue
		}
		hits = append(hits, driven.VectorHit{
			FragmentID: r.FragmentID,
			DocumentID: r.DocumentID,
			Ordinal:    r.Ordinal,
			Text:       r.Text,
			Similarity: cosineSimilarity(query, r.Vector),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		if hits[i].Ordinal != hits[j].Ordinal {
			return hits[i].Ordinal < hits[j].Ordinal
		}
		return hits[i].FragmentID < hits[j].FragmentID
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Partitions returns the provider IDs that have a partition.
func (v *VectorIndex) Partitions(_ context.Context) ([]string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	ids := make([]string, 0, len(v.partitions))
	for id := range v.partitions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Close releases resources.
func (v *VectorIndex) Close() error {
	return nil
}

// cosineSimilarity maps the cosine of two equal-length vectors into [0,1].
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		va, vb := float64(a[i]), float64(b[i])
		dot += va * vb
		normA += va * va
		normB += vb * vb
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return (cos + 1) / 2
}
