package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/archa/internal/core/domain"
	"github.com/custodia-labs/archa/internal/core/ports/driven"
)

// testRecord builds a 3-dimensional embedding record.
func testRecord(fragmentID, documentID string, ordinal int, vector []float32) domain.EmbeddingRecord {
	return domain.EmbeddingRecord{
		FragmentID: fragmentID,
		DocumentID: documentID,
		Ordinal:    ordinal,
		Text:       "fragment " + fragmentID,
		CharStart:  0,
		CharEnd:    10,
		Vector:     vector,
	}
}

// ==================== VectorIndex Tests ====================

func TestVectorIndex_EnsurePartition(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	vectors := store.VectorIndex()

	t.Run("creates and registers", func(t *testing.T) {
		require.NoError(t, vectors.EnsurePartition(ctx, "local", 3))

		partitions, err := vectors.Partitions(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"local"}, partitions)
	})

	t.Run("idempotent for same dimensions", func(t *testing.T) {
		assert.NoError(t, vectors.EnsurePartition(ctx, "local", 3))
	})

	t.Run("rejects dimension change", func(t *testing.T) {
		err := vectors.EnsurePartition(ctx, "local", 5)
		assert.Error(t, err)
	})

	t.Run("rejects invalid provider id", func(t *testing.T) {
		var verr *domain.ValidationError
		assert.ErrorAs(t, vectors.EnsurePartition(ctx, "1bad; DROP TABLE", 3), &verr)
	})

	t.Run("rejects non-positive dimensions", func(t *testing.T) {
		var verr *domain.ValidationError
		assert.ErrorAs(t, vectors.EnsurePartition(ctx, "openai", 0), &verr)
	})
}

func TestVectorIndex_UpsertAndQueryNearest(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	vectors := store.VectorIndex()
	require.NoError(t, vectors.EnsurePartition(ctx, "local", 3))

	records := []domain.EmbeddingRecord{
		testRecord("f-1", "doc-1", 0, []float32{1, 0, 0}),
		testRecord("f-2", "doc-1", 1, []float32{0, 1, 0}),
		testRecord("f-3", "doc-2", 0, []float32{-1, 0, 0}),
	}
	require.NoError(t, vectors.Upsert(ctx, "local", records))

	t.Run("orders by similarity", func(t *testing.T) {
		hits, err := vectors.QueryNearest(ctx, "local", []float32{1, 0, 0}, 10, nil)
		require.NoError(t, err)
		require.Len(t, hits, 3)

		assert.Equal(t, "f-1", hits[0].FragmentID)
		assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
		assert.Equal(t, "f-2", hits[1].FragmentID)
		assert.InDelta(t, 0.5, hits[1].Similarity, 1e-6)
		assert.Equal(t, "f-3", hits[2].FragmentID)
		assert.InDelta(t, 0.0, hits[2].Similarity, 1e-6)
		assert.Equal(t, "fragment f-1", hits[0].Text)
	})

	t.Run("truncates to k", func(t *testing.T) {
		hits, err := vectors.QueryNearest(ctx, "local", []float32{1, 0, 0}, 2, nil)
		require.NoError(t, err)
		assert.Len(t, hits, 2)
	})

	t.Run("single document filter", func(t *testing.T) {
		hits, err := vectors.QueryNearest(ctx, "local", []float32{1, 0, 0}, 10,
			&driven.VectorFilter{DocumentID: "doc-2"})
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "f-3", hits[0].FragmentID)
	})

	t.Run("document set filter", func(t *testing.T) {
		hits, err := vectors.QueryNearest(ctx, "local", []float32{1, 0, 0}, 10,
			&driven.VectorFilter{DocumentIDs: []string{"doc-1"}})
		require.NoError(t, err)
		require.Len(t, hits, 2)
		for _, h := range hits {
			assert.Equal(t, "doc-1", h.DocumentID)
		}
	})

	t.Run("upsert replaces existing fragment", func(t *testing.T) {
		replaced := testRecord("f-1", "doc-1", 0, []float32{0, 0, 1})
		require.NoError(t, vectors.Upsert(ctx, "local", []domain.EmbeddingRecord{replaced}))

		hits, err := vectors.QueryNearest(ctx, "local", []float32{0, 0, 1}, 1, nil)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "f-1", hits[0].FragmentID)
		assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
	})

	t.Run("rejects mismatched record dimensions", func(t *testing.T) {
		bad := testRecord("f-bad", "doc-9", 0, []float32{1, 0})
		assert.Error(t, vectors.Upsert(ctx, "local", []domain.EmbeddingRecord{bad}))
	})

	t.Run("rejects mismatched query dimensions", func(t *testing.T) {
		_, err := vectors.QueryNearest(ctx, "local", []float32{1, 0}, 5, nil)
		assert.Error(t, err)
	})
}

func TestVectorIndex_MissingPartition(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	vectors := store.VectorIndex()

	hits, err := vectors.QueryNearest(ctx, "openai", []float32{1, 0, 0}, 5, nil)
	require.NoError(t, err)
	assert.Nil(t, hits, "missing partition yields no hits")

	assert.NoError(t, vectors.DeleteByDocument(ctx, "openai", "doc-1"),
		"deleting from a missing partition is a no-op")
}

func TestVectorIndex_DeleteByDocument(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	vectors := store.VectorIndex()
	require.NoError(t, vectors.EnsurePartition(ctx, "local", 3))
	require.NoError(t, vectors.Upsert(ctx, "local", []domain.EmbeddingRecord{
		testRecord("f-1", "doc-1", 0, []float32{1, 0, 0}),
		testRecord("f-2", "doc-2", 0, []float32{0, 1, 0}),
	}))

	require.NoError(t, vectors.DeleteByDocument(ctx, "local", "doc-1"))

	hits, err := vectors.QueryNearest(ctx, "local", []float32{1, 0, 0}, 10, nil)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "doc-2", hits[0].DocumentID)
}

func TestVectorIndex_PartitionsIsolated(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	vectors := store.VectorIndex()
	require.NoError(t, vectors.EnsurePartition(ctx, "local", 3))
	require.NoError(t, vectors.EnsurePartition(ctx, "openai", 3))
	require.NoError(t, vectors.Upsert(ctx, "local", []domain.EmbeddingRecord{
		testRecord("f-1", "doc-1", 0, []float32{1, 0, 0}),
	}))

	hits, err := vectors.QueryNearest(ctx, "openai", []float32{1, 0, 0}, 10, nil)
	require.NoError(t, err)
	assert.Empty(t, hits, "records live only in their provider's partition")

	partitions, err := vectors.Partitions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"local", "openai"}, partitions)
}

// ==================== Helper Tests ====================

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.5},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, 0.0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cosineSimilarity(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}

	t.Run("dimension mismatch", func(t *testing.T) {
		_, err := cosineSimilarity([]float32{1}, []float32{1, 2})
		assert.Error(t, err)
	})
}

func TestEmbeddingBytesRoundTrip(t *testing.T) {
	in := []float32{0.25, -1.5, 3.125}
	assert.Equal(t, in, bytesToFloat32Slice(float32SliceToBytes(in)))
	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}
