package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/archa/internal/core/domain"
	"github.com/custodia-labs/archa/internal/core/ports/driven"
)

func record(fragmentID, documentID string, ordinal int, vector []float32) domain.EmbeddingRecord {
	return domain.EmbeddingRecord{
		FragmentID: fragmentID,
		DocumentID: documentID,
		Ordinal:    ordinal,
		Text:       "fragment " + fragmentID,
		Vector:     vector,
	}
}

func TestVectorIndex_EnsurePartition(t *testing.T) {
	index := NewVectorIndex()
	ctx := context.Background()

	require.NoError(t, index.EnsurePartition(ctx, "local", 3))
	require.NoError(t, index.EnsurePartition(ctx, "local", 3), "idempotent")

	assert.Error(t, index.EnsurePartition(ctx, "local", 4), "dimension change rejected")

	var verr *domain.ValidationError
	assert.ErrorAs(t, index.EnsurePartition(ctx, "openai", -1), &verr)

	partitions, err := index.Partitions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"local"}, partitions)
}

func TestVectorIndex_UpsertAndQueryNearest(t *testing.T) {
	index := NewVectorIndex()
	ctx := context.Background()
	require.NoError(t, index.EnsurePartition(ctx, "local", 3))

	require.NoError(t, index.Upsert(ctx, "local", []domain.EmbeddingRecord{
		record("f-1", "doc-1", 0, []float32{1, 0, 0}),
		record("f-2", "doc-1", 1, []float32{0, 1, 0}),
		record("f-3", "doc-2", 0, []float32{-1, 0, 0}),
	}))

	t.Run("orders by similarity", func(t *testing.T) {
		hits, err := index.QueryNearest(ctx, "local", []float32{1, 0, 0}, 10, nil)
		require.NoError(t, err)
		require.Len(t, hits, 3)
		assert.Equal(t, []string{"f-1", "f-2", "f-3"},
			[]string{hits[0].FragmentID, hits[1].FragmentID, hits[2].FragmentID})
		assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
	})

	t.Run("truncates to k", func(t *testing.T) {
		hits, err := index.QueryNearest(ctx, "local", []float32{1, 0, 0}, 1, nil)
		require.NoError(t, err)
		assert.Len(t, hits, 1)
	})

	t.Run("document filters", func(t *testing.T) {
		hits, err := index.QueryNearest(ctx, "local", []float32{1, 0, 0}, 10,
			&driven.VectorFilter{DocumentID: "doc-2"})
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "f-3", hits[0].FragmentID)

		hits, err = index.QueryNearest(ctx, "local", []float32{1, 0, 0}, 10,
			&driven.VectorFilter{DocumentIDs: []string{"doc-1"}})
		require.NoError(t, err)
		assert.Len(t, hits, 2)
	})

	t.Run("upsert replaces by fragment id", func(t *testing.T) {
		require.NoError(t, index.Upsert(ctx, "local", []domain.EmbeddingRecord{
			record("f-1", "doc-1", 0, []float32{0, 0, 1}),
		}))
		hits, err := index.QueryNearest(ctx, "local", []float32{0, 0, 1}, 1, nil)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "f-1", hits[0].FragmentID)
	})

	t.Run("dimension mismatches rejected", func(t *testing.T) {
		assert.Error(t, index.Upsert(ctx, "local", []domain.EmbeddingRecord{
			record("f-bad", "doc-9", 0, []float32{1}),
		}))
		_, err := index.QueryNearest(ctx, "local", []float32{1}, 5, nil)
		assert.Error(t, err)
	})

	t.Run("missing partition", func(t *testing.T) {
		hits, err := index.QueryNearest(ctx, "openai", []float32{1, 0, 0}, 5, nil)
		require.NoError(t, err)
		assert.Nil(t, hits)

		assert.NoError(t, index.DeleteByDocument(ctx, "openai", "doc-1"))
		assert.ErrorIs(t, index.Upsert(ctx, "openai", []domain.EmbeddingRecord{
			record("f-x", "doc-x", 0, []float32{1, 0, 0}),
		}), domain.ErrNotFound)
	})
}

func TestVectorIndex_DeleteByDocument(t *testing.T) {
	index := NewVectorIndex()
	ctx := context.Background()
	require.NoError(t, index.EnsurePartition(ctx, "local", 3))
	require.NoError(t, index.Upsert(ctx, "local", []domain.EmbeddingRecord{
		record("f-1", "doc-1", 0, []float32{1, 0, 0}),
		record("f-2", "doc-1", 1, []float32{0, 1, 0}),
		record("f-3", "doc-2", 0, []float32{0, 0, 1}),
	}))

	require.NoError(t, index.DeleteByDocument(ctx, "local", "doc-1"))

	hits, err := index.QueryNearest(ctx, "local", []float32{1, 0, 0}, 10, nil)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "doc-2", hits[0].DocumentID)
}
