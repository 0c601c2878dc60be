package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/archa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/archa/internal/core/domain"
)

func newDocFixture(t *testing.T) (*DocumentService, *memory.MetadataStore) {
	t.Helper()
	metadata := memory.NewMetadataStore()
	return NewDocumentService(metadata), metadata
}

func storeDoc(t *testing.T, metadata *memory.MetadataStore, doc *domain.Document) {
	t.Helper()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	require.NoError(t, metadata.SaveDocument(context.Background(), doc))
}

func TestDocumentService_Get(t *testing.T) {
	svc, metadata := newDocFixture(t)
	storeDoc(t, metadata, &domain.Document{
		ID:         "doc-1",
		Title:      "Archived Article",
		RawText:    "A substantial body of text.",
		Categories: []string{"reading"},
		Author:     "A. Writer",
	})

	doc, err := svc.Get(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "Archived Article", doc.Title)
	assert.Equal(t, "A. Writer", doc.Author)
	assert.Empty(t, doc.RawText, "Get must not carry the body")
}

func TestDocumentService_GetNotFound(t *testing.T) {
	svc, _ := newDocFixture(t)
	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentService_Content(t *testing.T) {
	svc, metadata := newDocFixture(t)
	body := strings.Repeat("0123456789", 500) // 5000 runes
	storeDoc(t, metadata, &domain.Document{
		ID:         "doc-1",
		Title:      "Long",
		RawText:    body,
		Categories: []string{"reading"},
	})

	t.Run("default limit truncates", func(t *testing.T) {
		content, truncated, err := svc.Content(context.Background(), "doc-1", 0)
		require.NoError(t, err)
		assert.True(t, truncated)
		assert.Len(t, []rune(content), DefaultContentLimit)
	})

	t.Run("explicit limit", func(t *testing.T) {
		content, truncated, err := svc.Content(context.Background(), "doc-1", 100)
		require.NoError(t, err)
		assert.True(t, truncated)
		assert.Len(t, []rune(content), 100)
	})

	t.Run("limit above body length", func(t *testing.T) {
		content, truncated, err := svc.Content(context.Background(), "doc-1", 10000)
		require.NoError(t, err)
		assert.False(t, truncated)
		assert.Equal(t, body, content)
	})
}

func TestDocumentService_List(t *testing.T) {
	svc, metadata := newDocFixture(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	storeDoc(t, metadata, &domain.Document{
		ID: "a", Title: "Zebra", Categories: []string{"animals"}, CreatedAt: base,
	})
	storeDoc(t, metadata, &domain.Document{
		ID: "b", Title: "Aardvark", Categories: []string{"animals"}, CreatedAt: base.Add(time.Hour),
	})
	storeDoc(t, metadata, &domain.Document{
		ID: "c", Title: "Compiler Notes", Categories: []string{"tech"}, CreatedAt: base.Add(2 * time.Hour),
	})

	t.Run("default sort newest first", func(t *testing.T) {
		listing, err := svc.List(context.Background(), domain.ListOptions{})
		require.NoError(t, err)
		require.Len(t, listing.Documents, 3)
		assert.Equal(t, "c", listing.Documents[0].ID)
		assert.Equal(t, "a", listing.Documents[2].ID)
		assert.Len(t, listing.Categories, 2)
	})

	t.Run("sort by title", func(t *testing.T) {
		listing, err := svc.List(context.Background(), domain.ListOptions{SortKey: domain.SortByTitle})
		require.NoError(t, err)
		require.Len(t, listing.Documents, 3)
		assert.Equal(t, "Aardvark", listing.Documents[0].Title)
	})

	t.Run("category filter", func(t *testing.T) {
		listing, err := svc.List(context.Background(), domain.ListOptions{Category: "tech"})
		require.NoError(t, err)
		require.Len(t, listing.Documents, 1)
		assert.Equal(t, "c", listing.Documents[0].ID)
	})

	t.Run("invalid sort key", func(t *testing.T) {
		_, err := svc.List(context.Background(), domain.ListOptions{SortKey: "dropped; TABLE"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestDocumentService_Categories(t *testing.T) {
	svc, metadata := newDocFixture(t)
	storeDoc(t, metadata, &domain.Document{
		ID: "a", Title: "One", Categories: []string{"work", "notes"},
	})
	storeDoc(t, metadata, &domain.Document{
		ID: "b", Title: "Two", Categories: []string{"notes"},
	})

	cats, err := svc.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "notes", cats[0].Name)
	assert.Equal(t, 2, cats[0].Count)
	assert.Equal(t, "work", cats[1].Name)
	assert.Equal(t, 1, cats[1].Count)
}

func TestDocumentService_UpdateMetadata(t *testing.T) {
	svc, metadata := newDocFixture(t)
	storeDoc(t, metadata, &domain.Document{
		ID: "doc-1", Title: "Patchable", Categories: []string{"notes"},
	})

	summary := "A fresh summary."
	err := svc.UpdateMetadata(context.Background(), "doc-1", domain.MetadataPatch{Summary: &summary})
	require.NoError(t, err)

	doc, err := metadata.GetDocument(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, summary, doc.Summary)

	t.Run("empty patch rejected", func(t *testing.T) {
		err := svc.UpdateMetadata(context.Background(), "doc-1", domain.MetadataPatch{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("unknown document", func(t *testing.T) {
		err := svc.UpdateMetadata(context.Background(), "missing", domain.MetadataPatch{Summary: &summary})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
