package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/archa/internal/core/domain"
	"github.com/custodia-labs/archa/internal/core/ports/driven"
)

// Ensure MetadataStore implements the interface.
var _ driven.MetadataStore = (*MetadataStore)(nil)

// exactTitleScore pins exact full-title matches above term-frequency hits,
// mirroring the SQLite adapter's scoring contract.
const exactTitleScore = 1000.0

// MetadataStore is an in-memory implementation of driven.MetadataStore.
// Keyword search uses naive term counting instead of FTS5; the ranking
// contract (exact title above body-only matches, deterministic order) is
// preserved so it can stand in for the SQLite store in tests.
type MetadataStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
}

// NewMetadataStore creates a new in-memory metadata store.
func NewMetadataStore() *MetadataStore {
	return &MetadataStore{
		documents: make(map[string]domain.Document),
	}
}

// SaveDocument stores or updates a document.
func (s *MetadataStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	s.documents[doc.ID] = *doc
	return nil
}

// GetDocument retrieves a document by ID.
func (s *MetadataStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// DeleteDocument removes a document.
func (s *MetadataStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.documents, id)
	return nil
}

// ListDocuments returns document summaries matching the options.
func (s *MetadataStore) ListDocuments(_ context.Context, opts domain.ListOptions) ([]domain.DocumentSummary, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}

	sortKey := opts.SortKey
	if sortKey == "" {
		sortKey = domain.SortByCreatedAt
	}
	if !sortKey.IsValid() {
		return nil, &domain.ValidationError{Field: "sort", Reason: "unknown sort key " + sortKey.String()}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var docs []domain.Document //nolint:prealloc // filtered below
	for id := range s.documents {
		doc := s.documents[id]
		if opts.Category != "" && !doc.HasCategory(opts.Category) {
			continue
		}
		docs = append(docs, doc)
	}

	sort.Slice(docs, func(i, j int) bool {
		switch sortKey {
		case domain.SortByTitle:
			return strings.ToLower(docs[i].Title) < strings.ToLower(docs[j].Title)
		case domain.SortByPublishedDate:
			ti, tj := timeOrZero(docs[i].PublishedDate), timeOrZero(docs[j].PublishedDate)
			if !ti.Equal(tj) {
				return ti.After(tj)
			}
		default:
			if !docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
				return docs[i].CreatedAt.After(docs[j].CreatedAt)
			}
		}
		return docs[i].ID < docs[j].ID
	})

	if len(docs) > limit {
		docs = docs[:limit]
	}

	summaries := make([]domain.DocumentSummary, len(docs))
	for i, doc := range docs {
		summaries[i] = domain.DocumentSummary{
			ID:         doc.ID,
			Title:      doc.Title,
			Categories: doc.Categories,
			Author:     doc.Author,
			CreatedAt:  doc.CreatedAt,
		}
	}
	return summaries, nil
}

// SearchKeyword scores documents by query term frequency over title, body
// and keywords, pinning exact title matches on top.
func (s *MetadataStore) SearchKeyword(_ context.Context, query, category string, limit int) ([]driven.KeywordHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	terms := strings.Fields(strings.ToLower(query))

	s.mu.RLock()
	defer s.mu.RUnlock()

	var hits []driven.KeywordHit
	for id := range s.documents {
		doc := s.documents[id]
		if category != "" && !doc.HasCategory(category) {
			continue
		}

		if strings.EqualFold(doc.Title, query) {
			hits = append(hits, driven.KeywordHit{DocumentID: id, Score: exactTitleScore, TitleMatch: true})
			continue
		}

		title := strings.ToLower(doc.Title)
		body := strings.ToLower(doc.RawText)
		keywords := strings.ToLower(doc.Keywords)

		var score float64
		var snippet string
		for _, term := range terms {
			// Title matches are weighted to mirror the FTS5 bm25
			// column weighting.
			score += 5.0 * float64(strings.Count(title, term))
			score += 2.0 * float64(strings.Count(keywords, term))
			if n := strings.Count(body, term); n > 0 {
				score += float64(n)
				if snippet == "" {
					snippet = snippetAround(doc.RawText, term)
				}
			}
		}

		if score > 0 {
			hits = append(hits, driven.KeywordHit{DocumentID: id, Score: score, Snippet: snippet})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].DocumentID < hits[j].DocumentID
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// ListCategories computes category counts across all documents.
func (s *MetadataStore) ListCategories(_ context.Context) ([]domain.CategoryCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for id := range s.documents {
		for _, c := range s.documents[id].Categories {
			if c = strings.TrimSpace(c); c != "" {
				counts[c]++
			}
		}
	}

	result := make([]domain.CategoryCount, 0, len(counts))
	for name, count := range counts {
		result = append(result, domain.CategoryCount{Name: name, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// DocumentIDsByCategory returns the IDs of documents carrying the category.
func (s *MetadataStore) DocumentIDsByCategory(_ context.Context, category string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string //nolint:prealloc // filtered below
	for id := range s.documents {
		doc := s.documents[id]
		if doc.HasCategory(category) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// UpdateMetadata applies a partial metadata update.
func (s *MetadataStore) UpdateMetadata(_ context.Context, id string, patch domain.MetadataPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[id]
	if !ok {
		return domain.ErrNotFound
	}

	if patch.Summary != nil {
		doc.Summary = *patch.Summary
	}
	if patch.Keywords != nil {
		doc.Keywords = *patch.Keywords
	}
	if patch.Tags != nil {
		doc.Tags = *patch.Tags
	}
	if patch.Description != nil {
		doc.Description = *patch.Description
	}
	doc.UpdatedAt = time.Now().UTC()
	s.documents[id] = doc
	return nil
}

// Close releases resources.
func (s *MetadataStore) Close() error {
	return nil
}

// snippetAround returns a short body excerpt around the first occurrence of
// the term. The window is measured in runes so multibyte text is never cut
// mid-character.
func snippetAround(body, term string) string {
	lower := strings.ToLower(body)
	idx := strings.Index(lower, term)
	if idx < 0 {
		return ""
	}

	runes := []rune(body)
	at := utf8.RuneCountInString(lower[:idx])
	start := at - 40
	if start < 0 {
		start = 0
	}
	end := at + utf8.RuneCountInString(term) + 40
	if end > len(runes) {
		end = len(runes)
	}
	return strings.TrimSpace(string(runes[start:end]))
}

// timeOrZero dereferences an optional time.
func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
