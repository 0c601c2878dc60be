package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/archa/internal/core/domain"
	"github.com/custodia-labs/archa/internal/core/ports/driven"
	"github.com/custodia-labs/archa/internal/core/ports/driving"
	"github.com/custodia-labs/archa/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

const (
	// defaultSearchLimit is the result cap when the caller does not set one.
	defaultSearchLimit = 10

	// excerptMaxRunes bounds the excerpt carried on each hit.
	excerptMaxRunes = 200

	// minCandidateMultiplier floors the fragment candidate pool at three
	// times the result limit, so aggregation by document still has enough
	// distinct documents to choose from at small fanouts.
	minCandidateMultiplier = 3
)

// SearchService blends keyword and vector similarity signals into one
// document ranking. Both legs run concurrently; a single failing leg
// degrades the ranking instead of failing the query.
type SearchService struct {
	metadata driven.MetadataStore
	vectors  driven.VectorIndex
	embedder driven.EmbeddingProvider
	weights  domain.SearchSettings
}

// NewSearchService creates a new search service.
func NewSearchService(
	metadata driven.MetadataStore,
	vectors driven.VectorIndex,
	embedder driven.EmbeddingProvider,
	weights domain.SearchSettings,
) *SearchService {
	return &SearchService{
		metadata: metadata,
		vectors:  vectors,
		embedder: embedder,
		weights:  weights,
	}
}

// legResult carries one leg's per-document scores plus its best excerpt.
// pinned marks exact-title matches, which outrank every blended hit.
type legResult struct {
	scores   map[string]float64
	excerpts map[string]string
	pinned   map[string]bool
	err      error
}

// Search runs both legs, aggregates fragments to documents, normalizes the
// lexical scores and blends.
func (s *SearchService) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.DocumentHit, error) {
	logger.Section("Search")

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	// The category filter restricts candidates before ranking. An unknown
	// category simply matches nothing.
	var scopeIDs []string
	if opts.Category != "" {
		ids, err := s.metadata.DocumentIDsByCategory(ctx, opts.Category)
		if err != nil {
			return nil, fmt.Errorf("resolving category %q: %w", opts.Category, err)
		}
		if len(ids) == 0 {
			return nil, nil
		}
		scopeIDs = ids
	}

	candidateK := limit * s.weights.Fanout
	if floor := limit * minCandidateMultiplier; candidateK < floor {
		candidateK = floor
	}

	var (
		wg      sync.WaitGroup
		lexical legResult
		vector  legResult
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		lexical = s.lexicalLeg(ctx, query, opts.Category, candidateK)
	}()
	go func() {
		defer wg.Done()
		vector = s.vectorLeg(ctx, query, scopeIDs, candidateK)
	}()
	wg.Wait()

	// A single failing leg degrades to the other; both failing fails the
	// query. Authentication failures surface even when the lexical leg
	// would still answer, so a misconfigured key is not silently hidden.
	if lexical.err != nil && vector.err != nil {
		return nil, fmt.Errorf("both search legs failed: %v; %w", lexical.err, vector.err)
	}
	if vector.err != nil {
		if errors.Is(vector.err, domain.ErrAuthRequired) {
			return nil, vector.err
		}
		logger.Warn("Vector leg failed, keyword-only results: %v", vector.err)
	}
	if lexical.err != nil {
		logger.Warn("Keyword leg failed, vector-only results: %v", lexical.err)
	}

	// Hydrate the full ranking before truncating: a document deleted
	// mid-query is dropped, and later candidates move up to fill the page.
	hits, err := s.hydrate(ctx, s.blend(lexical, vector))
	if err != nil {
		return nil, err
	}
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// lexicalLeg runs the full-text query and normalizes scores into [0,1]
// by the leg's own maximum. Exact-title matches are pinned: they score a
// full 1.0 and stay out of the maximum, so their sentinel score cannot
// crush the other documents' lexical signal.
func (s *SearchService) lexicalLeg(ctx context.Context, query, category string, k int) legResult {
	raw, err := s.metadata.SearchKeyword(ctx, query, category, k)
	if err != nil {
		return legResult{err: fmt.Errorf("keyword search: %w", err)}
	}

	res := legResult{
		scores:   make(map[string]float64, len(raw)),
		excerpts: make(map[string]string, len(raw)),
		pinned:   make(map[string]bool),
	}
	var max float64
	for _, h := range raw {
		if !h.TitleMatch && h.Score > max {
			max = h.Score
		}
	}
	for _, h := range raw {
		score := 0.0
		switch {
		case h.TitleMatch:
			score = 1.0
			res.pinned[h.DocumentID] = true
		case max > 0:
			score = h.Score / max
		}
		res.scores[h.DocumentID] = score
		if h.Snippet != "" {
			res.excerpts[h.DocumentID] = h.Snippet
		}
	}
	return res
}

// vectorLeg embeds the query, retrieves the nearest fragments from the
// active partition and aggregates per document by maximum similarity.
func (s *SearchService) vectorLeg(ctx context.Context, query string, scopeIDs []string, k int) legResult {
	queryVec, err := s.embedder.Vectorize(ctx, query)
	if err != nil {
		return legResult{err: fmt.Errorf("embedding query: %w", err)}
	}

	var filter *driven.VectorFilter
	if len(scopeIDs) > 0 {
		filter = &driven.VectorFilter{DocumentIDs: scopeIDs}
	}

	frags, err := s.vectors.QueryNearest(ctx, s.embedder.ProviderID(), queryVec, k, filter)
	if err != nil {
		return legResult{err: fmt.Errorf("similarity query: %w", err)}
	}

	// Hits arrive similarity-descending, so the first fragment of each
	// document is its best: maximum aggregation and best excerpt in one
	// pass.
	res := legResult{
		scores:   make(map[string]float64, len(frags)),
		excerpts: make(map[string]string, len(frags)),
	}
	for _, f := range frags {
		if _, seen := res.scores[f.DocumentID]; seen {
			continue
		}
		res.scores[f.DocumentID] = f.Similarity
		res.excerpts[f.DocumentID] = f.Text
	}
	return res
}

// blend combines the two legs into one ranking. A document missing from a
// leg contributes zero for that signal. Exact-title documents rank above
// every blended hit regardless of vector similarity.
func (s *SearchService) blend(lexical, vector legResult) []domain.DocumentHit {
	ids := make(map[string]struct{}, len(lexical.scores)+len(vector.scores))
	for id := range lexical.scores {
		ids[id] = struct{}{}
	}
	for id := range vector.scores {
		ids[id] = struct{}{}
	}

	hits := make([]domain.DocumentHit, 0, len(ids))
	for id := range ids {
		score := s.weights.VectorWeight*vector.scores[id] + s.weights.LexicalWeight*lexical.scores[id]

		// The vector excerpt is a whole fragment and carries more
		// context than an FTS snippet, so it wins when present.
		excerpt := vector.excerpts[id]
		if excerpt == "" {
			excerpt = lexical.excerpts[id]
		}

		hits = append(hits, domain.DocumentHit{
			ID:      id,
			Score:   score,
			Excerpt: truncateExcerpt(excerpt),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		pi, pj := lexical.pinned[hits[i].ID], lexical.pinned[hits[j].ID]
		if pi != pj {
			return pi
		}
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	return hits
}

// hydrate fills titles and metadata from the metadata store. A document
// deleted between ranking and hydration is dropped rather than failing
// the whole query.
func (s *SearchService) hydrate(ctx context.Context, hits []domain.DocumentHit) ([]domain.DocumentHit, error) {
	out := make([]domain.DocumentHit, 0, len(hits))
	for _, h := range hits {
		doc, err := s.metadata.GetDocument(ctx, h.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("loading document %s: %w", h.ID, err)
		}
		h.Title = doc.Title
		h.Author = doc.Author
		h.Categories = doc.Categories
		h.SourceRef = doc.SourceRef
		out = append(out, h)
	}
	return out, nil
}

// truncateExcerpt bounds an excerpt to excerptMaxRunes runes.
func truncateExcerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= excerptMaxRunes {
		return text
	}
	return string(runes[:excerptMaxRunes]) + "..."
}
