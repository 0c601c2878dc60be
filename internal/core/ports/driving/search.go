package driving

import (
	"context"

	"github.com/custodia-labs/archa/internal/core/domain"
)

// SearchService provides hybrid search over the archive.
type SearchService interface {
	// Search ranks documents against the query by blending keyword and
	// vector similarity signals.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.DocumentHit, error)
}

// AskService retrieves grounding context for question answering.
type AskService interface {
	// RelevantFragments returns the fragments most similar to the
	// question, optionally scoped to one document. An unknown document ID
	// fails with domain.ErrNotFound rather than falling back to the full
	// corpus.
	RelevantFragments(ctx context.Context, question, documentID string, limit int) (*domain.RAGContext, error)
}
