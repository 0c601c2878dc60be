package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/archa/internal/core/domain"
	"github.com/custodia-labs/archa/internal/core/ports/driven"
	"github.com/custodia-labs/archa/internal/core/ports/driving"
	"github.com/custodia-labs/archa/internal/logger"
)

// Ensure AskService implements the interface.
var _ driving.AskService = (*AskService)(nil)

// defaultFragmentLimit is the grounding context size when the caller does
// not set one.
const defaultFragmentLimit = 5

// AskService builds grounding context for question answering: the
// fragments most similar to the question, with their source documents.
// Answer generation itself happens in the caller's LLM, not here.
type AskService struct {
	metadata driven.MetadataStore
	vectors  driven.VectorIndex
	embedder driven.EmbeddingProvider
}

// NewAskService creates a new ask service.
func NewAskService(
	metadata driven.MetadataStore,
	vectors driven.VectorIndex,
	embedder driven.EmbeddingProvider,
) *AskService {
	return &AskService{
		metadata: metadata,
		vectors:  vectors,
		embedder: embedder,
	}
}

// RelevantFragments retrieves the top fragments for a question, optionally
// scoped to one document.
func (s *AskService) RelevantFragments(ctx context.Context, question, documentID string, limit int) (*domain.RAGContext, error) {
	logger.Section("Ask")

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, &domain.ValidationError{Field: "question", Reason: "must not be empty"}
	}
	if limit <= 0 {
		limit = defaultFragmentLimit
	}

	// An unknown document ID is an error, never a silent fallback to the
	// whole corpus.
	var filter *driven.VectorFilter
	if documentID != "" {
		if _, err := s.metadata.GetDocument(ctx, documentID); err != nil {
			return nil, err
		}
		filter = &driven.VectorFilter{DocumentID: documentID}
	}

	queryVec, err := s.embedder.Vectorize(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}

	frags, err := s.vectors.QueryNearest(ctx, s.embedder.ProviderID(), queryVec, limit, filter)
	if err != nil {
		return nil, fmt.Errorf("similarity query: %w", err)
	}

	rag := &domain.RAGContext{}
	titles := make(map[string]string)
	for _, f := range frags {
		title, ok := titles[f.DocumentID]
		if !ok {
			doc, err := s.metadata.GetDocument(ctx, f.DocumentID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					continue
				}
				return nil, fmt.Errorf("loading document %s: %w", f.DocumentID, err)
			}
			title = doc.Title
			titles[f.DocumentID] = title
			rag.Sources = append(rag.Sources, domain.SourceEntry{
				DocumentID: f.DocumentID,
				Title:      title,
			})
		}
		rag.Fragments = append(rag.Fragments, domain.FragmentHit{
			DocumentID: f.DocumentID,
			Title:      title,
			Text:       f.Text,
			Score:      f.Similarity,
		})
	}

	logger.Debug("Built context: %d fragments from %d sources", len(rag.Fragments), len(rag.Sources))
	return rag, nil
}
