package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/archa/internal/core/domain"
	"github.com/custodia-labs/archa/internal/core/ports/driven"
	"github.com/custodia-labs/archa/internal/core/ports/driving"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DefaultContentLimit bounds the body returned by Content when the caller
// does not set a limit. Sized to spare LLM clients from accidentally
// pulling an entire book into context.
const DefaultContentLimit = 3000

// DocumentService reads stored documents and applies metadata updates.
// Content mutation always goes through the ingest service; this one only
// touches the metadata store.
type DocumentService struct {
	metadata driven.MetadataStore
}

// NewDocumentService creates a new document service.
func NewDocumentService(metadata driven.MetadataStore) *DocumentService {
	return &DocumentService{metadata: metadata}
}

// Get retrieves a document's metadata without the body.
func (s *DocumentService) Get(ctx context.Context, id string) (*domain.Document, error) {
	doc, err := s.metadata.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	doc.RawText = ""
	return doc, nil
}

// Content returns the document body bounded to maxLen runes, reporting
// whether truncation happened.
func (s *DocumentService) Content(ctx context.Context, id string, maxLen int) (string, bool, error) {
	doc, err := s.metadata.GetDocument(ctx, id)
	if err != nil {
		return "", false, err
	}
	if maxLen <= 0 {
		maxLen = DefaultContentLimit
	}

	runes := []rune(doc.RawText)
	if len(runes) <= maxLen {
		return doc.RawText, false, nil
	}
	return string(runes[:maxLen]), true, nil
}

// List returns the matching documents plus the category counts of the
// whole archive, so a client can render both in one call.
func (s *DocumentService) List(ctx context.Context, opts domain.ListOptions) (*domain.DocumentListing, error) {
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.SortKey == "" {
		opts.SortKey = domain.SortByCreatedAt
	}
	if !opts.SortKey.IsValid() {
		return nil, &domain.ValidationError{Field: "sortKey", Reason: "unknown key " + opts.SortKey.String()}
	}

	docs, err := s.metadata.ListDocuments(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	cats, err := s.metadata.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}

	return &domain.DocumentListing{
		Categories: cats,
		Documents:  docs,
	}, nil
}

// Categories returns every category with its document count.
func (s *DocumentService) Categories(ctx context.Context) ([]domain.CategoryCount, error) {
	return s.metadata.ListCategories(ctx)
}

// UpdateMetadata applies a partial metadata update. An empty patch is
// rejected rather than silently succeeding.
func (s *DocumentService) UpdateMetadata(ctx context.Context, id string, patch domain.MetadataPatch) error {
	if patch.IsEmpty() {
		return &domain.ValidationError{Field: "patch", Reason: "no fields to update"}
	}
	return s.metadata.UpdateMetadata(ctx, id, patch)
}
