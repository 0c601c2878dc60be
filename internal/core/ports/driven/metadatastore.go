package driven

import (
	"context"

	"github.com/custodia-labs/archa/internal/core/domain"
)

// MetadataStore persists documents and maintains a keyword/full-text index
// over title, body and keywords. Backed by SQLite with FTS5.
type MetadataStore interface {
	// SaveDocument stores or updates a document and its index row.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	// Returns domain.ErrNotFound for unknown IDs.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// DeleteDocument removes a document and its index row.
	// Returns domain.ErrNotFound for unknown IDs.
	DeleteDocument(ctx context.Context, id string) error

	// ListDocuments returns documents matching the options, without bodies.
	ListDocuments(ctx context.Context, opts domain.ListOptions) ([]domain.DocumentSummary, error)

	// SearchKeyword runs a full-text search over title, body and keywords.
	// Scores are positive and monotonic with relevance; an exact title
	// match always outranks a body-only match. Category, when non-empty,
	// restricts candidates before ranking.
	SearchKeyword(ctx context.Context, query, category string, limit int) ([]KeywordHit, error)

	// ListCategories returns every category with its document count,
	// sorted by name.
	ListCategories(ctx context.Context) ([]domain.CategoryCount, error)

	// DocumentIDsByCategory returns the IDs of documents carrying the
	// category. Used to pre-filter vector search candidates.
	DocumentIDsByCategory(ctx context.Context, category string) ([]string, error)

	// UpdateMetadata applies a partial metadata update.
	// Returns domain.ErrNotFound for unknown IDs.
	UpdateMetadata(ctx context.Context, id string, patch domain.MetadataPatch) error

	// Close releases resources.
	Close() error
}

// KeywordHit is a keyword search result at document granularity.
type KeywordHit struct {
	// DocumentID is the matched document.
	DocumentID string

	// Score is the lexical relevance score. Higher is better.
	Score float64

	// Snippet is a keyword-matched excerpt from the body, if available.
	Snippet string

	// TitleMatch marks a document whose full title equals the query.
	// Such hits must rank above every body-only match, and the flag lets
	// the blending layer preserve that guarantee after normalization.
	TitleMatch bool
}
