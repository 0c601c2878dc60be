package driving

import (
	"context"

	"github.com/custodia-labs/archa/internal/core/domain"
)

// DocumentService exposes stored documents and their metadata.
type DocumentService interface {
	// Get retrieves full metadata for a document, without the body.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// Content returns the document body bounded to maxLen characters.
	// The boolean reports whether the body was truncated.
	Content(ctx context.Context, id string, maxLen int) (string, bool, error)

	// List returns documents matching the options together with the
	// category counts of the whole archive.
	List(ctx context.Context, opts domain.ListOptions) (*domain.DocumentListing, error)

	// Categories returns every category with its document count.
	Categories(ctx context.Context) ([]domain.CategoryCount, error)

	// UpdateMetadata applies a partial metadata update.
	UpdateMetadata(ctx context.Context, id string, patch domain.MetadataPatch) error
}
