package driving

import (
	"context"

	"github.com/custodia-labs/archa/internal/core/domain"
)

// IngestService archives documents into both stores and removes them again.
type IngestService interface {
	// Save runs the full ingest transaction: validate, fragment, embed,
	// write vectors, write metadata. On a metadata write failure the
	// just-written vectors are rolled back.
	Save(ctx context.Context, req domain.IngestRequest) (*domain.IngestReceipt, error)

	// Delete removes a document from both stores: vectors first, then the
	// metadata row. Returns domain.ErrNotFound for unknown IDs.
	Delete(ctx context.Context, id string) error
}
