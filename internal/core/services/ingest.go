package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/archa/internal/core/domain"
	"github.com/custodia-labs/archa/internal/core/ports/driven"
	"github.com/custodia-labs/archa/internal/core/ports/driving"
	"github.com/custodia-labs/archa/internal/fragmenter"
	"github.com/custodia-labs/archa/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// archaNamespace seeds UUIDv5 derivation of document IDs from source
// references, so re-archiving the same source overwrites instead of
// duplicating.
var archaNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("archa"))

// IngestService runs the dual-store write transaction: fragment, embed,
// write vectors, write metadata, with compensating rollback when the
// second write fails. Embedding happens before any persistent write, so an
// unavailable provider can never leave partial state behind.
type IngestService struct {
	metadata driven.MetadataStore
	vectors  driven.VectorIndex
	embedder driven.EmbeddingProvider
	splitter *fragmenter.Splitter

	// locks serializes ingest and delete per document ID so the rollback
	// logic cannot race with itself.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	metadata driven.MetadataStore,
	vectors driven.VectorIndex,
	embedder driven.EmbeddingProvider,
	splitter *fragmenter.Splitter,
) *IngestService {
	return &IngestService{
		metadata: metadata,
		vectors:  vectors,
		embedder: embedder,
		splitter: splitter,
		locks:    make(map[string]*sync.Mutex),
	}
}

// Save archives a normalized document in both stores.
func (s *IngestService) Save(ctx context.Context, req domain.IngestRequest) (*domain.IngestReceipt, error) {
	logger.Section("Ingest")

	// Validation failures are rejected before any write.
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := s.documentID(req.Document)
	logger.Debug("Document ID: %s (source %q)", id, req.Document.SourceRef)

	unlock := s.lockDocument(id)
	defer unlock()

	// Fragment the body. Empty text is allowed and yields no vectors.
	fragments := s.splitter.Split(id, req.Document.Text)
	logger.Debug("Fragmented into %d fragments", len(fragments))

	// Embed every fragment up front. Any failure aborts before a single
	// persistent write has happened.
	records, err := s.embedFragments(ctx, fragments)
	if err != nil {
		return nil, &domain.StageError{Stage: domain.StageEmbedded, DocumentID: id, Err: err}
	}

	providerID := s.embedder.ProviderID()
	if err := s.vectors.EnsurePartition(ctx, providerID, s.embedder.Dimensions()); err != nil {
		return nil, &domain.StageError{Stage: domain.StageVectorWritten, DocumentID: id, Err: err}
	}

	// Re-ingest under the same ID: clear the active partition's records
	// first so stale fragments of a longer previous body cannot survive.
	if err := s.vectors.DeleteByDocument(ctx, providerID, id); err != nil {
		return nil, &domain.StageError{Stage: domain.StageVectorWritten, DocumentID: id, Err: err}
	}
	if err := s.vectors.Upsert(ctx, providerID, records); err != nil {
		return nil, &domain.StageError{Stage: domain.StageVectorWritten, DocumentID: id, Err: err}
	}
	logger.Debug("Wrote %d embedding records to partition %s", len(records), providerID)

	doc := s.buildDocument(id, req)
	if err := s.metadata.SaveDocument(ctx, doc); err != nil {
		// Compensating rollback: remove the just-written vectors so no
		// orphaned records outlive the failed metadata write.
		logger.Warn("Metadata write failed for %s, rolling back vectors: %v", id, err)
		if cleanupErr := s.vectors.DeleteByDocument(ctx, providerID, id); cleanupErr != nil {
			return nil, &domain.ConsistencyError{DocumentID: id, Cause: err, Cleanup: cleanupErr}
		}
		return nil, &domain.StageError{Stage: domain.StageMetadataWritten, DocumentID: id, Err: err}
	}

	logger.Info("Archived %q (%s)", doc.Title, id)
	return &domain.IngestReceipt{
		ID:            id,
		Title:         doc.Title,
		Categories:    doc.Categories,
		ContentLength: len([]rune(doc.RawText)),
	}, nil
}

// Delete removes a document from both stores. Vectors go first: metadata
// without vectors looks like a silently un-searchable document, which is
// worse than unreachable vectors, so metadata deletion is ordered last.
func (s *IngestService) Delete(ctx context.Context, id string) error {
	unlock := s.lockDocument(id)
	defer unlock()

	if _, err := s.metadata.GetDocument(ctx, id); err != nil {
		return err
	}

	// Purge every partition, not only the active one, so a later
	// provider switch cannot resurface fragments of a deleted document.
	partitions, err := s.vectors.Partitions(ctx)
	if err != nil {
		return &domain.StageError{Stage: domain.StageVectorWritten, DocumentID: id, Err: err}
	}
	for _, providerID := range partitions {
		if err := s.vectors.DeleteByDocument(ctx, providerID, id); err != nil {
			return &domain.StageError{
				Stage:      domain.StageVectorWritten,
				DocumentID: id,
				Err:        fmt.Errorf("deleting vectors from partition %s: %w", providerID, err),
			}
		}
	}

	if err := s.metadata.DeleteDocument(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return &domain.StageError{Stage: domain.StageMetadataWritten, DocumentID: id, Err: err}
	}

	logger.Info("Deleted document %s", id)
	return nil
}

// embedFragments vectorizes all fragments in one batch and binds the
// vectors to embedding records for the active partition.
func (s *IngestService) embedFragments(
	ctx context.Context, fragments []domain.Fragment,
) ([]domain.EmbeddingRecord, error) {
	if len(fragments) == 0 {
		return nil, nil
	}

	texts := make([]string, len(fragments))
	for i, f := range fragments {
		texts[i] = f.Text
	}

	vectors, err := s.embedder.VectorizeBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding %d fragments: %w", len(fragments), err)
	}
	if len(vectors) != len(fragments) {
		return nil, fmt.Errorf("expected %d vectors, got %d", len(fragments), len(vectors))
	}

	providerID := s.embedder.ProviderID()
	records := make([]domain.EmbeddingRecord, len(fragments))
	for i, f := range fragments {
		records[i] = domain.EmbeddingRecord{
			FragmentID: f.ID,
			DocumentID: f.DocumentID,
			Ordinal:    f.Ordinal,
			Text:       f.Text,
			CharStart:  f.CharStart,
			CharEnd:    f.CharEnd,
			Vector:     vectors[i],
			ProviderID: providerID,
		}
	}
	return records, nil
}

// buildDocument assembles the metadata row from the ingest request.
func (s *IngestService) buildDocument(id string, req domain.IngestRequest) *domain.Document {
	kind := req.Document.SourceKind
	if kind == "" {
		kind = domain.SourceText
	}

	return &domain.Document{
		ID:            id,
		Title:         req.Document.Title,
		RawText:       req.Document.Text,
		SourceKind:    kind,
		SourceRef:     req.Document.SourceRef,
		Author:        req.Document.Author,
		PublishedDate: req.Document.PublishedDate,
		Categories:    req.Categories,
		Summary:       req.Summary,
		Keywords:      req.Keywords,
		Tags:          req.Tags,
		CreatedAt:     time.Now().UTC(),
	}
}

// documentID derives the document ID. Documents with a source reference
// get a deterministic UUIDv5 so re-archiving the same source overwrites.
func (s *IngestService) documentID(doc domain.NormalizedDocument) string {
	if doc.SourceRef != "" {
		return uuid.NewSHA1(archaNamespace, []byte(doc.SourceRef)).String()
	}
	return uuid.New().String()
}

// lockDocument acquires the per-document mutex and returns its release.
func (s *IngestService) lockDocument(id string) func() {
	s.mu.Lock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
