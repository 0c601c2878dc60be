package mcp

import (
	"context"

	"github.com/custodia-labs/archa/internal/core/domain"
)

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	receipt   *domain.IngestReceipt
	err       error
	savedReq  *domain.IngestRequest
	deletedID string
}

func (m *mockIngestService) Save(_ context.Context, req domain.IngestRequest) (*domain.IngestReceipt, error) {
	m.savedReq = &req
	if m.err != nil {
		return nil, m.err
	}
	if m.receipt != nil {
		return m.receipt, nil
	}
	return &domain.IngestReceipt{
		ID:            "doc-1",
		Title:         req.Document.Title,
		Categories:    req.Categories,
		ContentLength: len([]rune(req.Document.Text)),
	}, nil
}

func (m *mockIngestService) Delete(_ context.Context, id string) error {
	m.deletedID = id
	return m.err
}

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	hits []domain.DocumentHit
	err  error
}

func (m *mockSearchService) Search(
	_ context.Context,
	_ string,
	_ domain.SearchOptions,
) ([]domain.DocumentHit, error) {
	return m.hits, m.err
}

// mockAskService is a mock implementation of driving.AskService.
type mockAskService struct {
	rag *domain.RAGContext
	err error
}

func (m *mockAskService) RelevantFragments(
	_ context.Context,
	_, _ string,
	_ int,
) (*domain.RAGContext, error) {
	return m.rag, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	doc       *domain.Document
	content   string
	truncated bool
	listing   *domain.DocumentListing
	cats      []domain.CategoryCount
	err       error
	patch     *domain.MetadataPatch
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.doc, m.err
}

func (m *mockDocumentService) Content(_ context.Context, _ string, _ int) (string, bool, error) {
	return m.content, m.truncated, m.err
}

func (m *mockDocumentService) List(_ context.Context, _ domain.ListOptions) (*domain.DocumentListing, error) {
	return m.listing, m.err
}

func (m *mockDocumentService) Categories(_ context.Context) ([]domain.CategoryCount, error) {
	return m.cats, m.err
}

func (m *mockDocumentService) UpdateMetadata(_ context.Context, _ string, patch domain.MetadataPatch) error {
	m.patch = &patch
	return m.err
}

// testPorts returns a fully-populated Ports value for handler tests.
func testPorts() *Ports {
	return &Ports{
		Ingest:   &mockIngestService{},
		Search:   &mockSearchService{},
		Ask:      &mockAskService{rag: &domain.RAGContext{}},
		Document: &mockDocumentService{doc: &domain.Document{ID: "doc-1", Title: "Test Doc"}},
	}
}
