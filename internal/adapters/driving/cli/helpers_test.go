package cli

import (
	"context"
	"time"

	"github.com/custodia-labs/archa/internal/core/domain"
)

// mockIngest implements driving.IngestService for command tests.
type mockIngest struct {
	saveReceipt *domain.IngestReceipt
	saveErr     error
	deleteErr   error
	deletedID   string
}

func (m *mockIngest) Save(_ context.Context, req domain.IngestRequest) (*domain.IngestReceipt, error) {
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	if m.saveReceipt != nil {
		return m.saveReceipt, nil
	}
	return &domain.IngestReceipt{
		ID:         "doc-1",
		Title:      req.Document.Title,
		Categories: req.Categories,
	}, nil
}

func (m *mockIngest) Delete(_ context.Context, id string) error {
	m.deletedID = id
	return m.deleteErr
}

// mockSearch implements driving.SearchService.
type mockSearch struct {
	hits []domain.DocumentHit
	err  error
}

func (m *mockSearch) Search(_ context.Context, _ string, _ domain.SearchOptions) ([]domain.DocumentHit, error) {
	return m.hits, m.err
}

// mockAsk implements driving.AskService.
type mockAsk struct {
	rag *domain.RAGContext
	err error
}

func (m *mockAsk) RelevantFragments(_ context.Context, _, _ string, _ int) (*domain.RAGContext, error) {
	return m.rag, m.err
}

// mockDocument implements driving.DocumentService.
type mockDocument struct {
	doc       *domain.Document
	content   string
	truncated bool
	listing   *domain.DocumentListing
	cats      []domain.CategoryCount
	err       error
	patched   *domain.MetadataPatch
}

func (m *mockDocument) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.doc, m.err
}

func (m *mockDocument) Content(_ context.Context, _ string, _ int) (string, bool, error) {
	return m.content, m.truncated, m.err
}

func (m *mockDocument) List(_ context.Context, _ domain.ListOptions) (*domain.DocumentListing, error) {
	return m.listing, m.err
}

func (m *mockDocument) Categories(_ context.Context) ([]domain.CategoryCount, error) {
	return m.cats, m.err
}

func (m *mockDocument) UpdateMetadata(_ context.Context, _ string, patch domain.MetadataPatch) error {
	m.patched = &patch
	return m.err
}

// mockSettings implements driving.SettingsService.
type mockSettings struct {
	settings *domain.AppSettings
	err      error
}

func (m *mockSettings) Get() (*domain.AppSettings, error) {
	if m.settings == nil {
		s := domain.DefaultAppSettings()
		return &s, m.err
	}
	return m.settings, m.err
}

func (m *mockSettings) Save(settings *domain.AppSettings) error {
	m.settings = settings
	return m.err
}

func (m *mockSettings) SetEmbeddingProvider(provider domain.ProviderKind, apiKey string) error {
	s, _ := m.Get()
	s.Embedding.Provider = provider
	s.Embedding.APIKey = apiKey
	m.settings = s
	return m.err
}

func (m *mockSettings) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// setupTestServices wires mock services and returns a cleanup that
// restores the previous wiring.
func setupTestServices() func() {
	prev := Services{
		Ingest:   ingestService,
		Search:   searchService,
		Ask:      askService,
		Document: documentService,
		Settings: settingsService,
	}
	SetServices(Services{
		Ingest: &mockIngest{},
		Search: &mockSearch{hits: []domain.DocumentHit{
			{ID: "doc-1", Title: "First Result", Score: 0.91, Excerpt: "matching text"},
		}},
		Ask: &mockAsk{rag: &domain.RAGContext{
			Fragments: []domain.FragmentHit{{DocumentID: "doc-1", Title: "First Result", Text: "fragment", Score: 0.8}},
			Sources:   []domain.SourceEntry{{DocumentID: "doc-1", Title: "First Result"}},
		}},
		Document: &mockDocument{
			doc: &domain.Document{
				ID: "doc-1", Title: "First Result", Categories: []string{"notes"},
				SourceKind: domain.SourceText, CreatedAt: time.Now(),
			},
			content: "document body",
			listing: &domain.DocumentListing{
				Categories: []domain.CategoryCount{{Name: "notes", Count: 1}},
				Documents: []domain.DocumentSummary{
					{ID: "doc-1", Title: "First Result", Categories: []string{"notes"}, CreatedAt: time.Now()},
				},
			},
			cats: []domain.CategoryCount{{Name: "notes", Count: 1}},
		},
		Settings: &mockSettings{},
	})
	return func() { SetServices(prev) }
}
