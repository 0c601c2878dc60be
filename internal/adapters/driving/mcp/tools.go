package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/archa/internal/core/domain"
)

// SaveDocumentInput is the input schema for the save_document tool.
type SaveDocumentInput struct {
	Title         string   `json:"title" jsonschema:"document title"`
	Content       string   `json:"content" jsonschema:"full plain-text body of the document"`
	Categories    []string `json:"categories" jsonschema:"categories to file the document under"`
	Author        string   `json:"author,omitempty" jsonschema:"document author"`
	PublishedDate string   `json:"published_date,omitempty" jsonschema:"publication date in YYYY-MM-DD format"`
	SourceRef     string   `json:"source_ref,omitempty" jsonschema:"origin reference such as a URL or file path"`
	SourceKind    string   `json:"source_kind,omitempty" jsonschema:"how the content was obtained: web, pdf or text (default text)"`
	Summary       string   `json:"summary,omitempty" jsonschema:"short summary"`
	Keywords      string   `json:"keywords,omitempty" jsonschema:"comma-separated keywords"`
	Tags          string   `json:"tags,omitempty" jsonschema:"comma-separated tags"`
}

// SaveDocumentOutput is the output schema for the save_document tool.
type SaveDocumentOutput struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Categories    []string `json:"categories"`
	ContentLength int      `json:"content_length"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query    string `json:"query" jsonschema:"the search query"`
	Category string `json:"category,omitempty" jsonschema:"restrict results to one category"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of results (default 10)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Score      float64  `json:"score"`
	Author     string   `json:"author,omitempty"`
	Categories []string `json:"categories"`
	SourceRef  string   `json:"source_ref,omitempty"`
	Excerpt    string   `json:"excerpt,omitempty"`
}

// GetDocumentInput is the input schema for the get_document tool.
type GetDocumentInput struct {
	ID string `json:"id" jsonschema:"the document ID"`
}

// GetDocumentOutput is the output schema for the get_document tool.
type GetDocumentOutput struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Author        string   `json:"author,omitempty"`
	PublishedDate string   `json:"published_date,omitempty"`
	SourceRef     string   `json:"source_ref,omitempty"`
	SourceKind    string   `json:"source_kind"`
	Categories    []string `json:"categories"`
	Summary       string   `json:"summary,omitempty"`
	Keywords      string   `json:"keywords,omitempty"`
	Tags          string   `json:"tags,omitempty"`
	Description   string   `json:"description,omitempty"`
	CreatedAt     string   `json:"created_at"`
}

// ReadContentInput is the input schema for the read_content tool.
type ReadContentInput struct {
	ID        string `json:"id" jsonschema:"the document ID"`
	MaxLength int    `json:"max_length,omitempty" jsonschema:"maximum characters to return (default 3000)"`
}

// ReadContentOutput is the output schema for the read_content tool.
type ReadContentOutput struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Truncated bool   `json:"truncated"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct {
	Category string `json:"category,omitempty" jsonschema:"restrict the listing to one category"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of documents (default 20)"`
	Sort     string `json:"sort,omitempty" jsonschema:"sort key: created_at, title or published_date"`
}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Categories []CategoryOutput      `json:"categories"`
	Documents  []DocumentEntryOutput `json:"documents"`
}

// CategoryOutput is a category with its document count.
type CategoryOutput struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DocumentEntryOutput is one entry of a document listing.
type DocumentEntryOutput struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Categories []string `json:"categories"`
	Author     string   `json:"author,omitempty"`
	CreatedAt  string   `json:"created_at"`
}

// ListCategoriesInput is the input schema for the list_categories tool.
type ListCategoriesInput struct{}

// ListCategoriesOutput is the output schema for the list_categories tool.
type ListCategoriesOutput struct {
	Categories []CategoryOutput `json:"categories"`
}

// RelevantFragmentsInput is the input schema for the get_relevant_fragments tool.
type RelevantFragmentsInput struct {
	Question   string `json:"question" jsonschema:"the question to find grounding context for"`
	DocumentID string `json:"document_id,omitempty" jsonschema:"restrict retrieval to one document"`
	Limit      int    `json:"limit,omitempty" jsonschema:"maximum number of fragments (default 5)"`
}

// RelevantFragmentsOutput is the output schema for the get_relevant_fragments tool.
type RelevantFragmentsOutput struct {
	Chunks  []FragmentOutput `json:"chunks"`
	Sources []SourceOutput   `json:"sources"`
}

// FragmentOutput is one retrieved fragment.
type FragmentOutput struct {
	DocumentID string  `json:"document_id"`
	Title      string  `json:"title"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
}

// SourceOutput identifies a document contributing fragments.
type SourceOutput struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// UpdateMetadataInput is the input schema for the update_metadata tool.
type UpdateMetadataInput struct {
	ID          string  `json:"id" jsonschema:"the document ID"`
	Summary     *string `json:"summary,omitempty" jsonschema:"new summary"`
	Keywords    *string `json:"keywords,omitempty" jsonschema:"new comma-separated keywords"`
	Tags        *string `json:"tags,omitempty" jsonschema:"new comma-separated tags"`
	Description *string `json:"description,omitempty" jsonschema:"new description"`
}

// UpdateMetadataOutput is the output schema for the update_metadata tool.
type UpdateMetadataOutput struct {
	Success bool `json:"success"`
}

// DeleteDocumentInput is the input schema for the delete_document tool.
type DeleteDocumentInput struct {
	ID string `json:"id" jsonschema:"the document ID"`
}

// DeleteDocumentOutput is the output schema for the delete_document tool.
type DeleteDocumentOutput struct {
	Success bool `json:"success"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "save_document",
		Description: "Archive a document into the local store for later retrieval",
	}, s.handleSaveDocument)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search the archive with blended keyword and semantic ranking",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_document",
		Description: "Get full metadata for an archived document",
	}, s.handleGetDocument)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "read_content",
		Description: "Read the text content of an archived document",
	}, s.handleReadContent)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List archived documents with category counts",
	}, s.handleListDocuments)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_categories",
		Description: "List all categories with their document counts",
	}, s.handleListCategories)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_relevant_fragments",
		Description: "Retrieve the archived text fragments most relevant to a question, for grounding an answer",
	}, s.handleRelevantFragments)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "update_metadata",
		Description: "Update summary, keywords, tags or description of an archived document",
	}, s.handleUpdateMetadata)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_document",
		Description: "Delete a document from the archive",
	}, s.handleDeleteDocument)
}

func (s *Server) handleSaveDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SaveDocumentInput,
) (*mcp.CallToolResult, SaveDocumentOutput, error) {
	kind := domain.SourceText
	if input.SourceKind != "" {
		kind = domain.SourceKind(input.SourceKind)
	}

	var published *time.Time
	if input.PublishedDate != "" {
		t, err := time.Parse("2006-01-02", input.PublishedDate)
		if err != nil {
			return nil, SaveDocumentOutput{}, &domain.ValidationError{
				Field:  "published_date",
				Reason: "must be YYYY-MM-DD",
			}
		}
		published = &t
	}

	receipt, err := s.ports.Ingest.Save(ctx, domain.IngestRequest{
		Document: domain.NormalizedDocument{
			Title:         input.Title,
			Author:        input.Author,
			PublishedDate: published,
			SourceRef:     input.SourceRef,
			SourceKind:    kind,
			Text:          input.Content,
		},
		Categories: input.Categories,
		Summary:    input.Summary,
		Keywords:   input.Keywords,
		Tags:       input.Tags,
	})
	if err != nil {
		return nil, SaveDocumentOutput{}, err
	}

	return nil, SaveDocumentOutput{
		ID:            receipt.ID,
		Title:         receipt.Title,
		Categories:    receipt.Categories,
		ContentLength: receipt.ContentLength,
	}, nil
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	hits, err := s.ports.Search.Search(ctx, input.Query, domain.SearchOptions{
		Category: input.Category,
		Limit:    limit,
	})
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(hits)),
		Count:   len(hits),
	}
	for i, h := range hits {
		output.Results[i] = SearchResultOutput{
			ID:         h.ID,
			Title:      h.Title,
			Score:      h.Score,
			Author:     h.Author,
			Categories: h.Categories,
			SourceRef:  h.SourceRef,
			Excerpt:    h.Excerpt,
		}
	}
	return nil, output, nil
}

func (s *Server) handleGetDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetDocumentInput,
) (*mcp.CallToolResult, GetDocumentOutput, error) {
	doc, err := s.ports.Document.Get(ctx, input.ID)
	if err != nil {
		return nil, GetDocumentOutput{}, err
	}

	out := GetDocumentOutput{
		ID:          doc.ID,
		Title:       doc.Title,
		Author:      doc.Author,
		SourceRef:   doc.SourceRef,
		SourceKind:  doc.SourceKind.String(),
		Categories:  doc.Categories,
		Summary:     doc.Summary,
		Keywords:    doc.Keywords,
		Tags:        doc.Tags,
		Description: doc.Description,
		CreatedAt:   doc.CreatedAt.Format(time.RFC3339),
	}
	if doc.PublishedDate != nil {
		out.PublishedDate = doc.PublishedDate.Format("2006-01-02")
	}
	return nil, out, nil
}

func (s *Server) handleReadContent(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ReadContentInput,
) (*mcp.CallToolResult, ReadContentOutput, error) {
	doc, err := s.ports.Document.Get(ctx, input.ID)
	if err != nil {
		return nil, ReadContentOutput{}, err
	}

	content, truncated, err := s.ports.Document.Content(ctx, input.ID, input.MaxLength)
	if err != nil {
		return nil, ReadContentOutput{}, err
	}

	return nil, ReadContentOutput{
		ID:        input.ID,
		Title:     doc.Title,
		Content:   content,
		Truncated: truncated,
	}, nil
}

func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	listing, err := s.ports.Document.List(ctx, domain.ListOptions{
		Category: input.Category,
		Limit:    input.Limit,
		SortKey:  domain.SortKey(input.Sort),
	})
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	out := ListDocumentsOutput{
		Categories: make([]CategoryOutput, len(listing.Categories)),
		Documents:  make([]DocumentEntryOutput, len(listing.Documents)),
	}
	for i, c := range listing.Categories {
		out.Categories[i] = CategoryOutput{Name: c.Name, Count: c.Count}
	}
	for i, d := range listing.Documents {
		out.Documents[i] = DocumentEntryOutput{
			ID:         d.ID,
			Title:      d.Title,
			Categories: d.Categories,
			Author:     d.Author,
			CreatedAt:  d.CreatedAt.Format(time.RFC3339),
		}
	}
	return nil, out, nil
}

func (s *Server) handleListCategories(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListCategoriesInput,
) (*mcp.CallToolResult, ListCategoriesOutput, error) {
	cats, err := s.ports.Document.Categories(ctx)
	if err != nil {
		return nil, ListCategoriesOutput{}, err
	}

	out := ListCategoriesOutput{Categories: make([]CategoryOutput, len(cats))}
	for i, c := range cats {
		out.Categories[i] = CategoryOutput{Name: c.Name, Count: c.Count}
	}
	return nil, out, nil
}

func (s *Server) handleRelevantFragments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RelevantFragmentsInput,
) (*mcp.CallToolResult, RelevantFragmentsOutput, error) {
	if s.ports.Ask == nil {
		return nil, RelevantFragmentsOutput{}, errors.New("retrieval service not configured")
	}

	rag, err := s.ports.Ask.RelevantFragments(ctx, input.Question, input.DocumentID, input.Limit)
	if err != nil {
		return nil, RelevantFragmentsOutput{}, err
	}

	out := RelevantFragmentsOutput{
		Chunks:  make([]FragmentOutput, len(rag.Fragments)),
		Sources: make([]SourceOutput, len(rag.Sources)),
	}
	for i, f := range rag.Fragments {
		out.Chunks[i] = FragmentOutput{
			DocumentID: f.DocumentID,
			Title:      f.Title,
			Text:       f.Text,
			Score:      f.Score,
		}
	}
	for i, src := range rag.Sources {
		out.Sources[i] = SourceOutput{ID: src.DocumentID, Title: src.Title}
	}
	return nil, out, nil
}

func (s *Server) handleUpdateMetadata(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UpdateMetadataInput,
) (*mcp.CallToolResult, UpdateMetadataOutput, error) {
	err := s.ports.Document.UpdateMetadata(ctx, input.ID, domain.MetadataPatch{
		Summary:     input.Summary,
		Keywords:    input.Keywords,
		Tags:        input.Tags,
		Description: input.Description,
	})
	if err != nil {
		return nil, UpdateMetadataOutput{}, err
	}
	return nil, UpdateMetadataOutput{Success: true}, nil
}

func (s *Server) handleDeleteDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DeleteDocumentInput,
) (*mcp.CallToolResult, DeleteDocumentOutput, error) {
	if err := s.ports.Ingest.Delete(ctx, input.ID); err != nil {
		return nil, DeleteDocumentOutput{}, err
	}
	return nil, DeleteDocumentOutput{Success: true}, nil
}
