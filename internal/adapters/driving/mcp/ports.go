package mcp

import (
	"github.com/custodia-labs/archa/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Ingest archives and deletes documents.
	Ingest driving.IngestService

	// Search provides hybrid search.
	Search driving.SearchService

	// Ask retrieves grounding fragments for questions.
	Ask driving.AskService

	// Document exposes stored documents and metadata.
	Document driving.DocumentService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Ingest == nil {
		return ErrMissingIngestService
	}
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Document == nil {
		return ErrMissingDocumentService
	}
	// Ask is optional; get_relevant_fragments reports an error at call time.
	return nil
}
