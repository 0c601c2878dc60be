package tui

import (
	"github.com/custodia-labs/archa/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the browser.
// The browser is read-only: it searches and reads, never writes.
type Ports struct {
	// Search provides hybrid search.
	Search driving.SearchService

	// Document exposes stored documents and their content.
	Document driving.DocumentService
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Document == nil {
		return ErrMissingDocumentService
	}
	return nil
}
