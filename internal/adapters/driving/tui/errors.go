// Package tui provides the interactive archive browser.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import "errors"

// Errors returned when required services are missing from Ports.
var (
	// ErrMissingSearchService is returned when the search service is not provided.
	ErrMissingSearchService = errors.New("tui: search service is required")

	// ErrMissingDocumentService is returned when the document service is not provided.
	ErrMissingDocumentService = errors.New("tui: document service is required")
)
