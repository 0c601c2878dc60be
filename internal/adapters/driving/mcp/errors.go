// Package mcp provides an MCP (Model Context Protocol) server adapter for
// Archa. It lets AI assistants like Claude archive, search and read
// documents in the local store.
package mcp

import "errors"

// Errors returned when required services are missing from Ports.
var (
	// ErrMissingSearchService is returned when the search service is not provided.
	ErrMissingSearchService = errors.New("mcp: search service is required")

	// ErrMissingIngestService is returned when the ingest service is not provided.
	ErrMissingIngestService = errors.New("mcp: ingest service is required")

	// ErrMissingDocumentService is returned when the document service is not provided.
	ErrMissingDocumentService = errors.New("mcp: document service is required")
)
