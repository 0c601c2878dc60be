// Package domain defines the core business entities for Archa.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An archived document with metadata
//   - Fragment: An overlapping slice of document text, the unit of retrieval
//   - EmbeddingRecord: A fragment vector bound to a provider partition
//   - NormalizedDocument: Extracted content handed to the engine for ingest
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
