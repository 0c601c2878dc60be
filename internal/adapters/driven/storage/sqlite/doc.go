// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements both store interfaces
// through a single database connection:
//
//   - MetadataStore: Document persistence plus the FTS5 keyword index
//   - VectorIndex: One fragment-vector table per embedding provider
//
// # Schema
//
// The base schema is managed through versioned migrations stored in the
// migrations/ directory. Vector partition tables are created on demand, one
// per embedding provider, and tracked in the vector_partitions registry.
//
// # Data Location
//
// By default, the database is stored at ~/.archa/data/archa.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
