// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - MetadataStore: Document persistence plus the keyword/full-text index
//   - VectorIndex: Per-provider fragment vector storage and similarity search
//   - EmbeddingProvider: Text-to-vector computation (local or remote)
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
