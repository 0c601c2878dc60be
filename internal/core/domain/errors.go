package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested document does not exist.
	// Surfaced directly to the caller, never retried.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	// Rejected before any write, never partially applied.
	ErrInvalidInput = errors.New("invalid input")

	// ErrProviderUnavailable indicates the embedding backend is
	// unreachable or timed out. Retryable by the caller.
	ErrProviderUnavailable = errors.New("embedding provider unavailable")

	// ErrAuthRequired indicates a missing or invalid credential for a
	// remote provider. Fatal for the call, not retried automatically.
	ErrAuthRequired = errors.New("authentication required")

	// ErrConsistency indicates a compensating action failed and the two
	// stores may disagree. The most severe class: the operation is
	// reported as failed even though cleanup is incomplete.
	ErrConsistency = errors.New("store consistency violation")
)

// IngestStage names a step of the dual-store write transaction.
// Failures carry the stage so partial state can be recovered manually.
type IngestStage string

// Ingest transaction stages, in order.
const (
	StageNormalized      IngestStage = "normalized"
	StageFragmented      IngestStage = "fragmented"
	StageEmbedded        IngestStage = "embedded"
	StageVectorWritten   IngestStage = "vector_written"
	StageMetadataWritten IngestStage = "metadata_written"
)

// String returns the stage name.
func (s IngestStage) String() string {
	return string(s)
}

// ValidationError reports input rejected before any write.
type ValidationError struct {
	// Field is the offending input field.
	Field string

	// Reason says what is wrong with it.
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is reports ErrInvalidInput so callers can match the class.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// StageError tags a store-boundary failure with the transaction stage and
// the document it happened to.
type StageError struct {
	// Stage is the last stage the transaction was attempting.
	Stage IngestStage

	// DocumentID is the document being written or deleted.
	DocumentID string

	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed for document %s: %v", e.Stage, e.DocumentID, e.Err)
}

// Unwrap exposes the underlying failure for errors.Is/As.
func (e *StageError) Unwrap() error {
	return e.Err
}

// ConsistencyError reports a failed compensating action: the triggering
// failure and the cleanup failure together, so manual recovery has both.
type ConsistencyError struct {
	// DocumentID is the document whose stores may now disagree.
	DocumentID string

	// Cause is the failure that triggered the compensating action.
	Cause error

	// Cleanup is the failure of the compensating action itself.
	Cleanup error
}

// Error implements the error interface.
func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("consistency violation for document %s: %v (cleanup failed: %v)",
		e.DocumentID, e.Cause, e.Cleanup)
}

// Unwrap exposes the triggering failure.
func (e *ConsistencyError) Unwrap() error {
	return e.Cause
}

// Is reports ErrConsistency so callers can match the class.
func (e *ConsistencyError) Is(target error) bool {
	return target == ErrConsistency
}
