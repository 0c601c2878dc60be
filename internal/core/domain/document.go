package domain

import (
	"strings"
	"time"
)

// SourceKind identifies where a document's content came from.
type SourceKind string

// Available source kinds.
const (
	// SourceWeb is content extracted from a web page.
	SourceWeb SourceKind = "web"

	// SourcePDF is content extracted from a PDF file.
	SourcePDF SourceKind = "pdf"

	// SourceText is plain text or Markdown handed over verbatim.
	SourceText SourceKind = "text"
)

// IsValid returns true if the source kind is recognised.
func (k SourceKind) IsValid() bool {
	switch k {
	case SourceWeb, SourcePDF, SourceText:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k SourceKind) String() string {
	return string(k)
}

// NormalizedDocument is the extracted form of a document handed to the
// engine for ingest. Content extraction (fetching a URL, parsing a PDF)
// happens outside the engine; it only ever sees this value.
type NormalizedDocument struct {
	// Title is the human-readable title.
	Title string

	// Author is the document author, if known.
	Author string

	// PublishedDate is the original publication date, if known.
	PublishedDate *time.Time

	// SourceRef is the origin reference (URL or file path).
	SourceRef string

	// SourceKind says how the content was obtained.
	SourceKind SourceKind

	// Text is the full plain-text body.
	Text string
}

// Document represents an archived document with metadata.
// It is owned exclusively by the metadata store; the vector index
// holds only back-references to its ID.
type Document struct {
	// ID is the unique identifier. Immutable once assigned, and the
	// sole join key between the metadata store and the vector index.
	ID string

	// Title is the human-readable title.
	Title string

	// RawText is the full plain-text body as ingested.
	RawText string

	// SourceKind says how the content was obtained.
	SourceKind SourceKind

	// SourceRef is the origin reference (URL or file path).
	SourceRef string

	// Author is the document author, if known.
	Author string

	// PublishedDate is the original publication date, if known.
	PublishedDate *time.Time

	// Categories are the user-assigned categories. Never empty for a
	// stored document.
	Categories []string

	// Summary is an optional short summary.
	Summary string

	// Keywords is an optional comma-separated keyword list.
	Keywords string

	// Tags is an optional comma-separated tag list.
	Tags string

	// Description is an optional free-form description.
	Description string

	// CreatedAt is when the document was first archived.
	CreatedAt time.Time

	// UpdatedAt is when the document was last written.
	UpdatedAt time.Time
}

// HasCategory reports whether the document carries the given category.
// Matching is case-insensitive.
func (d *Document) HasCategory(category string) bool {
	for _, c := range d.Categories {
		if strings.EqualFold(c, category) {
			return true
		}
	}
	return false
}

// Fragment is a bounded, overlapping slice of a document's text, the unit
// embedded and indexed for similarity search. Fragments are derived
// deterministically from the document body and never live independently
// of their parent document.
type Fragment struct {
	// ID is the fragment identifier, "<documentID>-<ordinal>".
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Ordinal is the position within the document, starting at 0.
	Ordinal int

	// Text is the fragment content.
	Text string

	// CharStart is the rune offset of the fragment start in the body.
	CharStart int

	// CharEnd is the rune offset one past the fragment end.
	CharEnd int
}

// EmbeddingRecord binds a fragment vector to a provider partition.
// Records from different providers are never compared or merged.
type EmbeddingRecord struct {
	// FragmentID is the embedded fragment.
	FragmentID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Ordinal is the fragment position within the document.
	Ordinal int

	// Text is the fragment content, carried so similarity queries can
	// return excerpts without consulting the metadata store.
	Text string

	// CharStart is the rune offset of the fragment start.
	CharStart int

	// CharEnd is the rune offset one past the fragment end.
	CharEnd int

	// Vector is the embedding. Its length equals the dimensionality
	// declared by the provider kind.
	Vector []float32

	// ProviderID names the partition the record belongs to.
	ProviderID string
}

// MetadataPatch carries optional metadata updates for a stored document.
// Nil fields are left unchanged.
type MetadataPatch struct {
	// Summary replaces the document summary when set.
	Summary *string

	// Keywords replaces the keyword list when set.
	Keywords *string

	// Tags replaces the tag list when set.
	Tags *string

	// Description replaces the description when set.
	Description *string
}

// IsEmpty returns true if the patch changes nothing.
func (p MetadataPatch) IsEmpty() bool {
	return p.Summary == nil && p.Keywords == nil && p.Tags == nil && p.Description == nil
}

// IngestRequest is the full input of one ingest transaction.
type IngestRequest struct {
	// Document is the normalized content to archive.
	Document NormalizedDocument

	// Categories are the categories to assign. Must be non-empty.
	Categories []string

	// Summary is an optional short summary.
	Summary string

	// Keywords is an optional comma-separated keyword list.
	Keywords string

	// Tags is an optional comma-separated tag list.
	Tags string
}

// Validate checks the request before any write happens.
func (r IngestRequest) Validate() error {
	if strings.TrimSpace(r.Document.Title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if len(r.Categories) == 0 {
		return &ValidationError{Field: "categories", Reason: "must not be empty"}
	}
	for _, c := range r.Categories {
		if strings.TrimSpace(c) == "" {
			return &ValidationError{Field: "categories", Reason: "must not contain blank entries"}
		}
	}
	if r.Document.SourceKind != "" && !r.Document.SourceKind.IsValid() {
		return &ValidationError{Field: "sourceKind", Reason: "unknown kind " + r.Document.SourceKind.String()}
	}
	return nil
}

// IngestReceipt is the output of a successful ingest.
type IngestReceipt struct {
	// ID is the identifier assigned to the document.
	ID string

	// Title is the stored title.
	Title string

	// Categories are the assigned categories.
	Categories []string

	// ContentLength is the rune length of the stored body.
	ContentLength int
}
