package domain

import "time"

// SearchOptions configures a hybrid search query.
type SearchOptions struct {
	// Category restricts candidates to documents carrying the category.
	// Applied before scoring, not after.
	Category string

	// Limit is the maximum number of results. Defaults to 10.
	Limit int
}

// DocumentHit is a single hybrid search result.
type DocumentHit struct {
	// ID is the matched document.
	ID string

	// Title is the document title.
	Title string

	// Score is the blended relevance score in [0,1].
	Score float64

	// Author is the document author, if known.
	Author string

	// Categories are the document categories.
	Categories []string

	// SourceRef is the origin reference (URL or file path).
	SourceRef string

	// Excerpt is the text of the best-matching fragment, length-bounded.
	Excerpt string
}

// SortKey orders document listings.
type SortKey string

// Allowed listing sort keys.
const (
	SortByCreatedAt     SortKey = "created_at"
	SortByTitle         SortKey = "title"
	SortByPublishedDate SortKey = "published_date"
)

// IsValid returns true if the sort key is in the allowlist.
func (k SortKey) IsValid() bool {
	switch k {
	case SortByCreatedAt, SortByTitle, SortByPublishedDate:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k SortKey) String() string {
	return string(k)
}

// ListOptions configures a document listing.
type ListOptions struct {
	// Category restricts the listing to documents carrying the category.
	Category string

	// Limit is the maximum number of documents. Defaults to 20.
	Limit int

	// SortKey orders the listing. Defaults to created_at (descending).
	SortKey SortKey
}

// CategoryCount is a category name with the number of documents carrying it.
type CategoryCount struct {
	// Name is the category name.
	Name string

	// Count is the number of documents tagged with it.
	Count int
}

// DocumentListing is the result of a list operation.
type DocumentListing struct {
	// Categories are all known categories with their counts.
	Categories []CategoryCount

	// Documents are the listed documents, without bodies.
	Documents []DocumentSummary
}

// DocumentSummary is the listing view of a document.
type DocumentSummary struct {
	// ID is the document identifier.
	ID string

	// Title is the document title.
	Title string

	// Categories are the document categories.
	Categories []string

	// Author is the document author, if known.
	Author string

	// CreatedAt is when the document was archived.
	CreatedAt time.Time
}

// FragmentHit is a fragment returned as grounding context.
type FragmentHit struct {
	// DocumentID is the parent document.
	DocumentID string

	// Title is the parent document title.
	Title string

	// Text is the fragment content.
	Text string

	// Score is the similarity score in [0,1].
	Score float64
}

// SourceEntry identifies a document contributing fragments to a RAG context.
type SourceEntry struct {
	// DocumentID is the contributing document.
	DocumentID string

	// Title is its title.
	Title string
}

// RAGContext is the ranked fragment set answering a question, plus the
// deduplicated list of documents the fragments came from.
type RAGContext struct {
	// Fragments are the top-K fragments, ordered by similarity.
	Fragments []FragmentHit

	// Sources are the contributing documents, deduplicated by ID in
	// first-seen order.
	Sources []SourceEntry
}
