// Package fragmenter splits document text into overlapping fixed-size
// fragments, the unit embedded and indexed for similarity search.
package fragmenter

import (
	"fmt"

	"github.com/custodia-labs/archa/internal/core/domain"
)

// DefaultLength is the default number of characters per fragment.
const DefaultLength = 2000

// DefaultOverlap is the default number of characters shared by
// consecutive fragments.
const DefaultOverlap = 150

// Splitter derives ordered fragments from document text. Splitting is a
// pure function of the input: the same text always yields the same
// fragments with the same offsets.
type Splitter struct {
	length       int
	overlap      int
	maxFragments int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithLength sets the fragment window size in characters.
func WithLength(length int) Option {
	return func(s *Splitter) {
		s.length = length
	}
}

// WithOverlap sets the overlap between consecutive fragments in characters.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		s.overlap = overlap
	}
}

// WithMaxFragments caps the number of fragments per document.
// Zero means unlimited.
func WithMaxFragments(n int) Option {
	return func(s *Splitter) {
		s.maxFragments = n
	}
}

// New creates a splitter. Construction fails unless 0 <= overlap < length.
func New(opts ...Option) (*Splitter, error) {
	s := &Splitter{
		length:  DefaultLength,
		overlap: DefaultOverlap,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.length <= 0 {
		return nil, &domain.ValidationError{
			Field:  "fragment length",
			Reason: fmt.Sprintf("must be positive, got %d", s.length),
		}
	}
	if s.overlap < 0 || s.overlap >= s.length {
		return nil, &domain.ValidationError{
			Field:  "fragment overlap",
			Reason: fmt.Sprintf("must be in [0, length), got %d with length %d", s.overlap, s.length),
		}
	}
	if s.maxFragments < 0 {
		return nil, &domain.ValidationError{
			Field:  "max fragments",
			Reason: fmt.Sprintf("must not be negative, got %d", s.maxFragments),
		}
	}

	return s, nil
}

// Length returns the configured window size.
func (s *Splitter) Length() int {
	return s.length
}

// Overlap returns the configured overlap.
func (s *Splitter) Overlap() int {
	return s.overlap
}

// Split walks the text in a sliding window of the configured length,
// advancing by length-overlap characters each step. The final window may be
// shorter than the configured length and is always kept. Offsets are rune
// counts, not byte offsets. Empty text yields no fragments.
//
// Boundaries are purely character-count based. Sentence or word awareness
// would shift offsets and break reconstruction of the original text from
// the fragment sequence.
func (s *Splitter) Split(documentID, text string) []domain.Fragment {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	total := len(runes)
	step := s.length - s.overlap

	fragments := make([]domain.Fragment, 0, total/step+1)

	for start := 0; start < total; start += step {
		end := start + s.length
		if end > total {
			end = total
		}

		ordinal := len(fragments)
		fragments = append(fragments, domain.Fragment{
			ID:         FragmentID(documentID, ordinal),
			DocumentID: documentID,
			Ordinal:    ordinal,
			Text:       string(runes[start:end]),
			CharStart:  start,
			CharEnd:    end,
		})

		if s.maxFragments > 0 && len(fragments) >= s.maxFragments {
			break
		}
		if end == total {
			break
		}
	}

	return fragments
}

// FragmentID builds the deterministic fragment identifier.
func FragmentID(documentID string, ordinal int) string {
	return fmt.Sprintf("%s-%d", documentID, ordinal)
}
