package fragmenter

import (
	"errors"
	"strings"
	"testing"

	"github.com/custodia-labs/archa/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		s, err := New()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.length != DefaultLength {
			t.Errorf("expected length %d, got %d", DefaultLength, s.length)
		}
		if s.overlap != DefaultOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultOverlap, s.overlap)
		}
	})

	t.Run("custom length and overlap", func(t *testing.T) {
		s, err := New(WithLength(500), WithOverlap(100))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.length != 500 || s.overlap != 100 {
			t.Errorf("expected 500/100, got %d/%d", s.length, s.overlap)
		}
	})

	t.Run("overlap equal to length rejected", func(t *testing.T) {
		_, err := New(WithLength(100), WithOverlap(100))
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("negative overlap rejected", func(t *testing.T) {
		_, err := New(WithOverlap(-1))
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("non-positive length rejected", func(t *testing.T) {
		_, err := New(WithLength(0))
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestSplit_Empty(t *testing.T) {
	s, _ := New()
	if frags := s.Split("doc", ""); frags != nil {
		t.Errorf("expected no fragments for empty text, got %d", len(frags))
	}
}

func TestSplit_SingleFragment(t *testing.T) {
	s, _ := New(WithLength(100), WithOverlap(20))
	text := "short text well under the window size"

	frags := s.Split("doc", text)
	if len(frags) != 1 {
		t.Fatalf("expected 1 fragment, got %d", len(frags))
	}
	if frags[0].Text != text {
		t.Errorf("fragment text %q does not equal input", frags[0].Text)
	}
	if frags[0].CharStart != 0 || frags[0].CharEnd != len([]rune(text)) {
		t.Errorf("unexpected offsets [%d:%d]", frags[0].CharStart, frags[0].CharEnd)
	}
	if frags[0].ID != "doc-0" {
		t.Errorf("unexpected fragment ID %q", frags[0].ID)
	}
}

func TestSplit_Offsets(t *testing.T) {
	// Body of 2400 characters with L=1000, O=200 must produce ordinals
	// 0,1,2 covering [0:1000], [800:1800], [1600:2400].
	s, _ := New(WithLength(1000), WithOverlap(200))
	text := strings.Repeat("x", 2400)

	frags := s.Split("doc", text)
	if len(frags) != 3 {
		t.Fatalf("expected 3 fragments, got %d", len(frags))
	}

	want := [][2]int{{0, 1000}, {800, 1800}, {1600, 2400}}
	for i, w := range want {
		if frags[i].Ordinal != i {
			t.Errorf("fragment %d: ordinal %d", i, frags[i].Ordinal)
		}
		if frags[i].CharStart != w[0] || frags[i].CharEnd != w[1] {
			t.Errorf("fragment %d: offsets [%d:%d], want [%d:%d]",
				i, frags[i].CharStart, frags[i].CharEnd, w[0], w[1])
		}
	}
}

func TestSplit_Reconstruction(t *testing.T) {
	cases := []struct {
		name    string
		length  int
		overlap int
		text    string
	}{
		{"no overlap", 10, 0, "the quick brown fox jumps over the lazy dog"},
		{"with overlap", 50, 10, strings.Repeat("abcdefghij", 37)},
		{"short tail", 100, 25, strings.Repeat("z", 1001)},
		{"multibyte runes", 20, 5, strings.Repeat("héllo wörld ", 40)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := New(WithLength(tc.length), WithOverlap(tc.overlap))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			frags := s.Split("doc", tc.text)
			if len(frags) == 0 {
				t.Fatal("expected fragments")
			}

			// Concatenating fragments with overlaps removed must
			// reconstruct the original text exactly.
			var b strings.Builder
			for i, f := range frags {
				r := []rune(f.Text)
				if i == 0 {
					b.WriteString(f.Text)
					continue
				}
				skip := frags[i-1].CharEnd - f.CharStart
				b.WriteString(string(r[skip:]))
			}
			if b.String() != tc.text {
				t.Error("reconstructed text does not match input")
			}

			for i, f := range frags {
				if f.CharEnd-f.CharStart > tc.length {
					t.Errorf("fragment %d exceeds window: [%d:%d]", i, f.CharStart, f.CharEnd)
				}
				if i > 0 && i < len(frags)-1 {
					overlap := frags[i-1].CharEnd - f.CharStart
					if overlap != tc.overlap {
						t.Errorf("fragment %d: overlap %d, want %d", i, overlap, tc.overlap)
					}
				}
			}
		})
	}
}

func TestSplit_MaxFragments(t *testing.T) {
	s, _ := New(WithLength(10), WithOverlap(0), WithMaxFragments(3))
	frags := s.Split("doc", strings.Repeat("a", 100))
	if len(frags) != 3 {
		t.Errorf("expected 3 fragments, got %d", len(frags))
	}
}

func TestSplit_Deterministic(t *testing.T) {
	s, _ := New(WithLength(30), WithOverlap(10))
	text := strings.Repeat("determinism ", 20)

	a := s.Split("doc", text)
	b := s.Split("doc", text)
	if len(a) != len(b) {
		t.Fatalf("fragment counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("fragment %d differs between runs", i)
		}
	}
}
