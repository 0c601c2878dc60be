package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/archa/internal/core/domain"
)

// recordingIngest captures ingest requests.
type recordingIngest struct {
	mu   sync.Mutex
	reqs []domain.IngestRequest
}

func (r *recordingIngest) Save(_ context.Context, req domain.IngestRequest) (*domain.IngestReceipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, req)
	return &domain.IngestReceipt{ID: "doc-1", Title: req.Document.Title}, nil
}

func (r *recordingIngest) Delete(_ context.Context, _ string) error {
	return nil
}

func (r *recordingIngest) requests() []domain.IngestRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.IngestRequest, len(r.reqs))
	copy(out, r.reqs)
	return out
}

func TestEligible(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"notes.txt", true},
		{"notes.md", true},
		{"NOTES.MD", true},
		{"notes.pdf", false},
		{"notes", false},
		{".hidden.txt", false},
		{"dir/notes.txt", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, eligible(tt.path))
		})
	}
}

func TestTitleFor(t *testing.T) {
	tests := []struct {
		name string
		path string
		text string
		want string
	}{
		{"markdown heading", "notes.md", "# My Notes\n\nbody", "My Notes"},
		{"deep heading", "notes.md", "### Deep Heading\nbody", "Deep Heading"},
		{"no heading", "notes.md", "just text", "notes"},
		{"heading after text ignored", "notes.md", "intro line\n# Late Heading", "notes"},
		{"empty file", "todo.txt", "", "todo"},
		{"bare hashes", "x.md", "##\nbody", "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, titleFor(tt.path, tt.text))
		})
	}
}

func TestNew_Validation(t *testing.T) {
	t.Run("requires ingest service", func(t *testing.T) {
		_, err := New(Config{Dir: t.TempDir()})
		assert.Error(t, err)
	})

	t.Run("requires existing directory", func(t *testing.T) {
		_, err := New(Config{Dir: "/no/such/dir", Ingest: &recordingIngest{}})
		assert.Error(t, err)
	})

	t.Run("rejects file path", func(t *testing.T) {
		dir := t.TempDir()
		file := filepath.Join(dir, "f.txt")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
		_, err := New(Config{Dir: file, Ingest: &recordingIngest{}})
		assert.Error(t, err)
	})
}

func TestWatcher_InitialScan(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte("# Alpha\n\nbody"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("beta body"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.pdf"), []byte("ignored"), 0o644))

	ingest := &recordingIngest{}
	w, err := New(Config{Dir: dir, Ingest: ingest})
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(ingest.requests()) == 2
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done

	texts := make(map[string]string)
	for _, req := range ingest.requests() {
		texts[req.Document.Title] = req.Document.Text
		assert.Equal(t, []string{"inbox"}, req.Categories)
		assert.Equal(t, domain.SourceText, req.Document.SourceKind)
	}
	assert.Equal(t, "Alpha\n\nbody", texts["Alpha"], "markdown stripped, heading used as title")
	assert.Equal(t, "beta body", texts["b"], "plain text archived verbatim, file name used as title")
}

func TestWatcher_PicksUpNewFiles(t *testing.T) {
	dir := t.TempDir()
	ingest := &recordingIngest{}
	w, err := New(Config{Dir: dir, Category: "drops", Ingest: ingest})
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the event loop a moment before writing.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.txt"), []byte("fresh content"), 0o644))

	require.Eventually(t, func() bool {
		return len(ingest.requests()) >= 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done

	req := ingest.requests()[0]
	assert.Equal(t, "new", req.Document.Title)
	assert.Equal(t, []string{"drops"}, req.Categories)
}
