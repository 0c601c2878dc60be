// Package watcher implements watch-folder ingestion: a directory is
// observed with fsnotify and dropped text files are archived as they
// appear or change. Markdown files are reduced to plain text before
// ingestion. Per-file failures are logged and never stop the watch loop.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/archa/internal/core/domain"
	"github.com/custodia-labs/archa/internal/core/ports/driving"
	"github.com/custodia-labs/archa/internal/logger"
)

// DefaultCategory is assigned when the config names none.
const DefaultCategory = "inbox"

// Config configures a Watcher.
type Config struct {
	// Dir is the directory to watch. Must exist.
	Dir string

	// Category is assigned to every archived file. Defaults to "inbox".
	Category string

	// Ingest archives the files.
	Ingest driving.IngestService
}

// Watcher observes one directory and archives dropped .txt and .md files.
type Watcher struct {
	dir      string
	category string
	ingest   driving.IngestService
	fs       *fsnotify.Watcher
}

// New creates a Watcher for the configured directory.
func New(cfg Config) (*Watcher, error) {
	if cfg.Ingest == nil {
		return nil, errors.New("ingest service is required")
	}

	info, err := os.Stat(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("watch directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch path %s is not a directory", cfg.Dir)
	}

	category := cfg.Category
	if category == "" {
		category = DefaultCategory
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fs.Add(cfg.Dir); err != nil {
		fs.Close() //nolint:errcheck
		return nil, fmt.Errorf("watching %s: %w", cfg.Dir, err)
	}

	return &Watcher{
		dir:      cfg.Dir,
		category: category,
		ingest:   cfg.Ingest,
		fs:       fs,
	}, nil
}

// Run archives pre-existing files, then processes filesystem events until
// the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.scan(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

// scan ingests every eligible file already present in the directory.
func (w *Watcher) scan(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", w.dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(w.dir, entry.Name())
		if !eligible(path) {
			continue
		}
		w.archiveFile(ctx, path)
	}
	return nil
}

// handleEvent archives the file behind a create or write event. Removes
// and renames are ignored: the archive is an archive, not a mirror.
func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
		return
	}
	if !eligible(event.Name) {
		return
	}
	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return
	}
	w.archiveFile(ctx, event.Name)
}

// archiveFile reads and ingests one file. Failures are logged, not fatal.
func (w *Watcher) archiveFile(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Skipping %s: %v", path, err)
		return
	}

	raw := string(data)
	text := raw
	if strings.EqualFold(filepath.Ext(path), ".md") {
		text = stripMarkdown(raw)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	receipt, err := w.ingest.Save(ctx, domain.IngestRequest{
		Document: domain.NormalizedDocument{
			Title:      titleFor(path, raw),
			SourceRef:  "file://" + abs,
			SourceKind: domain.SourceText,
			Text:       text,
		},
		Categories: []string{w.category},
	})
	if err != nil {
		logger.Warn("Failed to archive %s: %v", path, err)
		return
	}
	logger.Info("Archived %s as %s", path, receipt.ID)
}

// eligible reports whether the path is a visible .txt or .md file.
func eligible(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md":
		return true
	default:
		return false
	}
}

// titleFor derives a document title: the first Markdown heading when one
// exists, otherwise the file name without extension.
func titleFor(path, text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			title := strings.TrimSpace(strings.TrimLeft(line, "#"))
			if title != "" {
				return title
			}
		}
		if line != "" {
			break
		}
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
