package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/archa/internal/core/domain"
)

var (
	saveTitle      string
	saveCategories []string
	saveAuthor     string
	saveSummary    string
	saveKeywords   string
	saveTags       string
	savePublished  string
	saveSourceKind string
	saveSourceRef  string
)

var saveCmd = &cobra.Command{
	Use:   "save [file]",
	Short: "Archive a document",
	Long: `Archive a document into the local store.

Content is read from the given file, or from stdin when no file is
given. The body is fragmented and embedded for similarity search and
indexed for keyword search in the same transaction.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSave,
}

func init() {
	saveCmd.Flags().StringVarP(&saveTitle, "title", "t", "", "document title (default: file name)")
	saveCmd.Flags().StringSliceVarP(&saveCategories, "category", "c", nil, "category to assign (repeatable)")
	saveCmd.Flags().StringVar(&saveAuthor, "author", "", "document author")
	saveCmd.Flags().StringVar(&saveSummary, "summary", "", "short summary")
	saveCmd.Flags().StringVar(&saveKeywords, "keywords", "", "comma-separated keywords")
	saveCmd.Flags().StringVar(&saveTags, "tags", "", "comma-separated tags")
	saveCmd.Flags().StringVar(&savePublished, "published", "", "publication date (YYYY-MM-DD)")
	saveCmd.Flags().StringVar(&saveSourceKind, "kind", "text", "source kind: web, pdf or text")
	saveCmd.Flags().StringVar(&saveSourceRef, "source", "", "origin reference (URL or path)")
	rootCmd.AddCommand(saveCmd)
}

func runSave(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	text, sourceRef, err := readSaveInput(cmd, args)
	if err != nil {
		return err
	}
	if saveSourceRef != "" {
		sourceRef = saveSourceRef
	}

	title := saveTitle
	if title == "" && len(args) == 1 {
		title = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	}

	var published *time.Time
	if savePublished != "" {
		t, err := time.Parse("2006-01-02", savePublished)
		if err != nil {
			return fmt.Errorf("invalid --published date %q: %w", savePublished, err)
		}
		published = &t
	}

	req := domain.IngestRequest{
		Document: domain.NormalizedDocument{
			Title:         title,
			Author:        saveAuthor,
			PublishedDate: published,
			SourceRef:     sourceRef,
			SourceKind:    domain.SourceKind(saveSourceKind),
			Text:          text,
		},
		Categories: saveCategories,
		Summary:    saveSummary,
		Keywords:   saveKeywords,
		Tags:       saveTags,
	}

	receipt, err := ingestService.Save(context.Background(), req)
	if err != nil {
		return fmt.Errorf("save failed: %w", err)
	}

	cmd.Printf("Archived %q\n", receipt.Title)
	cmd.Printf("  ID: %s\n", receipt.ID)
	cmd.Printf("  Categories: %s\n", strings.Join(receipt.Categories, ", "))
	cmd.Printf("  Length: %d characters\n", receipt.ContentLength)
	return nil
}

// readSaveInput returns the document body and, for file input, a source
// reference derived from the absolute path.
func readSaveInput(cmd *cobra.Command, args []string) (text, sourceRef string, err error) {
	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), "", nil
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("reading %s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return string(data), "file://" + abs, nil
}
