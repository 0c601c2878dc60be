package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/archa/internal/core/domain"
)

var (
	searchLimit    int
	searchCategory string
	searchJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the archive",
	Long: `Performs hybrid search across all archived documents.
Combines keyword (full-text) and semantic (vector) signals into one
blended ranking.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().StringVarP(&searchCategory, "category", "c", "", "restrict to one category")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	opts := domain.SearchOptions{
		Category: searchCategory,
		Limit:    searchLimit,
	}

	hits, err := searchService.Search(context.Background(), args[0], opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return printJSON(cmd, hits)
	}

	if len(hits) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, h := range hits {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, h.Title, h.Score)
		cmd.Printf("      ID: %s\n", h.ID)
		if len(h.Categories) > 0 {
			cmd.Printf("      Categories: %s\n", strings.Join(h.Categories, ", "))
		}
		if h.SourceRef != "" {
			cmd.Printf("      Source: %s\n", h.SourceRef)
		}
		if h.Excerpt != "" {
			cmd.Printf("      %s\n", h.Excerpt)
		}
		cmd.Println()
	}
	return nil
}

// printJSON renders any value as indented JSON.
func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
