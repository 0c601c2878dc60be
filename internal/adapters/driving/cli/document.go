package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/archa/internal/core/domain"
)

var getCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show document metadata",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

var (
	contentMaxLen int
	contentFull   bool
)

var contentCmd = &cobra.Command{
	Use:   "content [doc-id]",
	Short: "Print document content",
	Args:  cobra.ExactArgs(1),
	RunE:  runContent,
}

var (
	listCategory string
	listLimit    int
	listSort     string
	listJSON     bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived documents",
	RunE:  runList,
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List categories with document counts",
	RunE:  runCategories,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document from the archive",
	Long:  `Removes a document from both the metadata store and the vector index.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var (
	updateSummary     string
	updateKeywords    string
	updateTags        string
	updateDescription string
)

var updateCmd = &cobra.Command{
	Use:   "update [doc-id]",
	Short: "Update document metadata",
	Long:  `Updates summary, keywords, tags or description. Omitted flags are left unchanged.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runUpdate,
}

func init() {
	contentCmd.Flags().IntVarP(&contentMaxLen, "max-length", "m", 0, "maximum characters to print (0 = default cap)")
	contentCmd.Flags().BoolVar(&contentFull, "full", false, "print the whole body, no cap")

	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "restrict to one category")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "maximum number of documents")
	listCmd.Flags().StringVarP(&listSort, "sort", "s", "created_at", "sort key: created_at, title or published_date")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")

	updateCmd.Flags().StringVar(&updateSummary, "summary", "", "new summary")
	updateCmd.Flags().StringVar(&updateKeywords, "keywords", "", "new comma-separated keywords")
	updateCmd.Flags().StringVar(&updateTags, "tags", "", "new comma-separated tags")
	updateCmd.Flags().StringVar(&updateDescription, "description", "", "new description")

	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(contentCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(updateCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	doc, err := documentService.Get(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("ID:         %s\n", doc.ID)
	cmd.Printf("Title:      %s\n", doc.Title)
	cmd.Printf("Categories: %s\n", strings.Join(doc.Categories, ", "))
	if doc.Author != "" {
		cmd.Printf("Author:     %s\n", doc.Author)
	}
	if doc.PublishedDate != nil {
		cmd.Printf("Published:  %s\n", doc.PublishedDate.Format("2006-01-02"))
	}
	cmd.Printf("Kind:       %s\n", doc.SourceKind)
	if doc.SourceRef != "" {
		cmd.Printf("Source:     %s\n", doc.SourceRef)
	}
	if doc.Summary != "" {
		cmd.Printf("Summary:    %s\n", doc.Summary)
	}
	if doc.Keywords != "" {
		cmd.Printf("Keywords:   %s\n", doc.Keywords)
	}
	if doc.Tags != "" {
		cmd.Printf("Tags:       %s\n", doc.Tags)
	}
	if doc.Description != "" {
		cmd.Printf("Description: %s\n", doc.Description)
	}
	cmd.Printf("Archived:   %s\n", doc.CreatedAt.Format("2006-01-02 15:04"))
	return nil
}

func runContent(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	maxLen := contentMaxLen
	if contentFull {
		// Large enough for any realistic document body.
		maxLen = 1 << 30
	}

	content, truncated, err := documentService.Content(context.Background(), args[0], maxLen)
	if err != nil {
		return fmt.Errorf("failed to read content: %w", err)
	}

	cmd.Println(content)
	if truncated {
		cmd.PrintErrln("[truncated; use --full for the whole document]")
	}
	return nil
}

func runList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	opts := domain.ListOptions{
		Category: listCategory,
		Limit:    listLimit,
		SortKey:  domain.SortKey(listSort),
	}

	listing, err := documentService.List(context.Background(), opts)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if listJSON {
		return printJSON(cmd, listing)
	}

	if len(listing.Categories) > 0 {
		cmd.Println("Categories:")
		for _, c := range listing.Categories {
			cmd.Printf("  %s (%d)\n", c.Name, c.Count)
		}
		cmd.Println()
	}

	if len(listing.Documents) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	cmd.Println("Documents:")
	for _, d := range listing.Documents {
		cmd.Printf("  %s\n", d.ID)
		cmd.Printf("    Title: %s\n", d.Title)
		cmd.Printf("    Categories: %s\n", strings.Join(d.Categories, ", "))
		if d.Author != "" {
			cmd.Printf("    Author: %s\n", d.Author)
		}
		cmd.Printf("    Archived: %s\n", d.CreatedAt.Format("2006-01-02"))
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(listing.Documents))
	return nil
}

func runCategories(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	cats, err := documentService.Categories(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list categories: %w", err)
	}

	if len(cats) == 0 {
		cmd.Println("No categories yet.")
		return nil
	}

	for _, c := range cats {
		cmd.Printf("  %s (%d)\n", c.Name, c.Count)
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	if err := ingestService.Delete(context.Background(), args[0]); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	cmd.Printf("Deleted %s\n", args[0])
	return nil
}

func runUpdate(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	var patch domain.MetadataPatch
	if cmd.Flags().Changed("summary") {
		patch.Summary = &updateSummary
	}
	if cmd.Flags().Changed("keywords") {
		patch.Keywords = &updateKeywords
	}
	if cmd.Flags().Changed("tags") {
		patch.Tags = &updateTags
	}
	if cmd.Flags().Changed("description") {
		patch.Description = &updateDescription
	}

	if err := documentService.UpdateMetadata(context.Background(), args[0], patch); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}

	cmd.Printf("Updated %s\n", args[0])
	return nil
}
