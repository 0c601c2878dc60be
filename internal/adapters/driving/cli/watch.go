package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/archa/internal/watcher"
)

var watchCategory string

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Watch a folder and archive dropped files",
	Long: `Watches a directory and archives .txt and .md files as they appear
or change. Pre-existing files are archived on startup. Runs until
interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchCategory, "category", "c", "inbox", "category assigned to archived files")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	w, err := watcher.New(watcher.Config{
		Dir:      args[0],
		Category: watchCategory,
		Ingest:   ingestService,
	})
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer w.Close()

	cmd.Printf("Watching %s (category %q). Ctrl-C to stop.\n", args[0], watchCategory)
	return w.Run(cmd.Context())
}
