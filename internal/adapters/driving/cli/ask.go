package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	askLimit    int
	askDocument string
	askJSON     bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Retrieve grounding context for a question",
	Long: `Retrieves the archived fragments most relevant to a question,
with the documents they came from. The output is meant to be pasted
into an AI assistant as grounding context; no answer is generated
locally.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askLimit, "limit", "n", 5, "maximum number of fragments")
	askCmd.Flags().StringVarP(&askDocument, "document", "d", "", "restrict to one document ID")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if askService == nil {
		return errors.New("ask service not configured")
	}

	rag, err := askService.RelevantFragments(context.Background(), args[0], askDocument, askLimit)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	if askJSON {
		return printJSON(cmd, rag)
	}

	if len(rag.Fragments) == 0 {
		cmd.Println("No relevant fragments found.")
		return nil
	}

	for i, frag := range rag.Fragments {
		cmd.Printf("--- Fragment %d (%.2f) from %q ---\n", i+1, frag.Score, frag.Title)
		cmd.Println(frag.Text)
		cmd.Println()
	}

	cmd.Println("Sources:")
	for _, src := range rag.Sources {
		cmd.Printf("  %s  %s\n", src.DocumentID, src.Title)
	}
	return nil
}
