package cli

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/archa/internal/adapters/driving/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the archive interactively",
	Long: `Launch the interactive terminal UI for searching and reading
archived documents.

Controls:
  type     - Edit the search query
  Enter    - Search / open selected document
  ↑/↓      - Navigate results
  Esc      - Back / clear
  q        - Quit (from the result list)`,
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(_ *cobra.Command, _ []string) error {
	if searchService == nil || documentService == nil {
		return errors.New("services not configured")
	}

	if !isTerminal() {
		return errors.New("browse requires an interactive terminal")
	}

	app, err := tui.NewApp(&tui.Ports{
		Search:   searchService,
		Document: documentService,
	})
	if err != nil {
		return err
	}

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}
	return nil
}

func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
