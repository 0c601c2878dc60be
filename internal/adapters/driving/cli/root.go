// Package cli implements the command-line interface using cobra.
// Commands call core services through the driving ports; wiring happens
// in cmd/archa before Execute runs.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/archa/internal/core/ports/driving"
	"github.com/custodia-labs/archa/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services injected by the composition root before Execute.
var (
	ingestService   driving.IngestService
	searchService   driving.SearchService
	askService      driving.AskService
	documentService driving.DocumentService
	settingsService driving.SettingsService
)

// Services bundles everything the CLI needs.
type Services struct {
	Ingest   driving.IngestService
	Search   driving.SearchService
	Ask      driving.AskService
	Document driving.DocumentService
	Settings driving.SettingsService
}

// SetServices injects the core services into the CLI commands.
func SetServices(s Services) {
	ingestService = s.Ingest
	searchService = s.Search
	askService = s.Ask
	documentService = s.Document
	settingsService = s.Settings
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "archa",
	Short: "Personal document archive with hybrid search",
	Long: `Archa archives documents into a local store and retrieves them with
hybrid search: full-text keyword matching blended with embedding
similarity. The same archive is exposed to AI assistants over the
Model Context Protocol.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
