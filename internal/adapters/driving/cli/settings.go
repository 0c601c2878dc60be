package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/archa/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the embedding provider, fragmenter and search
weights. Settings persist in ~/.archa/config.toml.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsProviderCmd = &cobra.Command{
	Use:   "provider [local|openai]",
	Short: "Set the embedding provider",
	Long: `Set the active embedding provider.

Available providers:
  local   - In-process feature hashing, no setup required (384 dimensions)
  openai  - OpenAI text-embedding-3-small, requires an API key (1536 dimensions)

Each provider keeps its own vector partition. Switching providers never
deletes existing vectors; documents archived under the other provider
become searchable again when it is reactivated.`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsProvider,
}

var settingsAPIKeyCmd = &cobra.Command{
	Use:   "set-api-key",
	Short: "Set the embedding provider API key",
	Long:  `Prompts for the API key without echoing it to the terminal.`,
	RunE:  runSettingsAPIKey,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsProviderCmd)
	settingsCmd.AddCommand(settingsAPIKeyCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	cmd.Println("Embedding:")
	cmd.Printf("  Provider: %s (%s)\n", settings.Embedding.Provider, settings.Embedding.Provider.Description())
	if settings.Embedding.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		if settings.Embedding.APIKey != "" {
			cmd.Println("  API key:  set")
		} else {
			cmd.Println("  API key:  NOT SET (run 'archa settings set-api-key')")
		}
	}
	cmd.Println("Fragmenter:")
	cmd.Printf("  Length:  %d\n", settings.Fragmenter.Length)
	cmd.Printf("  Overlap: %d\n", settings.Fragmenter.Overlap)
	cmd.Println("Search:")
	cmd.Printf("  Vector weight:  %.2f\n", settings.Search.VectorWeight)
	cmd.Printf("  Lexical weight: %.2f\n", settings.Search.LexicalWeight)
	cmd.Printf("  Fanout:         %d\n", settings.Search.Fanout)
	return nil
}

func runSettingsProvider(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	kind := domain.ProviderKind(args[0])
	if !kind.IsValid() {
		return fmt.Errorf("unknown provider %q (available: local, openai)", args[0])
	}

	apiKey := ""
	if kind.RequiresAPIKey() {
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}
		apiKey = settings.Embedding.APIKey
		if apiKey == "" {
			key, err := promptSecret(cmd, fmt.Sprintf("API key for %s: ", kind))
			if err != nil {
				return err
			}
			apiKey = key
		}
	}

	if err := settingsService.SetEmbeddingProvider(kind, apiKey); err != nil {
		return fmt.Errorf("failed to set provider: %w", err)
	}

	cmd.Printf("Embedding provider set to %s\n", kind)
	return nil
}

func runSettingsAPIKey(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, err := promptSecret(cmd, "API key: ")
	if err != nil {
		return err
	}
	if key == "" {
		return errors.New("empty API key")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	settings.Embedding.APIKey = key
	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Println("API key saved.")
	return nil
}

// promptSecret reads a secret without echo when stdin is a terminal, and
// falls back to a plain line read otherwise (tests, pipes).
func promptSecret(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)

	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", fmt.Errorf("reading secret: %w", err)
		}
		return strings.TrimSpace(string(password)), nil
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading secret: %w", err)
	}
	return strings.TrimSpace(line), nil
}
