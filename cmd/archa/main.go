// Command archa is the document archive CLI: it archives documents into a
// local store and retrieves them with hybrid keyword and semantic search,
// over the terminal or the Model Context Protocol.
package main

import (
	"fmt"
	"os"

	configfile "github.com/custodia-labs/archa/internal/adapters/driven/config/file"
	"github.com/custodia-labs/archa/internal/adapters/driven/embedding"
	"github.com/custodia-labs/archa/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/archa/internal/adapters/driving/cli"
	"github.com/custodia-labs/archa/internal/core/services"
	"github.com/custodia-labs/archa/internal/fragmenter"
)

// version is overridden at build time:
//
//	go build -ldflags "-X main.version=v0.2.0" ./cmd/archa
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}

	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	store, err := sqlite.NewStore(settings.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close() //nolint:errcheck

	embedder, err := embedding.NewProvider(settings.Embedding)
	if err != nil {
		return fmt.Errorf("configuring embedding provider: %w", err)
	}
	defer embedder.Close() //nolint:errcheck

	splitter, err := fragmenter.New(
		fragmenter.WithLength(settings.Fragmenter.Length),
		fragmenter.WithOverlap(settings.Fragmenter.Overlap),
	)
	if err != nil {
		return fmt.Errorf("configuring fragmenter: %w", err)
	}

	metadata := store.MetadataStore()
	vectors := store.VectorIndex()

	cli.SetServices(cli.Services{
		Ingest:   services.NewIngestService(metadata, vectors, embedder, splitter),
		Search:   services.NewSearchService(metadata, vectors, embedder, settings.Search),
		Ask:      services.NewAskService(metadata, vectors, embedder),
		Document: services.NewDocumentService(metadata),
		Settings: settingsService,
	})
	cli.SetVersion(version)

	return cli.Execute()
}
