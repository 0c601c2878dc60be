// Package embedding constructs the configured embedding provider.
package embedding

import (
	"fmt"

	"github.com/custodia-labs/archa/internal/adapters/driven/embedding/local"
	"github.com/custodia-labs/archa/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/archa/internal/core/domain"
	"github.com/custodia-labs/archa/internal/core/ports/driven"
)

// NewProvider builds the embedding provider for the configured kind.
// The kind is process-wide configuration fixed at startup; constructing a
// different provider later does not touch the other kind's partition.
func NewProvider(settings domain.EmbeddingSettings) (driven.EmbeddingProvider, error) {
	switch settings.Provider {
	case domain.ProviderLocal:
		return local.NewProvider(), nil
	case domain.ProviderOpenAI:
		return openai.NewProvider(openai.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
		})
	default:
		return nil, &domain.ValidationError{
			Field:  "embedding.provider",
			Reason: fmt.Sprintf("unknown provider %q", settings.Provider),
		}
	}
}
