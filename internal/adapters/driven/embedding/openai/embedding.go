// Package openai provides a remote embedding provider using the OpenAI API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/archa/internal/core/domain"
	"github.com/custodia-labs/archa/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.EmbeddingProvider = (*Provider)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "text-embedding-3-small"
	DefaultTimeout = 60 * time.Second

	// DefaultRequestsPerSecond bounds the request rate against the API.
	DefaultRequestsPerSecond = 5
)

// Config holds configuration for the OpenAI embedding provider.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Can be changed for Azure OpenAI or compatible APIs.
	BaseURL string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration

	// RequestsPerSecond bounds the request rate (default: 5).
	RequestsPerSecond float64
}

// Provider generates embeddings with the OpenAI embeddings API. The model
// is pinned to text-embedding-3-small so the partition dimensionality
// stays fixed at domain.OpenAIDimensions.
type Provider struct {
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
	apiKey  string
}

// embeddingRequest is the OpenAI API request format.
type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// embeddingResponse is the OpenAI API response format.
type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewProvider creates a new OpenAI embedding provider.
// A missing API key is an authentication error at construction, before any
// write can happen.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: %w: API key is not configured", domain.ErrAuthRequired)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}

	return &Provider{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}, nil
}

// Vectorize generates an embedding for the given text.
func (p *Provider) Vectorize(ctx context.Context, text string) ([]float32, error) {
	vectors, err := p.VectorizeBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("openai: no embedding returned")
	}
	return vectors[0], nil
}

// VectorizeBatch generates embeddings for multiple texts in one request.
func (p *Provider) VectorizeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("openai: waiting for rate limiter: %w", err)
	}

	jsonBody, err := json.Marshal(embeddingRequest{
		Model: DefaultModel,
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		p.baseURL+"/embeddings",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, mapTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := mapStatusError(resp.StatusCode, body); err != nil {
		return nil, err
	}

	var embedResp embeddingResponse
	if err := json.Unmarshal(body, &embedResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if embedResp.Error != nil {
		return nil, fmt.Errorf("openai error: %s", embedResp.Error.Message)
	}
	if len(embedResp.Data) != len(texts) {
		return nil, fmt.Errorf("openai: expected %d embeddings, got %d", len(texts), len(embedResp.Data))
	}

	// Convert float64 to float32 and order by index
	vectors := make([][]float32, len(texts))
	for _, data := range embedResp.Data {
		if data.Index < 0 || data.Index >= len(texts) {
			return nil, fmt.Errorf("openai: embedding index %d out of range", data.Index)
		}
		if len(data.Embedding) != domain.OpenAIDimensions {
			return nil, fmt.Errorf("openai: expected %d dimensions, got %d",
				domain.OpenAIDimensions, len(data.Embedding))
		}
		vector := make([]float32, len(data.Embedding))
		for i, v := range data.Embedding {
			vector[i] = float32(v)
		}
		vectors[data.Index] = vector
	}

	return vectors, nil
}

// Dimensions returns the embedding vector size.
func (p *Provider) Dimensions() int {
	return domain.OpenAIDimensions
}

// ProviderID returns the partition key for this provider.
func (p *Provider) ProviderID() string {
	return domain.ProviderOpenAI.String()
}

// ModelName returns the name of the embedding model being used.
func (p *Provider) ModelName() string {
	return DefaultModel
}

// Ping validates the credential against the /models endpoint without
// running inference.
func (p *Provider) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("openai: create ping request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return mapTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return mapStatusError(resp.StatusCode, body)
	}
	return nil
}

// Close releases resources.
func (p *Provider) Close() error {
	return nil
}

// mapTransportError classifies network failures as retryable.
func mapTransportError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("openai: %w: request timed out: %v", domain.ErrProviderUnavailable, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("openai: %w: request timed out: %v", domain.ErrProviderUnavailable, err)
	}
	return fmt.Errorf("openai: %w: %v", domain.ErrProviderUnavailable, err)
}

// mapStatusError maps HTTP status codes onto the domain error classes:
// credential problems are fatal for the call, rate limits and server
// errors are retryable.
func mapStatusError(status int, body []byte) error {
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("openai: %w (status %d): %s", domain.ErrAuthRequired, status, string(body))
	case status == http.StatusTooManyRequests || status >= 500:
		return fmt.Errorf("openai: %w (status %d): %s", domain.ErrProviderUnavailable, status, string(body))
	default:
		return fmt.Errorf("openai: unexpected status %d: %s", status, string(body))
	}
}
