// Package local provides an in-process embedding provider based on feature
// hashing. It needs no credential and no network, so vector search always
// has a working default.
package local

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/custodia-labs/archa/internal/core/domain"
	"github.com/custodia-labs/archa/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.EmbeddingProvider = (*Provider)(nil)

// ModelName identifies the hashing scheme. Bump the suffix if the token
// pipeline changes, since old vectors would no longer be comparable.
const ModelName = "feature-hash-v1"

// Provider generates deterministic embeddings by hashing word unigrams and
// bigrams into a fixed number of buckets and L2-normalizing the result.
// The same text always produces the same vector.
type Provider struct {
	dimensions int
}

// NewProvider creates a local embedding provider with the dimensionality
// fixed by the provider kind.
func NewProvider() *Provider {
	return &Provider{dimensions: domain.LocalDimensions}
}

// Vectorize generates an embedding for the given text.
func (p *Provider) Vectorize(_ context.Context, text string) ([]float32, error) {
	return p.embed(text), nil
}

// VectorizeBatch generates embeddings for multiple texts.
func (p *Provider) VectorizeBatch(_ context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = p.embed(text)
	}
	return vectors, nil
}

// Dimensions returns the embedding vector size.
func (p *Provider) Dimensions() int {
	return p.dimensions
}

// ProviderID returns the partition key for this provider.
func (p *Provider) ProviderID() string {
	return domain.ProviderLocal.String()
}

// ModelName returns the name of the hashing scheme.
func (p *Provider) ModelName() string {
	return ModelName
}

// Ping always succeeds; the provider runs in-process.
func (p *Provider) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (p *Provider) Close() error {
	return nil
}

// embed hashes token features into buckets and normalizes the result.
func (p *Provider) embed(text string) []float32 {
	vector := make([]float32, p.dimensions)
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return vector
	}

	for i, token := range tokens {
		addFeature(vector, token)
		if i+1 < len(tokens) {
			addFeature(vector, token+" "+tokens[i+1])
		}
	}

	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vector {
			vector[i] *= scale
		}
	}
	return vector
}

// addFeature hashes one feature into its bucket. One hash bit picks the
// sign so opposing features can cancel, which keeps the buckets roughly
// zero-centred.
func addFeature(vector []float32, feature string) {
	h := fnv.New64a()
	h.Write([]byte(feature)) //nolint:errcheck // fnv never fails
	sum := h.Sum64()

	bucket := int(sum % uint64(len(vector)))
	if sum&(1<<63) != 0 {
		vector[bucket]--
	} else {
		vector[bucket]++
	}
}

// tokenize lowercases and splits on anything that is not a letter or digit.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
