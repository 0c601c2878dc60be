package local

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/archa/internal/core/domain"
)

func TestProvider_Identity(t *testing.T) {
	p := NewProvider()

	assert.Equal(t, domain.LocalDimensions, p.Dimensions())
	assert.Equal(t, "local", p.ProviderID())
	assert.Equal(t, ModelName, p.ModelName())
	assert.NoError(t, p.Ping(context.Background()))
	assert.NoError(t, p.Close())
}

func TestProvider_Vectorize(t *testing.T) {
	p := NewProvider()
	ctx := context.Background()

	t.Run("deterministic", func(t *testing.T) {
		a, err := p.Vectorize(ctx, "the quick brown fox")
		require.NoError(t, err)
		b, err := p.Vectorize(ctx, "the quick brown fox")
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("distinct texts differ", func(t *testing.T) {
		a, err := p.Vectorize(ctx, "cooking with sourdough starters")
		require.NoError(t, err)
		b, err := p.Vectorize(ctx, "kubernetes cluster networking")
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("unit length", func(t *testing.T) {
		vec, err := p.Vectorize(ctx, "normalized output")
		require.NoError(t, err)
		require.Len(t, vec, domain.LocalDimensions)

		var norm float64
		for _, v := range vec {
			norm += float64(v) * float64(v)
		}
		assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)
	})

	t.Run("empty text yields zero vector", func(t *testing.T) {
		vec, err := p.Vectorize(ctx, "   ")
		require.NoError(t, err)
		require.Len(t, vec, domain.LocalDimensions)
		for _, v := range vec {
			assert.Zero(t, v)
		}
	})

	t.Run("case and punctuation insensitive", func(t *testing.T) {
		a, err := p.Vectorize(ctx, "Hello, World!")
		require.NoError(t, err)
		b, err := p.Vectorize(ctx, "hello world")
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})
}

func TestProvider_VectorizeBatch(t *testing.T) {
	p := NewProvider()
	ctx := context.Background()

	t.Run("matches single calls", func(t *testing.T) {
		texts := []string{"first text", "second text"}
		batch, err := p.VectorizeBatch(ctx, texts)
		require.NoError(t, err)
		require.Len(t, batch, 2)

		for i, text := range texts {
			single, err := p.Vectorize(ctx, text)
			require.NoError(t, err)
			assert.Equal(t, single, batch[i])
		}
	})

	t.Run("empty input", func(t *testing.T) {
		batch, err := p.VectorizeBatch(ctx, nil)
		require.NoError(t, err)
		assert.Nil(t, batch)
	})
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"hello", "world", "42"}, tokenize("Hello, world; 42!"))
	assert.Empty(t, tokenize("..."))
}
