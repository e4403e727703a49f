package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vectorNorm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func TestHashProvider_Generate_Normalized(t *testing.T) {
	provider := NewHashProvider()

	vector, err := provider.Generate(context.Background(), "the quick brown fox jumps over the lazy dog")

	require.NoError(t, err)
	assert.Len(t, vector, DefaultHashDimensions)
	assert.InDelta(t, 1.0, vectorNorm(vector), 1e-5)
}

func TestHashProvider_Generate_EmptyInput(t *testing.T) {
	provider := NewHashProvider()

	vector, err := provider.Generate(context.Background(), "")

	require.NoError(t, err)
	assert.Len(t, vector, DefaultHashDimensions)
	assert.Equal(t, 0.0, vectorNorm(vector))
}

func TestHashProvider_Generate_WhitespaceOnlyInput(t *testing.T) {
	provider := NewHashProvider()

	vector, err := provider.Generate(context.Background(), "   \n\t  ")

	require.NoError(t, err)
	assert.Equal(t, 0.0, vectorNorm(vector))
}

func TestHashProvider_Generate_Deterministic(t *testing.T) {
	provider := NewHashProvider()

	first, err := provider.Generate(context.Background(), "semantic search over documents")
	require.NoError(t, err)

	second, err := provider.Generate(context.Background(), "semantic search over documents")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestHashProvider_Generate_CustomDimensions(t *testing.T) {
	provider := NewHashProviderWithDimensions(64)

	vector, err := provider.Generate(context.Background(), "hello world")

	require.NoError(t, err)
	assert.Len(t, vector, 64)
	assert.Equal(t, 64, provider.Dimensions())
}

func TestHashProvider_Generate_SimilarTextsCloserThanUnrelated(t *testing.T) {
	provider := NewHashProvider()
	ctx := context.Background()

	a, err := provider.Generate(ctx, "the cat sat on the mat")
	require.NoError(t, err)
	b, err := provider.Generate(ctx, "the cat sat on the rug")
	require.NoError(t, err)
	c, err := provider.Generate(ctx, "quarterly revenue grew eight percent")
	require.NoError(t, err)

	cosine := func(x, y []float32) float64 {
		var dot float64
		for i := range x {
			dot += float64(x[i]) * float64(y[i])
		}
		return dot
	}

	assert.Greater(t, cosine(a, b), cosine(a, c))
}

func TestHashProvider_Metadata(t *testing.T) {
	provider := NewHashProvider()

	assert.Equal(t, HashProviderName, provider.Name())
	assert.Equal(t, DefaultHashDimensions, provider.Dimensions())
	assert.Equal(t, 0.0, provider.CostPer1KTokens())
}
