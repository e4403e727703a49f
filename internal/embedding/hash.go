package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

const (
	// HashProviderName is the stored provider name for hash embeddings
	HashProviderName = "hash"
	// DefaultHashDimensions is the fixed dimensionality of the hash embedder
	DefaultHashDimensions = 256
)

// HashProvider is the zero-configuration terminal fallback of the provider
// chain. It computes a deterministic bag-of-words embedding: each whitespace
// token is hashed into one of D buckets, weighted 1/sqrt(token count) per
// occurrence, and the vector is L2-normalized. It never returns an error;
// empty input yields a zero vector.
type HashProvider struct {
	dimensions int
}

// NewHashProvider creates a hash provider with the default dimensionality.
func NewHashProvider() *HashProvider {
	return NewHashProviderWithDimensions(DefaultHashDimensions)
}

// NewHashProviderWithDimensions creates a hash provider with a fixed dimensionality.
func NewHashProviderWithDimensions(dimensions int) *HashProvider {
	if dimensions <= 0 {
		dimensions = DefaultHashDimensions
	}
	return &HashProvider{dimensions: dimensions}
}

func (p *HashProvider) Name() string { return HashProviderName }

func (p *HashProvider) Dimensions() int { return p.dimensions }

func (p *HashProvider) CostPer1KTokens() float64 { return 0 }

// Generate computes the bag-of-words hash embedding for the given text.
func (p *HashProvider) Generate(_ context.Context, text string) ([]float32, error) {
	vector := make([]float32, p.dimensions)

	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 {
		return vector, nil
	}

	weight := float32(1.0 / math.Sqrt(float64(len(tokens))))
	for _, token := range tokens {
		vector[p.bucket(token)] += weight
	}

	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vector {
			vector[i] = float32(float64(vector[i]) / norm)
		}
	}

	return vector, nil
}

func (p *HashProvider) bucket(token string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(token))
	return int(h.Sum32() % uint32(p.dimensions))
}
