// Package embedding implements the embedding provider failover chain.
package embedding

import "context"

// Result is the outcome of embedding one text. The dimensionality is
// provider-dependent: chunks embedded by different providers may carry
// vectors of different lengths, so the provider name travels with the
// vector everywhere it is stored.
type Result struct {
	Vector     []float32
	Provider   string
	Dimensions int
}

// Provider is a single embedding backend.
type Provider interface {
	// Name identifies the provider in stored chunk rows and logs.
	Name() string

	// Dimensions is the fixed output dimensionality of this provider.
	Dimensions() int

	// CostPer1KTokens is the approximate USD cost per 1000 tokens.
	// Informational only; used for logging, never enforced.
	CostPer1KTokens() float64

	// Generate embeds the given text.
	Generate(ctx context.Context, text string) ([]float32, error)
}
