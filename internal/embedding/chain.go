package embedding

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// DefaultCallTimeout bounds a single provider call so one slow backend
// cannot stall the whole chain before failing over.
const DefaultCallTimeout = 10 * time.Second

// Chain tries providers in registration order and returns the first
// successful result. The terminal hash provider never fails, so a chain
// built by BuildChain cannot normally exhaust all providers.
type Chain struct {
	providers   []Provider
	callTimeout time.Duration
}

// NewChain creates a chain over an explicit, ordered provider list.
func NewChain(providers []Provider, callTimeout time.Duration) (*Chain, error) {
	if len(providers) == 0 {
		return nil, errors.New("embedding chain requires at least one provider")
	}
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}
	return &Chain{providers: providers, callTimeout: callTimeout}, nil
}

// ChainConfig lists which provider credentials are present. Registration
// order is fixed: OpenAI, then Gemini, then the hash fallback, which is
// always appended last and never removed.
type ChainConfig struct {
	OpenAIAPIKey   string
	GeminiAPIKey   string
	HashDimensions int
	CallTimeout    time.Duration
}

// BuildChain constructs the provider chain from typed configuration.
func BuildChain(ctx context.Context, cfg ChainConfig) (*Chain, error) {
	var providers []Provider

	if cfg.OpenAIAPIKey != "" {
		providers = append(providers, NewOpenAIProvider(cfg.OpenAIAPIKey))
	}

	if cfg.GeminiAPIKey != "" {
		gemini, err := NewGeminiProvider(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to build gemini provider: %w", err)
		}
		providers = append(providers, gemini)
	}

	providers = append(providers, NewHashProviderWithDimensions(cfg.HashDimensions))

	chain, err := NewChain(providers, cfg.CallTimeout)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(providers))
	for i, p := range providers {
		names[i] = fmt.Sprintf("%s (%d dims, $%.4f/1K tokens)", p.Name(), p.Dimensions(), p.CostPer1KTokens())
	}
	log.Printf("embedding chain: %s", strings.Join(names, " -> "))

	return chain, nil
}

// Providers returns the ordered provider list.
func (c *Chain) Providers() []Provider {
	return c.providers
}

// Primary returns the first provider in the chain. Queries must be embedded
// with a provider whose dimensionality matches what was indexed; the store
// layer additionally filters by provider name.
func (c *Chain) Primary() Provider {
	return c.providers[0]
}

// Embed tries each provider in order and returns the first success,
// attributed to the provider that produced it. It fails only when every
// provider fails, returning an aggregate of all failure messages.
func (c *Chain) Embed(ctx context.Context, text string) (*Result, error) {
	var failures []string

	for _, provider := range c.providers {
		callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
		vector, err := provider.Generate(callCtx, text)
		cancel()

		if err == nil {
			return &Result{
				Vector:     vector,
				Provider:   provider.Name(),
				Dimensions: provider.Dimensions(),
			}, nil
		}

		failures = append(failures, fmt.Sprintf("%s: %v", provider.Name(), err))
		log.Printf("embedding provider %s failed, trying next: %v", provider.Name(), err)

		// Caller cancellation stops the failover walk; a result already
		// obtained above has been returned regardless.
		if ctx.Err() != nil {
			failures = append(failures, fmt.Sprintf("chain: %v", ctx.Err()))
			break
		}
	}

	return nil, fmt.Errorf("all embedding providers failed: %s", strings.Join(failures, "; "))
}
