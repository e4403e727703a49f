package embedding

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// OpenAIProviderName is the stored provider name for OpenAI embeddings
	OpenAIProviderName = "openai"
	// DefaultOpenAIModel is the OpenAI model used for generating embeddings
	DefaultOpenAIModel = openai.AdaEmbeddingV2
	// DefaultOpenAIDimensions is the expected dimension of embeddings from ada-002
	DefaultOpenAIDimensions = 1536
	// openAICostPer1KTokens is the published ada-002 price
	openAICostPer1KTokens = 0.0001
)

var (
	// ErrEmptyText is returned when text is empty
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrWrongDimensions is returned when an embedding has unexpected dimensions
	ErrWrongDimensions = errors.New("embedding has wrong dimensions")
)

// OpenAIAPI defines the interface for the underlying OpenAI embeddings call
type OpenAIAPI interface {
	CreateEmbeddings(ctx context.Context, text string) ([]float32, error)
}

// OpenAIProvider generates embeddings via the OpenAI API.
type OpenAIProvider struct {
	api        OpenAIAPI
	dimensions int
}

type openAIAdapter struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

func newOpenAIAdapter(apiKey string, model openai.EmbeddingModel) *openAIAdapter {
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &openAIAdapter{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// CreateEmbeddings calls the OpenAI API to create embeddings
func (a *openAIAdapter) CreateEmbeddings(ctx context.Context, text string) ([]float32, error) {
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: a.model,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}

	return resp.Data[0].Embedding, nil
}

// OpenAIConfig holds optional overrides for the OpenAI provider.
type OpenAIConfig struct {
	APIKey     string
	Model      openai.EmbeddingModel
	Dimensions int
}

// NewOpenAIProvider creates an OpenAI provider using defaults.
func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	return NewOpenAIProviderWithConfig(OpenAIConfig{APIKey: apiKey})
}

// NewOpenAIProviderWithConfig creates an OpenAI provider with explicit configuration.
func NewOpenAIProviderWithConfig(cfg OpenAIConfig) *OpenAIProvider {
	dimensions := cfg.Dimensions
	if dimensions <= 0 {
		dimensions = DefaultOpenAIDimensions
	}
	return &OpenAIProvider{
		api:        newOpenAIAdapter(cfg.APIKey, cfg.Model),
		dimensions: dimensions,
	}
}

// NewOpenAIProviderWithAPI creates a provider backed by a custom API implementation.
func NewOpenAIProviderWithAPI(api OpenAIAPI, dimensions int) *OpenAIProvider {
	if dimensions <= 0 {
		dimensions = DefaultOpenAIDimensions
	}
	return &OpenAIProvider{api: api, dimensions: dimensions}
}

func (p *OpenAIProvider) Name() string { return OpenAIProviderName }

func (p *OpenAIProvider) Dimensions() int { return p.dimensions }

func (p *OpenAIProvider) CostPer1KTokens() float64 { return openAICostPer1KTokens }

// Generate embeds the given text via the OpenAI API.
func (p *OpenAIProvider) Generate(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	vector, err := p.api.CreateEmbeddings(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}

	if len(vector) != p.dimensions {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrWrongDimensions, p.dimensions, len(vector))
	}

	return vector, nil
}
