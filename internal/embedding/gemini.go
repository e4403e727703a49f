package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	// GeminiProviderName is the stored provider name for Gemini embeddings
	GeminiProviderName = "gemini"
	// DefaultGeminiModel is the Gemini model used for generating embeddings
	DefaultGeminiModel = "text-embedding-004"
	// DefaultGeminiDimensions is the output dimension of text-embedding-004
	DefaultGeminiDimensions = 768
)

// GeminiAPI defines the interface for the underlying Gemini embeddings call
type GeminiAPI interface {
	EmbedContent(ctx context.Context, text string) ([]float32, error)
}

// GeminiProvider generates embeddings via the Google Gemini API.
type GeminiProvider struct {
	api        GeminiAPI
	client     *genai.Client
	dimensions int
}

type geminiAdapter struct {
	model *genai.EmbeddingModel
}

func (a *geminiAdapter) EmbedContent(ctx context.Context, text string) ([]float32, error) {
	resp, err := a.model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, err
	}
	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, errors.New("no embedding values returned")
	}
	return resp.Embedding.Values, nil
}

// NewGeminiProvider creates a Gemini provider with the default model.
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	return NewGeminiProviderWithModel(ctx, apiKey, DefaultGeminiModel, DefaultGeminiDimensions)
}

// NewGeminiProviderWithModel creates a Gemini provider with an explicit model.
func NewGeminiProviderWithModel(ctx context.Context, apiKey, model string, dimensions int) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	if dimensions <= 0 {
		dimensions = DefaultGeminiDimensions
	}
	return &GeminiProvider{
		api:        &geminiAdapter{model: client.EmbeddingModel(model)},
		client:     client,
		dimensions: dimensions,
	}, nil
}

// NewGeminiProviderWithAPI creates a provider backed by a custom API implementation.
func NewGeminiProviderWithAPI(api GeminiAPI, dimensions int) *GeminiProvider {
	if dimensions <= 0 {
		dimensions = DefaultGeminiDimensions
	}
	return &GeminiProvider{api: api, dimensions: dimensions}
}

// Close releases the underlying client connection.
func (p *GeminiProvider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

func (p *GeminiProvider) Name() string { return GeminiProviderName }

func (p *GeminiProvider) Dimensions() int { return p.dimensions }

func (p *GeminiProvider) CostPer1KTokens() float64 { return 0.0000125 }

// Generate embeds the given text via the Gemini API.
func (p *GeminiProvider) Generate(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	vector, err := p.api.EmbedContent(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}

	if len(vector) != p.dimensions {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrWrongDimensions, p.dimensions, len(vector))
	}

	return vector, nil
}
