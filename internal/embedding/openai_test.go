package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOpenAIAPI mocks the OpenAI embeddings call
type MockOpenAIAPI struct {
	mock.Mock
}

func (m *MockOpenAIAPI) CreateEmbeddings(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func TestOpenAIProvider_Generate_Success(t *testing.T) {
	api := new(MockOpenAIAPI)
	provider := NewOpenAIProviderWithAPI(api, 4)

	ctx := context.Background()
	api.On("CreateEmbeddings", ctx, "hello").Return([]float32{0.1, 0.2, 0.3, 0.4}, nil)

	vector, err := provider.Generate(ctx, "hello")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3, 0.4}, vector)
	api.AssertExpectations(t)
}

func TestOpenAIProvider_Generate_EmptyText(t *testing.T) {
	api := new(MockOpenAIAPI)
	provider := NewOpenAIProviderWithAPI(api, 4)

	vector, err := provider.Generate(context.Background(), "")

	assert.ErrorIs(t, err, ErrEmptyText)
	assert.Nil(t, vector)
	api.AssertNotCalled(t, "CreateEmbeddings")
}

func TestOpenAIProvider_Generate_APIError(t *testing.T) {
	api := new(MockOpenAIAPI)
	provider := NewOpenAIProviderWithAPI(api, 4)

	ctx := context.Background()
	api.On("CreateEmbeddings", ctx, "hello").Return(nil, errors.New("rate limit exceeded"))

	vector, err := provider.Generate(ctx, "hello")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create embedding")
	assert.Nil(t, vector)
}

func TestOpenAIProvider_Generate_WrongDimensions(t *testing.T) {
	api := new(MockOpenAIAPI)
	provider := NewOpenAIProviderWithAPI(api, 4)

	ctx := context.Background()
	api.On("CreateEmbeddings", ctx, "hello").Return([]float32{0.1, 0.2}, nil)

	vector, err := provider.Generate(ctx, "hello")

	assert.ErrorIs(t, err, ErrWrongDimensions)
	assert.Nil(t, vector)
}

func TestOpenAIProvider_Defaults(t *testing.T) {
	provider := NewOpenAIProvider("sk-test")

	assert.Equal(t, OpenAIProviderName, provider.Name())
	assert.Equal(t, DefaultOpenAIDimensions, provider.Dimensions())
	assert.Greater(t, provider.CostPer1KTokens(), 0.0)
}

// MockGeminiAPI mocks the Gemini embeddings call
type MockGeminiAPI struct {
	mock.Mock
}

func (m *MockGeminiAPI) EmbedContent(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func TestGeminiProvider_Generate_Success(t *testing.T) {
	api := new(MockGeminiAPI)
	provider := NewGeminiProviderWithAPI(api, 3)

	ctx := context.Background()
	api.On("EmbedContent", ctx, "hello").Return([]float32{0.5, 0.5, 0.5}, nil)

	vector, err := provider.Generate(ctx, "hello")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.5, 0.5}, vector)
}

func TestGeminiProvider_Generate_WrongDimensions(t *testing.T) {
	api := new(MockGeminiAPI)
	provider := NewGeminiProviderWithAPI(api, 3)

	ctx := context.Background()
	api.On("EmbedContent", ctx, "hello").Return([]float32{0.5}, nil)

	vector, err := provider.Generate(ctx, "hello")

	assert.ErrorIs(t, err, ErrWrongDimensions)
	assert.Nil(t, vector)
}

func TestNewGeminiProvider_RequiresAPIKey(t *testing.T) {
	provider, err := NewGeminiProvider(context.Background(), "")

	assert.Error(t, err)
	assert.Nil(t, provider)
}
