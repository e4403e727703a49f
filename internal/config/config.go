package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Chunking and ingestion
	MaxChunkSize            int           `envconfig:"MAX_CHUNK_SIZE" default:"900"`
	MaxConcurrentEmbeddings int           `envconfig:"MAX_CONCURRENT_EMBEDDINGS" default:"5"`
	JobPollInterval         time.Duration `envconfig:"JOB_POLL_INTERVAL" default:"5s"`

	// Search defaults and caps
	SearchThreshold     float64 `envconfig:"SEARCH_THRESHOLD" default:"0.7"`
	SearchLimit         int     `envconfig:"SEARCH_LIMIT" default:"5"`
	MaxSearchLimit      int     `envconfig:"MAX_SEARCH_LIMIT" default:"20"`
	RAGContextThreshold float64 `envconfig:"RAG_CONTEXT_THRESHOLD" default:"0.75"`
	RAGContextLimit     int     `envconfig:"RAG_CONTEXT_LIMIT" default:"3"`

	// Embedding providers, tried in order; the hash fallback needs no key
	OpenAIAPIKey   string        `envconfig:"OPENAI_API_KEY"`
	GeminiAPIKey   string        `envconfig:"GEMINI_API_KEY"`
	HashDimensions int           `envconfig:"HASH_DIMENSIONS" default:"256"`
	EmbedTimeout   time.Duration `envconfig:"EMBED_TIMEOUT" default:"10s"`

	// Raw document archive
	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"tessera-documents"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	SentryDSN         string  `envconfig:"SENTRY_DSN"`
	SentryEnvironment string  `envconfig:"SENTRY_ENVIRONMENT" default:"development"`
	SentrySampleRate  float64 `envconfig:"SENTRY_SAMPLE_RATE" default:"1.0"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("TESSERA", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasGemini() bool {
	return c.GeminiAPIKey != ""
}
