package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/tessera-ai/tessera/internal/domain"
	"github.com/tessera-ai/tessera/internal/embedding"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxConcurrentEmbeddings bounds parallel embedding calls during
// ingestion to respect third-party API rate limits.
const DefaultMaxConcurrentEmbeddings = 5

// Embedder generates an embedding for one text via the provider chain.
type Embedder interface {
	Embed(ctx context.Context, text string) (*embedding.Result, error)
}

// IngestionChunkStore defines the store operations the pipeline needs.
type IngestionChunkStore interface {
	UpsertChunk(ctx context.Context, chunk *domain.Chunk) error
	DeleteByDocument(ctx context.Context, ref domain.DocumentRef) (int, error)
}

// TextExtractor converts raw uploaded bytes into plain text. Extraction of
// rich formats (PDF, DOCX) is an external collaborator; the core only
// consumes its output.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, extension string) (string, error)
}

// PlainTextExtractor passes through plain-text payloads unchanged.
type PlainTextExtractor struct{}

func (PlainTextExtractor) Extract(_ context.Context, data []byte, extension string) (string, error) {
	switch strings.ToLower(strings.TrimPrefix(extension, ".")) {
	case "", "txt", "text", "md", "markdown", "csv", "log":
		return string(data), nil
	}
	return "", fmt.Errorf("unsupported extension %q: rich-format extraction requires an external extractor", extension)
}

// IngestionConfig controls chunking and embedding parallelism.
type IngestionConfig struct {
	MaxChunkSize            int
	MaxConcurrentEmbeddings int
}

// IngestInput describes one document to ingest.
type IngestInput struct {
	TenantID     string
	AgentID      string
	DocumentName string
	ContentType  string
	Text         string
	Metadata     map[string]any
}

// IngestResult reports the outcome of an ingestion. Per-chunk embedding
// failures are isolated: the run still succeeds with the count of chunks
// actually persisted plus a non-fatal warning per skipped chunk.
type IngestResult struct {
	ChunkCount  int
	TotalChunks int
	Warnings    []string
}

// IngestionService turns a document's extracted text into persisted,
// embedded chunks.
type IngestionService struct {
	store    IngestionChunkStore
	embedder Embedder
	cfg      IngestionConfig
}

// NewIngestionService creates a new IngestionService instance
func NewIngestionService(store IngestionChunkStore, embedder Embedder, cfg IngestionConfig) *IngestionService {
	if cfg.MaxConcurrentEmbeddings <= 0 {
		cfg.MaxConcurrentEmbeddings = DefaultMaxConcurrentEmbeddings
	}
	return &IngestionService{store: store, embedder: embedder, cfg: cfg}
}

// Ingest chunks the text, embeds each chunk with bounded parallelism, and
// persists the resulting rows. Re-ingesting a document replaces its chunks;
// already-persisted chunks are never rolled back on a later chunk's failure.
func (s *IngestionService) Ingest(ctx context.Context, input IngestInput) (*IngestResult, error) {
	if err := domain.ValidateDocumentRef(domain.DocumentRef{
		TenantID:     input.TenantID,
		AgentID:      input.AgentID,
		DocumentName: input.DocumentName,
	}); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Text) == "" {
		return nil, domain.ErrEmptyDocumentText
	}

	texts, err := SplitChunks(input.Text, s.cfg.MaxChunkSize)
	if err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return &IngestResult{}, nil
	}

	ref := domain.DocumentRef{
		TenantID:     input.TenantID,
		AgentID:      input.AgentID,
		DocumentName: input.DocumentName,
	}
	if _, err := s.store.DeleteByDocument(ctx, ref); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeStore, "failed to replace existing chunks", err)
	}

	createdAt := time.Now().UTC()
	failures := make([]string, len(texts))
	persisted := make([]bool, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrentEmbeddings)

	for i, text := range texts {
		g.Go(func() error {
			result, err := s.embedder.Embed(gctx, text)
			if err != nil {
				failures[i] = fmt.Sprintf("chunk %d: embedding failed: %v", i, err)
				return nil
			}

			chunk := &domain.Chunk{
				TenantID:     input.TenantID,
				AgentID:      input.AgentID,
				DocumentName: input.DocumentName,
				ChunkIndex:   i,
				Content:      text,
				Provider:     result.Provider,
				Embedding:    result.Vector,
				Metadata:     chunkMetadata(input, i),
				CreatedAt:    createdAt,
			}
			if err := domain.ValidateChunk(chunk); err != nil {
				failures[i] = fmt.Sprintf("chunk %d: %v", i, err)
				return nil
			}
			if err := s.store.UpsertChunk(gctx, chunk); err != nil {
				failures[i] = fmt.Sprintf("chunk %d: store failed: %v", i, err)
				return nil
			}

			persisted[i] = true
			return nil
		})
	}

	// Goroutines isolate their own failures, so Wait only surfaces
	// caller cancellation.
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &IngestResult{TotalChunks: len(texts)}
	for i := range texts {
		if persisted[i] {
			result.ChunkCount++
		} else if failures[i] != "" {
			result.Warnings = append(result.Warnings, failures[i])
		}
	}

	if len(result.Warnings) > 0 {
		log.Printf("ingested document %q for tenant %s with warnings: %d/%d chunks persisted",
			input.DocumentName, input.TenantID, result.ChunkCount, result.TotalChunks)
	} else {
		log.Printf("ingested document %q for tenant %s: %d chunks",
			input.DocumentName, input.TenantID, result.ChunkCount)
	}

	return result, nil
}

func chunkMetadata(input IngestInput, index int) map[string]any {
	metadata := map[string]any{
		"original_file_name": input.DocumentName,
		"chunk_index":        index,
	}
	if input.ContentType != "" {
		metadata["content_type"] = input.ContentType
	}
	for k, v := range input.Metadata {
		metadata[k] = v
	}
	return metadata
}
