package domain

import "time"

// Chunk is the atomic indexed unit: a bounded slice of a document's text
// together with the embedding vector that was generated for it.
// Chunks are immutable once written; re-ingesting a document replaces its
// chunk rows rather than mutating them in place.
type Chunk struct {
	ID           string
	TenantID     string
	AgentID      string // empty = tenant-global knowledge base
	DocumentName string
	ChunkIndex   int
	Content      string
	Provider     string
	Embedding    []float32
	Metadata     map[string]any
	CreatedAt    time.Time
}

// ValidateChunk validates a Chunk before persistence.
func ValidateChunk(c *Chunk) error {
	if c == nil {
		return NewDomainError(ErrCodeValidation, "chunk cannot be nil")
	}
	if c.TenantID == "" {
		return ErrEmptyTenant
	}
	if c.DocumentName == "" {
		return ErrEmptyDocumentName
	}
	if c.Content == "" {
		return NewDomainError(ErrCodeValidation, "chunk content cannot be empty")
	}
	if c.ChunkIndex < 0 {
		return NewDomainError(ErrCodeValidation, "chunk index cannot be negative")
	}
	if len(c.Embedding) == 0 {
		return NewDomainError(ErrCodeValidation, "chunk embedding cannot be empty")
	}
	if c.Provider == "" {
		return NewDomainError(ErrCodeValidation, "chunk provider is required")
	}
	return nil
}
