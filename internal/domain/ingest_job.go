package domain

import (
	"fmt"
	"time"
)

// IngestJobStatus represents the status of an ingest job
type IngestJobStatus string

const (
	IngestJobStatusPending    IngestJobStatus = "pending"
	IngestJobStatusProcessing IngestJobStatus = "processing"
	IngestJobStatusCompleted  IngestJobStatus = "completed"
	IngestJobStatusFailed     IngestJobStatus = "failed"
)

// IngestJob represents an async document ingestion job. The raw extracted
// text travels with the job row so the worker needs no other lookup.
type IngestJob struct {
	ID           string
	TenantID     string
	AgentID      string
	DocumentName string
	ContentType  string
	Text         string
	Metadata     map[string]any
	Status       IngestJobStatus
	Retries      int32
	ChunkCount   int
	Error        string
	CreatedAt    time.Time
	ProcessedAt  *time.Time
}

// ValidateIngestJob validates an IngestJob instance
func ValidateIngestJob(j *IngestJob) error {
	if j == nil {
		return fmt.Errorf("ingest job cannot be nil")
	}

	if j.ID == "" {
		return ErrMissingRequiredField
	}

	if j.TenantID == "" {
		return ErrEmptyTenant
	}

	if j.DocumentName == "" {
		return ErrEmptyDocumentName
	}

	if !isValidIngestJobStatus(j.Status) {
		return ErrInvalidIngestStatus
	}

	if j.Retries < 0 {
		return NewDomainError(ErrCodeValidation, "ingest job retries cannot be negative")
	}

	return nil
}

// isValidIngestJobStatus checks if an IngestJobStatus is valid
func isValidIngestJobStatus(s IngestJobStatus) bool {
	switch s {
	case IngestJobStatusPending, IngestJobStatusProcessing,
		IngestJobStatusCompleted, IngestJobStatusFailed:
		return true
	}
	return false
}
