package jobs

import (
	"context"
	"fmt"
	"log"

	"github.com/tessera-ai/tessera/internal/domain"
	"github.com/tessera-ai/tessera/internal/service"
)

const (
	// MaxRetries is the maximum number of retries for a failed job
	MaxRetries = 3

	// claimBatchSize bounds how many jobs one poll cycle picks up
	claimBatchSize = 10
)

// IngestJobRepository defines the interface for ingest job persistence
type IngestJobRepository interface {
	// ClaimPending atomically claims pending ingest jobs for processing
	ClaimPending(ctx context.Context, limit int) ([]*domain.IngestJob, error)

	// UpdateStatus updates the status of an ingest job
	UpdateStatus(ctx context.Context, id string, status domain.IngestJobStatus, errMsg string) error

	// MarkCompleted finishes a job and records its chunk count
	MarkCompleted(ctx context.Context, id string, chunkCount int) error

	// IncrementRetries increments the retry count for a job
	IncrementRetries(ctx context.Context, id string) error
}

// Ingestor defines the ingestion entry point the worker drives
type Ingestor interface {
	Ingest(ctx context.Context, input service.IngestInput) (*service.IngestResult, error)
}

// IngestWorker processes queued document ingestion jobs
type IngestWorker struct {
	repo     IngestJobRepository
	ingestor Ingestor
}

// NewIngestWorker creates a new IngestWorker instance
func NewIngestWorker(repo IngestJobRepository, ingestor Ingestor) *IngestWorker {
	return &IngestWorker{
		repo:     repo,
		ingestor: ingestor,
	}
}

// ProcessJobs implements the JobProcessor interface
func (w *IngestWorker) ProcessJobs(ctx context.Context) error {
	jobs, err := w.repo.ClaimPending(ctx, claimBatchSize)
	if err != nil {
		return fmt.Errorf("failed to claim pending jobs: %w", err)
	}

	if len(jobs) == 0 {
		return nil
	}

	log.Printf("Processing %d pending ingest jobs", len(jobs))

	for _, job := range jobs {
		if err := w.processJob(ctx, job); err != nil {
			log.Printf("Error processing job %s: %v", job.ID, err)
		}
	}

	return nil
}

func (w *IngestWorker) processJob(ctx context.Context, job *domain.IngestJob) error {
	log.Printf("Processing job %s for document %q (tenant %s)", job.ID, job.DocumentName, job.TenantID)

	result, err := w.ingestor.Ingest(ctx, service.IngestInput{
		TenantID:     job.TenantID,
		AgentID:      job.AgentID,
		DocumentName: job.DocumentName,
		ContentType:  job.ContentType,
		Text:         job.Text,
		Metadata:     job.Metadata,
	})
	if err != nil {
		return w.handleJobFailure(ctx, job, err)
	}

	if err := w.repo.MarkCompleted(ctx, job.ID, result.ChunkCount); err != nil {
		return fmt.Errorf("failed to update job status to completed: %w", err)
	}

	for _, warning := range result.Warnings {
		log.Printf("Job %s: %s", job.ID, warning)
	}
	log.Printf("Job %s completed: %d/%d chunks indexed", job.ID, result.ChunkCount, result.TotalChunks)
	return nil
}

// handleJobFailure handles a failed job with retry logic
func (w *IngestWorker) handleJobFailure(ctx context.Context, job *domain.IngestJob, jobErr error) error {
	log.Printf("Job %s failed: %v", job.ID, jobErr)

	if err := w.repo.IncrementRetries(ctx, job.ID); err != nil {
		return fmt.Errorf("failed to increment retries: %w", err)
	}

	if job.Retries+1 >= MaxRetries {
		log.Printf("Job %s exceeded max retries (%d), marking as failed", job.ID, MaxRetries)
		errMsg := fmt.Sprintf("max retries exceeded: %v", jobErr)
		if err := w.repo.UpdateStatus(ctx, job.ID, domain.IngestJobStatusFailed, errMsg); err != nil {
			return fmt.Errorf("failed to update job status to failed: %w", err)
		}
		return nil
	}

	log.Printf("Job %s will be retried (attempt %d/%d)", job.ID, job.Retries+1, MaxRetries)
	errMsg := fmt.Sprintf("retry %d: %v", job.Retries+1, jobErr)
	if err := w.repo.UpdateStatus(ctx, job.ID, domain.IngestJobStatusPending, errMsg); err != nil {
		return fmt.Errorf("failed to reset job status to pending: %w", err)
	}

	return nil
}
