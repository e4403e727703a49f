//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tessera-ai/tessera/internal/domain"
	"github.com/tessera-ai/tessera/internal/testutil"
)

func newPendingJob(createdAt time.Time) *domain.IngestJob {
	return &domain.IngestJob{
		ID:           uuid.NewString(),
		TenantID:     "tenant-1",
		AgentID:      "agent-1",
		DocumentName: "handbook.txt",
		ContentType:  "text/plain",
		Text:         "The handbook text.",
		Metadata:     map[string]any{"source": "upload"},
		Status:       domain.IngestJobStatusPending,
		CreatedAt:    createdAt,
	}
}

func TestIngestJobRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewIngestJobRepository(pool)

	job := newPendingJob(time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, repo.Create(ctx, job))

	retrieved, err := repo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, retrieved.ID)
	assert.Equal(t, "tenant-1", retrieved.TenantID)
	assert.Equal(t, "agent-1", retrieved.AgentID)
	assert.Equal(t, "handbook.txt", retrieved.DocumentName)
	assert.Equal(t, "text/plain", retrieved.ContentType)
	assert.Equal(t, "The handbook text.", retrieved.Text)
	assert.Equal(t, "upload", retrieved.Metadata["source"])
	assert.Equal(t, domain.IngestJobStatusPending, retrieved.Status)
	assert.Equal(t, int32(0), retrieved.Retries)
	assert.Empty(t, retrieved.Error)
	assert.Nil(t, retrieved.ProcessedAt)
}

func TestIngestJobRepository_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewIngestJobRepository(pool)

	_, err := repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrIngestJobNotFound)
}

func TestIngestJobRepository_ClaimPending(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewIngestJobRepository(pool)

	now := time.Now().UTC().Truncate(time.Microsecond)
	job1 := newPendingJob(now)
	job2 := newPendingJob(now.Add(time.Second))
	done := newPendingJob(now)
	done.Status = domain.IngestJobStatusCompleted

	require.NoError(t, repo.Create(ctx, job1))
	require.NoError(t, repo.Create(ctx, job2))
	require.NoError(t, repo.Create(ctx, done))

	claimed, err := repo.ClaimPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 2)
	assert.Equal(t, job1.ID, claimed[0].ID)
	assert.Equal(t, job2.ID, claimed[1].ID)
	for _, job := range claimed {
		assert.Equal(t, domain.IngestJobStatusProcessing, job.Status)
	}

	// Claimed jobs are no longer pending, so a second claim finds nothing.
	again, err := repo.ClaimPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestIngestJobRepository_ClaimPending_Limit(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewIngestJobRepository(pool)

	now := time.Now().UTC().Truncate(time.Microsecond)
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, newPendingJob(now.Add(time.Duration(i)*time.Second))))
	}

	claimed, err := repo.ClaimPending(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, claimed, 2)
}

func TestIngestJobRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewIngestJobRepository(pool)

	job := newPendingJob(time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, repo.Create(ctx, job))

	require.NoError(t, repo.UpdateStatus(ctx, job.ID, domain.IngestJobStatusFailed, "embed failed"))

	retrieved, err := repo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.IngestJobStatusFailed, retrieved.Status)
	assert.Equal(t, "embed failed", retrieved.Error)
	assert.NotNil(t, retrieved.ProcessedAt)
}

func TestIngestJobRepository_UpdateStatus_PendingKeepsProcessedAtEmpty(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewIngestJobRepository(pool)

	job := newPendingJob(time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, repo.Create(ctx, job))

	require.NoError(t, repo.UpdateStatus(ctx, job.ID, domain.IngestJobStatusPending, "retry 1: timeout"))

	retrieved, err := repo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.IngestJobStatusPending, retrieved.Status)
	assert.Equal(t, "retry 1: timeout", retrieved.Error)
	assert.Nil(t, retrieved.ProcessedAt)
}

func TestIngestJobRepository_UpdateStatus_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewIngestJobRepository(pool)

	err := repo.UpdateStatus(ctx, uuid.NewString(), domain.IngestJobStatusFailed, "boom")
	assert.ErrorIs(t, err, domain.ErrIngestJobNotFound)
}

func TestIngestJobRepository_MarkCompleted(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewIngestJobRepository(pool)

	job := newPendingJob(time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, repo.Create(ctx, job))
	require.NoError(t, repo.UpdateStatus(ctx, job.ID, domain.IngestJobStatusPending, "retry 1: timeout"))

	require.NoError(t, repo.MarkCompleted(ctx, job.ID, 7))

	retrieved, err := repo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.IngestJobStatusCompleted, retrieved.Status)
	assert.Equal(t, 7, retrieved.ChunkCount)
	assert.Empty(t, retrieved.Error)
	assert.NotNil(t, retrieved.ProcessedAt)
}

func TestIngestJobRepository_IncrementRetries(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewIngestJobRepository(pool)

	job := newPendingJob(time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, repo.Create(ctx, job))

	require.NoError(t, repo.IncrementRetries(ctx, job.ID))
	require.NoError(t, repo.IncrementRetries(ctx, job.ID))

	retrieved, err := repo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(2), retrieved.Retries)

	assert.ErrorIs(t, repo.IncrementRetries(ctx, uuid.NewString()), domain.ErrIngestJobNotFound)
}
