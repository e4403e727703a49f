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
	"github.com/tessera-ai/tessera/internal/service"
	"github.com/tessera-ai/tessera/internal/testutil"
)

func TestAnalyticsRepository_InsertSearchQueryAndHits(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	chunkRepo := NewChunkRepository(pool)
	analyticsRepo := NewAnalyticsRepository(pool)

	seedChunk(ctx, t, chunkRepo, "tenant-1", "", "a.txt", 0, "hash", []float32{1, 0, 0, 0}, "chunk")
	matches, err := chunkRepo.SimilaritySearch(ctx, service.SimilarityQuery{
		TenantID:  "tenant-1",
		Provider:  "hash",
		Vector:    []float32{1, 0, 0, 0},
		Limit:     1,
		Threshold: 0,
	})
	require.NoError(t, err)
	require.Len(t, matches, 1)

	query := domain.SearchQueryEvent{
		ID:          uuid.NewString(),
		TenantID:    "tenant-1",
		AgentID:     "agent-1",
		SessionID:   "session-1",
		Query:       "refund policy",
		ResultCount: 1,
		DurationMS:  42,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, analyticsRepo.InsertSearchQuery(ctx, query))

	hit := domain.SearchHitEvent{
		ID:         uuid.NewString(),
		QueryID:    query.ID,
		ChunkID:    matches[0].ChunkID,
		Rank:       1,
		Similarity: matches[0].Similarity,
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, analyticsRepo.InsertSearchHit(ctx, hit))

	var gotQuery string
	var gotCount int
	require.NoError(t, pool.QueryRow(ctx,
		"SELECT query, result_count FROM search_queries WHERE id = $1", query.ID,
	).Scan(&gotQuery, &gotCount))
	assert.Equal(t, "refund policy", gotQuery)
	assert.Equal(t, 1, gotCount)

	var gotRank int
	var gotSimilarity float64
	require.NoError(t, pool.QueryRow(ctx,
		"SELECT rank, similarity FROM search_hits WHERE id = $1", hit.ID,
	).Scan(&gotRank, &gotSimilarity))
	assert.Equal(t, 1, gotRank)
	assert.InDelta(t, 1.0, gotSimilarity, 0.001)
}

func TestAnalyticsRepository_InsertSearchQuery_OptionalFieldsNull(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	analyticsRepo := NewAnalyticsRepository(pool)

	query := domain.SearchQueryEvent{
		ID:          uuid.NewString(),
		TenantID:    "tenant-1",
		Query:       "refund policy",
		ResultCount: 0,
		DurationMS:  5,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, analyticsRepo.InsertSearchQuery(ctx, query))

	var agentIsNull, sessionIsNull bool
	require.NoError(t, pool.QueryRow(ctx,
		"SELECT agent_id IS NULL, session_id IS NULL FROM search_queries WHERE id = $1", query.ID,
	).Scan(&agentIsNull, &sessionIsNull))
	assert.True(t, agentIsNull)
	assert.True(t, sessionIsNull)
}

func TestAnalyticsRepository_InsertContextUsage(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	chunkRepo := NewChunkRepository(pool)
	analyticsRepo := NewAnalyticsRepository(pool)

	seedChunk(ctx, t, chunkRepo, "tenant-1", "", "a.txt", 0, "hash", []float32{1, 0, 0, 0}, "chunk")
	matches, err := chunkRepo.SimilaritySearch(ctx, service.SimilarityQuery{
		TenantID:  "tenant-1",
		Provider:  "hash",
		Vector:    []float32{1, 0, 0, 0},
		Limit:     1,
		Threshold: 0,
	})
	require.NoError(t, err)
	require.Len(t, matches, 1)

	usage := domain.ContextUsageEvent{
		ID:        uuid.NewString(),
		TenantID:  "tenant-1",
		AgentID:   "agent-1",
		SessionID: "session-1",
		ChunkID:   matches[0].ChunkID,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, analyticsRepo.InsertContextUsage(ctx, usage))

	var n int
	require.NoError(t, pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM context_usage WHERE chunk_id = $1", usage.ChunkID,
	).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestAnalyticsRepository_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	chunkRepo := NewChunkRepository(pool)
	analyticsRepo := NewAnalyticsRepository(pool)

	seedChunk(ctx, t, chunkRepo, "tenant-1", "", "a.txt", 0, "hash", []float32{1, 0, 0, 0}, "chunk")
	matches, err := chunkRepo.SimilaritySearch(ctx, service.SimilarityQuery{
		TenantID:  "tenant-1",
		Provider:  "hash",
		Vector:    []float32{1, 0, 0, 0},
		Limit:     1,
		Threshold: 0,
	})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	chunkID := matches[0].ChunkID

	query := domain.SearchQueryEvent{
		ID:        uuid.NewString(),
		TenantID:  "tenant-1",
		Query:     "q",
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, analyticsRepo.InsertSearchQuery(ctx, query))
	require.NoError(t, analyticsRepo.InsertSearchHit(ctx, domain.SearchHitEvent{
		ID:        uuid.NewString(),
		QueryID:   query.ID,
		ChunkID:   chunkID,
		Rank:      1,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}))
	require.NoError(t, analyticsRepo.InsertContextUsage(ctx, domain.ContextUsageEvent{
		ID:        uuid.NewString(),
		TenantID:  "tenant-1",
		ChunkID:   chunkID,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}))

	deleted, err := chunkRepo.DeleteByDocument(ctx, domain.DocumentRef{
		TenantID:     "tenant-1",
		DocumentName: "a.txt",
	})
	require.NoError(t, err)
	require.Equal(t, 1, deleted)

	var hits, usages, queries int
	require.NoError(t, pool.QueryRow(ctx, "SELECT COUNT(*) FROM search_hits").Scan(&hits))
	require.NoError(t, pool.QueryRow(ctx, "SELECT COUNT(*) FROM context_usage").Scan(&usages))
	require.NoError(t, pool.QueryRow(ctx, "SELECT COUNT(*) FROM search_queries").Scan(&queries))
	assert.Zero(t, hits)
	assert.Zero(t, usages)
	assert.Equal(t, 1, queries)
}
