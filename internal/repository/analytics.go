package repository

import (
	"context"

	"github.com/tessera-ai/tessera/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AnalyticsRepository stores append-only usage events for reporting.
type AnalyticsRepository struct {
	pool *pgxpool.Pool
}

func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepository {
	return &AnalyticsRepository{pool: pool}
}

func (r *AnalyticsRepository) InsertSearchQuery(ctx context.Context, event domain.SearchQueryEvent) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO search_queries (id, tenant_id, agent_id, session_id, query, result_count, duration_ms, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		event.ID,
		event.TenantID,
		nullableString(event.AgentID),
		nullableString(event.SessionID),
		event.Query,
		event.ResultCount,
		event.DurationMS,
		event.CreatedAt,
	)
	return err
}

func (r *AnalyticsRepository) InsertSearchHit(ctx context.Context, event domain.SearchHitEvent) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO search_hits (id, query_id, chunk_id, rank, similarity, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		event.ID,
		event.QueryID,
		event.ChunkID,
		event.Rank,
		event.Similarity,
		event.CreatedAt,
	)
	return err
}

func (r *AnalyticsRepository) InsertContextUsage(ctx context.Context, event domain.ContextUsageEvent) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO context_usage (id, tenant_id, agent_id, session_id, chunk_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		event.ID,
		event.TenantID,
		nullableString(event.AgentID),
		nullableString(event.SessionID),
		event.ChunkID,
		event.CreatedAt,
	)
	return err
}
