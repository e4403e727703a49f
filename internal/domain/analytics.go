package domain

import "time"

// Analytics events are append-only and tenant-scoped. They are written on a
// fire-and-forget path and never read back by the core; a separate reporting
// pipeline consumes the tables.

// SearchQueryEvent records one executed search.
type SearchQueryEvent struct {
	ID          string
	TenantID    string
	AgentID     string
	SessionID   string
	Query       string
	ResultCount int
	DurationMS  int64
	CreatedAt   time.Time
}

// SearchHitEvent records one chunk returned by a search, at its rank.
type SearchHitEvent struct {
	ID         string
	QueryID    string
	ChunkID    string
	Rank       int
	Similarity float64
	CreatedAt  time.Time
}

// ContextUsageEvent records that a chunk was included in a downstream
// generation context.
type ContextUsageEvent struct {
	ID        string
	TenantID  string
	AgentID   string
	SessionID string
	ChunkID   string
	CreatedAt time.Time
}
