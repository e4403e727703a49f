package service

import (
	"context"
	"errors"
	"testing"

	"github.com/tessera-ai/tessera/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnalyticsRepo struct {
	queries []domain.SearchQueryEvent
	hits    []domain.SearchHitEvent
	usages  []domain.ContextUsageEvent
	err     error
	panics  bool
}

func (r *fakeAnalyticsRepo) InsertSearchQuery(_ context.Context, event domain.SearchQueryEvent) error {
	if r.panics {
		panic("analytics store corrupted")
	}
	if r.err != nil {
		return r.err
	}
	r.queries = append(r.queries, event)
	return nil
}

func (r *fakeAnalyticsRepo) InsertSearchHit(_ context.Context, event domain.SearchHitEvent) error {
	if r.err != nil {
		return r.err
	}
	r.hits = append(r.hits, event)
	return nil
}

func (r *fakeAnalyticsRepo) InsertContextUsage(_ context.Context, event domain.ContextUsageEvent) error {
	if r.err != nil {
		return r.err
	}
	r.usages = append(r.usages, event)
	return nil
}

func TestAnalyticsService_TrackSearchQuery(t *testing.T) {
	repo := &fakeAnalyticsRepo{}
	svc := NewAnalyticsService(repo)

	id := svc.TrackSearchQuery(context.Background(), domain.SearchQueryEvent{
		TenantID:    "tenant-1",
		Query:       "refund policy",
		ResultCount: 3,
	})

	assert.NotEmpty(t, id)
	require.Len(t, repo.queries, 1)
	assert.Equal(t, id, repo.queries[0].ID)
	assert.Equal(t, "refund policy", repo.queries[0].Query)
	assert.False(t, repo.queries[0].CreatedAt.IsZero())
}

func TestAnalyticsService_TrackSearchHit(t *testing.T) {
	repo := &fakeAnalyticsRepo{}
	svc := NewAnalyticsService(repo)

	svc.TrackSearchHit(context.Background(), domain.SearchHitEvent{
		QueryID:    "query-1",
		ChunkID:    "chunk-1",
		Rank:       1,
		Similarity: 0.91,
	})

	require.Len(t, repo.hits, 1)
	assert.Equal(t, "query-1", repo.hits[0].QueryID)
	assert.NotEmpty(t, repo.hits[0].ID)
}

func TestAnalyticsService_RepositoryErrorIsSwallowed(t *testing.T) {
	repo := &fakeAnalyticsRepo{err: errors.New("connection refused")}
	svc := NewAnalyticsService(repo)

	assert.NotPanics(t, func() {
		id := svc.TrackSearchQuery(context.Background(), domain.SearchQueryEvent{TenantID: "t", Query: "q"})
		assert.NotEmpty(t, id, "event ID is assigned even when the write fails")
		svc.TrackSearchHit(context.Background(), domain.SearchHitEvent{QueryID: id})
		svc.TrackContextUsage(context.Background(), domain.ContextUsageEvent{TenantID: "t"})
	})
}

func TestAnalyticsService_PanicIsRecovered(t *testing.T) {
	repo := &fakeAnalyticsRepo{panics: true}
	svc := NewAnalyticsService(repo)

	assert.NotPanics(t, func() {
		svc.TrackSearchQuery(context.Background(), domain.SearchQueryEvent{TenantID: "t", Query: "q"})
	})
}

func TestAnalyticsService_NilRepository(t *testing.T) {
	svc := NewAnalyticsService(nil)

	assert.NotPanics(t, func() {
		svc.TrackContextUsage(context.Background(), domain.ContextUsageEvent{TenantID: "t", ChunkID: "c"})
	})
}
