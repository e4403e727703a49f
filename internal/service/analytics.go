package service

import (
	"context"
	"log"
	"time"

	"github.com/tessera-ai/tessera/internal/domain"
	"github.com/google/uuid"
)

// AnalyticsRepository defines the append-only event writer. The core never
// reads these tables back; a separate reporting path consumes them.
type AnalyticsRepository interface {
	InsertSearchQuery(ctx context.Context, event domain.SearchQueryEvent) error
	InsertSearchHit(ctx context.Context, event domain.SearchHitEvent) error
	InsertContextUsage(ctx context.Context, event domain.ContextUsageEvent) error
}

// AnalyticsService records usage events. Every operation swallows its own
// failures, including panics: analytics must never propagate an error into
// the search or ingestion call path.
type AnalyticsService struct {
	repo AnalyticsRepository
}

// NewAnalyticsService creates a new AnalyticsService instance
func NewAnalyticsService(repo AnalyticsRepository) *AnalyticsService {
	return &AnalyticsService{repo: repo}
}

// TrackSearchQuery records one executed search and returns the event ID so
// hit events can reference it. The ID is assigned even when the write fails.
func (s *AnalyticsService) TrackSearchQuery(ctx context.Context, event domain.SearchQueryEvent) string {
	event.ID = uuid.NewString()
	event.CreatedAt = time.Now().UTC()

	s.record(ctx, "search_query", func(ctx context.Context) error {
		return s.repo.InsertSearchQuery(ctx, event)
	})

	return event.ID
}

// TrackSearchHit records one chunk returned by a search at its rank.
func (s *AnalyticsService) TrackSearchHit(ctx context.Context, event domain.SearchHitEvent) {
	event.ID = uuid.NewString()
	event.CreatedAt = time.Now().UTC()

	s.record(ctx, "search_hit", func(ctx context.Context) error {
		return s.repo.InsertSearchHit(ctx, event)
	})
}

// TrackContextUsage records that a chunk was included in a generation context.
func (s *AnalyticsService) TrackContextUsage(ctx context.Context, event domain.ContextUsageEvent) {
	event.ID = uuid.NewString()
	event.CreatedAt = time.Now().UTC()

	s.record(ctx, "context_usage", func(ctx context.Context) error {
		return s.repo.InsertContextUsage(ctx, event)
	})
}

func (s *AnalyticsService) record(ctx context.Context, kind string, write func(context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("analytics: panic recording %s event: %v", kind, r)
		}
	}()

	if s.repo == nil {
		return
	}
	if err := write(ctx); err != nil {
		log.Printf("analytics: failed to record %s event: %v", kind, err)
	}
}
