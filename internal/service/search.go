package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/tessera-ai/tessera/internal/domain"
)

// SimilarityQuery is a store-level similarity search request. Provider
// scopes the comparison to chunks embedded by the same provider, so vectors
// of mismatched dimensionality are never compared.
type SimilarityQuery struct {
	TenantID  string
	AgentID   string // empty = search across the whole tenant
	Provider  string
	Vector    []float32
	Limit     int
	Threshold float64
}

// SimilarityMatch is one ranked row returned by the store.
type SimilarityMatch struct {
	ChunkID    string
	Content    string
	Similarity float64
	Metadata   map[string]any
}

// SearchChunkStore defines the store operations the search engine needs.
type SearchChunkStore interface {
	SimilaritySearch(ctx context.Context, query SimilarityQuery) ([]*SimilarityMatch, error)
}

// SearchTracker records search analytics. Implementations must never
// propagate failures; see AnalyticsService.
type SearchTracker interface {
	TrackSearchQuery(ctx context.Context, event domain.SearchQueryEvent) string
	TrackSearchHit(ctx context.Context, event domain.SearchHitEvent)
	TrackContextUsage(ctx context.Context, event domain.ContextUsageEvent)
}

// SearchConfig holds tenant-agnostic search defaults and caps.
type SearchConfig struct {
	DefaultThreshold float64
	DefaultLimit     int
	MaxLimit         int
	ContextThreshold float64
	ContextLimit     int
	// AnalyticsTimeout bounds the detached analytics write.
	AnalyticsTimeout time.Duration
}

// SearchInput is one search request. Zero Limit and Threshold fall back to
// the configured defaults; out-of-range values are clamped, not rejected.
type SearchInput struct {
	TenantID  string
	AgentID   string
	Query     string
	Limit     int
	Threshold float64
	SessionID string
}

// SearchDocument is one ranked result entry.
type SearchDocument struct {
	ID         string         `json:"id"`
	Content    string         `json:"content"`
	Similarity float64        `json:"similarity"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// SearchOutput is a structured search outcome. Store and embedding failures
// are reported as Success=false so callers can degrade to an ungrounded
// response instead of breaking their larger workflow.
type SearchOutput struct {
	Success   bool              `json:"success"`
	Documents []*SearchDocument `json:"documents"`
	Error     string            `json:"error,omitempty"`
}

// ContextInput requests a RAG context bundle. Zero Limit/Threshold fall
// back to the dedicated context defaults, which may differ from ad-hoc
// search defaults.
type ContextInput struct {
	TenantID  string
	AgentID   string
	Query     string
	Limit     int
	Threshold float64
	SessionID string
}

// ContextOutput is the assembled generation context with provenance.
type ContextOutput struct {
	Success   bool              `json:"success"`
	Context   string            `json:"context"`
	Documents []*SearchDocument `json:"documents"`
	Error     string            `json:"error,omitempty"`
}

// SearchService embeds queries and retrieves the most relevant chunks from
// the vector store.
type SearchService struct {
	store    SearchChunkStore
	embedder Embedder
	tracker  SearchTracker
	cfg      SearchConfig
}

// NewSearchService creates a new SearchService instance
func NewSearchService(store SearchChunkStore, embedder Embedder, tracker SearchTracker, cfg SearchConfig) *SearchService {
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 20
	}
	if cfg.AnalyticsTimeout <= 0 {
		cfg.AnalyticsTimeout = 5 * time.Second
	}
	return &SearchService{store: store, embedder: embedder, tracker: tracker, cfg: cfg}
}

// Search embeds the query, runs a similarity search scoped to the tenant
// (and agent when provided), and returns the ranked documents. Failures are
// soft: the output carries Success=false and the caller's workflow continues.
func (s *SearchService) Search(ctx context.Context, input SearchInput) *SearchOutput {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return &SearchOutput{Success: false, Documents: []*SearchDocument{}, Error: "query is empty"}
	}

	limit := input.Limit
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	limit = clampLimit(limit, s.cfg.MaxLimit)

	threshold := input.Threshold
	if threshold <= 0 {
		threshold = s.cfg.DefaultThreshold
	}
	threshold = clampThreshold(threshold)

	start := time.Now()

	result, err := s.embedder.Embed(ctx, query)
	if err != nil {
		log.Printf("search: query embedding failed for tenant %s: %v", input.TenantID, err)
		return &SearchOutput{Success: false, Documents: []*SearchDocument{}, Error: fmt.Sprintf("query embedding failed: %v", err)}
	}

	matches, err := s.store.SimilaritySearch(ctx, SimilarityQuery{
		TenantID:  input.TenantID,
		AgentID:   input.AgentID,
		Provider:  result.Provider,
		Vector:    result.Vector,
		Limit:     limit,
		Threshold: threshold,
	})
	if err != nil {
		log.Printf("search: similarity query failed for tenant %s: %v", input.TenantID, err)
		return &SearchOutput{Success: false, Documents: []*SearchDocument{}, Error: fmt.Sprintf("similarity search failed: %v", err)}
	}

	elapsed := time.Since(start)

	documents := make([]*SearchDocument, 0, len(matches))
	for _, match := range matches {
		documents = append(documents, &SearchDocument{
			ID:         match.ChunkID,
			Content:    match.Content,
			Similarity: match.Similarity,
			Metadata:   match.Metadata,
		})
	}

	s.dispatchSearchAnalytics(input, query, matches, elapsed)

	return &SearchOutput{Success: true, Documents: documents}
}

// BuildContext retrieves the chunks used to ground a downstream generation
// call and assembles them into a single context string with provenance.
func (s *SearchService) BuildContext(ctx context.Context, input ContextInput) *ContextOutput {
	limit := input.Limit
	if limit <= 0 {
		limit = s.cfg.ContextLimit
	}
	threshold := input.Threshold
	if threshold <= 0 {
		threshold = s.cfg.ContextThreshold
	}

	output := s.Search(ctx, SearchInput{
		TenantID:  input.TenantID,
		AgentID:   input.AgentID,
		Query:     input.Query,
		Limit:     limit,
		Threshold: threshold,
		SessionID: input.SessionID,
	})
	if !output.Success {
		return &ContextOutput{Success: false, Documents: []*SearchDocument{}, Error: output.Error}
	}

	var builder strings.Builder
	for i, doc := range output.Documents {
		if i > 0 {
			builder.WriteString("\n\n")
		}
		source := doc.ID
		if name, ok := doc.Metadata["original_file_name"].(string); ok && name != "" {
			source = name
		}
		builder.WriteString(fmt.Sprintf("[source: %s]\n%s", source, doc.Content))
	}

	s.dispatchContextAnalytics(input, output.Documents)

	return &ContextOutput{Success: true, Context: builder.String(), Documents: output.Documents}
}

// dispatchSearchAnalytics records the query event and per-result hit events
// on a detached goroutine so analytics never blocks or fails the caller.
// The query event is written first; hits reference its ID.
func (s *SearchService) dispatchSearchAnalytics(input SearchInput, query string, matches []*SimilarityMatch, elapsed time.Duration) {
	if s.tracker == nil {
		return
	}

	detached := context.WithoutCancel(context.Background())
	go func() {
		ctx, cancel := context.WithTimeout(detached, s.cfg.AnalyticsTimeout)
		defer cancel()

		queryID := s.tracker.TrackSearchQuery(ctx, domain.SearchQueryEvent{
			TenantID:    input.TenantID,
			AgentID:     input.AgentID,
			SessionID:   input.SessionID,
			Query:       query,
			ResultCount: len(matches),
			DurationMS:  elapsed.Milliseconds(),
		})

		for rank, match := range matches {
			s.tracker.TrackSearchHit(ctx, domain.SearchHitEvent{
				QueryID:    queryID,
				ChunkID:    match.ChunkID,
				Rank:       rank + 1,
				Similarity: match.Similarity,
			})
		}
	}()
}

func (s *SearchService) dispatchContextAnalytics(input ContextInput, documents []*SearchDocument) {
	if s.tracker == nil {
		return
	}

	detached := context.WithoutCancel(context.Background())
	go func() {
		ctx, cancel := context.WithTimeout(detached, s.cfg.AnalyticsTimeout)
		defer cancel()

		for _, doc := range documents {
			s.tracker.TrackContextUsage(ctx, domain.ContextUsageEvent{
				TenantID:  input.TenantID,
				AgentID:   input.AgentID,
				SessionID: input.SessionID,
				ChunkID:   doc.ID,
			})
		}
	}()
}

// clampLimit clamps a requested result count to [1, maxLimit].
func clampLimit(limit, maxLimit int) int {
	if limit < 1 {
		return 1
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// clampThreshold clamps a similarity threshold to [0, 1].
func clampThreshold(threshold float64) float64 {
	if threshold < 0 {
		return 0
	}
	if threshold > 1 {
		return 1
	}
	return threshold
}
