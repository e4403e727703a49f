package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/tessera-ai/tessera/internal/api"
	"github.com/tessera-ai/tessera/internal/api/middleware"
	"github.com/tessera-ai/tessera/internal/service"
)

type SearchService interface {
	Search(ctx context.Context, input service.SearchInput) *service.SearchOutput
	BuildContext(ctx context.Context, input service.ContextInput) *service.ContextOutput
}

type SearchHandler struct {
	svc SearchService
}

func NewSearchHandler(svc SearchService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

type SearchRequest struct {
	Query     string  `json:"query"`
	Limit     int     `json:"limit,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	SessionID string  `json:"session_id,omitempty"`
}

type ContextRequest struct {
	Query     string  `json:"query"`
	Limit     int     `json:"limit,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	SessionID string  `json:"session_id,omitempty"`
}

// Search runs a similarity search. Retrieval failures come back as HTTP 200
// with success=false so agent workflows can degrade instead of aborting.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Query == "" {
		api.Error(w, http.StatusBadRequest, "query is required")
		return
	}

	output := h.svc.Search(r.Context(), service.SearchInput{
		TenantID:  middleware.GetTenantID(r.Context()),
		AgentID:   middleware.GetAgentID(r.Context()),
		Query:     req.Query,
		Limit:     req.Limit,
		Threshold: req.Threshold,
		SessionID: req.SessionID,
	})

	api.Success(w, http.StatusOK, output)
}

// Context assembles a RAG context bundle for a downstream generation call.
func (h *SearchHandler) Context(w http.ResponseWriter, r *http.Request) {
	var req ContextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Query == "" {
		api.Error(w, http.StatusBadRequest, "query is required")
		return
	}

	output := h.svc.BuildContext(r.Context(), service.ContextInput{
		TenantID:  middleware.GetTenantID(r.Context()),
		AgentID:   middleware.GetAgentID(r.Context()),
		Query:     req.Query,
		Limit:     req.Limit,
		Threshold: req.Threshold,
		SessionID: req.SessionID,
	})

	api.Success(w, http.StatusOK, output)
}
