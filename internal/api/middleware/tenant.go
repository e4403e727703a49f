package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/tessera-ai/tessera/internal/api"
)

type contextKey string

const (
	TenantIDKey contextKey = "tenant_id"
	AgentIDKey  contextKey = "agent_id"
)

// TenantScope resolves the calling tenant from X-Tenant-ID and the optional
// agent from X-Agent-ID. Every knowledge route is tenant-scoped; requests
// without a tenant are rejected before reaching a handler. An absent agent
// means the request operates on the tenant-wide knowledge base.
func TenantScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID := strings.TrimSpace(r.Header.Get("X-Tenant-ID"))
		if tenantID == "" {
			api.Error(w, http.StatusBadRequest, "missing X-Tenant-ID header")
			return
		}

		agentID := strings.TrimSpace(r.Header.Get("X-Agent-ID"))

		ctx := context.WithValue(r.Context(), TenantIDKey, tenantID)
		if agentID != "" {
			ctx = context.WithValue(ctx, AgentIDKey, agentID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetTenantID returns the tenant ID from context.
func GetTenantID(ctx context.Context) string {
	tenantID, _ := ctx.Value(TenantIDKey).(string)
	return tenantID
}

// GetAgentID returns the agent ID from context, empty when the request is
// tenant-wide.
func GetAgentID(ctx context.Context) string {
	agentID, _ := ctx.Value(AgentIDKey).(string)
	return agentID
}
