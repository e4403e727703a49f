package service

import (
	"context"
	"log"

	"github.com/tessera-ai/tessera/internal/domain"
)

// LifecycleChunkStore defines the store operations document lifecycle needs.
type LifecycleChunkStore interface {
	DeleteByDocument(ctx context.Context, ref domain.DocumentRef) (int, error)
	ListDocuments(ctx context.Context, tenantID, agentID string) ([]*domain.DocumentInfo, error)
}

// DocumentService owns document lifecycle. A document is the set of chunk
// rows sharing (tenant, agent, document name), so deletion must cascade by
// that identity; deleting a single chunk row would orphan the rest.
type DocumentService struct {
	store LifecycleChunkStore
}

// NewDocumentService creates a new DocumentService instance
func NewDocumentService(store LifecycleChunkStore) *DocumentService {
	return &DocumentService{store: store}
}

// DeleteDocument removes every chunk the document produced, scoped by
// tenant, agent, and document name in one cascading store operation.
// Dependent analytics rows cascade at the storage layer. Returns the number
// of chunk rows deleted; deleting an unknown document is not an error and
// reports zero.
func (s *DocumentService) DeleteDocument(ctx context.Context, ref domain.DocumentRef) (int, error) {
	if err := domain.ValidateDocumentRef(ref); err != nil {
		return 0, err
	}

	deleted, err := s.store.DeleteByDocument(ctx, ref)
	if err != nil {
		return 0, domain.NewDomainErrorWithCause(domain.ErrCodeStore, "failed to delete document chunks", err)
	}

	log.Printf("deleted document %q for tenant %s: %d chunks", ref.DocumentName, ref.TenantID, deleted)
	return deleted, nil
}

// ListDocuments returns the tenant's ingested documents, aggregated from
// chunk rows.
func (s *DocumentService) ListDocuments(ctx context.Context, tenantID, agentID string) ([]*domain.DocumentInfo, error) {
	if tenantID == "" {
		return nil, domain.ErrEmptyTenant
	}

	documents, err := s.store.ListDocuments(ctx, tenantID, agentID)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeStore, "failed to list documents", err)
	}
	return documents, nil
}
