package service

import (
	"context"
	"errors"
	"testing"

	"github.com/tessera-ai/tessera/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLifecycleStore struct {
	deleted   int
	deleteErr error
	lastRef   domain.DocumentRef
	documents []*domain.DocumentInfo
	listErr   error
}

func (s *fakeLifecycleStore) DeleteByDocument(_ context.Context, ref domain.DocumentRef) (int, error) {
	s.lastRef = ref
	if s.deleteErr != nil {
		return 0, s.deleteErr
	}
	return s.deleted, nil
}

func (s *fakeLifecycleStore) ListDocuments(_ context.Context, tenantID, agentID string) ([]*domain.DocumentInfo, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.documents, nil
}

func TestDocumentService_DeleteDocument(t *testing.T) {
	store := &fakeLifecycleStore{deleted: 4}
	svc := NewDocumentService(store)

	ref := domain.DocumentRef{TenantID: "tenant-1", AgentID: "agent-1", DocumentName: "handbook.txt"}
	count, err := svc.DeleteDocument(context.Background(), ref)

	require.NoError(t, err)
	assert.Equal(t, 4, count, "all chunk rows of the document are removed")
	assert.Equal(t, ref, store.lastRef)
}

func TestDocumentService_DeleteDocument_UnknownDocument(t *testing.T) {
	store := &fakeLifecycleStore{deleted: 0}
	svc := NewDocumentService(store)

	count, err := svc.DeleteDocument(context.Background(), domain.DocumentRef{
		TenantID:     "tenant-1",
		DocumentName: "never-ingested.txt",
	})

	require.NoError(t, err, "deleting an unknown document is not an error")
	assert.Zero(t, count)
}

func TestDocumentService_DeleteDocument_Validation(t *testing.T) {
	svc := NewDocumentService(&fakeLifecycleStore{})

	_, err := svc.DeleteDocument(context.Background(), domain.DocumentRef{DocumentName: "doc.txt"})
	assert.ErrorIs(t, err, domain.ErrEmptyTenant)

	_, err = svc.DeleteDocument(context.Background(), domain.DocumentRef{TenantID: "t"})
	assert.ErrorIs(t, err, domain.ErrEmptyDocumentName)
}

func TestDocumentService_DeleteDocument_StoreError(t *testing.T) {
	store := &fakeLifecycleStore{deleteErr: errors.New("connection reset")}
	svc := NewDocumentService(store)

	_, err := svc.DeleteDocument(context.Background(), domain.DocumentRef{TenantID: "t", DocumentName: "doc.txt"})

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeStore, domainErr.Code)
}

func TestDocumentService_ListDocuments(t *testing.T) {
	store := &fakeLifecycleStore{documents: []*domain.DocumentInfo{
		{DocumentName: "a.txt", ChunkCount: 3},
		{DocumentName: "b.txt", ChunkCount: 1},
	}}
	svc := NewDocumentService(store)

	documents, err := svc.ListDocuments(context.Background(), "tenant-1", "")

	require.NoError(t, err)
	require.Len(t, documents, 2)
	assert.Equal(t, "a.txt", documents[0].DocumentName)

	_, err = svc.ListDocuments(context.Background(), "", "")
	assert.ErrorIs(t, err, domain.ErrEmptyTenant)
}
