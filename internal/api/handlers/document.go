package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
	"path"
	"time"

	"github.com/tessera-ai/tessera/internal/api"
	"github.com/tessera-ai/tessera/internal/api/middleware"
	"github.com/tessera-ai/tessera/internal/domain"
	"github.com/tessera-ai/tessera/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type IngestService interface {
	Ingest(ctx context.Context, input service.IngestInput) (*service.IngestResult, error)
}

type LifecycleService interface {
	DeleteDocument(ctx context.Context, ref domain.DocumentRef) (int, error)
	ListDocuments(ctx context.Context, tenantID, agentID string) ([]*domain.DocumentInfo, error)
}

type JobQueue interface {
	Create(ctx context.Context, job *domain.IngestJob) error
	GetByID(ctx context.Context, id string) (*domain.IngestJob, error)
}

// Archiver stores the raw uploaded text before chunking, so the original
// document can be re-ingested or audited later.
type Archiver interface {
	ArchiveDocument(ctx context.Context, tenantID, documentName string, content []byte, contentType string) (string, error)
	GenerateDownloadURL(ctx context.Context, tenantID, documentName string) (string, error)
	DeleteDocument(ctx context.Context, tenantID, documentName string) error
}

type DocumentHandler struct {
	ingest    IngestService
	lifecycle LifecycleService
	jobs      JobQueue
	archive   Archiver // nil when no object storage is configured
	extractor service.TextExtractor
}

func NewDocumentHandler(ingest IngestService, lifecycle LifecycleService, jobs JobQueue, archive Archiver) *DocumentHandler {
	return &DocumentHandler{
		ingest:    ingest,
		lifecycle: lifecycle,
		jobs:      jobs,
		archive:   archive,
		extractor: service.PlainTextExtractor{},
	}
}

// IngestRequest accepts either pre-extracted text or base64-encoded raw
// bytes in Content; the file name's extension selects the extractor.
type IngestRequest struct {
	FileName    string         `json:"file_name"`
	ContentType string         `json:"content_type,omitempty"`
	Text        string         `json:"text"`
	Content     string         `json:"content,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Async       bool           `json:"async,omitempty"`
}

type IngestResponse struct {
	Document    string   `json:"document"`
	ChunkCount  int      `json:"chunk_count"`
	TotalChunks int      `json:"total_chunks"`
	Warnings    []string `json:"warnings,omitempty"`
}

type IngestJobResponse struct {
	JobID       string `json:"job_id"`
	Status      string `json:"status"`
	ChunkCount  int    `json:"chunk_count,omitempty"`
	Error       string `json:"error,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	ProcessedAt string `json:"processed_at,omitempty"`
}

type DocumentInfoResponse struct {
	DocumentName string `json:"document_name"`
	AgentID      string `json:"agent_id,omitempty"`
	ContentType  string `json:"content_type,omitempty"`
	ChunkCount   int    `json:"chunk_count"`
	TotalChars   int    `json:"total_chars"`
	IngestedAt   string `json:"ingested_at"`
}

func (h *DocumentHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())
	agentID := middleware.GetAgentID(r.Context())

	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.FileName == "" {
		api.Error(w, http.StatusBadRequest, "file_name is required")
		return
	}

	raw := []byte(req.Text)
	if req.Text == "" && req.Content != "" {
		data, err := base64.StdEncoding.DecodeString(req.Content)
		if err != nil {
			api.Error(w, http.StatusBadRequest, "content is not valid base64")
			return
		}
		text, err := h.extractor.Extract(r.Context(), data, path.Ext(req.FileName))
		if err != nil {
			api.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		req.Text = text
		raw = data
	}
	if req.Text == "" {
		api.Error(w, http.StatusBadRequest, "text is required")
		return
	}

	if h.archive != nil {
		if _, err := h.archive.ArchiveDocument(r.Context(), tenantID, req.FileName, raw, req.ContentType); err != nil {
			// Archival is best-effort; indexing proceeds without it
			log.Printf("archive: failed to store raw document %q: %v", req.FileName, err)
		}
	}

	if req.Async || r.URL.Query().Get("async") == "true" {
		h.enqueue(w, r, tenantID, agentID, req)
		return
	}

	result, err := h.ingest.Ingest(r.Context(), service.IngestInput{
		TenantID:     tenantID,
		AgentID:      agentID,
		DocumentName: req.FileName,
		ContentType:  req.ContentType,
		Text:         req.Text,
		Metadata:     req.Metadata,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, &IngestResponse{
		Document:    req.FileName,
		ChunkCount:  result.ChunkCount,
		TotalChunks: result.TotalChunks,
		Warnings:    result.Warnings,
	})
}

func (h *DocumentHandler) enqueue(w http.ResponseWriter, r *http.Request, tenantID, agentID string, req IngestRequest) {
	if h.jobs == nil {
		api.Error(w, http.StatusBadRequest, "async ingestion is not enabled")
		return
	}

	job := &domain.IngestJob{
		ID:           uuid.NewString(),
		TenantID:     tenantID,
		AgentID:      agentID,
		DocumentName: req.FileName,
		ContentType:  req.ContentType,
		Text:         req.Text,
		Metadata:     req.Metadata,
		Status:       domain.IngestJobStatusPending,
		CreatedAt:    time.Now().UTC(),
	}
	if err := domain.ValidateIngestJob(job); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.jobs.Create(r.Context(), job); err != nil {
		api.HandleError(w, domain.NewDomainErrorWithCause(domain.ErrCodeStore, "failed to enqueue ingest job", err))
		return
	}

	api.Success(w, http.StatusAccepted, &IngestJobResponse{
		JobID:     job.ID,
		Status:    string(job.Status),
		CreatedAt: job.CreatedAt.Format(time.RFC3339),
	})
}

func (h *DocumentHandler) JobStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	job, err := h.jobs.GetByID(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	if job.TenantID != middleware.GetTenantID(r.Context()) {
		api.HandleError(w, domain.ErrIngestJobNotFound)
		return
	}

	resp := &IngestJobResponse{
		JobID:      job.ID,
		Status:     string(job.Status),
		ChunkCount: job.ChunkCount,
		Error:      job.Error,
		CreatedAt:  job.CreatedAt.Format(time.RFC3339),
	}
	if job.ProcessedAt != nil {
		resp.ProcessedAt = job.ProcessedAt.Format(time.RFC3339)
	}

	api.Success(w, http.StatusOK, resp)
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())
	agentID := middleware.GetAgentID(r.Context())

	documents, err := h.lifecycle.ListDocuments(r.Context(), tenantID, agentID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*DocumentInfoResponse, 0, len(documents))
	for _, doc := range documents {
		items = append(items, &DocumentInfoResponse{
			DocumentName: doc.DocumentName,
			AgentID:      doc.AgentID,
			ContentType:  doc.ContentType,
			ChunkCount:   doc.ChunkCount,
			TotalChars:   doc.TotalChars,
			IngestedAt:   doc.IngestedAt.Format(time.RFC3339),
		})
	}

	api.Success(w, http.StatusOK, items)
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		api.Error(w, http.StatusBadRequest, "document name is required")
		return
	}

	deleted, err := h.lifecycle.DeleteDocument(r.Context(), domain.DocumentRef{
		TenantID:     middleware.GetTenantID(r.Context()),
		AgentID:      middleware.GetAgentID(r.Context()),
		DocumentName: name,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	if h.archive != nil {
		if err := h.archive.DeleteDocument(r.Context(), middleware.GetTenantID(r.Context()), name); err != nil {
			// The index is authoritative; a stale archive copy is harmless
			log.Printf("archive: failed to delete raw document %q: %v", name, err)
		}
	}

	api.Success(w, http.StatusOK, map[string]int{"deleted_chunks": deleted})
}

// DownloadURL returns a presigned URL for the archived raw document.
func (h *DocumentHandler) DownloadURL(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		api.Error(w, http.StatusBadRequest, "document archive is not configured")
		return
	}

	name := chi.URLParam(r, "name")
	if name == "" {
		api.Error(w, http.StatusBadRequest, "document name is required")
		return
	}

	url, err := h.archive.GenerateDownloadURL(r.Context(), middleware.GetTenantID(r.Context()), name)
	if err != nil {
		api.HandleError(w, domain.NewDomainErrorWithCause(domain.ErrCodeStore, "failed to generate download URL", err))
		return
	}

	api.Success(w, http.StatusOK, map[string]string{"download_url": url})
}
