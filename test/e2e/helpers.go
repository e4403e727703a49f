//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tessera-ai/tessera/internal/api/handlers"
	"github.com/tessera-ai/tessera/internal/embedding"
	"github.com/tessera-ai/tessera/internal/jobs"
	"github.com/tessera-ai/tessera/internal/repository"
	"github.com/tessera-ai/tessera/internal/server"
	"github.com/tessera-ai/tessera/internal/service"
	"github.com/tessera-ai/tessera/internal/storage"
	"github.com/tessera-ai/tessera/internal/testutil"
)

// E2ETestEnv holds all resources needed for end-to-end tests. The stack runs
// in-process against real containers, with the hash embedding provider so no
// external API keys are needed.
type E2ETestEnv struct {
	T          *testing.T
	Ctx        context.Context
	PostgresC  *testutil.PostgresContainer
	MinioC     *testutil.MinIOContainer
	Pool       *pgxpool.Pool
	Server     *httptest.Server
	S3Client   *storage.S3Client
	Worker     *jobs.Worker
	HTTPClient *http.Client
}

// SetupE2EEnv creates a full test environment with containers and server
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	minioC := testutil.NewMinIOContainer(ctx, t)

	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        minioC.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     "tesseraadmin",
		SecretAccessKey: "tesseraadmin",
		Bucket:          "test-documents",
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("failed to create S3 client: %v", err)
	}
	if err := s3Client.EnsureBucket(ctx); err != nil {
		t.Fatalf("failed to create bucket: %v", err)
	}

	chunkRepo := repository.NewChunkRepository(pool)
	jobRepo := repository.NewIngestJobRepository(pool)
	analyticsRepo := repository.NewAnalyticsRepository(pool)

	chain, err := embedding.BuildChain(ctx, embedding.ChainConfig{HashDimensions: 64})
	if err != nil {
		t.Fatalf("failed to build embedding chain: %v", err)
	}

	ingestionSvc := service.NewIngestionService(chunkRepo, chain, service.IngestionConfig{
		MaxChunkSize:            200,
		MaxConcurrentEmbeddings: 2,
	})
	analyticsSvc := service.NewAnalyticsService(analyticsRepo)
	searchSvc := service.NewSearchService(chunkRepo, chain, analyticsSvc, service.SearchConfig{
		DefaultThreshold: 0,
		DefaultLimit:     5,
		MaxLimit:         20,
		ContextThreshold: 0,
		ContextLimit:     3,
	})
	documentSvc := service.NewDocumentService(chunkRepo)

	worker := jobs.NewWorker(jobs.NewIngestWorker(jobRepo, ingestionSvc), 100*time.Millisecond)
	go worker.Start(ctx)

	router := server.NewRouter(server.RouterConfig{
		DocumentHandler: handlers.NewDocumentHandler(ingestionSvc, documentSvc, jobRepo, s3Client),
		SearchHandler:   handlers.NewSearchHandler(searchSvc),
	})

	srv := httptest.NewServer(router)

	return &E2ETestEnv{
		T:          t,
		Ctx:        ctx,
		PostgresC:  pgC,
		MinioC:     minioC,
		Pool:       pool,
		Server:     srv,
		S3Client:   s3Client,
		Worker:     worker,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.Worker != nil {
		e.Worker.Stop()
	}
	if e.Server != nil {
		e.Server.Close()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.MinioC != nil {
		e.MinioC.Terminate(e.Ctx)
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
}

// APIResponse represents a standard API response
type APIResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error,omitempty"`
}

// Get performs a GET request scoped to the given tenant and agent
func (e *E2ETestEnv) Get(path, tenantID, agentID string) (*APIResponse, error) {
	return e.doRequest("GET", path, nil, tenantID, agentID)
}

// Post performs a POST request scoped to the given tenant and agent
func (e *E2ETestEnv) Post(path string, body interface{}, tenantID, agentID string) (*APIResponse, error) {
	return e.doRequest("POST", path, body, tenantID, agentID)
}

// Delete performs a DELETE request scoped to the given tenant and agent
func (e *E2ETestEnv) Delete(path, tenantID, agentID string) (*APIResponse, error) {
	return e.doRequest("DELETE", path, nil, tenantID, agentID)
}

func (e *E2ETestEnv) doRequest(method, path string, body interface{}, tenantID, agentID string) (*APIResponse, error) {
	url := e.Server.URL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}

	if tenantID != "" {
		req.Header.Set("X-Tenant-ID", tenantID)
	}
	if agentID != "" {
		req.Header.Set("X-Agent-ID", agentID)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
		}
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiResp.Error)
	}

	return &apiResp, nil
}
