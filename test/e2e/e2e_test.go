//go:build e2e

package e2e

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ingestResult struct {
	Document    string   `json:"document"`
	ChunkCount  int      `json:"chunk_count"`
	TotalChunks int      `json:"total_chunks"`
	Warnings    []string `json:"warnings"`
}

type searchResult struct {
	Success   bool `json:"success"`
	Documents []struct {
		ID         string         `json:"id"`
		Content    string         `json:"content"`
		Similarity float64        `json:"similarity"`
		Metadata   map[string]any `json:"metadata"`
	} `json:"documents"`
	Error string `json:"error"`
}

type contextResult struct {
	Success bool   `json:"success"`
	Context string `json:"context"`
	Error   string `json:"error"`
}

type jobStatus struct {
	JobID      string `json:"job_id"`
	Status     string `json:"status"`
	ChunkCount int    `json:"chunk_count"`
	Error      string `json:"error"`
}

func TestE2E_DocumentLifecycle(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	resp, err := env.Post("/documents", map[string]any{
		"file_name":    "refunds.txt",
		"content_type": "text/plain",
		"text":         "Refunds are issued within 14 days of purchase. Contact support with your order number to start a refund.",
	}, "tenant-1", "")
	require.NoError(t, err)

	var ingested ingestResult
	require.NoError(t, json.Unmarshal(resp.Data, &ingested))
	assert.Equal(t, "refunds.txt", ingested.Document)
	assert.Greater(t, ingested.ChunkCount, 0)
	assert.Equal(t, ingested.TotalChunks, ingested.ChunkCount)
	assert.Empty(t, ingested.Warnings)

	t.Run("list shows the document", func(t *testing.T) {
		resp, err := env.Get("/documents", "tenant-1", "")
		require.NoError(t, err)

		var docs []struct {
			DocumentName string `json:"document_name"`
			ChunkCount   int    `json:"chunk_count"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &docs))
		require.Len(t, docs, 1)
		assert.Equal(t, "refunds.txt", docs[0].DocumentName)
		assert.Equal(t, ingested.ChunkCount, docs[0].ChunkCount)
	})

	t.Run("search finds the document", func(t *testing.T) {
		resp, err := env.Post("/search", map[string]any{
			"query": "how do refunds work",
		}, "tenant-1", "")
		require.NoError(t, err)

		var result searchResult
		require.NoError(t, json.Unmarshal(resp.Data, &result))
		assert.True(t, result.Success)
		require.NotEmpty(t, result.Documents)
		assert.Equal(t, "refunds.txt", result.Documents[0].Metadata["original_file_name"])
	})

	t.Run("context bundles retrieved chunks", func(t *testing.T) {
		resp, err := env.Post("/context", map[string]any{
			"query": "refund policy",
		}, "tenant-1", "")
		require.NoError(t, err)

		var result contextResult
		require.NoError(t, json.Unmarshal(resp.Data, &result))
		assert.True(t, result.Success)
		assert.Contains(t, result.Context, "[source: refunds.txt]")
	})

	t.Run("archived copy is downloadable", func(t *testing.T) {
		resp, err := env.Get("/documents/refunds.txt/download", "tenant-1", "")
		require.NoError(t, err)

		var result struct {
			DownloadURL string `json:"download_url"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &result))
		require.NotEmpty(t, result.DownloadURL)

		dl, err := env.HTTPClient.Get(result.DownloadURL)
		require.NoError(t, err)
		defer dl.Body.Close()
		assert.Equal(t, 200, dl.StatusCode)
	})

	t.Run("delete removes every chunk", func(t *testing.T) {
		resp, err := env.Delete("/documents/refunds.txt", "tenant-1", "")
		require.NoError(t, err)

		var result struct {
			DeletedChunks int `json:"deleted_chunks"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &result))
		assert.Equal(t, ingested.ChunkCount, result.DeletedChunks)

		searchResp, err := env.Post("/search", map[string]any{"query": "refunds"}, "tenant-1", "")
		require.NoError(t, err)

		var search searchResult
		require.NoError(t, json.Unmarshal(searchResp.Data, &search))
		assert.True(t, search.Success)
		assert.Empty(t, search.Documents)
	})
}

func TestE2E_AsyncIngestion(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	resp, err := env.Post("/documents?async=true", map[string]any{
		"file_name": "handbook.txt",
		"text":      "Employees accrue vacation days monthly. Unused days roll over at the end of the year.",
	}, "tenant-1", "agent-1")
	require.NoError(t, err)

	var enqueued jobStatus
	require.NoError(t, json.Unmarshal(resp.Data, &enqueued))
	require.NotEmpty(t, enqueued.JobID)
	assert.Equal(t, "pending", enqueued.Status)

	require.Eventually(t, func() bool {
		resp, err := env.Get("/jobs/"+enqueued.JobID, "tenant-1", "agent-1")
		if err != nil {
			return false
		}
		var job jobStatus
		if err := json.Unmarshal(resp.Data, &job); err != nil {
			return false
		}
		return job.Status == "completed"
	}, 10*time.Second, 100*time.Millisecond)

	searchResp, err := env.Post("/search", map[string]any{
		"query": "vacation days",
	}, "tenant-1", "agent-1")
	require.NoError(t, err)

	var search searchResult
	require.NoError(t, json.Unmarshal(searchResp.Data, &search))
	assert.True(t, search.Success)
	assert.NotEmpty(t, search.Documents)
}

func TestE2E_TenantIsolation(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	_, err := env.Post("/documents", map[string]any{
		"file_name": "secrets.txt",
		"text":      "Tenant one's private pricing agreements and internal escalation contacts.",
	}, "tenant-1", "")
	require.NoError(t, err)

	resp, err := env.Post("/search", map[string]any{
		"query": "pricing agreements",
	}, "tenant-2", "")
	require.NoError(t, err)

	var search searchResult
	require.NoError(t, json.Unmarshal(resp.Data, &search))
	assert.True(t, search.Success)
	assert.Empty(t, search.Documents)

	t.Run("jobs are tenant scoped", func(t *testing.T) {
		resp, err := env.Post("/documents?async=true", map[string]any{
			"file_name": "queued.txt",
			"text":      "Queued for tenant one.",
		}, "tenant-1", "")
		require.NoError(t, err)

		var enqueued jobStatus
		require.NoError(t, json.Unmarshal(resp.Data, &enqueued))

		_, err = env.Get("/jobs/"+enqueued.JobID, "tenant-2", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP 404")
	})
}
