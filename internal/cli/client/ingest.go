package client

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// IngestRequest represents the document ingestion API request.
type IngestRequest struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type,omitempty"`
	Text        string `json:"text"`
	Async       bool   `json:"async,omitempty"`
}

// IngestResponse represents a synchronous ingestion result.
type IngestResponse struct {
	Document    string   `json:"document"`
	ChunkCount  int      `json:"chunk_count"`
	TotalChunks int      `json:"total_chunks"`
	Warnings    []string `json:"warnings,omitempty"`
}

// IngestJobResponse represents an enqueued or inspected ingest job.
type IngestJobResponse struct {
	JobID       string `json:"job_id"`
	Status      string `json:"status"`
	ChunkCount  int    `json:"chunk_count,omitempty"`
	Error       string `json:"error,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	ProcessedAt string `json:"processed_at,omitempty"`
}

// IngestCmd creates the ingest command.
func IngestCmd() *cobra.Command {
	var (
		name        string
		contentType string
		async       bool
	)

	cmd := &cobra.Command{
		Use:   "ingest [file]",
		Short: "Ingest a document into the knowledge base",
		Long: `Ingest a document from a file or stdin.

Examples:
  # Ingest a file (document name defaults to the file name)
  tessera ingest handbook.txt

  # Ingest from stdin with an explicit name
  cat notes.md | tessera ingest --name notes.md

  # Enqueue for background processing
  tessera ingest handbook.txt --async`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			file := ""
			if len(args) == 1 {
				file = args[0]
			}
			return runIngest(cmd, file, name, contentType, async, outputJSON)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Document name (defaults to the file name)")
	cmd.Flags().StringVar(&contentType, "content-type", "", "Content type of the document")
	cmd.Flags().BoolVar(&async, "async", false, "Enqueue the document instead of waiting for indexing")

	return cmd
}

func runIngest(cmd *cobra.Command, file, name, contentType string, async, outputJSON bool) error {
	api, err := NewAPIClient(cmd)
	if err != nil {
		return err
	}

	var input []byte
	if file != "" {
		input, err = os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		if name == "" {
			name = filepath.Base(file)
		}
	} else {
		input, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
	}

	if len(input) == 0 {
		return fmt.Errorf("no input provided")
	}
	if name == "" {
		return fmt.Errorf("--name is required when reading from stdin")
	}

	req := IngestRequest{
		FileName:    name,
		ContentType: contentType,
		Text:        string(input),
		Async:       async,
	}

	resp, err := api.Post("/documents", req)
	if err != nil {
		return fmt.Errorf("failed to ingest document: %w", err)
	}

	if async {
		var job IngestJobResponse
		if err := json.Unmarshal(resp.Data, &job); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
		if outputJSON {
			output, _ := json.MarshalIndent(job, "", "  ")
			fmt.Println(string(output))
		} else {
			fmt.Printf("Enqueued ingest job: %s\n", job.JobID)
			fmt.Printf("Check progress with: tessera status %s\n", job.JobID)
		}
		return nil
	}

	var result IngestResponse
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(output))
	} else {
		fmt.Printf("Ingested document: %s\n", result.Document)
		fmt.Printf("Chunks indexed: %d/%d\n", result.ChunkCount, result.TotalChunks)
		for _, warning := range result.Warnings {
			fmt.Printf("Warning: %s\n", warning)
		}
	}

	return nil
}
