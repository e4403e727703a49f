package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// DocumentInfo represents one indexed document in the list response.
type DocumentInfo struct {
	DocumentName string `json:"document_name"`
	AgentID      string `json:"agent_id,omitempty"`
	ContentType  string `json:"content_type,omitempty"`
	ChunkCount   int    `json:"chunk_count"`
	TotalChars   int    `json:"total_chars"`
	IngestedAt   string `json:"ingested_at"`
}

// DocumentsCmd creates the documents command.
func DocumentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "documents",
		Short: "List indexed documents",
		Long:  "Lists the documents indexed for the configured tenant, with chunk counts.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runDocuments(cmd, outputJSON)
		},
	}

	return cmd
}

func runDocuments(cmd *cobra.Command, outputJSON bool) error {
	api, err := NewAPIClient(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get("/documents")
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	var documents []DocumentInfo
	if err := json.Unmarshal(resp.Data, &documents); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(documents, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(documents) == 0 {
		fmt.Println("No documents indexed.")
		return nil
	}

	for _, doc := range documents {
		scope := "tenant"
		if doc.AgentID != "" {
			scope = "agent:" + doc.AgentID
		}
		fmt.Printf("%s  (%s, %d chunks, %d chars, ingested %s)\n",
			doc.DocumentName, scope, doc.ChunkCount, doc.TotalChars, doc.IngestedAt)
	}

	return nil
}
