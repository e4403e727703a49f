package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// SearchRequest represents the search API request.
type SearchRequest struct {
	Query     string  `json:"query"`
	Limit     int     `json:"limit,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	SessionID string  `json:"session_id,omitempty"`
}

// SearchDocument represents one chunk returned by a search.
type SearchDocument struct {
	ID         string         `json:"id"`
	Content    string         `json:"content"`
	Similarity float64        `json:"similarity"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// SearchResponse represents the search API response.
type SearchResponse struct {
	Success   bool              `json:"success"`
	Documents []*SearchDocument `json:"documents"`
	Error     string            `json:"error,omitempty"`
}

// SearchCmd creates the search command.
func SearchCmd() *cobra.Command {
	var (
		limit     int
		threshold float64
		session   string
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the knowledge base",
		Long:  "Searches indexed documents by semantic similarity.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runSearch(cmd, args[0], limit, threshold, session, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of results (0 uses the server default)")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Minimum similarity score (0 uses the server default)")
	cmd.Flags().StringVar(&session, "session", "", "Session ID for usage analytics")

	return cmd
}

func runSearch(cmd *cobra.Command, query string, limit int, threshold float64, session string, outputJSON bool) error {
	api, err := NewAPIClient(cmd)
	if err != nil {
		return err
	}

	req := SearchRequest{
		Query:     query,
		Limit:     limit,
		Threshold: threshold,
		SessionID: session,
	}

	resp, err := api.Post("/search", req)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	var searchResp SearchResponse
	if err := json.Unmarshal(resp.Data, &searchResp); err != nil {
		return fmt.Errorf("failed to parse search results: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(searchResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if !searchResp.Success {
		fmt.Printf("Search degraded: %s\n", searchResp.Error)
		return nil
	}

	if len(searchResp.Documents) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("Found %d results:\n\n", len(searchResp.Documents))
	for i, doc := range searchResp.Documents {
		fmt.Printf("%d. (%.2f) %s\n", i+1, doc.Similarity, snippet(doc.Content, 100))
		if source, ok := doc.Metadata["original_file_name"].(string); ok && source != "" {
			fmt.Printf("   Source: %s\n", source)
		}
		fmt.Printf("   ID: %s\n", doc.ID)
		if i < len(searchResp.Documents)-1 {
			fmt.Println(strings.Repeat("-", 40))
		}
	}

	return nil
}

func snippet(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > max {
		return s[:max-3] + "..."
	}
	return s
}
