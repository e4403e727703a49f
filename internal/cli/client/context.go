package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// ContextResponse represents the context API response.
type ContextResponse struct {
	Success   bool              `json:"success"`
	Context   string            `json:"context"`
	Documents []*SearchDocument `json:"documents"`
	Error     string            `json:"error,omitempty"`
}

// ContextCmd creates the context command.
func ContextCmd() *cobra.Command {
	var (
		limit     int
		threshold float64
		session   string
	)

	cmd := &cobra.Command{
		Use:   "context <query>",
		Short: "Build a RAG context bundle for a query",
		Long: `Retrieves the most relevant chunks for a query and prints them as a
single context block ready to paste into a prompt.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runContext(cmd, args[0], limit, threshold, session, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of chunks (0 uses the server default)")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Minimum similarity score (0 uses the server default)")
	cmd.Flags().StringVar(&session, "session", "", "Session ID for usage analytics")

	return cmd
}

func runContext(cmd *cobra.Command, query string, limit int, threshold float64, session string, outputJSON bool) error {
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

	resp, err := api.Post("/context", req)
	if err != nil {
		return fmt.Errorf("context retrieval failed: %w", err)
	}

	var contextResp ContextResponse
	if err := json.Unmarshal(resp.Data, &contextResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(contextResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if !contextResp.Success {
		fmt.Printf("Context retrieval degraded: %s\n", contextResp.Error)
		return nil
	}

	if contextResp.Context == "" {
		fmt.Println("No relevant context found.")
		return nil
	}

	fmt.Println(contextResp.Context)
	return nil
}
