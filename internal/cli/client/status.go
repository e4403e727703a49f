package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// StatusCmd creates the status command.
func StatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <job-id>",
		Short: "Show the status of an ingest job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runStatus(cmd, args[0], outputJSON)
		},
	}

	return cmd
}

func runStatus(cmd *cobra.Command, jobID string, outputJSON bool) error {
	api, err := NewAPIClient(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get("/jobs/" + jobID)
	if err != nil {
		return fmt.Errorf("failed to get job status: %w", err)
	}

	var job IngestJobResponse
	if err := json.Unmarshal(resp.Data, &job); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(job, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Job: %s\n", job.JobID)
	fmt.Printf("Status: %s\n", job.Status)
	if job.ChunkCount > 0 {
		fmt.Printf("Chunks indexed: %d\n", job.ChunkCount)
	}
	if job.Error != "" {
		fmt.Printf("Error: %s\n", job.Error)
	}
	if job.ProcessedAt != "" {
		fmt.Printf("Processed at: %s\n", job.ProcessedAt)
	}

	return nil
}
