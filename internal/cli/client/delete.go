package client

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

// DeleteCmd creates the delete command.
func DeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <document-name>",
		Short: "Delete a document and all of its chunks",
		Long: `Deletes every chunk of a document from the index.

The document is identified by tenant, agent, and name; deleting with an
agent configured removes the agent's copy, deleting without one removes
the tenant-wide copy.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runDelete(cmd, args[0], outputJSON)
		},
	}

	return cmd
}

func runDelete(cmd *cobra.Command, documentName string, outputJSON bool) error {
	api, err := NewAPIClient(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Delete("/documents/" + url.PathEscape(documentName))
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	var result struct {
		DeletedChunks int `json:"deleted_chunks"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(output))
	} else {
		fmt.Printf("Deleted %d chunks of %s\n", result.DeletedChunks, documentName)
	}

	return nil
}
