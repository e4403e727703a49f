package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tessera-ai/tessera/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "tessera",
		Short: "Tessera CLI - Knowledge base for AI agents",
		Long: `Tessera CLI provides commands to ingest, search, and manage documents.

Environment variables:
  TESSERA_API_URL     API base URL (default: http://localhost:8080)
  TESSERA_TENANT_ID   Tenant to operate as (required)
  TESSERA_AGENT_ID    Agent scope within the tenant (optional)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env)")
	rootCmd.PersistentFlags().String("tenant", "", "Tenant ID (overrides env)")
	rootCmd.PersistentFlags().String("agent", "", "Agent ID (overrides env)")

	rootCmd.AddCommand(client.IngestCmd())
	rootCmd.AddCommand(client.SearchCmd())
	rootCmd.AddCommand(client.ContextCmd())
	rootCmd.AddCommand(client.DocumentsCmd())
	rootCmd.AddCommand(client.DeleteCmd())
	rootCmd.AddCommand(client.StatusCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
