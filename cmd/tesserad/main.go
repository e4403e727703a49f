package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tessera-ai/tessera/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tesserad",
		Short: "Tessera daemon",
		Long:  "Tessera daemon for running the knowledge API server and background ingest worker",
	}

	rootCmd.AddCommand(admin.ServeCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
