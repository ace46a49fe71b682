package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/docqa/internal/cli"
	"github.com/cloo-solutions/docqa/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "docqa",
		Short: "docqa CLI - ask questions about your documents",
		Long: `docqa talks to a running docqad server.

Environment variables:
  DOCQA_API_URL   API base URL (default: http://localhost:5000)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env)")
	cli.AddHelpJSONFlag(rootCmd)

	for _, cmd := range []*cobra.Command{
		client.UploadCmd(),
		client.AskCmd(),
		client.HealthCmd(),
		client.HistoryCmd(),
		client.ExportCmd(),
	} {
		cli.AnnotateEnv(cmd, "DOCQA_API_URL")
		rootCmd.AddCommand(cmd)
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
