package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/docqa/internal/cli"
	"github.com/cloo-solutions/docqa/internal/cli/admin"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "docqad",
		Short: "docqa API server",
		Long: `docqad serves the document question-answering API.

Configuration is read from DOCQA_* environment variables (and .env):
  DOCQA_OPENAI_API_KEY   OpenAI API key (required)
  DOCQA_PORT             Port to listen on (default: 5000)`,
		Version: version,
	}

	serve := admin.ServeCmd(version)
	cli.AnnotateEnv(serve, "DOCQA_OPENAI_API_KEY,DOCQA_PORT,DOCQA_SENTRY_DSN,DOCQA_S3_ENDPOINT")

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(serve)

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
