package client

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// ExportQueryRequest is the body of POST /export-query.
type ExportQueryRequest struct {
	Format   string `json:"format"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ExportHistoryRequest is the body of POST /export-history. Without entries
// the server exports its own search history.
type ExportHistoryRequest struct {
	Format string `json:"format"`
}

// ExportCmd creates the export command.
func ExportCmd() *cobra.Command {
	var (
		format   string
		question string
		answer   string
		output   string
		history  bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a question and answer, or the search history, as PDF or DOC",
		Example: `docqa export --format pdf --question "What is it?" --answer "A report." -o answer.pdf
docqa export --history --format doc -o history.doc`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api := NewAPIClientWithCmd(cmd)
			if history {
				return runExport(api, cmd.OutOrStdout(), "/export-history", ExportHistoryRequest{Format: format}, output)
			}
			if question == "" || answer == "" {
				return fmt.Errorf("--question and --answer are required unless --history is set")
			}
			return runExport(api, cmd.OutOrStdout(), "/export-query",
				ExportQueryRequest{Format: format, Question: question, Answer: answer}, output)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "pdf", "Export format: pdf or doc")
	cmd.Flags().StringVarP(&question, "question", "q", "", "Question text")
	cmd.Flags().StringVarP(&answer, "answer", "a", "", "Answer text")
	cmd.Flags().StringVarP(&output, "out", "o", "", "Output path (default: server-suggested filename)")
	cmd.Flags().BoolVar(&history, "history", false, "Export the server's search history")

	return cmd
}

func runExport(api *APIClient, out io.Writer, path string, body interface{}, output string) error {
	var buf bytes.Buffer
	filename, err := api.Download(path, body, &buf)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if output == "" {
		output = filename
	}
	if output == "" {
		output = "docqa-export"
	}
	if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	fmt.Fprintf(out, "Saved %s (%d bytes)\n", output, buf.Len())
	return nil
}
