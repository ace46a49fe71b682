package client

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	Question string `json:"question"`
}

// QueryResponse is the body returned by POST /query.
type QueryResponse struct {
	Success bool     `json:"success"`
	Answer  string   `json:"answer"`
	Cached  bool     `json:"cached"`
	Sources []string `json:"sources,omitempty"`
}

// AskCmd creates the ask command.
func AskCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "ask <question>",
		Short:   "Ask a question about the uploaded documents",
		Example: `docqa ask "What is the main topic?"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAsk(NewAPIClientWithCmd(cmd), cmd.OutOrStdout(), strings.Join(args, " "), outputJSON)
		},
	}
}

func runAsk(api *APIClient, out io.Writer, question string, outputJSON bool) error {
	var resp QueryResponse
	if err := api.Post("/query", QueryRequest{Question: question}, &resp); err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if outputJSON {
		return printJSON(out, resp)
	}

	fmt.Fprintln(out, resp.Answer)
	if len(resp.Sources) > 0 {
		fmt.Fprintf(out, "\nSources: %s\n", strings.Join(resp.Sources, ", "))
	}
	if resp.Cached {
		fmt.Fprintln(out, "(cached)")
	}
	return nil
}
