package client

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// DocumentStatus is one loaded document in the health response.
type DocumentStatus struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Pages  int    `json:"pages"`
	Chunks int    `json:"chunks"`
}

// HealthResponse is the body returned by GET /health.
type HealthResponse struct {
	Status          string           `json:"status"`
	DocumentsLoaded bool             `json:"documentsLoaded"`
	DocumentCount   int              `json:"documentCount"`
	ChunkCount      int              `json:"chunkCount"`
	CacheEntries    int              `json:"cacheEntries"`
	Documents       []DocumentStatus `json:"documents"`
}

// HealthCmd creates the health command.
func HealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show server status and loaded documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runHealth(NewAPIClientWithCmd(cmd), cmd.OutOrStdout(), outputJSON)
		},
	}
}

func runHealth(api *APIClient, out io.Writer, outputJSON bool) error {
	var resp HealthResponse
	if err := api.Get("/health", &resp); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	if outputJSON {
		return printJSON(out, resp)
	}

	fmt.Fprintf(out, "Status: %s\n", resp.Status)
	fmt.Fprintf(out, "Documents: %d (%d chunks), cached answers: %d\n", resp.DocumentCount, resp.ChunkCount, resp.CacheEntries)
	for _, d := range resp.Documents {
		fmt.Fprintf(out, "  %s  %s (%s, %d pages, %d chunks)\n", d.ID, d.Name, d.Type, d.Pages, d.Chunks)
	}
	return nil
}
