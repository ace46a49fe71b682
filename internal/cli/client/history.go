package client

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// UploadHistoryEntry is one entry of GET /history.
type UploadHistoryEntry struct {
	ID         string `json:"id"`
	DocumentID string `json:"documentId"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Pages      int    `json:"pages"`
	Size       int64  `json:"size"`
	Chunks     int    `json:"chunks"`
	CreatedAt  string `json:"createdAt"`
}

// SearchHistoryEntry is one entry of GET /search-history.
type SearchHistoryEntry struct {
	ID        string   `json:"id"`
	Question  string   `json:"question"`
	Answer    string   `json:"answer"`
	Sources   []string `json:"sources,omitempty"`
	Timestamp string   `json:"timestamp"`
}

type uploadHistoryResponse struct {
	History []UploadHistoryEntry `json:"history"`
}

type searchHistoryResponse struct {
	History []SearchHistoryEntry `json:"history"`
}

// HistoryCmd creates the history command.
func HistoryCmd() *cobra.Command {
	var (
		search bool
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent uploads, or recent questions with --search",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			api := NewAPIClientWithCmd(cmd)
			if search {
				return runSearchHistory(api, cmd.OutOrStdout(), limit, outputJSON)
			}
			return runUploadHistory(api, cmd.OutOrStdout(), limit, outputJSON)
		},
	}

	cmd.Flags().BoolVarP(&search, "search", "s", false, "Show question/answer history instead of uploads")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most this many entries (1-100)")

	return cmd
}

func historyPath(path string, limit int) string {
	if limit <= 0 {
		return path
	}
	return path + "?limit=" + strconv.Itoa(limit)
}

func runUploadHistory(api *APIClient, out io.Writer, limit int, outputJSON bool) error {
	var resp uploadHistoryResponse
	if err := api.Get(historyPath("/history", limit), &resp); err != nil {
		return fmt.Errorf("failed to fetch history: %w", err)
	}

	if outputJSON {
		return printJSON(out, resp.History)
	}
	if len(resp.History) == 0 {
		fmt.Fprintln(out, "No uploads yet.")
		return nil
	}
	for _, e := range resp.History {
		fmt.Fprintf(out, "%s  %s (%s, %d pages, %d chunks)\n", e.CreatedAt, e.Name, e.Type, e.Pages, e.Chunks)
	}
	return nil
}

func runSearchHistory(api *APIClient, out io.Writer, limit int, outputJSON bool) error {
	var resp searchHistoryResponse
	if err := api.Get(historyPath("/search-history", limit), &resp); err != nil {
		return fmt.Errorf("failed to fetch search history: %w", err)
	}

	if outputJSON {
		return printJSON(out, resp.History)
	}
	if len(resp.History) == 0 {
		fmt.Fprintln(out, "No questions yet.")
		return nil
	}
	for i, e := range resp.History {
		fmt.Fprintf(out, "[%s] Q: %s\n", e.Timestamp, e.Question)
		fmt.Fprintf(out, "A: %s\n", e.Answer)
		if i < len(resp.History)-1 {
			fmt.Fprintln(out, strings.Repeat("-", 40))
		}
	}
	return nil
}
