package client

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// UploadedFile is one entry of the upload response.
type UploadedFile struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Pages  int    `json:"pages"`
	Chunks int    `json:"chunks"`
	Size   int64  `json:"size"`
	Type   string `json:"type"`
}

// UploadResponse is the body returned by POST /upload.
type UploadResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Files   []UploadedFile `json:"files"`
}

// UploadCmd creates the upload command.
func UploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "upload <file>...",
		Short:   "Upload documents",
		Long:    "Uploads PDF, TXT or Word documents so questions can be asked about them.",
		Example: "docqa upload report.pdf notes.txt",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runUpload(NewAPIClientWithCmd(cmd), cmd.OutOrStdout(), args, outputJSON)
		},
	}
}

func runUpload(api *APIClient, out io.Writer, paths []string, outputJSON bool) error {
	var resp UploadResponse
	if err := api.UploadFiles("/upload", "files", paths, &resp); err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	if outputJSON {
		return printJSON(out, resp)
	}

	fmt.Fprintf(out, "Uploaded %d file(s):\n", len(resp.Files))
	for _, f := range resp.Files {
		fmt.Fprintf(out, "  %s  %s (%s, %d pages, %d chunks, %d bytes)\n", f.ID, f.Name, f.Type, f.Pages, f.Chunks, f.Size)
	}
	return nil
}
