package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTree() *cobra.Command {
	root := &cobra.Command{Use: "docqa", Short: "root"}
	AddHelpJSONFlag(root)

	export := &cobra.Command{
		Use:     "export",
		Aliases: []string{"x"},
		Short:   "Export an answer",
		Example: "docqa export --format pdf",
		Run:     func(cmd *cobra.Command, args []string) {},
	}
	export.Flags().StringP("format", "f", "pdf", "pdf or doc")
	export.Flags().String("question", "", "question text")
	_ = export.MarkFlagRequired("question")
	AnnotateEnv(export, "DOCQA_API_URL")

	hidden := &cobra.Command{Use: "secret", Hidden: true, Run: func(cmd *cobra.Command, args []string) {}}

	root.AddCommand(export, hidden)
	return root
}

func TestDescribe(t *testing.T) {
	s := Describe(testTree())

	assert.Equal(t, "docqa", s.Name)
	require.Len(t, s.Subcommands, 1)

	export := s.Subcommands[0]
	assert.Equal(t, "export", export.Name)
	assert.Equal(t, []string{"x"}, export.Aliases)
	assert.Equal(t, "DOCQA_API_URL", export.Env)
	assert.Equal(t, "docqa export --format pdf", export.Example)

	require.Len(t, export.Flags, 2)
	assert.Equal(t, FlagSchema{Name: "format", Shorthand: "f", Type: "string", Default: "pdf", Description: "pdf or doc"}, export.Flags[0])
	assert.Equal(t, "question", export.Flags[1].Name)
	assert.True(t, export.Flags[1].Required)
}

func TestWriteSchema(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSchema(&buf, testTree()))

	var decoded CommandSchema
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "docqa", decoded.Name)
	assert.NotContains(t, buf.String(), "help-json")
}
