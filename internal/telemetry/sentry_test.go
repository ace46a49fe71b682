package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_NoDSNIsNoop(t *testing.T) {
	shutdown, err := Init(Config{})

	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NotPanics(t, shutdown)
}

func TestIsNoisyTransaction(t *testing.T) {
	assert.True(t, isNoisyTransaction("GET /health"))
	assert.True(t, isNoisyTransaction("GET /metrics"))
	assert.False(t, isNoisyTransaction("POST /query"))
}

func TestStartSpan_ChildOfTransaction(t *testing.T) {
	ctx, root := StartTransaction(context.Background(), "POST /upload", "http.server")
	defer root.End()

	childCtx, child := StartSpan(ctx, "ingest.extract", SpanAttributes{DocumentID: "doc-1", Count: 2})
	defer child.End()

	span := sentry.SpanFromContext(childCtx)
	require.NotNil(t, span)
	assert.Equal(t, "doc-1", span.Tags["document_id"])
	assert.Equal(t, root.inner.SpanID, span.ParentSpanID)
}

func TestSpan_NilSafe(t *testing.T) {
	s := &Span{}

	assert.NotPanics(t, func() {
		s.SetError(errors.New("boom"))
		s.SetStatus(sentry.SpanStatusOK)
		s.SetTag("k", "v")
		s.End()
	})
}
