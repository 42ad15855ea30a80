package observability

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize_Disabled(t *testing.T) {
	shutdown, err := Initialize(DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	ctx, span := StartPhase(context.Background(), "load")
	span.SetAttribute("rows", 3)
	span.End()
	assert.False(t, span.span.SpanContext().IsValid())
	assert.NotNil(t, ctx)
}

func TestInitialize_ExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.Writer = &buf
	cfg.Environment = "test"

	shutdown, err := Initialize(cfg)
	require.NoError(t, err)

	testErr := errors.New("boom")
	err = Trace(context.Background(), "aggregate", func(ctx context.Context, span *Span) error {
		span.SetAttribute("keys", []string{"CBSA09"})
		span.SetAttribute("groups", int64(3))
		span.SetAttribute("ratio", 0.5)
		span.SetAttribute("dropped", true)
		span.SetAttribute("other", struct{}{})
		return nil
	})
	require.NoError(t, err)

	err = Trace(context.Background(), "write", func(ctx context.Context, span *Span) error {
		return testErr
	})
	assert.ErrorIs(t, err, testErr)

	require.NoError(t, shutdown(context.Background()))

	out := buf.String()
	assert.Contains(t, out, "bears.aggregate")
	assert.Contains(t, out, "bears.write")
	assert.Contains(t, out, "CBSA09")
	assert.Contains(t, out, "boom")

	// tracing stops after shutdown
	_, span := StartPhase(context.Background(), "load")
	assert.False(t, span.span.SpanContext().IsValid())
}

func TestInitialize_NeverSample(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.Writer = &buf
	cfg.SamplingRate = 0

	shutdown, err := Initialize(cfg)
	require.NoError(t, err)
	_, span := StartPhase(context.Background(), "load")
	span.End()
	require.NoError(t, shutdown(context.Background()))
	assert.Empty(t, buf.String())
}
