package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	l, err := New(Config{Level: "debug", Encoding: "console"})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	_, err = New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestWithContext(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	Set(zap.New(core))
	t.Cleanup(func() { Set(nil) })

	ctx := ContextWithJob(context.Background(), "job-1", "census.csv")
	ctx = ContextWithPhase(ctx, "load")
	WithContext(ctx).Info("loaded")
	Debug("hidden")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "job-1", fields["job_id"])
	assert.Equal(t, "census.csv", fields["input"])
	assert.Equal(t, "load", fields["phase"])
}

func TestGet_Default(t *testing.T) {
	Set(nil)
	assert.NotNil(t, Get())
	assert.NotNil(t, With(zap.String("k", "v")))
}
