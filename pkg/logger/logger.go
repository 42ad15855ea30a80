// Package logger wraps zap with the job-scoped fields bears attaches to every
// log line: the job ID, the input path and the running phase.
package logger

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	current *zap.Logger
	mu      sync.RWMutex
)

type ctxKey string

// Context keys understood by FromContext
const (
	JobIDKey ctxKey = "job_id"
	InputKey ctxKey = "input"
	PhaseKey ctxKey = "phase"
)

// Config selects the level, encoding and sinks of a logger. The zero value is
// an info-level JSON logger writing to stderr.
type Config struct {
	Level       string
	Development bool
	// Encoding is json or console
	Encoding    string
	OutputPaths []string
}

func (c Config) withDefaults() Config {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Encoding == "" {
		c.Encoding = "json"
	}
	// reports may go to stdout
	if len(c.OutputPaths) == 0 {
		c.OutputPaths = []string{"stderr"}
	}
	return c
}

// Init builds a logger from cfg and installs it globally
func Init(cfg Config) error {
	l, err := New(cfg)
	if err != nil {
		return err
	}
	Set(l)
	return nil
}

// Set installs l as the global logger. A nil l resets to the lazy default.
func Set(l *zap.Logger) {
	mu.Lock()
	current = l
	mu.Unlock()
}

// New builds a standalone logger
func New(cfg Config) (*zap.Logger, error) {
	cfg = cfg.withDefaults()

	lvl, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", cfg.Level, err)
	}

	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "timestamp"
	enc.MessageKey = "message"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeDuration = zapcore.StringDurationEncoder
	if cfg.Development {
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zc := zap.Config{
		Level:            zap.NewAtomicLevelAt(lvl),
		Development:      cfg.Development,
		Encoding:         cfg.Encoding,
		EncoderConfig:    enc,
		OutputPaths:      cfg.OutputPaths,
		ErrorOutputPaths: []string{"stderr"},
	}
	var opts []zap.Option
	if cfg.Development {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}
	l, err := zc.Build(opts...)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l, nil
}

// Get returns the global logger. Until Init or Set is called it is an
// info-level JSON logger on stderr.
func Get() *zap.Logger {
	mu.RLock()
	l := current
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if current == nil {
		var err error
		if current, err = New(Config{}); err != nil {
			current = zap.NewNop()
		}
	}
	return current
}

// ContextWithJob tags ctx with a job ID and its input path
func ContextWithJob(ctx context.Context, jobID, input string) context.Context {
	return context.WithValue(context.WithValue(ctx, JobIDKey, jobID), InputKey, input)
}

// ContextWithPhase tags ctx with the running phase
func ContextWithPhase(ctx context.Context, phase string) context.Context {
	return context.WithValue(ctx, PhaseKey, phase)
}

// WithContext is FromContext applied to the global logger
func WithContext(ctx context.Context) *zap.Logger {
	return FromContext(ctx, Get())
}

// FromContext returns base with a field for every tag present in ctx
func FromContext(ctx context.Context, base *zap.Logger) *zap.Logger {
	var fields []zap.Field
	for _, k := range []ctxKey{JobIDKey, InputKey, PhaseKey} {
		if v, ok := ctx.Value(k).(string); ok {
			fields = append(fields, zap.String(string(k), v))
		}
	}
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}

// Debug logs on the global logger
func Debug(msg string, fields ...zap.Field) { Get().Debug(msg, fields...) }

// With returns a child of the global logger
func With(fields ...zap.Field) *zap.Logger { return Get().With(fields...) }

// Sync flushes the global logger, if one was built
func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		return nil
	}
	return current.Sync()
}
