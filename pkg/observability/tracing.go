// Package observability traces bears jobs with OpenTelemetry. Spans are
// exported as JSON to stderr when tracing is enabled and are no-ops
// otherwise.
package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const phaseSpanPrefix = "bears."

// Span is the span of one job phase
type Span struct {
	span trace.Span
}

// StartPhase opens the span "bears.<phase>" under ctx
func StartPhase(ctx context.Context, phase string) (context.Context, *Span) {
	ctx, s := GetTracer().Start(ctx, phaseSpanPrefix+phase,
		trace.WithAttributes(attribute.String("job.phase", phase)))
	return ctx, &Span{span: s}
}

// SetAttribute records key on the span. Values without a native attribute
// type are stored as their %v form.
func (s *Span) SetAttribute(key string, value interface{}) {
	s.span.SetAttributes(toAttribute(key, value))
}

func toAttribute(key string, value interface{}) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case []string:
		return attribute.StringSlice(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	}
	return attribute.String(key, fmt.Sprint(value))
}

// Finish sets the span status from err and ends it
func (s *Span) Finish(err error) {
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	} else {
		s.span.SetStatus(codes.Ok, "")
	}
	s.span.End()
}

// End ends the span without a status
func (s *Span) End() { s.span.End() }

// Trace runs fn inside the span of phase and returns its error
func Trace(ctx context.Context, phase string, fn func(ctx context.Context, span *Span) error) (err error) {
	ctx, span := StartPhase(ctx, phase)
	defer func() { span.Finish(err) }()
	return fn(ctx, span)
}
