package tracing

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var noopSpan = trace.SpanFromContext(context.Background())

// Scope starts child spans on behalf of one package. It never opens a root span, so work
// reached from an untraced request (health probes, the scheduler before the first tick span)
// stays out of the trace backend.
type Scope struct {
	tracer   trace.Tracer
	prefixes []string
}

type ScopeOption func(*Scope)

// OnlyPrefixed limits span creation to names starting with one of the prefixes.
func OnlyPrefixed(prefixes ...string) ScopeOption {
	return func(s *Scope) {
		s.prefixes = append(s.prefixes, prefixes...)
	}
}

func NewScope(instrumentation string, opts ...ScopeOption) *Scope {
	s := &Scope{tracer: otel.Tracer(instrumentation)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens a child span of the span in ctx, or returns a no-op span when there is none.
func (s *Scope) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if !s.Allows(name) {
		return ctx, noopSpan
	}
	if !trace.SpanFromContext(ctx).SpanContext().IsValid() {
		return ctx, noopSpan
	}
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// Allows reports whether Start would consider name at all.
func (s *Scope) Allows(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	if len(s.prefixes) == 0 {
		return true
	}
	for _, prefix := range s.prefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// Fail marks the span as failed. A nil error leaves the span untouched.
func Fail(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
