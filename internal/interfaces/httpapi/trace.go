package httpapi

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	"github.com/riskibarqy/fantasy-matchday/internal/platform/tracing"
)

// Only handler spans are kept; middleware and response helpers ride on the request span.
var apiSpans = tracing.NewScope("fantasy-matchday/internal/interfaces/httpapi", tracing.OnlyPrefixed("httpapi.Handler."))

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return apiSpans.Start(ctx, name)
}
