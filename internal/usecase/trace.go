package usecase

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/riskibarqy/fantasy-matchday/internal/platform/tracing"
)

var usecaseSpans = tracing.NewScope("fantasy-matchday/internal/usecase")

func startUsecaseSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return usecaseSpans.Start(ctx, name, attrs...)
}

func leagueTypeAttr(leagueType string) attribute.KeyValue {
	return attribute.String("fantasy.league_type", leagueType)
}

func scoringTargetAttr(target string) attribute.KeyValue {
	return attribute.String("fantasy.scoring_target", strings.TrimSpace(target))
}
