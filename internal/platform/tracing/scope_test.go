package tracing

import (
	"context"
	"errors"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestScope_Allows(t *testing.T) {
	t.Parallel()

	handlers := NewScope("test", OnlyPrefixed("httpapi.Handler."))
	all := NewScope("test")

	tests := []struct {
		name  string
		scope *Scope
		in    string
		want  bool
	}{
		{name: "handler span", scope: handlers, in: "httpapi.Handler.GetTransferState", want: true},
		{name: "middleware span", scope: handlers, in: "httpapi.RequestLogging", want: false},
		{name: "helper span", scope: handlers, in: "httpapi.writeError", want: false},
		{name: "unfiltered scope", scope: all, in: "usecase.RefreshGate.Acquire", want: true},
		{name: "blank name", scope: all, in: "  ", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.scope.Allows(tt.in); got != tt.want {
				t.Fatalf("Allows(%q)=%v want=%v", tt.in, got, tt.want)
			}
		})
	}
}

func TestScope_StartNeedsParent(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	scope := &Scope{tracer: provider.Tracer("test")}

	_, orphan := scope.Start(context.Background(), "usecase.orphan")
	orphan.End()
	if got := len(recorder.Ended()); got != 0 {
		t.Fatalf("unexpected spans without parent: got=%d want=0", got)
	}

	ctx, parent := provider.Tracer("test").Start(context.Background(), "tick")
	_, child := scope.Start(ctx, "usecase.child")
	Fail(child, errors.New("feed down"))
	Fail(child, nil)
	child.End()
	parent.End()

	ended := recorder.Ended()
	if len(ended) != 2 {
		t.Fatalf("unexpected ended spans: got=%d want=2", len(ended))
	}
	if ended[0].Name() != "usecase.child" || ended[0].Status().Description != "feed down" {
		t.Fatalf("unexpected child span: name=%s status=%+v", ended[0].Name(), ended[0].Status())
	}
}
