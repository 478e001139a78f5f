package observability

import (
	"errors"
	"testing"

	otellog "go.opentelemetry.io/otel/log"
)

type phase string

func TestIsQuietLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		msg  string
		args []any
		want bool
	}{
		{name: "health probe", msg: "http_request", args: []any{"http_path", "/healthz"}, want: true},
		{name: "readiness probe", msg: "http_request", args: []any{"http_status", 200, "http_path", "/readyz"}, want: true},
		{name: "api request", msg: "http_request", args: []any{"http_path", "/v1/leagues/Bundesliga/transfer-state"}},
		{name: "health path on other event", msg: "refresh failed", args: []any{"http_path", "/healthz"}},
		{name: "lock contention", msg: "refresh already running", args: []any{"league_type", "Bundesliga"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := isQuietLog(tt.msg, tt.args); got != tt.want {
				t.Fatalf("isQuietLog(%q)=%v want=%v", tt.msg, got, tt.want)
			}
		})
	}
}

func TestLogAttributes(t *testing.T) {
	t.Parallel()

	attrs := logAttributes([]any{"league_type", "Bundesliga", "countdown", int64(25), 7, "x", "payload"})
	if len(attrs) != 4 {
		t.Fatalf("unexpected attribute count: got=%d want=4", len(attrs))
	}
	if attrs[0].Key != "league_type" || attrs[0].Value.AsString() != "Bundesliga" {
		t.Fatalf("unexpected league_type attribute: %+v", attrs[0])
	}
	if attrs[1].Key != "countdown" || attrs[1].Value.AsInt64() != 25 {
		t.Fatalf("unexpected countdown attribute: %+v", attrs[1])
	}
	if attrs[2].Key != "arg_2" {
		t.Fatalf("unexpected fallback key: got=%s want=arg_2", attrs[2].Key)
	}
	if attrs[3].Key != "payload" || attrs[3].Value.Kind() != otellog.KindEmpty {
		t.Fatalf("unexpected trailing attribute: %+v", attrs[3])
	}
}

func TestOtelValue(t *testing.T) {
	t.Parallel()

	if v := otelValue(phase("matchday"), 0); v.Kind() != otellog.KindString || v.AsString() != "matchday" {
		t.Fatalf("unexpected named string value: %+v", v)
	}
	if v := otelValue(uint8(3), 0); v.AsInt64() != 3 {
		t.Fatalf("unexpected uint value: %+v", v)
	}
	if v := otelValue(errors.New("lock held"), 0); v.AsString() != "lock held" {
		t.Fatalf("unexpected error value: %+v", v)
	}
	if v := otelValue((*int)(nil), 0); v.Kind() != otellog.KindEmpty {
		t.Fatalf("unexpected nil pointer value: %+v", v)
	}

	v := otelValue(map[string]any{"players": 11, "open": true, "roles": []string{"GK", "DEF"}}, 0)
	if v.Kind() != otellog.KindMap {
		t.Fatalf("unexpected map kind: %s", v.Kind())
	}
	items := v.AsMap()
	if len(items) != 3 || items[0].Key != "open" || items[2].Value.Kind() != otellog.KindSlice {
		t.Fatalf("unexpected map items: %+v", items)
	}
}
