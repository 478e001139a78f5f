package observability

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"

	"github.com/riskibarqy/fantasy-matchday/internal/config"
	"github.com/riskibarqy/fantasy-matchday/internal/platform/logging"
)

type betterStackSink struct {
	mu      sync.Mutex
	auth    string
	records []map[string]any
}

func (s *betterStackSink) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	var batch []map[string]any
	_ = sonic.Unmarshal(body, &batch)

	s.mu.Lock()
	s.auth = r.Header.Get("Authorization")
	s.records = append(s.records, batch...)
	s.mu.Unlock()
	w.WriteHeader(http.StatusAccepted)
}

func TestInitBetterStackLogger_Ships(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		log      func(*logging.Logger)
		wantMsgs []string
	}{
		{
			name: "errors are shipped",
			log: func(l *logging.Logger) {
				l.ErrorContext(context.Background(), "refresh failed", "league_type", "Bundesliga")
				l.ErrorContext(context.Background(), "scoring pass failed", "league_type", "Bundesliga")
			},
			wantMsgs: []string{"refresh failed", "scoring pass failed"},
		},
		{
			name: "below min level stays local",
			log: func(l *logging.Logger) {
				l.InfoContext(context.Background(), "transfer window opened", "league_type", "Bundesliga")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sink := &betterStackSink{}
			server := httptest.NewServer(sink)
			defer server.Close()

			logger, stop, err := InitBetterStackLogger(config.Config{
				BetterStackEnabled:  true,
				BetterStackEndpoint: server.URL,
				BetterStackToken:    "secret-token",
				BetterStackTimeout:  2 * time.Second,
				BetterStackMinLevel: logging.LevelError,
				ServiceName:         "fantasy-matchday",
				AppEnv:              config.EnvDev,
			}, logging.NewNop())
			if err != nil {
				t.Fatalf("init betterstack logger: %v", err)
			}

			tt.log(logger)

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := stop(ctx); err != nil {
				t.Fatalf("stop betterstack: %v", err)
			}

			sink.mu.Lock()
			defer sink.mu.Unlock()
			if len(sink.records) != len(tt.wantMsgs) {
				t.Fatalf("unexpected shipped records: got=%d want=%d", len(sink.records), len(tt.wantMsgs))
			}
			for i, msg := range tt.wantMsgs {
				rec := sink.records[i]
				if rec["msg"] != msg || rec["league_type"] != "Bundesliga" {
					t.Fatalf("unexpected record %d: %+v", i, rec)
				}
				if rec["service"] != "fantasy-matchday" || rec["env"] != config.EnvDev {
					t.Fatalf("missing deployment fields on record %d: %+v", i, rec)
				}
			}
			if len(tt.wantMsgs) > 0 && sink.auth != "Bearer secret-token" {
				t.Fatalf("unexpected authorization header: %q", sink.auth)
			}
		})
	}
}

func TestInitBetterStackLogger_Disabled(t *testing.T) {
	t.Parallel()

	base := logging.NewNop()
	logger, stop, err := InitBetterStackLogger(config.Config{}, base)
	if err != nil {
		t.Fatalf("init betterstack logger: %v", err)
	}
	if logger != base {
		t.Fatalf("expected base logger when betterstack is disabled")
	}
	if err := stop(context.Background()); err != nil {
		t.Fatalf("stop disabled betterstack: %v", err)
	}
}

func TestNormalizeBetterStackEndpoint(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":                                 "",
		"  in.logs.betterstack.com ":       "https://in.logs.betterstack.com",
		"http://localhost:9000":            "http://localhost:9000",
		"https://in.logs.betterstack.com/": "https://in.logs.betterstack.com/",
	}
	for in, want := range tests {
		if got := normalizeBetterStackEndpoint(in); got != want {
			t.Fatalf("normalizeBetterStackEndpoint(%q)=%q want=%q", in, got, want)
		}
	}
}
