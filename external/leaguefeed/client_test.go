package leaguefeed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-matchday/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-matchday/internal/usecase"
)

const sampleFeed = `{
  "transfer_open": false,
  "countdown": 5400,
  "players": [
    {"uid": "p-1", "name": " Manuel ", "club": "FCB", "position": "gk", "last_match": 6, "total_points": 80},
    {"uid": "", "name": "ghost", "club": "FCB", "position": "mid"}
  ],
  "clubs": [
    {"club": "FCB", "opponent": "BVB", "home": true, "team_score": 2, "opponent_score": 1},
    {"club": "BVB", "opponent": "FCB", "home": false, "team_score": null, "opponent_score": null}
  ]
}`

func newTestClient(httpClient *http.Client, retries int) *Client {
	return NewClient(ClientConfig{
		HTTPClient:   httpClient,
		MaxRetries:   retries,
		RetryBackoff: time.Millisecond,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})
}

func TestClient_FetchFeed_DecodesPayload(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("accept") != "application/json" {
			t.Errorf("unexpected accept header: %s", r.Header.Get("accept"))
		}
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	feed, err := newTestClient(srv.Client(), 0).FetchFeed(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch feed: %v", err)
	}
	if feed.TransferOpen || feed.CountdownSeconds != 5400 {
		t.Fatalf("unexpected phase: open=%v countdown=%d", feed.TransferOpen, feed.CountdownSeconds)
	}
	if len(feed.Players) != 1 || feed.Players[0].Name != "Manuel" {
		t.Fatalf("unexpected players: %+v", feed.Players)
	}
	if len(feed.Clubs) != 2 {
		t.Fatalf("unexpected club count: %d", len(feed.Clubs))
	}
	home := feed.Clubs[0]
	if !home.IsHome || home.Home == nil || *home.Home != 2 || *home.Away != 1 {
		t.Fatalf("unexpected home result: %+v", home)
	}
	if feed.Clubs[1].Home != nil {
		t.Fatalf("missing scores must stay nil")
	}
}

func TestClient_FetchFeed_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.Client(), 2).FetchFeed(context.Background(), srv.URL); err != nil {
		t.Fatalf("fetch feed after retry: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
}

func TestClient_FetchFeed_DoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "no such league", http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.Client(), 3).FetchFeed(context.Background(), srv.URL); err == nil {
		t.Fatalf("expected error for 404")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single call, got %d", calls.Load())
	}
}

func TestClient_FetchFeed_OpensCircuitAfterRepeatedFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := newTestClient(srv.Client(), 0)
	for i := 0; i < 2; i++ {
		if _, err := client.FetchFeed(context.Background(), srv.URL); err == nil {
			t.Fatalf("expected failure on attempt %d", i)
		}
	}

	_, err := client.FetchFeed(context.Background(), srv.URL)
	if !errors.Is(err, usecase.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable from open circuit, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("open circuit must not hit the server, calls=%d", calls.Load())
	}
}

func TestClient_FetchFeed_RequiresURL(t *testing.T) {
	t.Parallel()

	_, err := newTestClient(nil, 0).FetchFeed(context.Background(), "  ")
	if !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
