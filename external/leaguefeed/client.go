package leaguefeed

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/riskibarqy/fantasy-matchday/internal/platform/logging"
	"github.com/riskibarqy/fantasy-matchday/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-matchday/internal/usecase"
)

const (
	defaultTimeout   = 20 * time.Second
	maxResponseBytes = 16 << 20
)

var errFeedTransient = crerr.New("league feed transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	Timeout        time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client downloads league type feeds. Concurrent fetches of one URL share a single request.
type Client struct {
	httpClient   *http.Client
	maxRetries   int
	retryBackoff time.Duration
	logger       *logging.Logger
	breaker      *resilience.CircuitBreaker
	flight       resilience.SingleFlight[[]byte]
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		copied := *httpClient
		copied.Timeout = defaultTimeout
		httpClient = &copied
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}
	breaker := resilience.NewCircuitBreaker(cfg.CircuitBreaker,
		resilience.WithStateChange(func(from, to resilience.CircuitState) {
			logger.Warn("league feed circuit breaker changed state", "from", string(from), "to", string(to))
		}),
	)

	return &Client{
		httpClient:   httpClient,
		maxRetries:   max(cfg.MaxRetries, 0),
		retryBackoff: backoff,
		logger:       logger,
		breaker:      breaker,
	}
}

func (c *Client) FetchFeed(ctx context.Context, feedURL string) (usecase.ExternalFeed, error) {
	feedURL = strings.TrimSpace(feedURL)
	if feedURL == "" {
		return usecase.ExternalFeed{}, fmt.Errorf("%w: feed url is required", usecase.ErrInvalidInput)
	}

	raw, _, err := c.flight.Do(feedURL, func() ([]byte, error) {
		var body []byte
		err := c.breaker.Do(func() error {
			var reqErr error
			body, reqErr = c.executeRequest(ctx, feedURL)
			return reqErr
		}, isCircuitFailure)
		return body, err
	})
	if stderrors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "league feed circuit breaker rejected request", "state", string(c.breaker.State()))
		return usecase.ExternalFeed{}, fmt.Errorf("%w: league feed is temporarily unavailable", usecase.ErrProviderUnavailable)
	}
	if err != nil {
		return usecase.ExternalFeed{}, err
	}

	var payload feedPayload
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return usecase.ExternalFeed{}, crerr.Wrap(err, "decode league feed")
	}
	return payload.toExternal(), nil
}

func (c *Client) executeRequest(ctx context.Context, feedURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		raw, status, err := c.get(ctx, feedURL)
		switch {
		case err != nil:
			lastErr = crerr.Mark(crerr.Wrap(err, "send feed request"), errFeedTransient)
		case status >= 200 && status < 300:
			return raw, nil
		case isRetryableStatus(status):
			lastErr = crerr.Mark(crerr.Newf("feed status=%d body=%s", status, abbreviateBody(raw)), errFeedTransient)
		default:
			return nil, crerr.Newf("feed status=%d body=%s", status, abbreviateBody(raw))
		}

		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * c.retryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	c.logger.WarnContext(ctx, "league feed request failed", "url", feedURL, "error", lastErr)
	return nil, lastErr
}

func (c *Client) get(ctx context.Context, feedURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, 0, crerr.Wrap(err, "build feed request")
	}
	req.Header.Set("accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if _, err := buf.ReadFrom(io.LimitReader(resp.Body, maxResponseBytes)); err != nil {
		return nil, resp.StatusCode, crerr.Wrap(err, "read feed body")
	}
	// The pooled buffer is reused after return.
	return append([]byte(nil), buf.B...), resp.StatusCode, nil
}

func isCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return crerr.Is(err, errFeedTransient) || stderrors.Is(err, context.DeadlineExceeded)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
