package httpapi

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/riskibarqy/fantasy-matchday/internal/platform/logging"
	"github.com/riskibarqy/fantasy-matchday/internal/usecase"
)

const adminTokenHeader = "X-Admin-Token"

// Middleware wraps a handler. chain applies them so the first one listed runs outermost.
type Middleware func(http.Handler) http.Handler

func chain(h http.Handler, mws ...Middleware) http.Handler {
	for _, mw := range slices.Backward(mws) {
		h = mw(h)
	}
	return h
}

// RequireAdminToken guards administrative routes. An empty token leaves them open, which is how
// local development runs.
func RequireAdminToken(token string) Middleware {
	expected := []byte(strings.TrimSpace(token))
	return func(next http.Handler) http.Handler {
		if len(expected) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := []byte(strings.TrimSpace(r.Header.Get(adminTokenHeader)))
			if subtle.ConstantTimeCompare(provided, expected) != 1 {
				writeError(r.Context(), w, fmt.Errorf("%w: invalid admin token", usecase.ErrUnauthorized))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// RequestLogging writes one http_request record per call. Probe traffic logs at debug.
func RequestLogging(logger *logging.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			ctx := r.Context()
			args := []any{
				"http_method", r.Method,
				"http_path", r.URL.Path,
				"http_status", rec.status,
				"client_ip", resolveClientIP(ctx, r),
				"duration_ms", time.Since(started).Milliseconds(),
			}
			if isProbePath(r.URL.Path) {
				logger.DebugContext(ctx, "http_request", args...)
				return
			}
			logger.InfoContext(ctx, "http_request", args...)
		})
	}
}

// RequestTracing opens the server span. Probes are not traced.
func RequestTracing() Middleware {
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "fantasy-matchday-http",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
			otelhttp.WithFilter(func(r *http.Request) bool {
				return shouldTraceRequest(r.URL.Path)
			}),
		)
	}
}

var probePaths = []string{"/healthz", "/health", "/livez", "/readyz"}

func isProbePath(path string) bool {
	return slices.Contains(probePaths, strings.ToLower(strings.TrimSpace(path)))
}

func shouldTraceRequest(path string) bool {
	return !isProbePath(path)
}

// CORS answers preflights itself and decorates allowed cross-origin calls. "*" allows any origin.
func CORS(allowedOrigins []string) Middleware {
	allowAll := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		switch origin = strings.TrimSpace(origin); origin {
		case "":
		case "*":
			allowAll = true
		default:
			allowed[origin] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			_, ok := allowed[origin]
			if allowAll || ok {
				h := w.Header()
				if allowAll {
					h.Set("Access-Control-Allow-Origin", "*")
				} else {
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
				h.Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type,Accept,"+adminTokenHeader)
				h.Set("Access-Control-Max-Age", "600")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
