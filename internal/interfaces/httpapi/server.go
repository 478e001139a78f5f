package httpapi

import (
	"net/http"

	"github.com/riskibarqy/fantasy-matchday/internal/platform/logging"
)

// RouterConfig carries the knobs of the HTTP surface.
type RouterConfig struct {
	SwaggerEnabled     bool
	CORSAllowedOrigins []string
	AdminToken         string
}

func NewRouter(handler *Handler, logger *logging.Logger, cfg RouterConfig) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler, cfg.SwaggerEnabled)
	registerReaderRoutes(mux, handler)
	registerAdminRoutes(mux, handler, RequireAdminToken(cfg.AdminToken))

	return chain(mux,
		RequestTracing(),
		RequestLogging(logger),
		CORS(cfg.CORSAllowedOrigins),
		recoverPanic(logger),
	)
}

func recoverPanic(logger *logging.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.ErrorContext(r.Context(), "panic recovered", "panic", rec, "http_path", r.URL.Path)
					writeInternalError(r.Context(), w)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
