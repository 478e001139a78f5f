package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET "+openAPIPath, handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerReaderRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leagues/{league}/transfer-state", handler.GetTransferState)
	mux.HandleFunc("GET /v1/leagues/{league}/refresh-status", handler.GetRefreshStatus)
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, guard Middleware) {
	mux.Handle("POST /v1/admin/leagues/{league}/refresh", guard(http.HandlerFunc(handler.RequestRefresh)))
	mux.Handle("POST /v1/admin/scoring/run", guard(http.HandlerFunc(handler.RunScoringPass)))
	mux.Handle(
		"GET /v1/admin/leagues/{leagueID}/users/{userID}/matchdays/{matchday}/prediction-points",
		guard(http.HandlerFunc(handler.GetHistoricalPredictionPoints)),
	)
}
