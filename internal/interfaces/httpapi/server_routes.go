package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerQueryRoutes(mux *http.ServeMux, handler *Handler, serviceToken string) {
	mux.Handle("GET /v1/standings", RequireServiceToken(serviceToken, http.HandlerFunc(handler.GetStandings)))
	mux.Handle("GET /v1/leagues/{leagueID}/standings", RequireServiceToken(serviceToken, http.HandlerFunc(handler.GetStandings)))
	mux.Handle("GET /v1/leagues/{leagueID}/players/{player}/matches", RequireServiceToken(serviceToken, http.HandlerFunc(handler.ListPlayerMatches)))
	mux.Handle("GET /v1/results/candidates", RequireServiceToken(serviceToken, http.HandlerFunc(handler.FindCandidates)))
}

func registerSubmissionRoutes(mux *http.ServeMux, handler *Handler, serviceToken string, limiter *ClientRateLimiter) {
	submit := func(h http.HandlerFunc) http.Handler {
		return RequireServiceToken(serviceToken, RateLimit(limiter, h))
	}
	mux.Handle("POST /v1/results", submit(handler.SubmitResult))
	mux.Handle("POST /v1/results/text", submit(handler.SubmitText))
	mux.Handle("POST /v1/forfeits", submit(handler.SubmitForfeit))
}

func registerInternalRoutes(mux *http.ServeMux, handler *Handler, serviceToken string) {
	mux.Handle("POST /v1/internal/recalculate", RequireServiceToken(serviceToken, http.HandlerFunc(handler.Recalculate)))
}
