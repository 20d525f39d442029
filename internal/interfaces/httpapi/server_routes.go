package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerMarketplaceRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /match-requests", handler.CreateMatchRequest)
	mux.HandleFunc("GET /match-requests", handler.ListMatchRequests)
	mux.HandleFunc("GET /match-requests/{requestID}", handler.GetMatchRequest)
	mux.HandleFunc("POST /match-requests/{requestID}/accept", handler.AcceptMatchRequest)
	mux.HandleFunc("POST /match-requests/{requestID}/cancel", handler.CancelMatchRequest)
}

func registerRatingRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /ratings/compute", handler.ComputeRatings)
	mux.HandleFunc("GET /ratings/{playerID}", handler.GetPlayerRating)
	mux.HandleFunc("GET /leaderboard", handler.GetLeaderboard)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/expire-sweep", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunExpireSweepJob)))
	mux.Handle("POST /v1/internal/ratings/recompute", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RecomputeRatings)))
	mux.Handle("GET /v1/internal/match-requests/stats", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.GetMatchRequestStats)))
}
