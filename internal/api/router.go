package api

import "net/http"

func Router(h *Handler) http.Handler {
	mux := http.NewServeMux()

	limitedRedirect := func(fn http.HandlerFunc) http.Handler {
		return h.Limiter.Guard(limiterKey, http.HandlerFunc(h.rateLimitedRedirect), fn)
	}
	admin := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, h.Auth.RequireSession(fn))
	}

	mux.HandleFunc("GET /health", h.Health)

	mux.Handle("GET /l/{slug}", limitedRedirect(h.ShortLink))
	mux.Handle("GET /api/redirect/{slug}", limitedRedirect(h.DirectRedirect))
	mux.HandleFunc("GET /redirect", h.RedirectPage)
	mux.HandleFunc("GET /error", h.ErrorPage)
	mux.HandleFunc("GET /not-found", h.ErrorPage)

	mux.Handle("POST /api/auth/login", h.Limiter.Middleware(limiterKey, http.HandlerFunc(h.Login)))
	mux.HandleFunc("POST /api/auth/logout", h.Logout)
	admin("GET /api/auth/session", h.CurrentSession)

	admin("GET /api/groups", h.ListGroups)
	admin("POST /api/groups", h.CreateGroup)
	admin("GET /api/groups/{id}", h.GetGroup)
	admin("PUT /api/groups/{id}", h.UpdateGroup)
	admin("DELETE /api/groups/{id}", h.DeleteGroup)

	admin("GET /api/numbers", h.ListNumbers)
	admin("POST /api/numbers", h.CreateNumber)
	admin("GET /api/numbers/next", h.NextNumber)
	admin("GET /api/numbers/{id}", h.GetNumber)
	admin("PUT /api/numbers/{id}", h.UpdateNumber)
	admin("DELETE /api/numbers/{id}", h.DeleteNumber)

	admin("GET /api/stats/filtered", h.FilteredStats)
	admin("GET /api/analytics/group/{id}", h.GroupAnalytics)
	admin("GET /api/clicks/export", h.ExportClicks)

	admin("GET /api/debug/simulate-click", h.SimulateClick)

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("linkflow"))
	})
	mux.HandleFunc("/", h.ErrorPage)

	return mux
}
