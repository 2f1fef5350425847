package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/linkflow/linkflow/internal/model"
	"github.com/linkflow/linkflow/internal/repo"
	"github.com/linkflow/linkflow/internal/service"
)

// SimulateClick runs the selection and recording path for a slug and returns the
// step log instead of redirecting. Steps are only included with verbose=true.
func (h *Handler) SimulateClick(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	slug := strings.TrimSpace(q.Get("slug"))
	if slug == "" {
		v := &model.ValidationError{}
		v.Add("slug", "is required")
		writeRepoErr(w, r, v)
		return
	}
	verbose, _ := strconv.ParseBool(q.Get("verbose"))

	rep := h.Simulator.Simulate(r.Context(), service.SimulationRequest{
		Slug:      slug,
		Phone:     model.Digits(q.Get("phone")),
		IP:        ClientIP(r),
		UserAgent: r.UserAgent(),
		Referrer:  r.Referer(),
	})
	if !verbose {
		rep.Steps = nil
	}

	if err := rep.Err(); err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, model.ErrNoActiveNumber) || errors.Is(err, repo.ErrNotFound) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, errEnvelope{Error: err.Error(), Data: rep})
		return
	}
	writeOK(w, http.StatusOK, rep)
}
