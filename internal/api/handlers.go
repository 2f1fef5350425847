package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/linkflow/linkflow/internal/auth"
	"github.com/linkflow/linkflow/internal/model"
	"github.com/linkflow/linkflow/internal/ratelimit"
	"github.com/linkflow/linkflow/internal/repo"
	"github.com/linkflow/linkflow/internal/service"
)

const maxBodyBytes = 1 << 20

type Pinger interface {
	PingContext(ctx context.Context) error
}

type StatusReporter interface {
	IsRunning() bool
}

// Deps are the collaborators the HTTP layer is built from. DB and Janitor are optional.
type Deps struct {
	Groups     repo.GroupRepository
	Numbers    repo.NumberRepository
	Clicks     repo.ClickRepository
	Selector   service.NumberSelector
	Redirector *service.Redirector
	Simulator  *service.Simulator
	Stats      *service.Stats
	Auth       *auth.Authenticator
	Limiter    *ratelimit.Limiter
	DB         Pinger
	Janitor    StatusReporter

	PublicBaseURL string
}

type Handler struct {
	Deps
}

func NewHandler(d Deps) *Handler {
	return &Handler{Deps: d}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.DB != nil {
		if err := h.DB.PingContext(r.Context()); err != nil {
			slog.Error("health check failed", "err", err)
			writeErr(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}

	data := map[string]any{"ok": true}
	if h.Janitor != nil {
		data["janitor"] = h.Janitor.IsRunning()
	}
	writeOK(w, http.StatusOK, data)
}

type okEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type errEnvelope struct {
	Success bool               `json:"success"`
	Error   string             `json:"error"`
	Fields  []model.FieldError `json:"fields,omitempty"`
	Data    any                `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, okEnvelope{Success: true, Data: data})
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errEnvelope{Error: msg})
}

// writeRepoErr translates domain and repository errors into the JSON envelope.
// Anything unrecognised is logged and reported as a bare 500.
func writeRepoErr(w http.ResponseWriter, r *http.Request, err error) {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errEnvelope{Error: ve.Error(), Fields: ve.Fields})
	case errors.Is(err, repo.ErrNotFound):
		writeErr(w, http.StatusNotFound, "not found")
	case errors.Is(err, model.ErrNoActiveNumber):
		writeErr(w, http.StatusNotFound, model.ErrNoActiveNumber.Error())
	case errors.Is(err, repo.ErrGroupHasNumbers):
		writeErr(w, http.StatusConflict, "group still has numbers; delete or move them first")
	case errors.Is(err, repo.ErrHasClicks):
		writeErr(w, http.StatusConflict, "clicks were recorded against it; deactivate it instead")
	case errors.Is(err, repo.ErrConflict):
		writeErr(w, http.StatusConflict, err.Error())
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		writeErr(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		v := &model.ValidationError{}
		v.Add("body", "must be a valid JSON object")
		return v
	}
	return nil
}

// pathID returns the {id} path value when it is a UUID.
func pathID(r *http.Request) (string, error) {
	id := r.PathValue("id")
	if !model.IsUUID(id) {
		v := &model.ValidationError{}
		v.Add("id", "must be a UUID")
		return "", v
	}
	return id, nil
}

func parseInt(raw string, def int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
