package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/linkflow/linkflow/internal/auth"
	"github.com/linkflow/linkflow/internal/model"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeRepoErr(w, r, err)
		return
	}

	v := &model.ValidationError{}
	if req.Email == "" {
		v.Add("email", "is required")
	}
	if req.Password == "" {
		v.Add("password", "is required")
	}
	if err := v.OrNil(); err != nil {
		writeRepoErr(w, r, err)
		return
	}

	token, s, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		slog.Warn("admin login rejected", "ip", ClientIP(r))
		writeErr(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		writeRepoErr(w, r, err)
		return
	}

	h.Auth.SetCookie(w, token, s.ExpiresAt)
	writeOK(w, http.StatusOK, sessionResponse{Email: s.Email, ExpiresAt: s.ExpiresAt})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.Logout(r.Context(), auth.TokenFromRequest(r)); err != nil {
		slog.Error("logout failed", "err", err)
	}
	h.Auth.ClearCookie(w)
	writeOK(w, http.StatusOK, map[string]any{"logged_out": true})
}

func (h *Handler) CurrentSession(w http.ResponseWriter, r *http.Request) {
	s, ok := auth.FromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "authentication required")
		return
	}
	writeOK(w, http.StatusOK, sessionResponse{Email: s.Email, ExpiresAt: s.ExpiresAt})
}
