package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/linkflow/linkflow/internal/model"
	"github.com/linkflow/linkflow/internal/service"
)

type redirectMode int

const (
	// modeDirect sends the visitor straight to wa.me.
	modeDirect redirectMode = iota
	// modeInterstitial sends the visitor through the /redirect page first.
	modeInterstitial
)

func (h *Handler) ShortLink(w http.ResponseWriter, r *http.Request) {
	h.redirect(w, r, modeInterstitial)
}

func (h *Handler) DirectRedirect(w http.ResponseWriter, r *http.Request) {
	h.redirect(w, r, modeDirect)
}

func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, mode redirectMode) {
	slug := r.PathValue("slug")

	defer func() {
		if p := recover(); p != nil {
			slog.Error("redirect panic recovered", "slug", slug, "panic", p)
			h.redirectToError(w, r)
		}
	}()

	out, err := h.Redirector.Resolve(r.Context(), service.Visit{
		Slug:      slug,
		IP:        ClientIP(r),
		UserAgent: r.UserAgent(),
		Referrer:  r.Referer(),
	})
	if err != nil {
		if errors.Is(err, model.ErrNoActiveNumber) {
			slog.Info("no active number for slug", "slug", slug)
		} else {
			slog.Error("redirect failed", "slug", slug, "err", err)
		}
		h.redirectToError(w, r)
		return
	}

	target := out.Destination
	if mode == modeInterstitial {
		target = h.interstitialURL(out, slug)
	}

	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, target, http.StatusFound)
}

func (h *Handler) interstitialURL(out service.Outcome, slug string) string {
	q := url.Values{}
	q.Set("to", out.Destination)
	q.Set("phone", out.Phone)
	q.Set("group", slug)
	return h.PublicBaseURL + "/redirect?" + q.Encode()
}

func (h *Handler) redirectToError(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, h.PublicBaseURL+"/error", http.StatusFound)
}

// rateLimitedRedirect sends throttled visitors to the error page like any other
// failed redirect.
func (h *Handler) rateLimitedRedirect(w http.ResponseWriter, r *http.Request) {
	slog.Warn("redirect rate limited", "slug", r.PathValue("slug"), "client", limiterKey(r))
	h.redirectToError(w, r)
}

// RedirectPage renders the interstitial page. Only wa.me targets are followed.
func (h *Handler) RedirectPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	to := q.Get("to")
	if !service.IsWhatsAppURL(to) {
		h.redirectToError(w, r)
		return
	}

	renderPage(w, http.StatusOK, redirectTmpl, redirectPageData{
		Target: to,
		Phone:  q.Get("phone"),
		Group:  q.Get("group"),
	})
}

func (h *Handler) ErrorPage(w http.ResponseWriter, r *http.Request) {
	renderPage(w, http.StatusNotFound, errorTmpl, nil)
}
