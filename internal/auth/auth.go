package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/linkflow/linkflow/internal/session"
)

const CookieName = "linkflow_session"

var ErrInvalidCredentials = errors.New("invalid email or password")

type ctxKey struct{}

// Authenticator checks the single admin account and manages its cookie sessions.
type Authenticator struct {
	store        session.Store
	email        string
	passwordHash []byte
	ttl          time.Duration
	secureCookie bool
	now          func() time.Time
}

func New(store session.Store, email, passwordHash string, ttl time.Duration, secureCookie bool) *Authenticator {
	return &Authenticator{
		store:        store,
		email:        normalizeEmail(email),
		passwordHash: []byte(passwordHash),
		ttl:          ttl,
		secureCookie: secureCookie,
		now:          time.Now,
	}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (a *Authenticator) Login(ctx context.Context, email, password string) (string, session.Session, error) {
	// The hash is always compared so unknown emails cost the same as wrong passwords.
	hashErr := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password))
	if normalizeEmail(email) != a.email || hashErr != nil {
		return "", session.Session{}, ErrInvalidCredentials
	}

	token, err := generateToken()
	if err != nil {
		return "", session.Session{}, err
	}

	now := a.now()
	s := session.Session{
		Email:     a.email,
		CreatedAt: now,
		ExpiresAt: now.Add(a.ttl),
	}
	if err := a.store.Save(ctx, token, s); err != nil {
		return "", session.Session{}, err
	}
	return token, s, nil
}

func (a *Authenticator) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return a.store.Delete(ctx, token)
}

func (a *Authenticator) Validate(ctx context.Context, token string) (session.Session, error) {
	if token == "" {
		return session.Session{}, session.ErrNotFound
	}

	s, err := a.store.Get(ctx, token)
	if err != nil {
		return session.Session{}, err
	}
	if !a.now().Before(s.ExpiresAt) {
		_ = a.store.Delete(ctx, token)
		return session.Session{}, session.ErrNotFound
	}
	return s, nil
}

func TokenFromRequest(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func (a *Authenticator) SetCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
		HttpOnly: true,
		Secure:   a.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *Authenticator) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// RequireSession rejects requests without a live session with a JSON 401.
func (a *Authenticator) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := a.Validate(r.Context(), TokenFromRequest(r))
		if err != nil {
			if !errors.Is(err, session.ErrNotFound) {
				slog.Error("session lookup failed", "err", err)
			}
			unauthorized(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, s)))
	})
}

func FromContext(ctx context.Context) (session.Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(session.Session)
	return s, ok
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   "authentication required",
	})
}
