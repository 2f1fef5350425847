package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/linkflow/linkflow/internal/session"
)

func newTestAuth(t *testing.T) (*Authenticator, *session.MemoryStore) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("GenerateFromPassword() error: %v", err)
	}

	store := session.NewMemoryStore()
	return New(store, "Admin@Example.com", string(hash), time.Hour, true), store
}

func TestLogin_Success(t *testing.T) {
	t.Parallel()

	a, store := newTestAuth(t)

	token, s, err := a.Login(context.Background(), " admin@example.com ", "s3cret")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if token == "" {
		t.Fatalf("expected a token")
	}
	if s.Email != "admin@example.com" {
		t.Fatalf("expected normalized email, got %q", s.Email)
	}
	if store.Len() != 1 {
		t.Fatalf("expected session to be stored")
	}
}

func TestLogin_RejectsBadCredentials(t *testing.T) {
	t.Parallel()

	a, store := newTestAuth(t)

	for _, c := range []struct{ email, password string }{
		{"admin@example.com", "wrong"},
		{"other@example.com", "s3cret"},
		{"", ""},
	} {
		_, _, err := a.Login(context.Background(), c.email, c.password)
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("%q/%q: expected ErrInvalidCredentials, got %v", c.email, c.password, err)
		}
	}
	if store.Len() != 0 {
		t.Fatalf("expected no sessions, got %d", store.Len())
	}
}

func TestValidate_ExpiredSessionIsRemoved(t *testing.T) {
	t.Parallel()

	a, store := newTestAuth(t)
	ctx := context.Background()

	token, _, err := a.Login(ctx, "admin@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	a.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	if _, err := a.Validate(ctx, token); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected expired session to be deleted")
	}
}

func TestRequireSession(t *testing.T) {
	t.Parallel()

	a, _ := newTestAuth(t)
	token, _, err := a.Login(context.Background(), "admin@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	var gotEmail string
	h := a.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, _ := FromContext(r.Context())
		gotEmail = s.Email
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("without cookie", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/groups", nil))

		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
		if !strings.Contains(rr.Body.String(), `"success":false`) {
			t.Fatalf("expected error envelope, got %q", rr.Body.String())
		}
	})

	t.Run("with cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/groups", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		if rr.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rr.Code)
		}
		if gotEmail != "admin@example.com" {
			t.Fatalf("expected session in context, got %q", gotEmail)
		}
	})
}

func TestSetCookie_Attributes(t *testing.T) {
	t.Parallel()

	a, _ := newTestAuth(t)
	rr := httptest.NewRecorder()
	a.SetCookie(rr, "tok", time.Now().Add(time.Hour))

	cookies := rr.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != CookieName || c.Value != "tok" {
		t.Fatalf("unexpected cookie %+v", c)
	}
	if !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteLaxMode {
		t.Fatalf("expected HttpOnly, Secure, SameSite=Lax, got %+v", c)
	}
}
