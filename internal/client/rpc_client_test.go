package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/linkflow/linkflow/internal/model"
)

func TestRPCClient_SelectNextNumber_Success(t *testing.T) {
	t.Parallel()

	type gotReq struct {
		Method string
		Path   string
		APIKey string
		Auth   string
		Body   []byte
	}

	var captured gotReq

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.Method = r.Method
		captured.Path = r.URL.Path
		captured.APIKey = r.Header.Get("apikey")
		captured.Auth = r.Header.Get("Authorization")

		b, _ := ioReadAll(r)
		captured.Body = b

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"number_id":"n1","phone":"11988887777","final_message":"Olá!"}]`))
	}))
	defer srv.Close()

	c := NewRPCClient(srv.URL+"/", "secret")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	sel, err := c.SelectNextNumber(ctx, "suporte-tecnico")
	if err != nil {
		t.Fatalf("SelectNextNumber() error: %v", err)
	}
	if sel.NumberID != "n1" || sel.Phone != "11988887777" || sel.FinalMessage != "Olá!" {
		t.Fatalf("unexpected selection: %+v", sel)
	}

	if captured.Method != http.MethodPost {
		t.Fatalf("expected method POST, got %q", captured.Method)
	}
	if captured.Path != "/rest/v1/rpc/get_next_number_for_group" {
		t.Fatalf("unexpected path %q", captured.Path)
	}
	if captured.APIKey != "secret" || captured.Auth != "Bearer secret" {
		t.Fatalf("expected api key headers, got apikey=%q auth=%q", captured.APIKey, captured.Auth)
	}

	var req nextNumberRequest
	if err := json.Unmarshal(captured.Body, &req); err != nil {
		t.Fatalf("failed to decode request json: %v body=%q", err, string(captured.Body))
	}
	if req.GroupSlug != "suporte-tecnico" {
		t.Fatalf("expected group_slug %q, got %q", "suporte-tecnico", req.GroupSlug)
	}
}

func TestRPCClient_SelectNextNumber_SingleObject(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"number_id":"n2","phone":"5511999999999","final_message":null}`))
	}))
	defer srv.Close()

	sel, err := NewRPCClient(srv.URL, "k").SelectNextNumber(context.Background(), "vendas")
	if err != nil {
		t.Fatalf("SelectNextNumber() error: %v", err)
	}
	if sel.NumberID != "n2" || sel.FinalMessage != "" {
		t.Fatalf("unexpected selection: %+v", sel)
	}
}

func TestRPCClient_SelectNextNumber_EmptyMeansNoNumber(t *testing.T) {
	t.Parallel()

	for _, body := range []string{`[]`, `null`, ``} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))

		_, err := NewRPCClient(srv.URL, "k").SelectNextNumber(context.Background(), "inexistente")
		srv.Close()

		if !errors.Is(err, model.ErrNoActiveNumber) {
			t.Fatalf("body %q: expected ErrNoActiveNumber, got %v", body, err)
		}
	}
}

func TestRPCClient_SelectNextNumber_EmptySlugSkipsCall(t *testing.T) {
	t.Parallel()

	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	_, err := NewRPCClient(srv.URL, "k").SelectNextNumber(context.Background(), "")
	if !errors.Is(err, model.ErrNoActiveNumber) {
		t.Fatalf("expected ErrNoActiveNumber, got %v", err)
	}
	if called {
		t.Fatalf("expected no request for an empty slug")
	}
}

func TestRPCClient_SelectNextNumber_Non200_ReturnsErrorWithBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("invalid api key"))
	}))
	defer srv.Close()

	_, err := NewRPCClient(srv.URL, "bad").SelectNextNumber(context.Background(), "vendas")
	if err == nil {
		t.Fatalf("expected error, got nil")
	}

	msg := err.Error()
	if !strings.Contains(msg, "unexpected status code: 401") {
		t.Fatalf("expected error to mention status code, got: %v", err)
	}
	if !strings.Contains(msg, `body="invalid api key"`) {
		t.Fatalf("expected error to include body, got: %v", err)
	}
	if errors.Is(err, model.ErrNoActiveNumber) {
		t.Fatalf("upstream failure must not look like an empty group")
	}
}

func TestRPCClient_SelectNextNumber_InvalidJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("THIS IS NOT JSON"))
	}))
	defer srv.Close()

	_, err := NewRPCClient(srv.URL, "k").SelectNextNumber(context.Background(), "vendas")
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "failed to decode json") {
		t.Fatalf("expected decode error, got: %v", err)
	}
}

func TestRPCClient_SelectNextNumber_ContextCanceled(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewRPCClient(srv.URL, "k").SelectNextNumber(ctx, "vendas")
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !strings.Contains(strings.ToLower(err.Error()), "context") &&
		!strings.Contains(strings.ToLower(err.Error()), "deadline") {
		t.Fatalf("expected context/deadline error, got: %v", err)
	}
}

func ioReadAll(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(r.Body)
}
