package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

var (
	_ Store = (*RedisStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewRedisStore(rdb), mr
}

func TestRedisStore_SaveSetsValueAndTTL(t *testing.T) {
	t.Parallel()

	st, mr := newRedisStore(t)
	ctx := context.Background()

	created := time.Now().UTC().Truncate(time.Second)
	s := Session{Email: "admin@example.com", CreatedAt: created, ExpiresAt: created.Add(time.Hour)}

	if err := st.Save(ctx, "tok-1", s); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	key := "session:tok-1"
	if !mr.Exists(key) {
		t.Fatalf("expected key %q to exist", key)
	}
	if ttl := mr.TTL(key); ttl <= 0 || ttl > time.Hour {
		t.Fatalf("expected TTL within an hour, got %v", ttl)
	}

	raw, err := mr.Get(key)
	if err != nil {
		t.Fatalf("failed to get key %q: %v", key, err)
	}
	var got Session
	if err := json.Unmarshal([]byte(raw), &got); err != nil {
		t.Fatalf("failed to unmarshal value: %v", err)
	}
	if got.Email != s.Email || !got.ExpiresAt.Equal(s.ExpiresAt) {
		t.Fatalf("unexpected stored session: %+v", got)
	}
}

func TestRedisStore_GetAndDelete(t *testing.T) {
	t.Parallel()

	st, _ := newRedisStore(t)
	ctx := context.Background()

	s := Session{Email: "admin@example.com", CreatedAt: time.Now(), ExpiresAt: time.Now().Add(time.Minute)}
	if err := st.Save(ctx, "tok", s); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	got, err := st.Get(ctx, "tok")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Email != "admin@example.com" {
		t.Fatalf("expected email, got %+v", got)
	}

	if err := st.Delete(ctx, "tok"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := st.Get(ctx, "tok"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestRedisStore_ExpiresWithTTL(t *testing.T) {
	t.Parallel()

	st, mr := newRedisStore(t)
	ctx := context.Background()

	s := Session{Email: "a@b.c", CreatedAt: time.Now(), ExpiresAt: time.Now().Add(30 * time.Second)}
	if err := st.Save(ctx, "tok", s); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	mr.FastForward(time.Minute)

	if _, err := st.Get(ctx, "tok"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after TTL, got %v", err)
	}
}

func TestRedisStore_RejectsExpiredSession(t *testing.T) {
	t.Parallel()

	st, _ := newRedisStore(t)

	err := st.Save(context.Background(), "tok", Session{ExpiresAt: time.Now().Add(-time.Second)})
	if err == nil {
		t.Fatalf("expected error for an already expired session")
	}
}

func TestRedisStore_ContextCanceled(t *testing.T) {
	t.Parallel()

	st, _ := newRedisStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := st.Save(ctx, "tok", Session{ExpiresAt: time.Now().Add(time.Minute)})
	if err == nil {
		t.Fatalf("expected error due to canceled context, got nil")
	}
}

func TestMemoryStore_ExpiryAndSweep(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	st := NewMemoryStore()
	st.now = func() time.Time { return now }
	ctx := context.Background()

	_ = st.Save(ctx, "live", Session{Email: "a", ExpiresAt: now.Add(time.Hour)})
	_ = st.Save(ctx, "dead", Session{Email: "b", ExpiresAt: now.Add(-time.Second)})

	if _, err := st.Get(ctx, "live"); err != nil {
		t.Fatalf("expected live session, got %v", err)
	}
	if _, err := st.Get(ctx, "dead"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired session to be hidden, got %v", err)
	}

	if n := st.Sweep(ctx); n != 1 {
		t.Fatalf("expected 1 swept session, got %d", n)
	}
	if st.Len() != 1 {
		t.Fatalf("expected 1 remaining session, got %d", st.Len())
	}

	_ = st.Delete(ctx, "live")
	if _, err := st.Get(ctx, "live"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
