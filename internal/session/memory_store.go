package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process. Expired entries are hidden by Get and
// removed by Sweep.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Session
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

func (st *MemoryStore) Save(ctx context.Context, token string, s Session) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.sessions[token] = s
	return nil
}

func (st *MemoryStore) Get(ctx context.Context, token string) (Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[token]
	if !ok || !st.now().Before(s.ExpiresAt) {
		return Session{}, ErrNotFound
	}
	return s, nil
}

func (st *MemoryStore) Delete(ctx context.Context, token string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	delete(st.sessions, token)
	return nil
}

// Sweep drops expired sessions and reports how many were removed.
func (st *MemoryStore) Sweep(ctx context.Context) int {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	removed := 0
	for token, s := range st.sessions {
		if !now.Before(s.ExpiresAt) {
			delete(st.sessions, token)
			removed++
		}
	}
	return removed
}

func (st *MemoryStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
