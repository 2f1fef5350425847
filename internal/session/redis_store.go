package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func key(token string) string {
	return "session:" + token
}

// Save stores s until s.ExpiresAt; Redis expires the key on its own.
func (st *RedisStore) Save(ctx context.Context, token string, s Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return errors.New("session already expired")
	}

	s.CreatedAt = s.CreatedAt.UTC()
	s.ExpiresAt = s.ExpiresAt.UTC()

	b, err := json.Marshal(s)
	if err != nil {
		return err
	}

	return st.rdb.Set(ctx, key(token), b, ttl).Err()
}

func (st *RedisStore) Get(ctx context.Context, token string) (Session, error) {
	raw, err := st.rdb.Get(ctx, key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, err
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return Session{}, err
	}
	return s, nil
}

func (st *RedisStore) Delete(ctx context.Context, token string) error {
	return st.rdb.Del(ctx, key(token)).Err()
}
