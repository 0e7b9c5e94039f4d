package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists sessions between requests.
type Store interface {
	// Load returns the session with the given ID, or nil when it does not
	// exist or has expired.
	Load(ctx context.Context, id string) (*Session, error)
	// Save writes the session and refreshes its TTL.
	Save(ctx context.Context, s *Session) error
	// Delete removes the session.
	Delete(ctx context.Context, id string) error
}

// RedisStore keeps sessions as JSON values in Redis with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return "session:" + id
}

func (st *RedisStore) Load(ctx context.Context, id string) (*Session, error) {
	data, err := st.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if s.Basket == nil {
		s.Basket = make(map[string]int)
	}
	return &s, nil
}

func (st *RedisStore) Save(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := st.client.Set(ctx, sessionKey(s.ID), data, st.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (st *RedisStore) Delete(ctx context.Context, id string) error {
	if err := st.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// MemoryStore is an in-process Store used by tests.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (st *MemoryStore) Load(_ context.Context, id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, nil
	}
	copied := *s
	copied.Basket = make(map[string]int, len(s.Basket))
	for k, v := range s.Basket {
		copied.Basket[k] = v
	}
	return &copied, nil
}

func (st *MemoryStore) Save(_ context.Context, s *Session) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	copied := *s
	copied.Basket = make(map[string]int, len(s.Basket))
	for k, v := range s.Basket {
		copied.Basket[k] = v
	}
	st.sessions[s.ID] = &copied
	return nil
}

func (st *MemoryStore) Delete(_ context.Context, id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
	return nil
}
