package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore keeps per-user booking sessions. Implementations must return
// (nil, nil) from Get when no session exists.
type SessionStore interface {
	Get(ctx context.Context, userID int64) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, userID int64) error
}

const defaultSessionTTL = 30 * time.Minute

// MemorySessionStore keeps sessions in process memory.
type MemorySessionStore struct {
	mu      sync.Mutex
	m       map[int64]*Session
	timeout time.Duration
}

// NewMemorySessionStore creates an in-memory store with the given idle timeout.
func NewMemorySessionStore(timeout time.Duration) *MemorySessionStore {
	if timeout <= 0 {
		timeout = defaultSessionTTL
	}
	return &MemorySessionStore{
		m:       make(map[int64]*Session),
		timeout: timeout,
	}
}

func (s *MemorySessionStore) Get(_ context.Context, userID int64) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.m[userID]
	if !ok {
		return nil, nil
	}
	if session.IsExpired(s.timeout) {
		delete(s.m, userID)
		return nil, nil
	}
	copied := *session
	return &copied, nil
}

func (s *MemorySessionStore) Save(_ context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *session
	s.m[session.UserID] = &copied
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, userID)
	return nil
}

// Cleanup removes expired sessions and returns how many were dropped.
func (s *MemorySessionStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for userID, session := range s.m {
		if session.IsExpired(s.timeout) {
			delete(s.m, userID)
			removed++
		}
	}
	return removed
}

// RedisSessionStore keeps sessions in redis so drafts survive restarts.
type RedisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisSessionStore creates a redis-backed store with the given TTL.
func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &RedisSessionStore{rdb: rdb, ttl: ttl}
}

func sessionKey(userID int64) string {
	return fmt.Sprintf("booking:session:%d", userID)
}

func (s *RedisSessionStore) Get(ctx context.Context, userID int64) (*Session, error) {
	val, err := s.rdb.Get(ctx, sessionKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	var session Session
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKey(session.UserID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, userID int64) error {
	if err := s.rdb.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
