package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/khoahotran/skillpath/internal/domain/profile"
)

const sessionKeyPrefix = "skillpath:session:"

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

type redisSessionRepo struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisSessionRepo stores each session as one JSON value. Every save
// refreshes the TTL.
func NewRedisSessionRepo(rdb *redis.Client, ttl time.Duration) profile.SessionRepository {
	return &redisSessionRepo{rdb: rdb, ttl: ttl}
}

func (r *redisSessionRepo) Load(ctx context.Context, sessionID string) (*profile.Profile, error) {
	raw, err := r.rdb.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, profile.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	p := &profile.Profile{}
	if err := json.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return p, nil
}

func (r *redisSessionRepo) Save(ctx context.Context, sessionID string, p *profile.Profile) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := r.rdb.Set(ctx, sessionKey(sessionID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *redisSessionRepo) Delete(ctx context.Context, sessionID string) error {
	if err := r.rdb.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// memorySessionRepo backs local-only mode and tests. Profiles are stored as
// JSON so callers never share memory with the store.
type memorySessionRepo struct {
	mu       sync.RWMutex
	sessions map[string][]byte
}

func NewMemorySessionRepo() profile.SessionRepository {
	return &memorySessionRepo{sessions: make(map[string][]byte)}
}

func (r *memorySessionRepo) Load(_ context.Context, sessionID string) (*profile.Profile, error) {
	r.mu.RLock()
	raw, ok := r.sessions[sessionID]
	r.mu.RUnlock()
	if !ok {
		return nil, profile.ErrSessionNotFound
	}
	p := &profile.Profile{}
	if err := json.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return p, nil
}

func (r *memorySessionRepo) Save(_ context.Context, sessionID string, p *profile.Profile) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	r.mu.Lock()
	r.sessions[sessionID] = raw
	r.mu.Unlock()
	return nil
}

func (r *memorySessionRepo) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	delete(r.sessions, sessionID)
	r.mu.Unlock()
	return nil
}
