package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore guarda los jti de sesiones cerradas antes de expirar.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

const revocationSweepInterval = time.Minute

type memoryRevocationStore struct {
	mu        sync.Mutex
	items     map[string]time.Time
	lastSweep time.Time
	now       func() time.Time
}

func NewMemoryRevocationStore() RevocationStore {
	return newMemoryRevocationStore(func() time.Time { return time.Now().UTC() })
}

func newMemoryRevocationStore(now func() time.Time) *memoryRevocationStore {
	return &memoryRevocationStore{
		items:     make(map[string]time.Time),
		lastSweep: now(),
		now:       now,
	}
}

// Revoke con ttl <= 0 no expira nunca.
func (s *memoryRevocationStore) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(jti) == "" {
		return nil
	}
	now := s.now()
	s.sweep(now)
	var exp time.Time
	if ttl > 0 {
		exp = now.Add(ttl)
	}
	s.items[jti] = exp
	return nil
}

func (s *memoryRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.items[jti]
	if !ok {
		return false, nil
	}
	if !exp.IsZero() && s.now().After(exp) {
		delete(s.items, jti)
		return false, nil
	}
	return true, nil
}

// sweep borra las entradas vencidas como mucho una vez por intervalo.
func (s *memoryRevocationStore) sweep(now time.Time) {
	if now.Sub(s.lastSweep) < revocationSweepInterval {
		return
	}
	s.lastSweep = now
	for jti, exp := range s.items {
		if !exp.IsZero() && now.After(exp) {
			delete(s.items, jti)
		}
	}
}

type redisKV interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisRevocationStore struct {
	client  redisKV
	prefix  string
	timeout time.Duration
}

func NewRedisRevocationStore(client *redis.Client) RevocationStore {
	if client == nil {
		return nil
	}
	return &redisRevocationStore{
		client:  client,
		prefix:  "auth:revoked:",
		timeout: 500 * time.Millisecond,
	}
}

func (s *redisRevocationStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if strings.TrimSpace(jti) == "" {
		return nil
	}
	if ttl < 0 {
		ttl = 0
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.Set(ctx, s.prefix+jti, 1, ttl).Err()
}

func (s *redisRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if strings.TrimSpace(jti) == "" {
		return false, nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	n, err := s.client.Exists(ctx, s.prefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
