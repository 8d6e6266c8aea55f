package service

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
)

// Cada fallo es un miembro del sorted set con su instante en ms como score.
// ARGV[1] es el corte de la ventana; lo que quede en o por debajo se descarta.
const redisLoginCountScript = `
redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", ARGV[1])
return redis.call("ZCARD", KEYS[1])
`

const redisLoginFailureScript = `
redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", ARGV[1])
redis.call("ZADD", KEYS[1], ARGV[2], ARGV[3])
redis.call("PEXPIRE", KEYS[1], ARGV[4])
return redis.call("ZCARD", KEYS[1])
`

type loginRedisClient interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisLoginRateLimiter struct {
	client  loginRedisClient
	window  time.Duration
	max     int
	prefix  string
	timeout time.Duration
	now     func() time.Time
}

// NewRedisLoginRateLimiter comparte la ventana de fallos entre instancias del servicio.
func NewRedisLoginRateLimiter(client *redis.Client, window time.Duration, max int) LoginRateLimiter {
	if client == nil {
		return nil
	}
	return newRedisLoginRateLimiter(client, window, max, func() time.Time { return time.Now().UTC() })
}

func newRedisLoginRateLimiter(client loginRedisClient, window time.Duration, max int, now func() time.Time) *redisLoginRateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &redisLoginRateLimiter{
		client:  client,
		window:  window,
		max:     max,
		prefix:  "login:rl:",
		timeout: 500 * time.Millisecond,
		now:     now,
	}
}

// Allow falla abierto si redis no responde.
func (l *redisLoginRateLimiter) Allow(key string) bool {
	if l == nil || l.client == nil {
		return true
	}
	key = normalizeLoginKey(key)
	if key == "" {
		return true
	}
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	cutoff := l.now().Add(-l.window).UnixMilli()
	count, err := l.client.Eval(ctx, redisLoginCountScript, []string{l.prefix + key}, cutoff).Int()
	if err != nil {
		return true
	}
	return count < l.max
}

func (l *redisLoginRateLimiter) RecordFailure(key string) {
	if l == nil || l.client == nil {
		return
	}
	key = normalizeLoginKey(key)
	if key == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	now := l.now()
	_ = l.client.Eval(ctx, redisLoginFailureScript, []string{l.prefix + key},
		now.Add(-l.window).UnixMilli(),
		now.UnixMilli(),
		ulid.Make().String(),
		l.window.Milliseconds(),
	).Err()
}

func (l *redisLoginRateLimiter) Reset(key string) {
	if l == nil || l.client == nil {
		return
	}
	key = normalizeLoginKey(key)
	if key == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()
	_ = l.client.Del(ctx, l.prefix+key).Err()
}
