package service

import (
	"strings"
	"sync"
	"time"
)

// LoginRateLimiter limita intentos fallidos de login por identificador.
// Allow solo consulta; RecordFailure cuenta un fallo y Reset limpia la
// ventana tras un login correcto.
type LoginRateLimiter interface {
	Allow(key string) bool
	RecordFailure(key string)
	Reset(key string)
}

// normalizeLoginKey devuelve "" para identificadores en blanco, que no se limitan.
func normalizeLoginKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

type loginRateLimiter struct {
	mu        sync.Mutex
	window    time.Duration
	max       int
	hits      map[string][]time.Time
	lastSweep time.Time
	now       func() time.Time
}

// NewLoginRateLimiter crea un rate limiter en memoria con ventana deslizante.
func NewLoginRateLimiter(window time.Duration, max int) LoginRateLimiter {
	return newLoginRateLimiter(window, max, func() time.Time { return time.Now().UTC() })
}

func newLoginRateLimiter(window time.Duration, max int, now func() time.Time) *loginRateLimiter {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &loginRateLimiter{
		window:    window,
		max:       max,
		hits:      make(map[string][]time.Time),
		lastSweep: now(),
		now:       now,
	}
}

func (l *loginRateLimiter) Allow(key string) bool {
	key = normalizeLoginKey(key)
	if key == "" {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.sweep(now)
	return len(l.prune(key, now)) < l.max
}

func (l *loginRateLimiter) RecordFailure(key string) {
	key = normalizeLoginKey(key)
	if key == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.sweep(now)
	l.hits[key] = append(l.prune(key, now), now)
}

func (l *loginRateLimiter) Reset(key string) {
	key = normalizeLoginKey(key)
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.hits, key)
}

// prune descarta los intentos fuera de la ventana y borra la clave si queda vacia.
func (l *loginRateLimiter) prune(key string, now time.Time) []time.Time {
	entries, ok := l.hits[key]
	if !ok {
		return nil
	}
	cutoff := now.Add(-l.window)
	kept := entries[:0]
	for _, ts := range entries {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) == 0 {
		delete(l.hits, key)
		return nil
	}
	l.hits[key] = kept
	return kept
}

// sweep recorre todas las claves como mucho una vez por ventana.
func (l *loginRateLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	l.lastSweep = now
	for key := range l.hits {
		l.prune(key, now)
	}
}
