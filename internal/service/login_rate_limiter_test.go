package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type manualClock struct {
	t time.Time
}

func (c *manualClock) now() time.Time { return c.t }

func (c *manualClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newManualClock() *manualClock {
	return &manualClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func TestLoginRateLimiter_Memory(t *testing.T) {
	l := NewLoginRateLimiter(time.Minute, 2)

	if !l.Allow("ada") {
		t.Fatalf("expected first attempt to pass")
	}
	l.RecordFailure("ada")
	l.RecordFailure("ADA ")
	if l.Allow("Ada") {
		t.Fatalf("expected attempt after two failures to be limited")
	}
	if !l.Allow("grace") {
		t.Fatalf("expected other identifiers to be unaffected")
	}
	l.Reset("ada")
	if !l.Allow("ada") {
		t.Fatalf("expected reset to clear failures")
	}
}

func TestLoginRateLimiter_AllowDoesNotCount(t *testing.T) {
	l := newLoginRateLimiter(time.Minute, 1, newManualClock().now)

	for i := 0; i < 5; i++ {
		if !l.Allow("ada") {
			t.Fatalf("attempt %d: checks alone must not consume the budget", i)
		}
	}
	if len(l.hits) != 0 {
		t.Fatalf("expected no tracked keys, got %d", len(l.hits))
	}
}

func TestLoginRateLimiter_WindowSlides(t *testing.T) {
	clock := newManualClock()
	l := newLoginRateLimiter(10*time.Second, 1, clock.now)

	l.RecordFailure("ada")
	if l.Allow("ada") {
		t.Fatalf("expected attempt to be limited")
	}
	clock.advance(10 * time.Second)
	if !l.Allow("ada") {
		t.Fatalf("expected attempt after window to pass")
	}
}

func TestLoginRateLimiter_DropsStaleKeys(t *testing.T) {
	clock := newManualClock()
	l := newLoginRateLimiter(10*time.Millisecond, 3, clock.now)

	for i := 0; i < 5000; i++ {
		l.RecordFailure(fmt.Sprintf("user-%d", i))
	}
	if len(l.hits) != 5000 {
		t.Fatalf("expected 5000 tracked keys, got %d", len(l.hits))
	}

	clock.advance(30 * time.Millisecond)
	l.Allow("someone-else")
	if len(l.hits) != 0 {
		t.Fatalf("expected stale keys to be dropped, %d retained", len(l.hits))
	}
}

func TestLoginRateLimiter_BlankKeyNotLimited(t *testing.T) {
	l := newLoginRateLimiter(time.Minute, 1, newManualClock().now)

	l.RecordFailure("   ")
	l.RecordFailure("")
	if !l.Allow(" ") {
		t.Fatalf("expected blank identifiers to pass")
	}
	if len(l.hits) != 0 {
		t.Fatalf("expected blank identifiers to be ignored, got %d keys", len(l.hits))
	}
}

// sortedSetRedis ejecuta los dos scripts del limiter sobre sorted sets en memoria.
type sortedSetRedis struct {
	sets       map[string]map[string]int64
	lastKeys   []string
	lastArgs   []interface{}
	lastScript string
	err        error
}

func newSortedSetRedis() *sortedSetRedis {
	return &sortedSetRedis{sets: make(map[string]map[string]int64)}
}

func (r *sortedSetRedis) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	r.lastScript = script
	r.lastKeys = keys
	r.lastArgs = args
	cmd := redis.NewCmd(ctx)
	if r.err != nil {
		cmd.SetErr(r.err)
		return cmd
	}
	set := r.sets[keys[0]]
	if set == nil {
		set = make(map[string]int64)
	}
	cutoff := args[0].(int64)
	for member, score := range set {
		if score <= cutoff {
			delete(set, member)
		}
	}
	if script == redisLoginFailureScript {
		set[args[2].(string)] = args[1].(int64)
	}
	if len(set) == 0 {
		delete(r.sets, keys[0])
	} else {
		r.sets[keys[0]] = set
	}
	cmd.SetVal(int64(len(set)))
	return cmd
}

func (r *sortedSetRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	var n int64
	for _, k := range keys {
		if _, ok := r.sets[k]; ok {
			delete(r.sets, k)
			n++
		}
	}
	cmd.SetVal(n)
	return cmd
}

func TestRedisLoginRateLimiter(t *testing.T) {
	t.Run("nil receiver fail-open", func(t *testing.T) {
		var l *redisLoginRateLimiter
		if !l.Allow("ada") {
			t.Fatalf("expected fail-open for nil limiter")
		}
		l.RecordFailure("ada")
		l.Reset("ada")
	})

	t.Run("key normalization and window args", func(t *testing.T) {
		clock := newManualClock()
		fake := newSortedSetRedis()
		l := newRedisLoginRateLimiter(fake, 15*time.Minute, 3, clock.now)

		l.RecordFailure(" Ada@X.com ")
		if len(fake.lastKeys) != 1 || fake.lastKeys[0] != "login:rl:ada@x.com" {
			t.Fatalf("unexpected key normalization, got %+v", fake.lastKeys)
		}
		if fake.lastScript != redisLoginFailureScript {
			t.Fatalf("expected failure script")
		}
		wantCutoff := clock.t.Add(-15 * time.Minute).UnixMilli()
		if fake.lastArgs[0] != wantCutoff || fake.lastArgs[1] != clock.t.UnixMilli() || fake.lastArgs[3] != int64(900000) {
			t.Fatalf("unexpected script args %+v", fake.lastArgs)
		}
	})

	t.Run("failures are distinct members", func(t *testing.T) {
		fake := newSortedSetRedis()
		l := newRedisLoginRateLimiter(fake, time.Minute, 2, newManualClock().now)

		l.RecordFailure("ada")
		l.RecordFailure("ada")
		if got := len(fake.sets["login:rl:ada"]); got != 2 {
			t.Fatalf("expected 2 members for failures in the same millisecond, got %d", got)
		}
		if l.Allow("ada") {
			t.Fatalf("expected deny after max failures")
		}
	})

	t.Run("redis error fail-open", func(t *testing.T) {
		fake := newSortedSetRedis()
		fake.err = errors.New("redis down")
		l := newRedisLoginRateLimiter(fake, time.Minute, 1, newManualClock().now)
		l.RecordFailure("ada")
		if !l.Allow("ada") {
			t.Fatalf("expected fail-open on redis errors")
		}
	})
}

func TestLoginRateLimiters_Agree(t *testing.T) {
	type step struct {
		op      string
		key     string
		advance time.Duration
		want    bool
	}
	steps := []step{
		{op: "allow", key: "ada", want: true},
		{op: "fail", key: "ada"},
		{op: "fail", key: " ADA"},
		{op: "allow", key: "ada", want: true},
		{op: "fail", key: "ada", advance: 4 * time.Second},
		{op: "allow", key: "ada", want: false},
		{op: "allow", key: "grace", want: true},
		{op: "allow", key: "   ", want: true},
		{op: "fail", key: "   "},
		{op: "allow", key: "", want: true},
		{op: "allow", key: "ada", advance: 6 * time.Second, want: true},
		{op: "fail", key: "ada"},
		{op: "allow", key: "ada", want: true},
		{op: "fail", key: "ada"},
		{op: "allow", key: "ada", want: false},
		{op: "reset", key: "Ada"},
		{op: "allow", key: "ada", want: true},
	}

	clock := newManualClock()
	limiters := map[string]LoginRateLimiter{
		"memory": newLoginRateLimiter(10*time.Second, 3, clock.now),
		"redis":  newRedisLoginRateLimiter(newSortedSetRedis(), 10*time.Second, 3, clock.now),
	}

	for i, s := range steps {
		clock.advance(s.advance)
		for name, l := range limiters {
			switch s.op {
			case "fail":
				l.RecordFailure(s.key)
			case "reset":
				l.Reset(s.key)
			case "allow":
				if got := l.Allow(s.key); got != s.want {
					t.Fatalf("step %d %s: Allow(%q) = %v, want %v", i, name, s.key, got, s.want)
				}
			}
		}
	}
}
