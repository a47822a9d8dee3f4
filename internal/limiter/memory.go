package limiter

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	fails        int
	updatedAt    time.Time
	blockedUntil time.Time
}

// Memory is a process-local limiter with a sliding failure window and lockout.
type Memory struct {
	mu       sync.Mutex
	entries  map[string]*entry
	window   time.Duration
	maxFails int
	blockFor time.Duration
	now      func() time.Time

	lastSweep time.Time
}

var _ Limiter = (*Memory)(nil)

// NewMemory constructs an in-memory limiter: maxFails failures within window
// block the key for blockFor.
func NewMemory(window time.Duration, maxFails int, blockFor time.Duration) *Memory {
	return &Memory{
		entries:  make(map[string]*entry),
		window:   window,
		maxFails: maxFails,
		blockFor: blockFor,
		now:      time.Now,
	}
}

// Allow reports whether key may attempt a login and a retry-after duration.
func (l *Memory) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	e, ok := l.entries[key]
	if !ok {
		return true, 0, nil
	}
	if e.blockedUntil.After(now) {
		return false, e.blockedUntil.Sub(now), nil
	}
	if l.stale(e, now) {
		delete(l.entries, key)
	}
	return true, 0, nil
}

// stale reports whether e no longer counts towards a block.
func (l *Memory) stale(e *entry, now time.Time) bool {
	return now.Sub(e.updatedAt) > l.window && !e.blockedUntil.After(now)
}

// sweep drops stale entries at most once per window.
func (l *Memory) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	l.lastSweep = now
	for k, e := range l.entries {
		if l.stale(e, now) {
			delete(l.entries, k)
		}
	}
}

// Len returns the number of tracked keys.
func (l *Memory) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Success resets counters for key.
func (l *Memory) Success(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key)
	return nil
}

// Failure records a failed attempt; reaching maxFails within the window blocks key.
func (l *Memory) Failure(_ context.Context, key string) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.sweep(now)

	e, ok := l.entries[key]
	if !ok {
		e = &entry{}
		l.entries[key] = e
	}
	if now.Sub(e.updatedAt) > l.window {
		e.fails = 0
	}
	e.fails++
	e.updatedAt = now

	if e.fails >= l.maxFails {
		e.blockedUntil = now.Add(l.blockFor)
		e.fails = 0
		return true, l.blockFor, nil
	}
	return false, 0, nil
}
