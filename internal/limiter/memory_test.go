package limiter

import (
	"context"
	"fmt"
	"testing"
	"time"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time      { return c.t }
func (c *clock) add(d time.Duration) { c.t = c.t.Add(d) }

func newTestMemory(c *clock) *Memory {
	l := NewMemory(time.Minute, 3, 10*time.Minute)
	l.now = c.now
	return l
}

func allow(t *testing.T, l *Memory) bool {
	t.Helper()
	ok, _, _ := l.Allow(context.Background(), "S1")
	return ok
}

func TestMemory_BlocksAfterMaxFails(t *testing.T) {
	t.Parallel()
	c := &clock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := newTestMemory(c)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		blocked, _, err := l.Failure(ctx, "S1")
		if err != nil || blocked {
			t.Fatalf("fail %d: blocked=%v err=%v", i, blocked, err)
		}
	}
	blocked, d, err := l.Failure(ctx, "S1")
	if err != nil || !blocked || d != 10*time.Minute {
		t.Fatalf("third failure must block: blocked=%v d=%v err=%v", blocked, d, err)
	}

	ok, retry, err := l.Allow(ctx, "S1")
	if err != nil || ok || retry != 10*time.Minute {
		t.Fatalf("allow while blocked: ok=%v retry=%v err=%v", ok, retry, err)
	}
	if ok, _, _ := l.Allow(ctx, "S2"); !ok {
		t.Fatalf("other keys must stay allowed")
	}

	c.add(10*time.Minute + time.Second)
	if !allow(t, l) {
		t.Fatalf("block must expire")
	}
}

func TestMemory_WindowResets(t *testing.T) {
	t.Parallel()
	c := &clock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := newTestMemory(c)
	ctx := context.Background()

	_, _, _ = l.Failure(ctx, "S1")
	_, _, _ = l.Failure(ctx, "S1")
	c.add(2 * time.Minute)
	if blocked, _, _ := l.Failure(ctx, "S1"); blocked {
		t.Fatalf("failures outside the window must not accumulate")
	}
	if !allow(t, l) {
		t.Fatalf("should be allowed")
	}
}

func TestMemory_SuccessResets(t *testing.T) {
	t.Parallel()
	c := &clock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := newTestMemory(c)
	ctx := context.Background()

	_, _, _ = l.Failure(ctx, "S1")
	_, _, _ = l.Failure(ctx, "S1")
	if err := l.Success(ctx, "S1"); err != nil {
		t.Fatalf("success: %v", err)
	}
	if blocked, _, _ := l.Failure(ctx, "S1"); blocked {
		t.Fatalf("success must reset the counter")
	}
}

func TestMemory_PrunesStaleKeys(t *testing.T) {
	t.Parallel()
	c := &clock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := newTestMemory(c)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		_, _, _ = l.Failure(ctx, fmt.Sprintf("ghost-%d", i))
	}
	for i := 0; i < 3; i++ {
		_, _, _ = l.Failure(ctx, "S1")
	}
	if got := l.Len(); got != 51 {
		t.Fatalf("tracked keys: %d", got)
	}

	c.add(2 * time.Minute)
	_, _, _ = l.Failure(ctx, "S2")
	if got := l.Len(); got != 2 {
		t.Fatalf("stale keys must be dropped, blocked ones kept: %d", got)
	}
	if allow(t, l) {
		t.Fatalf("S1 must still be blocked")
	}

	c.add(10 * time.Minute)
	if !allow(t, l) {
		t.Fatalf("block must expire")
	}
	if got := l.Len(); got != 1 {
		t.Fatalf("expired key must be dropped on allow: %d", got)
	}
}
