package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestLimiter(t *testing.T, limit int, window time.Duration) (Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	limiter, err := NewRedisLimiter("redis://"+mr.Addr(), limit, window)
	if err != nil {
		t.Fatalf("Failed to build limiter: %v", err)
	}
	t.Cleanup(func() { limiter.Close() })
	return limiter, mr
}

// ============================================================================
// Sliding Window Tests
// ============================================================================

func TestAllowUnderLimit(t *testing.T) {
	limiter, _ := newTestLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "login:1.2.3.4")
		if err != nil {
			t.Fatalf("Unexpected error on attempt %d: %v", i+1, err)
		}
		if !allowed {
			t.Fatalf("Attempt %d should be allowed", i+1)
		}
	}
}

func TestDenyOverLimit(t *testing.T) {
	limiter, _ := newTestLimiter(t, 2, time.Minute)
	ctx := context.Background()

	limiter.Allow(ctx, "login:1.2.3.4")
	limiter.Allow(ctx, "login:1.2.3.4")

	allowed, err := limiter.Allow(ctx, "login:1.2.3.4")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if allowed {
		t.Error("Third attempt should be denied")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	limiter, _ := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	limiter.Allow(ctx, "login:1.2.3.4")

	allowed, err := limiter.Allow(ctx, "login:5.6.7.8")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !allowed {
		t.Error("A different key must have its own budget")
	}
}

func TestWindowSlides(t *testing.T) {
	limiter, mr := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	if allowed, _ := limiter.Allow(ctx, "login:1.2.3.4"); !allowed {
		t.Fatal("First attempt should be allowed")
	}
	if allowed, _ := limiter.Allow(ctx, "login:1.2.3.4"); allowed {
		t.Fatal("Second attempt inside the window should be denied")
	}

	// FastForward expires the whole key, which is how the budget resets
	// once no attempt has landed for a full window.
	mr.FastForward(2 * time.Minute)

	allowed, err := limiter.Allow(ctx, "login:1.2.3.4")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !allowed {
		t.Error("Attempt after the window should be allowed")
	}
}

func TestLimiterErrorSurface(t *testing.T) {
	limiter, mr := newTestLimiter(t, 1, time.Minute)
	mr.Close()

	_, err := limiter.Allow(context.Background(), "login:1.2.3.4")
	if err == nil {
		t.Fatal("Expected error when redis is down")
	}
}

func TestInvalidRedisURL(t *testing.T) {
	if _, err := NewRedisLimiter("not-a-url", 1, time.Minute); err == nil {
		t.Fatal("Expected error for invalid redis URL")
	}
}

// ============================================================================
// NoOp Limiter Tests
// ============================================================================

func TestNoOpLimiterAlwaysAllows(t *testing.T) {
	limiter := &NoOpLimiter{}

	for i := 0; i < 100; i++ {
		allowed, err := limiter.Allow(context.Background(), "any-key")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !allowed {
			t.Fatal("NoOpLimiter must always allow")
		}
	}
	if err := limiter.Close(); err != nil {
		t.Errorf("Unexpected close error: %v", err)
	}
}
