package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/accessly/rbac-service/internal/core/domain"
)

func newTestLimiter(t *testing.T) (*LoginLimiter, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLoginLimiter(client), srv
}

func TestLoginLimiter_AllowsUnknownEmail(t *testing.T) {
	limiter, _ := newTestLimiter(t)

	if err := limiter.Allow(context.Background(), "fresh@example.com"); err != nil {
		t.Fatalf("expected fresh email to be allowed, got %v", err)
	}
}

func TestLoginLimiter_BlocksAfterBudget(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < loginMaxFailures; i++ {
		if err := limiter.RecordFailure(ctx, "brute@example.com"); err != nil {
			t.Fatalf("RecordFailure returned error: %v", err)
		}
	}

	if err := limiter.Allow(ctx, "brute@example.com"); err != domain.ErrTooManyAttempts {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestLoginLimiter_AllowsBelowBudget(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < loginMaxFailures-1; i++ {
		if err := limiter.RecordFailure(ctx, "shaky@example.com"); err != nil {
			t.Fatalf("RecordFailure returned error: %v", err)
		}
	}

	if err := limiter.Allow(ctx, "shaky@example.com"); err != nil {
		t.Fatalf("expected email below budget to be allowed, got %v", err)
	}
}

func TestLoginLimiter_FirstFailureStartsWindow(t *testing.T) {
	limiter, srv := newTestLimiter(t)
	ctx := context.Background()

	if err := limiter.RecordFailure(ctx, "late@example.com"); err != nil {
		t.Fatalf("RecordFailure returned error: %v", err)
	}

	ttl := srv.TTL("login_attempts:late@example.com")
	if ttl != loginWindow {
		t.Fatalf("expected window TTL %v, got %v", loginWindow, ttl)
	}
}

func TestLoginLimiter_WindowExpiryClearsCounter(t *testing.T) {
	limiter, srv := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < loginMaxFailures; i++ {
		_ = limiter.RecordFailure(ctx, "patient@example.com")
	}
	srv.FastForward(loginWindow + time.Second)

	if err := limiter.Allow(ctx, "patient@example.com"); err != nil {
		t.Fatalf("expected allow after window expiry, got %v", err)
	}
}

func TestLoginLimiter_ResetClearsCounter(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < loginMaxFailures; i++ {
		_ = limiter.RecordFailure(ctx, "redeemed@example.com")
	}
	if err := limiter.Reset(ctx, "redeemed@example.com"); err != nil {
		t.Fatalf("Reset returned error: %v", err)
	}

	if err := limiter.Allow(ctx, "redeemed@example.com"); err != nil {
		t.Fatalf("expected allow after reset, got %v", err)
	}
}
