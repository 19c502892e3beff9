package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestCheckRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	t.Setenv("APP_ENV", "production")

	ctx := context.Background()

	t.Run("allows under limit", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			allowed, err := CheckRateLimit(ctx, rdb, "ban", "1.2.3.4", 3, time.Minute)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !allowed {
				t.Fatalf("request %d should be allowed", i+1)
			}
		}
	})

	t.Run("blocks over limit", func(t *testing.T) {
		allowed, err := CheckRateLimit(ctx, rdb, "ban", "1.2.3.4", 3, time.Minute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if allowed {
			t.Error("fourth request should be blocked")
		}
	})

	t.Run("window expiry resets the counter", func(t *testing.T) {
		mr.FastForward(2 * time.Minute)
		allowed, err := CheckRateLimit(ctx, rdb, "ban", "1.2.3.4", 3, time.Minute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !allowed {
			t.Error("request after window expiry should be allowed")
		}
	})

	t.Run("separate keys per resource", func(t *testing.T) {
		allowed, err := CheckRateLimit(ctx, rdb, "appeal", "1.2.3.4", 3, time.Minute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !allowed {
			t.Error("different resource should have its own counter")
		}
	})

	t.Run("nil client errors", func(t *testing.T) {
		if _, err := CheckRateLimit(ctx, nil, "ban", "1.2.3.4", 3, time.Minute); err == nil {
			t.Error("expected error for nil redis client")
		}
	})
}

func TestCheckRateLimitDisabledInDevelopment(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	allowed, err := CheckRateLimit(context.Background(), nil, "ban", "1.2.3.4", 1, time.Minute)
	if err != nil || !allowed {
		t.Errorf("rate limiting should be disabled in development, got allowed=%v err=%v", allowed, err)
	}
}
