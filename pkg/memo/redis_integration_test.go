//go:build integration

package memo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestRedisCache_GetSetDelete_Integration(t *testing.T) {
	addr := os.Getenv("RPSCHED_REDIS_ADDR")
	if addr == "" {
		t.Skip("RPSCHED_REDIS_ADDR not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := redis.NewClient(&redis.Options{Addr: addr})
	c := NewRedisCache(client)
	defer c.Close()

	key := "rpsched_test:redis_cache_integration"
	defer c.Delete(ctx, key)

	if _, hit, err := c.Get(ctx, key); err != nil {
		t.Fatalf("Get() error: %v", err)
	} else if hit {
		t.Fatal("expected miss before Set")
	}

	if err := c.Set(ctx, key, []byte("value"), time.Minute); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	data, hit, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if !hit {
		t.Fatal("expected hit after Set")
	}
	if string(data) != "value" {
		t.Errorf("Get() = %q, want %q", data, "value")
	}

	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, key); hit {
		t.Error("expected miss after Delete")
	}
}
