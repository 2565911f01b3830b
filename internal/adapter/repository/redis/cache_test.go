package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iho/smartwealth/internal/usecase"
)

func TestCacheSetAndGet(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "records:u1:accounts", []byte(`[{"ID":"a"}]`), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	val, err := cache.Get(ctx, "records:u1:accounts")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if string(val) != `[{"ID":"a"}]` {
		t.Fatalf("unexpected cached value %s", val)
	}
	if !mr.Exists("cache:records:u1:accounts") {
		t.Fatalf("expected key to be namespaced")
	}
}

func TestCacheMiss(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()

	_, err := NewCache(client).Get(context.Background(), "absent")
	if !errors.Is(err, usecase.ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
}

func TestCacheExpires(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "short", []byte("v"), time.Second); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	mr.FastForward(2 * time.Second)

	if _, err := cache.Get(ctx, "short"); !errors.Is(err, usecase.ErrCacheMiss) {
		t.Fatalf("expected expired key to miss, got %v", err)
	}
}

func TestCacheIncrCountsFromZero(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()

	cache := NewCache(client)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := cache.Incr(ctx, "records:u1:accounts:gen")
		if err != nil {
			t.Fatalf("incr failed: %v", err)
		}
		if got != want {
			t.Fatalf("expected counter %d, got %d", want, got)
		}
	}

	val, err := cache.Get(ctx, "records:u1:accounts:gen")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(val) != "3" {
		t.Fatalf("expected counter readable as 3, got %s", val)
	}
	if ttl := mr.TTL("cache:records:u1:accounts:gen"); ttl != 0 {
		t.Fatalf("expected counter without ttl, got %v", ttl)
	}
}
