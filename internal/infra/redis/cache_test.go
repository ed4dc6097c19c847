package redis

import (
	"context"
	"strings"
	"testing"
	"time"

	"vidhub-go/internal/config"

	"github.com/redis/go-redis/v9"
)

func unreachableClient(t *testing.T) *redis.Client {
	t.Helper()
	c := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestJSONCacheKeyPrefix(t *testing.T) {
	c := NewJSONCache(unreachableClient(t), "vidhub:lists:", time.Minute)
	if got := c.key("trending:10"); got != "vidhub:lists:trending:10" {
		t.Errorf("key = %q", got)
	}
}

func TestJSONCacheSurfacesConnectionErrors(t *testing.T) {
	c := NewJSONCache(unreachableClient(t), "p:", time.Minute)
	ctx := context.Background()

	var dst []int
	hit, err := c.Get(ctx, "k", &dst)
	if err == nil || hit {
		t.Errorf("Get = (%v, %v), want miss with error", hit, err)
	}
	if err := c.Set(ctx, "k", []int{1}); err == nil {
		t.Error("Set should fail without a server")
	}
	if err := c.Invalidate(ctx); err == nil {
		t.Error("Invalidate should fail without a server")
	}
}

func TestNewClientFailsFast(t *testing.T) {
	_, err := NewClient(context.Background(), &config.RedisConfig{Host: "127.0.0.1", Port: 1})
	if err == nil {
		t.Fatal("expected ping error")
	}
	if !strings.Contains(err.Error(), "127.0.0.1:1") {
		t.Errorf("error should name the address: %v", err)
	}
}

func TestVideoListPrefix(t *testing.T) {
	if got := VideoListPrefix("vidhub"); got != "vidhub:videos:" {
		t.Errorf("prefix = %q", got)
	}
}
