package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/tobro-digital/agency-platform/internal/config"
	"github.com/tobro-digital/agency-platform/pkg/logging"
)

func TestNewRedisClient(t *testing.T) {
	ctx := context.Background()
	logger := logging.Default()

	if c := NewRedisClient(ctx, nil, logger); c != nil {
		t.Error("nil config should yield no client")
	}
	if c := NewRedisClient(ctx, &config.Config{RedisAddr: "  "}, logger); c != nil {
		t.Error("blank address should yield no client")
	}

	mr := miniredis.RunT(t)
	client := NewRedisClient(ctx, &config.Config{RedisAddr: mr.Addr()}, logger)
	if client == nil {
		t.Fatal("expected a client for a reachable server")
	}
	defer client.Close()

	// A dead server degrades to nil instead of a broken client.
	dead := miniredis.RunT(t)
	addr := dead.Addr()
	dead.Close()
	if c := NewRedisClient(ctx, &config.Config{RedisAddr: addr}, logger); c != nil {
		t.Error("unreachable server should yield no client")
	}
}
