package rate

import (
	"context"
	"fmt"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

// Config selecciona el limiter.
type Config struct {
	Driver string // "memory" | "redis" | "off"
	Limit  int
	Window time.Duration
	Prefix string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// New construye el limiter configurado. Retorna nil cuando Driver es "off".
// close libera la conexión a Redis (no-op en los demás drivers).
func New(ctx context.Context, cfg Config) (lim Limiter, closeFn func() error, err error) {
	noop := func() error { return nil }
	switch cfg.Driver {
	case "off":
		return nil, noop, nil
	case "", "memory":
		return NewMemoryLimiter(cfg.Limit, cfg.Window), noop, nil
	case "redis":
		client := rdb.NewClient(&rdb.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, noop, fmt.Errorf("rate: redis ping %s: %w", cfg.RedisAddr, err)
		}
		return NewRedisLimiter(client, cfg.Prefix, cfg.Limit, cfg.Window), client.Close, nil
	}
	return nil, noop, fmt.Errorf("rate: unknown driver %q", cfg.Driver)
}
