package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

type Options struct {
	Driver string
	Prefix string
	Tab    string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	PostgresDSN string
}

// Open connects the backend named by o.Driver. The memory driver gives a
// fresh single-tab origin that lives as long as the process.
func Open(ctx context.Context, o Options, log *zap.Logger) (Store, error) {
	switch o.Driver {
	case DriverMemory, "":
		return NewMemArea().Tab(o.Tab), nil

	case DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     o.RedisAddr,
			Password: o.RedisPassword,
			DB:       o.RedisDB,
		})
		s := NewRedisStore(client, o.Prefix, o.Tab, log)
		if err := s.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis ping %s: %w", o.RedisAddr, err)
		}
		return s, nil

	case DriverPostgres:
		return OpenPostgres(ctx, o.PostgresDSN, o.Prefix, o.Tab, log)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, o.Driver)
	}
}
