package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ledgerly/config"
	"ledgerly/db"

	"github.com/redis/go-redis/v9"
)

var ErrUnknownBackend = errors.New("unknown store backend")

// Open builds and initialises the backend selected by cfg.Backend.
func Open(ctx context.Context, cfg config.StoreConfig, log *slog.Logger) (Store, error) {
	switch cfg.Backend {
	case config.BackendFile:
		store := NewFileStore(cfg.DataFile)
		if err := store.Init(); err != nil {
			return nil, err
		}
		log.Info("using file store", "path", cfg.DataFile)
		return store, nil

	case config.BackendPostgres:
		conn, err := db.Open(ctx, cfg.DatabaseURL, db.Options{
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx, conn, log); err != nil {
			conn.Close()
			return nil, err
		}
		log.Info("using postgres store")
		return NewPostgresStore(conn), nil

	case config.BackendRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to ping redis: %w", err)
		}
		log.Info("using redis store", "key", cfg.RedisKey)
		return NewRedisStore(client, cfg.RedisKey), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
