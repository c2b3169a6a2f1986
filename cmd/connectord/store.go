package main

import (
	"context"
	"fmt"

	"chain-connector/config"
	boltStorage "chain-connector/internal/adapter/storage/bolt"
	"chain-connector/internal/adapter/storage/memory"
	pgStorage "chain-connector/internal/adapter/storage/postgres"
	redisStorage "chain-connector/internal/adapter/storage/redis"
	"chain-connector/internal/core/ports"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// backends holds the opened store and the clients that must be closed on exit.
type backends struct {
	store   ports.Store
	health  []ports.HealthChecker
	redis   *goredis.Client
	closers []func()
}

func (b *backends) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// openBackends opens the configured store. A Redis client is also opened
// when the status API rate limit is enabled.
func openBackends(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*backends, error) {
	b := &backends{}

	needRedis := cfg.Store.Driver == config.StoreRedis || cfg.Server.RateLimit.Enabled
	if needRedis {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			return nil, err
		}
		b.redis = rdb
		b.closers = append(b.closers, func() { rdb.Close() })
	}

	switch cfg.Store.Driver {
	case config.StoreBolt:
		s, err := boltStorage.Open(cfg.Store.Path, log)
		if err != nil {
			b.close()
			return nil, err
		}
		b.store = s
		b.health = append(b.health, s)
		b.closers = append(b.closers, func() { s.Close() })
	case config.StoreRedis:
		s := redisStorage.NewStore(b.redis, cfg.Store.Prefix)
		b.store = s
		b.health = append(b.health, s)
	case config.StorePostgres:
		pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
		if err != nil {
			b.close()
			return nil, err
		}
		b.closers = append(b.closers, pool.Close)
		s := pgStorage.NewStore(pool)
		if err := s.EnsureSchema(ctx); err != nil {
			b.close()
			return nil, err
		}
		b.store = s
		b.health = append(b.health, s)
	case config.StoreMemory:
		log.Warn().Msg("Using the in-memory store, channel state is lost on exit")
		b.store = memory.NewStore()
	default:
		b.close()
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	return b, nil
}
