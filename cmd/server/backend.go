package main

import (
	"context"
	"fmt"

	"ansdns/internal/platform/config"
	"ansdns/internal/platform/postgres"
	"ansdns/internal/platform/redis"
	"ansdns/internal/records/handler"
	"ansdns/internal/records/ports"
	"ansdns/internal/records/store"
)

type backend struct {
	store  ports.StateStore
	health handler.HealthCheck
	close  func()
}

func openBackend(ctx context.Context, cfg config.Server) (*backend, error) {
	switch cfg.StateBackend {
	case config.BackendBolt:
		s, err := store.OpenBolt(cfg.Bolt.Path)
		if err != nil {
			return nil, err
		}
		return &backend{store: s, close: func() { _ = s.Close() }}, nil

	case config.BackendRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return &backend{
			store:  store.NewRedisStore(client.Client, store.WithRedisKey(cfg.Redis.Key)),
			health: client.Health,
			close:  func() { _ = client.Close() },
		}, nil

	case config.BackendPostgres:
		db, err := postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		s := store.NewPostgresStore(db, store.WithTable(cfg.Postgres.Table))
		if err := s.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		return &backend{store: s, health: db.PingContext, close: func() { _ = db.Close() }}, nil

	default:
		return &backend{store: store.NewMemoryStore(), close: func() {}}, nil
	}
}
