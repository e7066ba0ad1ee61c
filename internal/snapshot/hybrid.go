package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sneakify/feed-adapter/internal/metrics"
	"github.com/sneakify/feed-adapter/pkg/model"
)

// HybridStore is a Redis-first, Postgres-backed snapshot store. Redis carries
// the full snapshot as one JSON document per collection for cheap reads;
// Postgres keeps the same rows queryable when a DSN is configured.
type HybridStore struct {
	redis  *redis.Client
	PG     *pgxpool.Pool
	logger *zap.Logger
}

type PGPoolConfig struct {
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

func NewHybrid(redisAddr string, redisDB int, pgURL string, pgPoolConfig PGPoolConfig, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
		DB:   redisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	var pgPool *pgxpool.Pool
	if pgURL != "" {
		cfg, err := pgxpool.ParseConfig(pgURL)
		if err != nil {
			return nil, fmt.Errorf("invalid pg config: %w", err)
		}
		if pgPoolConfig.MaxConns > 0 {
			cfg.MaxConns = pgPoolConfig.MaxConns
		}
		if pgPoolConfig.MinConns > 0 {
			cfg.MinConns = pgPoolConfig.MinConns
		}
		if pgPoolConfig.MaxConnLifetime > 0 {
			cfg.MaxConnLifetime = pgPoolConfig.MaxConnLifetime
		}
		if pgPoolConfig.MaxConnIdleTime > 0 {
			cfg.MaxConnIdleTime = pgPoolConfig.MaxConnIdleTime
		}
		if pgPoolConfig.HealthCheckPeriod > 0 {
			cfg.HealthCheckPeriod = pgPoolConfig.HealthCheckPeriod
		}
		pgPool, err = pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
	}

	return &HybridStore{redis: rdb, PG: pgPool, logger: logger}, nil
}

func snapshotKey(name string) string {
	return "snapshot:" + name
}

// ReplaceCollection rewrites the Redis document and, when Postgres is
// configured, swaps the collection's rows inside one transaction.
func (s *HybridStore) ReplaceCollection(ctx context.Context, name string, products []model.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("marshal snapshot %s: %w", name, err)
	}
	if err := s.redis.Set(ctx, snapshotKey(name), data, 0).Err(); err != nil {
		s.logger.Error("store.redis.snapshot_set_failed",
			zap.String("collection", name), zap.Error(err))
		return err
	}

	if s.PG != nil {
		if err := s.replaceRows(ctx, name, products); err != nil {
			s.logger.Error("store.pg.snapshot_replace_failed",
				zap.String("collection", name), zap.Error(err))
			return err
		}
	}

	metrics.SnapshotProducts.WithLabelValues(name).Set(float64(len(products)))
	return nil
}

func (s *HybridStore) replaceRows(ctx context.Context, name string, products []model.Product) error {
	tx, err := s.PG.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		DELETE FROM catalog.product_snapshot
		WHERE collection = $1;
	`, name); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, p := range products {
		batch.Queue(`
			INSERT INTO catalog.product_snapshot (
				collection, product_id, status, name, sku,
				price, release_at, image_url, as_of
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW());
		`, name, p.ID, string(p.Status), p.Name, p.SKU,
			p.Price, p.ReleaseDateTime, p.ImageURL)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetSnapshot reads a collection's products back from Redis. A missing key
// yields an empty slice.
func (s *HybridStore) GetSnapshot(ctx context.Context, name string) ([]model.Product, error) {
	data, err := s.redis.Get(ctx, snapshotKey(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var products []model.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *HybridStore) HealthCheck(ctx context.Context) error {
	if s.redis == nil {
		return fmt.Errorf("redis not initialized")
	}
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	if s.PG != nil {
		if err := s.PG.Ping(ctx); err != nil {
			return fmt.Errorf("postgres ping failed: %w", err)
		}
	}
	return nil
}

func (s *HybridStore) Close() error {
	if s.PG != nil {
		s.PG.Close()
	}
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}
