// Package bootstrap builds the bot's collaborators from configuration.
package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/medpet-whatsapp-bot/internal/config"
	"github.com/wolfman30/medpet-whatsapp-bot/internal/events"
	"github.com/wolfman30/medpet-whatsapp-bot/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// ConnectPostgresPool opens and pings a pool, returning nil when the URL is
// empty or the database is unreachable.
func ConnectPostgresPool(ctx context.Context, databaseURL string, logger *logging.Logger) *pgxpool.Pool {
	if strings.TrimSpace(databaseURL) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Error("failed to create postgres pool", "error", err)
		return nil
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres not reachable", "error", err)
		pool.Close()
		return nil
	}
	return pool
}

// processedPruneInterval is how often the Postgres and memory trackers drop stale claims.
const processedPruneInterval = time.Hour

// BuildProcessedTracker prefers Redis, then Postgres, then process memory.
// The Postgres and memory trackers prune old claims in the background until ctx is done.
func BuildProcessedTracker(ctx context.Context, cfg *appconfig.Config, redisClient *redis.Client, pool *pgxpool.Pool, logger *logging.Logger) events.ProcessedTracker {
	if logger == nil {
		logger = logging.Default()
	}
	switch {
	case redisClient != nil:
		logger.Info("webhook de-duplication backed by redis", "ttl", cfg.ProcessedTTL)
		return events.NewRedisProcessedStore(redisClient, cfg.ProcessedTTL)
	case pool != nil:
		logger.Info("webhook de-duplication backed by postgres", "ttl", cfg.ProcessedTTL)
		store := events.NewPostgresProcessedStore(pool, cfg.ProcessedTTL)
		go store.RunPruner(ctx, processedPruneInterval, logger)
		return store
	default:
		logger.Info("webhook de-duplication kept in memory", "ttl", cfg.ProcessedTTL)
		store := events.NewMemoryProcessedStore(cfg.ProcessedTTL)
		go store.RunJanitor(ctx, processedPruneInterval, logger)
		return store
	}
}
