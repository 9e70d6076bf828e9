package events

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const processedKeyPrefix = "medpet:processed:"

// RedisProcessedStore claims event ids with SET NX and lets Redis expire them.
type RedisProcessedStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisProcessedStore uses ttl for claimed ids; zero keeps them for 24h.
func NewRedisProcessedStore(client *redis.Client, ttl time.Duration) *RedisProcessedStore {
	if client == nil {
		panic("events: redis client required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisProcessedStore{client: client, ttl: ttl}
}

var _ ProcessedTracker = (*RedisProcessedStore)(nil)

func (s *RedisProcessedStore) MarkProcessed(ctx context.Context, provider, eventID string) (bool, error) {
	ok, err := s.client.SetNX(ctx, processedKeyPrefix+provider+":"+eventID, time.Now().UTC().Unix(), s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("events: redis mark processed: %w", err)
	}
	return ok, nil
}
