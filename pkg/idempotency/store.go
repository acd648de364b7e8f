package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store deduplicates consumed Kafka messages with a redis SETNX per
// (topic, partition, offset). Keys expire after the configured TTL, which
// bounds how far back a rebalanced consumer can be protected.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func (s *Store) Key(topic string, partition int, offset int64) string {
	return fmt.Sprintf("dedup:%s:%d:%d", topic, partition, offset)
}

// Seen reports whether the key was already claimed. The first caller claims
// it and gets false; every later caller gets true.
func (s *Store) Seen(ctx context.Context, key string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, key, "1", s.ttl).Result()
	if err != nil {
		return false, err
	}
	return !ok, nil
}
