package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// How long a counter key lives past its last write. Two days covers the
// current day plus the stale record the lazy reset clears.
const redisCountsTTL = 48 * time.Hour

// How many times a WATCH transaction is retried when another process
// commits between our read and write.
const redisMaxRetries = 5

// RedisStore persists counts in a single Redis key, for deployments running
// more than one process behind the same quota. The read-modify-write runs
// inside a WATCH/MULTI transaction, so concurrent updates from different
// processes cannot both consume the last slot.
type RedisStore struct {
	rdb *redis.Client
	key string
}

func NewRedisStore(rdb *redis.Client, key string) *RedisStore {
	if key == "" {
		key = "speak2send:rate"
	}
	return &RedisStore{rdb: rdb, key: key}
}

func (s *RedisStore) Update(ctx context.Context, fn func(c *Counts) error) error {
	txn := func(tx *redis.Tx) error {
		var counts Counts
		data, err := tx.Get(ctx, s.key).Bytes()
		switch {
		case err == nil:
			if err := json.Unmarshal(data, &counts); err != nil {
				counts = Counts{}
			}
		case errors.Is(err, redis.Nil):
			// First request of the day: start from zero.
		default:
			return fmt.Errorf("read rate store: %w", err)
		}

		if err := fn(&counts); err != nil {
			return err
		}

		encoded, err := json.Marshal(counts)
		if err != nil {
			return fmt.Errorf("encode rate store: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key, encoded, redisCountsTTL)
			return nil
		})
		return err
	}

	for i := 0; i < redisMaxRetries; i++ {
		err := s.rdb.Watch(ctx, txn, s.key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("rate store contention: retries exhausted")
}

// Ping reports whether the backing Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
