package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stemsi/typequiz-backend/internal/config"
	"github.com/stemsi/typequiz-backend/internal/model"
)

// RedisStore keeps results as expiring string keys and counters as
// INCR/HINCRBY keys.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore creates a RedisStore.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// Save stores r under its id with the given expiry.
func (s *RedisStore) Save(ctx context.Context, r *model.StoredResult, ttl time.Duration) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := s.rdb.Set(ctx, config.CacheKey.ResultKey(r.ID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("store result: %w", err)
	}
	return nil
}

// Get loads a result by id.
func (s *RedisStore) Get(ctx context.Context, id string) (*model.StoredResult, error) {
	raw, err := s.rdb.Get(ctx, config.CacheKey.ResultKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get result: %w", err)
	}

	var r model.StoredResult
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("unmarshal result: %w", err)
	}
	return &r, nil
}

// Increment bumps the total and the per-type counter in one transaction.
func (s *RedisStore) Increment(ctx context.Context, personalityType string) (int64, error) {
	var total *redis.IntCmd
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		total = pipe.Incr(ctx, config.CacheKey.TestsTakenKey())
		pipe.HIncrBy(ctx, config.CacheKey.TypeCountsKey(), personalityType, 1)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("increment counters: %w", err)
	}
	return total.Val(), nil
}

// Total returns the tests-taken counter, zero when it was never set.
func (s *RedisStore) Total(ctx context.Context) (int64, error) {
	n, err := s.rdb.Get(ctx, config.CacheKey.TestsTakenKey()).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("get counter: %w", err)
	}
	return n, nil
}

// TypeCounts returns the per-type counters.
func (s *RedisStore) TypeCounts(ctx context.Context) (map[string]int64, error) {
	raw, err := s.rdb.HGetAll(ctx, config.CacheKey.TypeCountsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("get type counts: %w", err)
	}

	counts := make(map[string]int64, len(raw))
	for k, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse count for %s: %w", k, err)
		}
		counts[k] = n
	}
	return counts, nil
}

// RedisQueue pushes results onto the archive worker's list.
type RedisQueue struct {
	rdb *redis.Client
}

// NewRedisQueue creates a RedisQueue.
func NewRedisQueue(rdb *redis.Client) *RedisQueue {
	return &RedisQueue{rdb: rdb}
}

// Push appends r to the persistence queue.
func (q *RedisQueue) Push(ctx context.Context, r *model.StoredResult) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return q.rdb.RPush(ctx, config.WorkerKey.PersistResultsQueue, raw).Err()
}
