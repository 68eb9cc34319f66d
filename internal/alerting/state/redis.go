package state

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists instance state as JSON values keyed by instance
// identity. Partitioning by key means no cross-instance locking; the
// scheduler guarantees a single writer per key.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func stateKey(id InstanceID) string {
	return "alert:state:" + id.String()
}

func (s *RedisStore) Get(ctx context.Context, id InstanceID) (Record, bool, error) {
	if s.rdb == nil {
		return Record{}, false, fmt.Errorf("redis client is nil")
	}
	data, err := s.rdb.Get(ctx, stateKey(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return Record{}, false, nil
		}
		return Record{}, false, fmt.Errorf("get alert state %s: %w", id, err)
	}
	var rec Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return Record{}, false, fmt.Errorf("decode alert state %s: %w", id, err)
	}
	return rec, true, nil
}

func (s *RedisStore) Set(ctx context.Context, id InstanceID, rec Record) error {
	if s.rdb == nil {
		return fmt.Errorf("redis client is nil")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode alert state %s: %w", id, err)
	}
	if err := s.rdb.Set(ctx, stateKey(id), data, 0).Err(); err != nil {
		return fmt.Errorf("set alert state %s: %w", id, err)
	}
	return nil
}

// NewRedisClient constructs a client, or nil when no address is
// configured so callers can fall back to the noop store.
func NewRedisClient(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}
