package resettoken

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps entries in Redis so resets survive restarts and are shared
// across instances. The key TTL mirrors the entry expiry, so Redis evicts
// stale entries on its own.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func key(userID string) string {
	return "reset:" + userID
}

func (s *RedisStore) Put(ctx context.Context, userID string, e Entry) error {
	ttl := time.Until(e.ExpiresAt)

	if ttl <= 0 {
		ttl = time.Millisecond
	}

	return s.rdb.Set(ctx, key(userID), e.TokenHash, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, userID string) (Entry, bool, error) {
	pipe := s.rdb.Pipeline()
	get := pipe.Get(ctx, key(userID))
	ttl := pipe.PTTL(ctx, key(userID))

	_, err := pipe.Exec(ctx)

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Entry{}, false, nil
		}
		return Entry{}, false, err
	}

	e := Entry{
		TokenHash: get.Val(),
		ExpiresAt: time.Now().UTC().Add(ttl.Val()),
	}

	return e, true, nil
}

func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	return s.rdb.Del(ctx, key(userID)).Err()
}
