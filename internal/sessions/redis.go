package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "session:"
	userPrefix = "user_sessions:"
)

// RedisStore persists sessions in Redis with the token TTL as expiry. A set
// per user indexes its live sessions so they can all be revoked at once.
type RedisStore struct {
	client *redis.Client
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a store over an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, tokenHash, userID string, ttl time.Duration) error {
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, keyPrefix+tokenHash, userID, ttl)
	pipe.SAdd(ctx, userPrefix+userID, tokenHash)
	pipe.Expire(ctx, userPrefix+userID, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Get(ctx context.Context, tokenHash string) (string, error) {
	userID, err := s.client.Get(ctx, keyPrefix+tokenHash).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", err
	}
	return userID, nil
}

func (s *RedisStore) Delete(ctx context.Context, tokenHash string) error {
	userID, err := s.client.Get(ctx, keyPrefix+tokenHash).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, keyPrefix+tokenHash)
	pipe.SRem(ctx, userPrefix+userID, tokenHash)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) DeleteAllForUser(ctx context.Context, userID string) error {
	hashes, err := s.client.SMembers(ctx, userPrefix+userID).Result()
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(hashes)+1)
	for _, hash := range hashes {
		keys = append(keys, keyPrefix+hash)
	}
	keys = append(keys, userPrefix+userID)
	return s.client.Del(ctx, keys...).Err()
}
