package store

import (
	"context"
	"errors"
	"time"

	"mflix/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

const submissionKeyPrefix = "submission:"

// RedisTracker keeps the latest submission token per session in Redis so
// several gateway instances agree on which result is current.
type RedisTracker struct {
	client *redis.Client
	ttl    time.Duration // idle sessions are forgotten after this
}

var _ repository.SubmissionTracker = (*RedisTracker)(nil)

func NewRedisTracker(client *redis.Client, ttl time.Duration) *RedisTracker {
	return &RedisTracker{
		client: client,
		ttl:    ttl,
	}
}

func (r *RedisTracker) Next(ctx context.Context, session string) (int64, error) {
	key := submissionKeyPrefix + session
	token, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if r.ttl > 0 {
		if err := r.client.Expire(ctx, key, r.ttl).Err(); err != nil {
			return token, err
		}
	}
	return token, nil
}

func (r *RedisTracker) IsLatest(ctx context.Context, session string, token int64) (bool, error) {
	latest, err := r.client.Get(ctx, submissionKeyPrefix+session).Int64()
	if errors.Is(err, redis.Nil) {
		return true, nil // session expired, nothing newer exists
	}
	if err != nil {
		return false, err
	}
	return token >= latest, nil
}
