package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// VersionKey tracks the global result version for change detection
	VersionKey = "puzzleboard:version"

	// groupVersionKey is formatted with a group id
	groupVersionKey = "puzzleboard:group:%s:version"

	// rankingKeyPrefix namespaces cached ranking payloads
	rankingKeyPrefix = "puzzleboard:rankings:"
)

// RedisRepository handles all Redis operations
type RedisRepository struct {
	client *redis.Client
}

// NewRedisRepository creates a new Redis repository
func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{
		client: client,
	}
}

// GroupVersionKey returns the version counter key of a group.
func GroupVersionKey(groupID string) string {
	return fmt.Sprintf(groupVersionKey, groupID)
}

// BumpVersion increments the version of each group and the global version
// in one pipeline, returning the new global version. Cached rankings keyed
// by an older group version stop being read.
func (r *RedisRepository) BumpVersion(ctx context.Context, groupIDs ...string) (int64, error) {
	pipe := r.client.Pipeline()

	for _, id := range groupIDs {
		pipe.Incr(ctx, GroupVersionKey(id))
	}
	global := pipe.Incr(ctx, VersionKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return global.Val(), nil
}

// Version returns a group's current version, 0 when it was never bumped
func (r *RedisRepository) Version(ctx context.Context, groupID string) (int64, error) {
	return r.counter(ctx, GroupVersionKey(groupID))
}

// GlobalVersion returns the current global version number
func (r *RedisRepository) GlobalVersion(ctx context.Context) (int64, error) {
	return r.counter(ctx, VersionKey)
}

func (r *RedisRepository) counter(ctx context.Context, key string) (int64, error) {
	version, err := r.client.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return version, nil
}

// CacheRankings stores an encoded ranking payload under key for ttl
func (r *RedisRepository) CacheRankings(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	return r.client.Set(ctx, rankingKeyPrefix+key, payload, ttl).Err()
}

// CachedRankings returns a payload stored by CacheRankings, or ErrNotFound
func (r *RedisRepository) CachedRankings(ctx context.Context, key string) ([]byte, error) {
	payload, err := r.client.Get(ctx, rankingKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return payload, nil
}

// Ping checks if Redis is reachable
func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *RedisRepository) Close() error {
	return r.client.Close()
}
