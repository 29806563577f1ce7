package cache

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/applane/config"
	"github.com/Domenick1991/applane/internal/persistence"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only if it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisCache struct {
	client      redis.UniversalClient
	snapshotTTL time.Duration
}

var _ persistence.SnapshotCache = (*RedisCache)(nil)

func NewRedisCache(cfg config.RedisConfig, snapshotTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(
		redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		snapshotTTL,
	)
}

func NewRedisCacheWithClient(client redis.UniversalClient, snapshotTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:      client,
		snapshotTTL: snapshotTTL,
	}
}

func (c *RedisCache) GetSnapshot(ctx context.Context, name string) ([]byte, error) {
	data, err := c.client.Get(ctx, snapshotKey(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

func (c *RedisCache) SetSnapshot(ctx context.Context, name string, data []byte) error {
	return c.client.Set(ctx, snapshotKey(name), data, c.snapshotTTL).Err()
}

// AcquireWriteLock takes the lock guarding the snapshot called name. The
// returned token must be passed to ReleaseWriteLock. ok is false when another
// holder has the lock.
func (c *RedisCache) AcquireWriteLock(ctx context.Context, name string, ttl time.Duration) (token string, ok bool, err error) {
	token = uuid.NewString()
	ok, err = c.client.SetNX(ctx, writeLockKey(name), token, ttl).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

func (c *RedisCache) ReleaseWriteLock(ctx context.Context, name, token string) error {
	return releaseScript.Run(ctx, c.client, []string{writeLockKey(name)}, token).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func snapshotKey(name string) string {
	return "cache:snapshot:" + name
}

func writeLockKey(name string) string {
	return "lock:snapshot:" + name
}
