package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fortuna/gridiron/internal/store"
)

const (
	// SnapshotKey holds the previous poll cycle's injury snapshot. The
	// orchestrator owns "current becomes previous": the detector itself
	// is handed both snapshots explicitly.
	SnapshotKey = "injuries:snapshot:prev"

	// FeedCachePrefix caches raw feed responses between polls.
	FeedCachePrefix = "injuries:feed:"

	// FeedCacheTTL matches the feed's own refresh cadence.
	FeedCacheTTL = time.Hour
)

// RedisCache handles caching and snapshot storage.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis cache connection.
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisCache{client: client}, nil
}

// Close closes the Redis connection.
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// Client returns the underlying Redis client.
func (rc *RedisCache) Client() *redis.Client {
	return rc.client
}

// HealthCheck pings Redis to verify connection.
func (rc *RedisCache) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// Set stores a key-value pair with TTL.
func (rc *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return rc.client.Set(ctx, key, value, ttl).Err()
}

// Get retrieves a value by key.
func (rc *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return rc.client.Get(ctx, key).Result()
}

// LoadSnapshot returns the previous cycle's snapshot, keyed by player ID.
// A missing key yields an empty snapshot (first run).
func (rc *RedisCache) LoadSnapshot(ctx context.Context) (map[string]*store.InjuryEvent, error) {
	data, err := rc.client.Get(ctx, SnapshotKey).Bytes()
	if err == redis.Nil {
		return map[string]*store.InjuryEvent{}, nil
	}
	if err != nil {
		return nil, err
	}

	snapshot := map[string]*store.InjuryEvent{}
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// SaveSnapshot overwrites the previous-cycle snapshot.
func (rc *RedisCache) SaveSnapshot(ctx context.Context, snapshot map[string]*store.InjuryEvent) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return rc.client.Set(ctx, SnapshotKey, data, 0).Err()
}
