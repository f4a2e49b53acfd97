package utils

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taroc/schedule-service-sub002/config"
)

var RedisClient *redis.Client

// InitRedis connects the shared redis client used for response caching.
func InitRedis(cfg *config.Config) error {
	addr := cfg.RedisAddr
	if addr == "" {
		addr = "localhost:6379"
	}

	RedisClient = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := RedisClient.Ping(ctx).Err(); err != nil {
		return err
	}

	log.Println("✅ Redis connected")
	return nil
}

// CacheJSON stores v under key with a TTL. Failures are logged, not returned:
// the cache is an optimization, never a source of truth.
func CacheJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	if RedisClient == nil {
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		log.Printf("⚠️ Cache marshal failed for %s: %v", key, err)
		return
	}
	if err := RedisClient.Set(ctx, key, payload, ttl).Err(); err != nil {
		log.Printf("⚠️ Cache set failed for %s: %v", key, err)
	}
}

// GetCachedJSON loads key into out. Returns false on miss or any error.
func GetCachedJSON(ctx context.Context, key string, out interface{}) bool {
	if RedisClient == nil {
		return false
	}
	payload, err := RedisClient.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(payload, out) == nil
}

// MarkOnce records key with a TTL and reports whether this call was the first
// to do so. Used to deduplicate reminders across trigger runs. Fails open: a
// duplicate reminder beats a silently dropped one.
func MarkOnce(ctx context.Context, key string, ttl time.Duration) bool {
	if RedisClient == nil {
		return true
	}
	first, err := RedisClient.SetNX(ctx, key, 1, ttl).Result()
	if err != nil {
		log.Printf("⚠️ Dedup check failed for %s: %v", key, err)
		return true
	}
	return first
}

// InvalidateCache removes a cached key, e.g. after a write that changes stats.
func InvalidateCache(ctx context.Context, keys ...string) {
	if RedisClient == nil || len(keys) == 0 {
		return
	}
	if err := RedisClient.Del(ctx, keys...).Err(); err != nil {
		log.Printf("⚠️ Cache invalidation failed: %v", err)
	}
}
