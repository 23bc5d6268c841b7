package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"shipment-risk-service/internal/domain"
)

// RedisAssessmentCache is a Redis-backed AssessmentCache for
// deployments where several instances should share the memoized
// assessments. Expiry is delegated to Redis TTLs; the LRU bound is
// whatever eviction policy the Redis instance is configured with.
//
// Cache failures must never fail a scoring request: errors are logged
// and reported as misses.
type RedisAssessmentCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisAssessmentCache(client *redis.Client, ttl time.Duration) *RedisAssessmentCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisAssessmentCache{client: client, ttl: ttl}
}

func redisKey(key uint64) string {
	return fmt.Sprintf("assessment:%016x", key)
}

func (c *RedisAssessmentCache) Get(ctx context.Context, key uint64) (domain.EnhancedAssessment, bool) {
	payload, err := c.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.EnhancedAssessment{}, false
	}
	if err != nil {
		log.Printf("assessment cache get failed key=%016x err=%v", key, err)
		return domain.EnhancedAssessment{}, false
	}

	var assessment domain.EnhancedAssessment
	if err := json.Unmarshal(payload, &assessment); err != nil {
		log.Printf("assessment cache decode failed key=%016x err=%v", key, err)
		return domain.EnhancedAssessment{}, false
	}

	return assessment, true
}

func (c *RedisAssessmentCache) Put(ctx context.Context, key uint64, assessment domain.EnhancedAssessment) {
	payload, err := json.Marshal(assessment)
	if err != nil {
		log.Printf("assessment cache encode failed key=%016x err=%v", key, err)
		return
	}

	if err := c.client.Set(ctx, redisKey(key), payload, c.ttl).Err(); err != nil {
		log.Printf("assessment cache put failed key=%016x err=%v", key, err)
	}
}
