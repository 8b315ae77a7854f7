package rag

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"edu-backend/internal/shared/telemetry"
)

const cacheTTL = 5 * time.Minute

// Cache holds recent query results in Redis. A nil client disables caching.
type Cache struct {
	Client *redis.Client
}

// NewCacheFromURL connects to Redis; an empty URL returns a disabled cache.
func NewCacheFromURL(url string) (*Cache, error) {
	if url == "" {
		return &Cache{}, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &Cache{Client: redis.NewClient(opts)}, nil
}

func cacheKey(query string, topK int) string {
	sum := sha256.Sum256([]byte(query))
	return "rag:q:" + hex.EncodeToString(sum[:]) + ":" + strconv.Itoa(topK)
}

// Get returns cached hits for a query, if present.
func (c *Cache) Get(ctx context.Context, query string, topK int) ([]Hit, bool) {
	if c == nil || c.Client == nil {
		return nil, false
	}
	raw, err := c.Client.Get(ctx, cacheKey(query, topK)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			telemetry.Warn("rag.cache_get_failed", map[string]any{"error": err.Error()})
		}
		return nil, false
	}
	var hits []Hit
	if err := json.Unmarshal(raw, &hits); err != nil {
		return nil, false
	}
	return hits, true
}

// Set stores hits for a query. Failures are logged and swallowed.
func (c *Cache) Set(ctx context.Context, query string, topK int, hits []Hit) {
	if c == nil || c.Client == nil {
		return
	}
	raw, err := json.Marshal(hits)
	if err != nil {
		return
	}
	if err := c.Client.Set(ctx, cacheKey(query, topK), raw, cacheTTL).Err(); err != nil {
		telemetry.Warn("rag.cache_set_failed", map[string]any{"error": err.Error()})
	}
}
