// Package repository loads the inputs the matching engine scores: producers
// from Elasticsearch, profiles and order history from PostgreSQL, with a
// Redis JSON cache in front of the slower lookups.
package repository

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"printmatch-workers/internal/common/errors"
	"printmatch-workers/internal/common/logger"
	"printmatch-workers/internal/common/metrics"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "printmatch"

// Cache namespaces.
const (
	NamespaceProducer   = "producer"
	NamespaceDesigner   = "designer"
	NamespaceTrending   = "trending"
	NamespaceRising     = "rising"
	NamespaceCandidates = "candidates"
)

// Cache stores JSON documents in Redis. A nil *Cache is a valid cache that
// never hits.
type Cache struct {
	client *redis.Client
	logger logger.Logger
}

func NewCache(client *redis.Client, log logger.Logger) *Cache {
	return &Cache{client: client, logger: log}
}

// Key builds "printmatch:<namespace>:<id>".
func Key(namespace, id string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, namespace, id)
}

// GetJSON decodes a cached document into dest. It reports false on a miss.
func (c *Cache) GetJSON(ctx context.Context, namespace, id string, dest interface{}) (bool, error) {
	if c == nil || c.client == nil {
		return false, nil
	}

	val, err := c.client.Get(ctx, Key(namespace, id)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		metrics.RecordCache(namespace, metrics.CacheMiss)
		return false, nil
	}
	if err != nil {
		metrics.RecordCache(namespace, metrics.CacheErr)
		return false, errors.NewCacheUnavailableError(err)
	}
	if err := json.Unmarshal(val, dest); err != nil {
		metrics.RecordCache(namespace, metrics.CacheErr)
		return false, fmt.Errorf("decode cached %s: %w", namespace, err)
	}

	metrics.RecordCache(namespace, metrics.CacheHit)
	return true, nil
}

func (c *Cache) SetJSON(ctx context.Context, namespace, id string, value interface{}, ttl time.Duration) error {
	if c == nil || c.client == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s for cache: %w", namespace, err)
	}
	if err := c.client.Set(ctx, Key(namespace, id), data, ttl).Err(); err != nil {
		return errors.NewCacheUnavailableError(err)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, namespace, id string) error {
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, Key(namespace, id)).Err(); err != nil {
		return errors.NewCacheUnavailableError(err)
	}
	return nil
}

func (c *Cache) warn(msg, namespace, id string, err error) {
	if c == nil || c.logger == nil {
		return
	}
	c.logger.Warn(msg, map[string]interface{}{
		"namespace": namespace,
		"key":       id,
		"error":     err.Error(),
	})
}

// Remember returns the cached value for namespace/id, or calls load and
// caches its result. Cache failures are logged and never fail the call.
func Remember[T any](ctx context.Context, c *Cache, namespace, id string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var cached T
	hit, err := c.GetJSON(ctx, namespace, id, &cached)
	if err != nil {
		c.warn("cache read failed", namespace, id, err)
	}
	if hit {
		return cached, nil
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	if err := c.SetJSON(ctx, namespace, id, value, ttl); err != nil {
		c.warn("cache write failed", namespace, id, err)
	}
	return value, nil
}
