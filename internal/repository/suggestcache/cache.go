// Package suggestcache decorates a suggestion repository with a key-value
// cache so repeated prefix lookups skip the database.
package suggestcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/adequity/brandflow-search/internal/db"
	"github.com/adequity/brandflow-search/internal/usecase/suggest"
)

const cacheKeyPrefix = "brandflow:suggest_cache:"

// store is the consumer interface for the suggestion cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedRepo caches distinct-value lookups in a key-value store.
type CachedRepo struct {
	inner      suggest.Repository
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner suggest.Repository,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedRepo {
	return &CachedRepo{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Distinct returns cached suggestions or falls through to the inner
// repository and stores the result.
func (c *CachedRepo) Distinct(ctx context.Context, entity, field, match string, limit int) ([]string, error) {
	key := c.cacheKey(entity, field, match, limit)

	if values, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return values, nil
	}

	c.incCache("miss")

	values, err := c.inner.Distinct(ctx, entity, field, match, limit)
	if err != nil {
		return nil, fmt.Errorf("distinct %s.%s: %w", entity, field, err)
	}

	c.putToCache(ctx, key, values)
	return values, nil
}

func (c *CachedRepo) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedRepo) cacheKey(entity, field, match string, limit int) string {
	h := sha256.Sum256([]byte(entity + "\x00" + field + "\x00" + match + "\x00" + strconv.Itoa(limit)))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedRepo) getFromCache(ctx context.Context, key string) ([]string, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached suggestions", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		c.logger.Warn("Failed to parse cached suggestions", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return values, true
}

func (c *CachedRepo) putToCache(ctx context.Context, key string, values []string) {
	data, err := json.Marshal(values)
	if err != nil {
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache suggestions", zap.String("key", key), zap.Error(err))
	}
}
