package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/smartwealth/internal/domain"
	"github.com/iho/smartwealth/internal/infrastructure/metrics"
)

// RecordCache is a read-through cache of a user's record sets, one key per
// entity kind. Cache failures never fail a request.
type RecordCache struct {
	cache   Cache
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewRecordCache wraps cache. A non-positive ttl selects DefaultCacheTTL.
func NewRecordCache(cache Cache, ttl time.Duration, m *metrics.Metrics, logger zerolog.Logger) *RecordCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RecordCache{cache: cache, ttl: ttl, metrics: m, logger: logger}
}

func recordCacheKey(userID string, kind domain.EntityKind, generation string) string {
	return "records:" + userID + ":" + string(kind) + ":" + generation
}

func generationKey(userID string, kind domain.EntityKind) string {
	return "records:" + userID + ":" + string(kind) + ":gen"
}

func (c *RecordCache) observe(kind domain.EntityKind, result string) {
	if c.metrics != nil {
		c.metrics.CacheRequests.WithLabelValues(string(kind), result).Inc()
	}
}

// invalidate retires the cached record sets of kinds for userID by bumping
// their generation. A load that started before the write stores its rows
// under the old generation, which no reader asks for again.
func (c *RecordCache) invalidate(ctx context.Context, userID string, kinds ...domain.EntityKind) {
	if c == nil || c.cache == nil {
		return
	}
	for _, k := range kinds {
		if _, err := c.cache.Incr(ctx, generationKey(userID, k)); err != nil {
			c.logger.Warn().Err(err).Str("user_id", userID).Str("kind", string(k)).Msg("cache invalidation failed")
		}
	}
}

// generation returns the current generation of kind for userID. A counter
// that was never bumped reads as "0".
func (c *RecordCache) generation(ctx context.Context, userID string, kind domain.EntityKind) (string, error) {
	raw, err := c.cache.Get(ctx, generationKey(userID, kind))
	if errors.Is(err, ErrCacheMiss) {
		return "0", nil
	}
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// readThrough returns the cached record set for kind or loads and stores it
// under the generation observed before the load.
func readThrough[T any](ctx context.Context, c *RecordCache, userID string, kind domain.EntityKind, load func() ([]T, error)) ([]T, error) {
	if c == nil || c.cache == nil {
		return load()
	}

	gen, err := c.generation(ctx, userID, kind)
	if err != nil {
		c.logger.Warn().Err(err).Str("user_id", userID).Str("kind", string(kind)).Msg("cache generation read failed")
		c.observe(kind, "miss")
		return load()
	}

	key := recordCacheKey(userID, kind, gen)
	raw, err := c.cache.Get(ctx, key)
	switch {
	case err == nil:
		var records []T
		if jsonErr := json.Unmarshal(raw, &records); jsonErr == nil {
			c.observe(kind, "hit")
			return records, nil
		}
		c.logger.Warn().Str("key", key).Msg("discarding undecodable cache entry")
	case !errors.Is(err, ErrCacheMiss):
		c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}
	c.observe(kind, "miss")

	records, err := load()
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(records); err == nil {
		if err := c.cache.Set(ctx, key, raw, c.ttl); err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
	}

	return records, nil
}
