package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// CachedProvider wraps a Provider with a Redis cache-aside layer. Cache
// failures are logged and ignored; the cache must never fail a run.
type CachedProvider struct {
	inner Provider
	rdb   *redis.Client
	ttl   time.Duration
	log   zerolog.Logger
}

// NewCachedProvider creates a caching layer over the given provider
func NewCachedProvider(inner Provider, rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *CachedProvider {
	return &CachedProvider{
		inner: inner,
		rdb:   rdb,
		ttl:   ttl,
		log:   log.With().Str("component", "marketcache").Logger(),
	}
}

type cachedHistory struct {
	Series    Series     `json:"series"`
	Dividends []Dividend `json:"dividends"`
}

// FetchHistory serves from Redis when a fresh entry exists, otherwise
// delegates to the wrapped provider and stores the result.
func (c *CachedProvider) FetchHistory(ctx context.Context, symbol string, start, end time.Time) (Series, []Dividend, error) {
	key := c.cacheKey(symbol, start, end)

	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var cached cachedHistory
		if err := json.Unmarshal(data, &cached); err == nil {
			c.log.Debug().Str("symbol", symbol).Msg("Cache hit")
			return cached.Series, cached.Dividends, nil
		}
		c.log.Warn().Str("symbol", symbol).Msg("Discarding unreadable cache entry")
	} else if err != redis.Nil {
		c.log.Warn().Err(err).Str("symbol", symbol).Msg("Cache read failed, fetching directly")
	}

	series, dividends, err := c.inner.FetchHistory(ctx, symbol, start, end)
	if err != nil {
		return Series{}, nil, err
	}

	if data, err := json.Marshal(cachedHistory{Series: series, Dividends: dividends}); err == nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("Cache write failed")
		}
	}

	return series, dividends, nil
}

func (c *CachedProvider) cacheKey(symbol string, start, end time.Time) string {
	return fmt.Sprintf("portfolio:history:%s:%s:%s",
		symbol, start.Format("2006-01-02"), end.Format("2006-01-02"))
}
