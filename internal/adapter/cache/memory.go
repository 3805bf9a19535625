package cache

import (
	"context"
	"sync"
	"time"

	"coin-price-service/internal/domain/model"
	"coin-price-service/internal/domain/ports"
	"coin-price-service/internal/metrics"
	"coin-price-service/pkg/logger"
)

type entry struct {
	price     string
	expiresAt time.Time
}

// CachedSource memoizes a PriceSource per (ticker, currency) for a fixed TTL.
// It is itself a PriceSource, so it can wrap another CachedSource.
//
// Concurrent misses on the same key are not coalesced: each one calls the
// wrapped source and the last write wins. Failed calls are never cached.
type CachedSource struct {
	source  ports.PriceSource
	ttl     time.Duration
	log     *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	mutex    sync.RWMutex
	cacheMap map[model.QuoteKey]entry
}

type Option func(*CachedSource)

// WithClock replaces time.Now, mostly for tests that need to move past the TTL.
func WithClock(now func() time.Time) Option {
	return func(c *CachedSource) {
		c.now = now
	}
}

// WithMetrics counts hits and misses.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *CachedSource) {
		c.metrics = m
	}
}

// NewCachedSource wraps source. A ttl <= 0 makes every entry stale on
// arrival, so every lookup goes upstream.
func NewCachedSource(source ports.PriceSource, ttl time.Duration, log *logger.Logger, opts ...Option) *CachedSource {
	if log == nil {
		log = logger.Discard()
	}

	c := &CachedSource{
		source:   source,
		ttl:      ttl,
		log:      log,
		now:      time.Now,
		cacheMap: make(map[model.QuoteKey]entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CachedSource) GetPrice(ctx context.Context, ticker, currency string) (string, error) {
	key := model.NewQuoteKey(ticker, currency)

	if price, found := c.get(key); found {
		c.log.Debug("Cache hit", "key", key)
		if c.metrics != nil {
			c.metrics.CacheHitsTotal.Inc()
		}
		return price, nil
	}

	c.log.Debug("Cache miss", "key", key)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}

	// No lock is held here: a slow upstream must not block other keys.
	price, err := c.source.GetPrice(ctx, ticker, currency)
	if err != nil {
		return "", err
	}

	c.set(key, price)
	return price, nil
}

func (c *CachedSource) get(key model.QuoteKey) (string, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	e, found := c.cacheMap[key]
	if !found || !e.expiresAt.After(c.now()) {
		return "", false
	}
	return e.price, true
}

func (c *CachedSource) set(key model.QuoteKey, price string) {
	expiresAt := c.now().Add(c.ttl)

	c.mutex.Lock()
	c.cacheMap[key] = entry{price: price, expiresAt: expiresAt}
	c.mutex.Unlock()

	c.log.Debug("Cache set", "key", key, "expires_at", expiresAt)
}

var _ ports.PriceSource = (*CachedSource)(nil)
