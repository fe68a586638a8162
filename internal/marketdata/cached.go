package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/mwhitfield/alphascore/pkg/logger"
	"github.com/mwhitfield/alphascore/pkg/redis"
)

// CachedProvider wraps a provider with a daily Redis cache. Bars only
// change after the close, so one successful fetch serves every model
// run of the same day. Cache failures fall through to the inner
// provider; a cold cache is slow, never wrong.
type CachedProvider struct {
	inner  Provider
	cache  *redis.Cache
	logger *logger.Logger
}

// cachedFetch is the stored envelope. Fundamentals ride along with the
// bars so a hit saves both upstream calls.
type cachedFetch struct {
	Series       *SymbolTimeSeries    `json:"series"`
	Fundamentals *FundamentalSnapshot `json:"fundamentals,omitempty"`
}

// NewCachedProvider wraps inner with the given cache.
func NewCachedProvider(inner Provider, cache *redis.Cache, log *logger.Logger) *CachedProvider {
	return &CachedProvider{
		inner:  inner,
		cache:  cache,
		logger: log,
	}
}

// Name reports the inner provider, the cache is transparent.
func (p *CachedProvider) Name() string {
	return p.inner.Name()
}

// Fetch returns the cached fetch for today, or delegates and stores.
// ErrNoData is never cached; an empty upstream answer may fill in
// later in the day.
func (p *CachedProvider) Fetch(ctx context.Context, symbol string, lookbackDays int) (*SymbolTimeSeries, *FundamentalSnapshot, error) {
	day := time.Now().UTC().Format("2006-01-02")
	key := fmt.Sprintf("%s:%d", redis.BarsKey(symbol, day), lookbackDays)

	var cached cachedFetch
	found, err := p.cache.Get(ctx, key, &cached)
	if err != nil {
		p.logger.WithError(err).WithField("symbol", symbol).Warn("Cache read failed")
	}
	if found && cached.Series != nil && cached.Series.Len() > 0 {
		return cached.Series, cached.Fundamentals, nil
	}

	series, funds, err := p.inner.Fetch(ctx, symbol, lookbackDays)
	if err != nil {
		return nil, nil, err
	}

	if err := p.cache.Set(ctx, key, cachedFetch{Series: series, Fundamentals: funds}, redis.TTLDaily); err != nil {
		p.logger.WithError(err).WithField("symbol", symbol).Warn("Cache write failed")
	}

	return series, funds, nil
}
