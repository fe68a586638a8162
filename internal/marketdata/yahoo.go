package marketdata

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/equity"
	"golang.org/x/time/rate"

	"github.com/mwhitfield/alphascore/pkg/config"
	"github.com/mwhitfield/alphascore/pkg/logger"
)

// YahooProvider fetches daily bars through the Yahoo chart API and
// fundamentals through the quote API. Ratios the quote endpoint does
// not carry (margins, leverage, growth) stay at their zero neutral;
// the profile scraper fills sector metadata when configured.
type YahooProvider struct {
	limiter  *rate.Limiter
	profiles *ProfileScraper
	logger   *logger.Logger
}

// NewYahooProvider creates a provider. profiles may be nil, sector
// metadata then falls back to the universe file.
func NewYahooProvider(cfg config.ProviderConfig, profiles *ProfileScraper, log *logger.Logger) *YahooProvider {
	return &YahooProvider{
		limiter:  newLimiter(cfg.RatePerSecond, cfg.RateBurst),
		profiles: profiles,
		logger:   log,
	}
}

// newLimiter guards against zero-valued configs, which mean no limit.
func newLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

// Name identifies the provider in logs and metrics.
func (p *YahooProvider) Name() string {
	return "yahoo"
}

// Fetch loads lookbackDays of daily history plus a fundamental
// snapshot. Zero returned bars map to ErrNoData. A failed fundamental
// fetch degrades to a nil snapshot instead of failing the symbol;
// price history is the hard requirement.
func (p *YahooProvider) Fetch(ctx context.Context, symbol string, lookbackDays int) (*SymbolTimeSeries, *FundamentalSnapshot, error) {
	series, err := p.fetchBars(ctx, symbol, lookbackDays)
	if err != nil {
		return nil, nil, err
	}

	funds := p.fetchFundamentals(ctx, symbol)

	if p.profiles != nil {
		profile, err := p.profiles.Scrape(ctx, symbol)
		if err != nil {
			p.logger.WithError(err).WithField("symbol", symbol).Debug("Profile scrape failed")
		} else if funds != nil {
			if funds.Sector == "" {
				funds.Sector = profile.Sector
			}
			if funds.Industry == "" {
				funds.Industry = profile.Industry
			}
			if funds.Name == "" {
				funds.Name = profile.Name
			}
		}
	}

	p.logger.WithFields(map[string]interface{}{
		"symbol":       symbol,
		"bars":         series.Len(),
		"fundamentals": funds != nil,
	}).Debug("Fetched symbol")

	return series, funds, nil
}

func (p *YahooProvider) fetchBars(ctx context.Context, symbol string, lookbackDays int) (*SymbolTimeSeries, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	end := time.Now()
	start := end.AddDate(0, 0, -lookbackDays)

	params := &chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}

	iter := chart.Get(params)

	bars := make([]Bar, 0, lookbackDays)
	for iter.Next() {
		b := iter.Bar()
		bars = append(bars, Bar{
			Date:   time.Unix(int64(b.Timestamp), 0).UTC(),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.AdjClose,
			Volume: int64(b.Volume),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("chart %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, ErrNoData)
	}

	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Date.Before(bars[j].Date)
	})

	return &SymbolTimeSeries{Symbol: symbol, Bars: bars}, nil
}

func (p *YahooProvider) fetchFundamentals(ctx context.Context, symbol string) *FundamentalSnapshot {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil
	}

	q, err := equity.Get(symbol)
	if err != nil || q == nil {
		p.logger.WithError(err).WithField("symbol", symbol).Debug("Fundamentals fetch failed")
		return nil
	}

	name := q.LongName
	if name == "" {
		name = q.ShortName
	}

	funds := &FundamentalSnapshot{
		Symbol:        symbol,
		Name:          name,
		PERatio:       q.TrailingPE,
		PBRatio:       q.PriceToBook,
		DividendYield: q.TrailingAnnualDividendYield,
		MarketCap:     float64(q.MarketCap),
	}

	// Both EPS and book value are per-share, so their ratio is a
	// usable return-on-equity proxy.
	if q.BookValue > 0 {
		funds.ROE = q.EpsTrailingTwelveMonths / q.BookValue
	}

	return funds
}
