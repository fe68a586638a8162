package marketdata

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Bar is one daily OHLCV observation. Prices stay decimal until the
// indicator layer asks for floats, so cached bars round-trip exactly.
type Bar struct {
	Date   time.Time       `json:"date"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
}

// SymbolTimeSeries holds the fetched history for one symbol, ascending
// by date. It is not modified after the fetch completes.
type SymbolTimeSeries struct {
	Symbol string `json:"symbol"`
	Bars   []Bar  `json:"bars"`
}

// Len returns the number of bars.
func (s *SymbolTimeSeries) Len() int {
	return len(s.Bars)
}

// Closes returns the close prices in date order.
func (s *SymbolTimeSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close.InexactFloat64()
	}
	return out
}

// Volumes returns the volumes in date order.
func (s *SymbolTimeSeries) Volumes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = float64(b.Volume)
	}
	return out
}

// LastDate returns the date of the most recent bar.
func (s *SymbolTimeSeries) LastDate() time.Time {
	if len(s.Bars) == 0 {
		return time.Time{}
	}
	return s.Bars[len(s.Bars)-1].Date
}

// FundamentalSnapshot carries point-in-time financial ratios. A field
// the upstream does not report stays zero; zero is the neutral
// sentinel, not an error.
type FundamentalSnapshot struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Sector        string  `json:"sector"`
	Industry      string  `json:"industry"`
	PERatio       float64 `json:"pe_ratio"`
	PBRatio       float64 `json:"pb_ratio"`
	ROE           float64 `json:"roe"`
	ProfitMargin  float64 `json:"profit_margin"`
	RevenueGrowth float64 `json:"revenue_growth"`
	DebtToEquity  float64 `json:"debt_to_equity"`
	DividendYield float64 `json:"dividend_yield"`
	MarketCap     float64 `json:"market_cap"`
}

// Profile carries company metadata scraped from the profile page.
type Profile struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Sector   string `json:"sector"`
	Industry string `json:"industry"`
}

// ErrNoData marks a symbol the upstream knows nothing about, or one
// that returned zero bars. The batch treats it as a skip, never as a
// run failure.
var ErrNoData = errors.New("no market data for symbol")

// Provider fetches bars and fundamentals for one symbol.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, symbol string, lookbackDays int) (*SymbolTimeSeries, *FundamentalSnapshot, error)
}
