package marketdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/mwhitfield/alphascore/pkg/logger"
)

// Breaker thresholds. Five straight infrastructure failures trip the
// circuit; after a minute one probe request is let through.
const (
	breakerFailures = 5
	breakerTimeout  = 60 * time.Second
)

// BreakerProvider stops hammering a broken upstream. ErrNoData is a
// data condition, not provider health, so it passes through without
// counting against the circuit.
type BreakerProvider struct {
	inner  Provider
	cb     *gobreaker.CircuitBreaker
	logger *logger.Logger
}

// fetchOutcome carries a non-infrastructure error through the breaker
// without tripping it.
type fetchOutcome struct {
	series *SymbolTimeSeries
	funds  *FundamentalSnapshot
	err    error
}

// NewBreakerProvider wraps inner with a circuit breaker.
func NewBreakerProvider(inner Provider, log *logger.Logger) *BreakerProvider {
	p := &BreakerProvider{inner: inner, logger: log}

	st := gobreaker.Settings{Name: inner.Name()}
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= breakerFailures
	}
	st.Timeout = breakerTimeout
	st.OnStateChange = func(name string, from, to gobreaker.State) {
		log.WithFields(map[string]interface{}{
			"provider": name,
			"from":     from.String(),
			"to":       to.String(),
		}).Warn("Provider circuit state changed")
	}
	p.cb = gobreaker.NewCircuitBreaker(st)

	return p
}

// Name reports the inner provider.
func (p *BreakerProvider) Name() string {
	return p.inner.Name()
}

// Fetch delegates through the circuit.
func (p *BreakerProvider) Fetch(ctx context.Context, symbol string, lookbackDays int) (*SymbolTimeSeries, *FundamentalSnapshot, error) {
	result, err := p.cb.Execute(func() (interface{}, error) {
		series, funds, err := p.inner.Fetch(ctx, symbol, lookbackDays)
		if err != nil {
			if errors.Is(err, ErrNoData) {
				return fetchOutcome{err: err}, nil
			}
			return nil, err
		}
		return fetchOutcome{series: series, funds: funds}, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, nil, fmt.Errorf("%s circuit open: %w", p.inner.Name(), err)
		}
		return nil, nil, err
	}

	outcome := result.(fetchOutcome)
	return outcome.series, outcome.funds, outcome.err
}
