package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogReturns(t *testing.T) {
	closes := []float64{100, 110, 99}
	returns := logReturns(closes)

	assert.Len(t, returns, 2)
	assert.InDelta(t, math.Log(1.1), returns[0], 1e-12)
	assert.InDelta(t, math.Log(0.9), returns[1], 1e-12)
}

func TestLogReturns_ShortSeries(t *testing.T) {
	assert.Nil(t, logReturns([]float64{100}))
	assert.Nil(t, logReturns(nil))
}

func TestLogReturns_NonPositiveClose(t *testing.T) {
	returns := logReturns([]float64{100, 0, 50})
	assert.Equal(t, []float64{0, 0}, returns)
}

func TestAnnualizedVolatility_FlatSeries(t *testing.T) {
	// Identical closes produce zero returns and zero volatility.
	returns := logReturns([]float64{50, 50, 50, 50, 50})
	assert.Equal(t, 0.0, annualizedVolatility(returns))
}

func TestAnnualizedVolatility_Scaling(t *testing.T) {
	returns := []float64{0.01, -0.01, 0.01, -0.01, 0.01, -0.01}
	raw := sampleStd(returns)

	assert.InDelta(t, raw*math.Sqrt(252), annualizedVolatility(returns), 1e-12)
	assert.Greater(t, annualizedVolatility(returns), 0.0)
}

func TestMomentumPct(t *testing.T) {
	// 21 closes, last = 110, 20 bars earlier = 100.
	closes := make([]float64, 21)
	closes[0] = 100
	for i := 1; i < 21; i++ {
		closes[i] = 100 + float64(i)*0.5
	}
	closes[20] = 110

	assert.InDelta(t, 10.0, momentumPct(closes, 20), 1e-9)
}

func TestMomentumPct_ShortSeriesUsesFirstClose(t *testing.T) {
	// Only 11 bars for a 20-bar window: measure from the first close.
	closes := make([]float64, 11)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}

	assert.InDelta(t, 10.0, momentumPct(closes, 20), 1e-9)
}

func TestMomentumPct_Degenerate(t *testing.T) {
	assert.Equal(t, 0.0, momentumPct([]float64{100}, 20))
	assert.Equal(t, 0.0, momentumPct(nil, 20))
	// Zero base price must not divide.
	assert.Equal(t, 0.0, momentumPct([]float64{0, 50}, 1))
}

func TestWilderRSI_MonotonicRise(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}

	assert.Equal(t, 100.0, wilderRSI(closes, 14))
}

func TestWilderRSI_MonotonicFall(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 - float64(i)
	}

	assert.InDelta(t, 0.0, wilderRSI(closes, 14), 1e-9)
}

func TestWilderRSI_FlatSeries(t *testing.T) {
	// No losses at all, so the no-loss rule applies.
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 75
	}

	assert.Equal(t, 100.0, wilderRSI(closes, 14))
}

func TestWilderRSI_InsufficientHistory(t *testing.T) {
	closes := []float64{100, 101, 102}
	assert.Equal(t, 50.0, wilderRSI(closes, 14))
}

func TestWilderRSI_MixedSeries(t *testing.T) {
	closes := []float64{
		100, 102, 101, 103, 104, 103, 105, 107, 106, 108,
		109, 108, 110, 111, 110, 112, 113, 112, 114, 115,
	}

	rsi := wilderRSI(closes, 14)
	assert.Greater(t, rsi, 50.0)
	assert.Less(t, rsi, 100.0)
}

func TestBollingerPosition_FlatSeries(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 42
	}

	// Zero band width reads the midpoint.
	assert.Equal(t, 0.5, bollingerPosition(closes, 20, 2))
}

func TestBollingerPosition_Range(t *testing.T) {
	rising := make([]float64, 30)
	for i := range rising {
		rising[i] = 100 + float64(i)*2
	}

	pos := bollingerPosition(rising, 20, 2)
	assert.GreaterOrEqual(t, pos, 0.0)
	assert.LessOrEqual(t, pos, 1.0)
	assert.Greater(t, pos, 0.5, "a rising close sits in the upper half of the band")
}

func TestAutocorr_AlternatingReturns(t *testing.T) {
	returns := make([]float64, 50)
	for i := range returns {
		if i%2 == 0 {
			returns[i] = 0.01
		} else {
			returns[i] = -0.01
		}
	}

	assert.InDelta(t, -1.0, autocorr(returns, 1), 1e-9)
	assert.InDelta(t, 1.0, autocorr(returns, 2), 1e-9)
}

func TestAutocorr_FlatSeries(t *testing.T) {
	returns := []float64{0.01, 0.01, 0.01, 0.01, 0.01}
	assert.Equal(t, 0.0, autocorr(returns, 1))
}

func TestAutocorr_TooFewPairs(t *testing.T) {
	assert.Equal(t, 0.0, autocorr([]float64{0.01, 0.02}, 2))
	assert.Equal(t, 0.0, autocorr([]float64{0.01}, 1))
}

func TestHalfLifeLag_AlternatingReturns(t *testing.T) {
	returns := make([]float64, 60)
	for i := range returns {
		if i%2 == 0 {
			returns[i] = 0.02
		} else {
			returns[i] = -0.02
		}
	}

	// ac(1) = -1 so the target is -0.5; ac(2) = +1 misses it and
	// ac(3) = -1 is the first qualifying lag.
	assert.Equal(t, 3, halfLifeLag(returns, 30))
}

func TestHalfLifeLag_Bounded(t *testing.T) {
	// A strongly trending series never decays below half within the
	// search bound, so the bound itself is returned.
	returns := make([]float64, 120)
	for i := range returns {
		returns[i] = 0.01 + 0.005*math.Sin(float64(i)/40)
	}

	lag := halfLifeLag(returns, 30)
	assert.LessOrEqual(t, lag, 30)
	assert.GreaterOrEqual(t, lag, 2)
}

func TestSMA(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5}

	assert.InDelta(t, 4.0, sma(closes, 3), 1e-12)
	// Window longer than the series averages everything.
	assert.InDelta(t, 3.0, sma(closes, 10), 1e-12)
	assert.Equal(t, 0.0, sma(nil, 3))
}
