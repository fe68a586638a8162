package features

import "math"

// logReturns computes r_t = ln(C_t / C_{t-1}). Non-positive closes
// contribute a zero return instead of a NaN.
func logReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		cur := closes[i]
		if prev <= 0 || cur <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sampleStd is the n-1 standard deviation, used for return volatility.
func sampleStd(xs []float64) float64 {
	n := len(xs)
	if n < 2 {
		return 0
	}
	m := mean(xs)
	sum2 := 0.0
	for _, x := range xs {
		d := x - m
		sum2 += d * d
	}
	variance := sum2 / float64(n-1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

// popStd is the population standard deviation, used for Bollinger
// band width.
func popStd(xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}
	m := mean(xs)
	sum2 := 0.0
	for _, x := range xs {
		d := x - m
		sum2 += d * d
	}
	return math.Sqrt(sum2 / float64(n))
}

// tradingDaysPerYear annualizes daily return volatility.
const tradingDaysPerYear = 252

// annualizedVolatility is the sample std of the log returns scaled by
// sqrt(252).
func annualizedVolatility(returns []float64) float64 {
	return sampleStd(returns) * math.Sqrt(tradingDaysPerYear)
}

// sma returns the mean of the last period values, or of everything
// when the series is shorter.
func sma(xs []float64, period int) float64 {
	if len(xs) == 0 {
		return 0
	}
	if period > len(xs) {
		period = len(xs)
	}
	return mean(xs[len(xs)-period:])
}

// autocorr is the Pearson correlation between the series and itself
// shifted by lag. Fewer than two pairs, or a flat series, yield 0.
func autocorr(xs []float64, lag int) float64 {
	n := len(xs) - lag
	if lag < 1 || n < 2 {
		return 0
	}

	a := xs[:n]
	b := xs[lag:]

	ma := mean(a)
	mb := mean(b)

	var cov, va, vb float64
	for i := 0; i < n; i++ {
		da := a[i] - ma
		db := b[i] - mb
		cov += da * db
		va += da * da
		vb += db * db
	}

	return SafeDiv(cov, math.Sqrt(va*vb), 0)
}

// momentumPct is the percent change over the last n bars. A series
// shorter than n+1 bars measures from its first close instead.
func momentumPct(closes []float64, n int) float64 {
	if len(closes) < 2 {
		return 0
	}
	base := 0
	if len(closes) > n {
		base = len(closes) - 1 - n
	}
	return SafeDiv(closes[len(closes)-1]-closes[base], closes[base], 0) * 100
}

// wilderRSI computes the latest RSI value with Wilder smoothing: the
// seed averages are simple means over the first period deltas, every
// later bar blends in at weight 1/period. A window without losses
// reads 100.
func wilderRSI(closes []float64, period int) float64 {
	if len(closes) < period+1 {
		return 50
	}

	var gains, losses float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains += change
		} else {
			losses += -change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		var gain, loss float64
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}

		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// bollingerPosition places the last close inside SMA(period) +/- mult
// standard deviations, clipped to [0, 1]. Zero band width reads 0.5.
func bollingerPosition(closes []float64, period int, mult float64) float64 {
	if len(closes) == 0 {
		return 0.5
	}
	if period > len(closes) {
		period = len(closes)
	}

	window := closes[len(closes)-period:]
	mid := mean(window)
	std := popStd(window)

	upper := mid + mult*std
	lower := mid - mult*std

	width := upper - lower
	if width == 0 {
		return 0.5
	}

	last := closes[len(closes)-1]
	return Clamp01((last - lower) / width)
}

// halfLifeLag finds the smallest lag k > 1 whose autocorrelation has
// decayed to half the lag-1 value. The search stops at maxLag, which
// is also the answer when no lag qualifies.
func halfLifeLag(returns []float64, maxLag int) int {
	if maxLag < 2 {
		return maxLag
	}

	target := autocorr(returns, 1) / 2
	for k := 2; k <= maxLag; k++ {
		if autocorr(returns, k) <= target {
			return k
		}
	}
	return maxLag
}
