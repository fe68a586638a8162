package features

import (
	"errors"
	"fmt"

	"github.com/mwhitfield/alphascore/internal/marketdata"
	"github.com/mwhitfield/alphascore/pkg/logger"
)

// Extraction windows, in trading days.
const (
	// MinBars is the hard floor. Below it no meaningful statistics
	// exist and the symbol is skipped.
	MinBars = 30

	// fullBars is the history needed to run every window at its ideal
	// length (252 returns plus the seed bar). Anything shorter
	// produces a degraded-confidence vector.
	fullBars = 253

	volatilityWindow = 252
	rsiPeriod        = 14
	bollingerPeriod  = 20
	bollingerMult    = 2.0
	smaShortWindow   = 50
	smaLongWindow    = 200
	highWindow       = 252
	volumeWindow     = 20
	halfLifeMaxLag   = 30
)

// Momentum blend windows and their weights.
var (
	momentumWindows = []int{20, 60, 120}
	momentumWeights = []float64{0.5, 0.3, 0.2}
)

// ErrInsufficientHistory marks a series too short to score at all.
var ErrInsufficientHistory = errors.New("insufficient price history")

// Extractor turns a fetched series into a feature vector.
type Extractor struct {
	logger *logger.Logger
}

// NewExtractor creates a new feature extractor
func NewExtractor(log *logger.Logger) *Extractor {
	return &Extractor{
		logger: log,
	}
}

// Extract computes every feature for one symbol. Series shorter than
// the ideal windows are computed on what exists and flagged degraded;
// series below MinBars fail with ErrInsufficientHistory.
func (e *Extractor) Extract(series *marketdata.SymbolTimeSeries, fundamentals *marketdata.FundamentalSnapshot) (*Vector, error) {
	if series == nil || series.Len() == 0 {
		return nil, fmt.Errorf("%w: no bars", ErrInsufficientHistory)
	}
	if series.Len() < MinBars {
		return nil, fmt.Errorf("%w: %d bars, need %d", ErrInsufficientHistory, series.Len(), MinBars)
	}

	closes := series.Closes()
	volumes := series.Volumes()
	returns := logReturns(closes)

	// The volatility and autocorrelation statistics share one window.
	retWindow := returns
	if len(retWindow) > volatilityWindow {
		retWindow = retWindow[len(retWindow)-volatilityWindow:]
	}

	ac1 := autocorr(retWindow, 1)

	v := &Vector{
		Volatility:        annualizedVolatility(retWindow),
		ReversionStrength: Clip(reversionFromAutocorr(ac1), 0, 100),
		Momentum20:        momentumPct(closes, momentumWindows[0]),
		Momentum60:        momentumPct(closes, momentumWindows[1]),
		Momentum120:       momentumPct(closes, momentumWindows[2]),
		RSI14:             wilderRSI(closes, rsiPeriod),
		BollingerPosition: bollingerPosition(closes, bollingerPeriod, bollingerMult),
		HalfLife:          float64(halfLifeLag(retWindow, halfLifeMaxLag)),
		SMAGap:            smaGapPct(closes),
		HighDistance:      highDistancePct(closes),
		VolumeTrend:       volumeTrendPct(volumes),
		BarCount:          series.Len(),
		Confidence:        ConfidenceFull,
	}

	v.MomentumBlend = momentumWeights[0]*v.Momentum20 +
		momentumWeights[1]*v.Momentum60 +
		momentumWeights[2]*v.Momentum120

	if series.Len() < fullBars {
		v.Confidence = ConfidenceDegraded
	}

	if fundamentals != nil {
		v.PERatio = Finite(fundamentals.PERatio, 0)
		v.PBRatio = Finite(fundamentals.PBRatio, 0)
		v.ROE = Finite(fundamentals.ROE, 0)
		v.ProfitMargin = Finite(fundamentals.ProfitMargin, 0)
		v.RevenueGrowth = Finite(fundamentals.RevenueGrowth, 0)
		v.DebtToEquity = Finite(fundamentals.DebtToEquity, 0)
		v.DividendYield = Finite(fundamentals.DividendYield, 0)
		v.MarketCap = Finite(fundamentals.MarketCap, 0)
	} else {
		// Absent fundamentals stay neutral zeros.
		v.Confidence = ConfidenceDegraded
	}

	e.logger.WithFields(map[string]interface{}{
		"symbol":     series.Symbol,
		"bars":       v.BarCount,
		"volatility": v.Volatility,
		"momentum":   v.MomentumBlend,
		"rsi":        v.RSI14,
		"confidence": v.Confidence,
	}).Debug("Extracted feature vector")

	return v, nil
}

// reversionFromAutocorr maps negative lag-1 autocorrelation to a 0-100
// strength. Positive autocorrelation (trending) reads 0.
func reversionFromAutocorr(ac1 float64) float64 {
	if ac1 >= 0 {
		return 0
	}
	return -ac1 * 100
}

// smaGapPct is the percent gap between the short and long moving
// averages, the classic golden-cross distance.
func smaGapPct(closes []float64) float64 {
	short := sma(closes, smaShortWindow)
	long := sma(closes, smaLongWindow)
	return SafeDiv(short-long, long, 0) * 100
}

// highDistancePct is the percent distance of the last close below the
// trailing high. At a fresh high it reads 0, below it negative.
func highDistancePct(closes []float64) float64 {
	if len(closes) == 0 {
		return 0
	}

	window := closes
	if len(window) > highWindow {
		window = window[len(window)-highWindow:]
	}

	high := window[0]
	for _, c := range window {
		if c > high {
			high = c
		}
	}

	last := closes[len(closes)-1]
	return SafeDiv(last-high, high, 0) * 100
}

// volumeTrendPct compares recent average volume to the preceding
// window. Shorter series read 0.
func volumeTrendPct(volumes []float64) float64 {
	if len(volumes) < volumeWindow*2 {
		return 0
	}

	recent := mean(volumes[len(volumes)-volumeWindow:])
	prior := mean(volumes[len(volumes)-volumeWindow*2 : len(volumes)-volumeWindow])

	return SafeDiv(recent-prior, prior, 0) * 100
}
