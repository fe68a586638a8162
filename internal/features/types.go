package features

// Name identifies a feature the extractor produces. Model band tables
// reference features by these names; anything else is rejected at
// config load.
type Name string

const (
	// Price series features
	Volatility        Name = "volatility_annualized"
	ReversionStrength Name = "reversion_strength"
	Momentum20        Name = "momentum_20"
	Momentum60        Name = "momentum_60"
	Momentum120       Name = "momentum_120"
	MomentumBlend     Name = "momentum_blend"
	RSI14             Name = "rsi_14"
	BollingerPosition Name = "bollinger_position"
	HalfLife          Name = "half_life"
	SMAGap            Name = "sma_gap"
	HighDistance      Name = "high_distance"
	VolumeTrend       Name = "volume_trend"

	// Fundamental features
	PERatio       Name = "pe_ratio"
	PBRatio       Name = "pb_ratio"
	ROE           Name = "roe"
	ProfitMargin  Name = "profit_margin"
	RevenueGrowth Name = "revenue_growth"
	DebtToEquity  Name = "debt_to_equity"
	DividendYield Name = "dividend_yield"
	MarketCap     Name = "market_cap"
)

// Names returns every known feature name in declaration order.
func Names() []Name {
	return []Name{
		Volatility,
		ReversionStrength,
		Momentum20,
		Momentum60,
		Momentum120,
		MomentumBlend,
		RSI14,
		BollingerPosition,
		HalfLife,
		SMAGap,
		HighDistance,
		VolumeTrend,
		PERatio,
		PBRatio,
		ROE,
		ProfitMargin,
		RevenueGrowth,
		DebtToEquity,
		DividendYield,
		MarketCap,
	}
}

// Valid reports whether name is a known feature.
func Valid(name string) bool {
	for _, n := range Names() {
		if Name(name) == n {
			return true
		}
	}
	return false
}

// Confidence describes how much history backed an extraction.
type Confidence string

const (
	// ConfidenceFull means every window had its ideal history.
	ConfidenceFull Confidence = "full"
	// ConfidenceDegraded means at least one statistic was computed on
	// a shortened window.
	ConfidenceDegraded Confidence = "degraded"
)

// Vector holds every extracted feature for one symbol. All values are
// finite; degenerate inputs resolve to the defaults documented in
// safemath.go.
type Vector struct {
	Volatility        float64 `json:"volatility_annualized"`
	ReversionStrength float64 `json:"reversion_strength"`
	Momentum20        float64 `json:"momentum_20"`
	Momentum60        float64 `json:"momentum_60"`
	Momentum120       float64 `json:"momentum_120"`
	MomentumBlend     float64 `json:"momentum_blend"`
	RSI14             float64 `json:"rsi_14"`
	BollingerPosition float64 `json:"bollinger_position"`
	HalfLife          float64 `json:"half_life"`
	SMAGap            float64 `json:"sma_gap"`
	HighDistance      float64 `json:"high_distance"`
	VolumeTrend       float64 `json:"volume_trend"`

	PERatio       float64 `json:"pe_ratio"`
	PBRatio       float64 `json:"pb_ratio"`
	ROE           float64 `json:"roe"`
	ProfitMargin  float64 `json:"profit_margin"`
	RevenueGrowth float64 `json:"revenue_growth"`
	DebtToEquity  float64 `json:"debt_to_equity"`
	DividendYield float64 `json:"dividend_yield"`
	MarketCap     float64 `json:"market_cap"`

	Confidence Confidence `json:"confidence"`
	BarCount   int        `json:"bar_count"`
}

// Get returns the feature value for name. The second return is false
// for unknown names; callers that validated their config never see it.
func (v *Vector) Get(name Name) (float64, bool) {
	switch name {
	case Volatility:
		return v.Volatility, true
	case ReversionStrength:
		return v.ReversionStrength, true
	case Momentum20:
		return v.Momentum20, true
	case Momentum60:
		return v.Momentum60, true
	case Momentum120:
		return v.Momentum120, true
	case MomentumBlend:
		return v.MomentumBlend, true
	case RSI14:
		return v.RSI14, true
	case BollingerPosition:
		return v.BollingerPosition, true
	case HalfLife:
		return v.HalfLife, true
	case SMAGap:
		return v.SMAGap, true
	case HighDistance:
		return v.HighDistance, true
	case VolumeTrend:
		return v.VolumeTrend, true
	case PERatio:
		return v.PERatio, true
	case PBRatio:
		return v.PBRatio, true
	case ROE:
		return v.ROE, true
	case ProfitMargin:
		return v.ProfitMargin, true
	case RevenueGrowth:
		return v.RevenueGrowth, true
	case DebtToEquity:
		return v.DebtToEquity, true
	case DividendYield:
		return v.DividendYield, true
	case MarketCap:
		return v.MarketCap, true
	default:
		return 0, false
	}
}
