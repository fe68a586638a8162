package modelconfig

// Builtin returns the shipped models. They mirror the files under
// config/models/ and serve as the fallback when no model directory is
// configured. Every returned model passes Validate.
func Builtin() []*Model {
	return []*Model{
		qualityMomentum(),
		trendStrength(),
		meanReversion(),
	}
}

// standardRatings is the shared label ladder.
func standardRatings() []Rating {
	return []Rating{
		{Label: "Excellent", Min: 80},
		{Label: "Strong", Min: 70},
		{Label: "Neutral", Min: 55},
		{Label: "Weak", Min: 40},
		{Label: "Poor", Min: 0},
	}
}

func qualityMomentum() *Model {
	return &Model{
		Meta: Meta{
			ModelID:     "quality-momentum",
			Version:     "1.0.0",
			Description: "Profitable franchises with confirmed medium-horizon momentum",
		},
		Components: []Component{
			{
				Name:   "quality",
				Weight: 0.40,
				Bindings: []Binding{
					{
						Feature:   "roe",
						Direction: DirectionHigherBetter,
						Bands: []Band{
							{UpperBound: bound(0), Points: 0},
							{UpperBound: bound(0.08), Points: 25},
							{UpperBound: bound(0.15), Points: 55},
							{UpperBound: bound(0.25), Points: 80},
							{Points: 100},
						},
					},
					{
						Feature:   "profit_margin",
						Direction: DirectionHigherBetter,
						Bands: []Band{
							{UpperBound: bound(0), Points: 0},
							{UpperBound: bound(0.05), Points: 30},
							{UpperBound: bound(0.12), Points: 60},
							{UpperBound: bound(0.20), Points: 85},
							{Points: 100},
						},
					},
					{
						Feature:   "debt_to_equity",
						Direction: DirectionLowerBetter,
						Bands: []Band{
							{UpperBound: bound(0.5), Points: 100},
							{UpperBound: bound(1.0), Points: 75},
							{UpperBound: bound(2.0), Points: 45},
							{UpperBound: bound(3.0), Points: 20},
							{Points: 0},
						},
					},
				},
			},
			{
				Name:   "momentum",
				Weight: 0.35,
				Bindings: []Binding{
					{
						Feature:   "momentum_blend",
						Direction: DirectionHigherBetter,
						Bands: []Band{
							{UpperBound: bound(-10), Points: 0},
							{UpperBound: bound(0), Points: 30},
							{UpperBound: bound(10), Points: 60},
							{UpperBound: bound(25), Points: 85},
							{Points: 100},
						},
					},
					{
						Feature:   "rsi_14",
						Direction: DirectionHigherBetter,
						Bands: []Band{
							{UpperBound: bound(30), Points: 0},
							{UpperBound: bound(45), Points: 30},
							{UpperBound: bound(60), Points: 60},
							{UpperBound: bound(70), Points: 85},
							{Points: 100},
						},
					},
				},
			},
			{
				Name:   "growth",
				Weight: 0.15,
				Bindings: []Binding{
					{
						Feature:   "revenue_growth",
						Direction: DirectionHigherBetter,
						Bands: []Band{
							{UpperBound: bound(0), Points: 0},
							{UpperBound: bound(0.05), Points: 30},
							{UpperBound: bound(0.15), Points: 65},
							{UpperBound: bound(0.30), Points: 90},
							{Points: 100},
						},
					},
				},
			},
			{
				Name:   "stability",
				Weight: 0.10,
				Bindings: []Binding{
					{
						Feature:   "volatility_annualized",
						Direction: DirectionLowerBetter,
						Bands: []Band{
							{UpperBound: bound(0.20), Points: 100},
							{UpperBound: bound(0.35), Points: 75},
							{UpperBound: bound(0.50), Points: 45},
							{UpperBound: bound(0.70), Points: 20},
							{Points: 0},
						},
					},
				},
			},
		},
		Ratings: standardRatings(),
	}
}

func trendStrength() *Model {
	return &Model{
		Meta: Meta{
			ModelID:     "trend-strength",
			Version:     "1.0.0",
			Description: "Confirmed price trends with participation behind them",
		},
		Components: []Component{
			{
				Name:   "trend",
				Weight: 0.45,
				Bindings: []Binding{
					{
						Feature:   "sma_gap",
						Direction: DirectionHigherBetter,
						Bands: []Band{
							{UpperBound: bound(-5), Points: 0},
							{UpperBound: bound(0), Points: 25},
							{UpperBound: bound(5), Points: 60},
							{UpperBound: bound(12), Points: 85},
							{Points: 100},
						},
					},
					{
						Feature:   "high_distance",
						Direction: DirectionHigherBetter,
						Bands: []Band{
							{UpperBound: bound(-30), Points: 0},
							{UpperBound: bound(-15), Points: 30},
							{UpperBound: bound(-7), Points: 60},
							{UpperBound: bound(-2), Points: 85},
							{Points: 100},
						},
					},
				},
			},
			{
				Name:   "momentum",
				Weight: 0.35,
				Bindings: []Binding{
					{
						Feature:   "momentum_20",
						Direction: DirectionHigherBetter,
						Bands: []Band{
							{UpperBound: bound(-5), Points: 0},
							{UpperBound: bound(0), Points: 30},
							{UpperBound: bound(6), Points: 65},
							{UpperBound: bound(15), Points: 90},
							{Points: 100},
						},
					},
					{
						Feature:   "momentum_60",
						Direction: DirectionHigherBetter,
						Bands: []Band{
							{UpperBound: bound(-10), Points: 0},
							{UpperBound: bound(0), Points: 30},
							{UpperBound: bound(12), Points: 65},
							{UpperBound: bound(30), Points: 90},
							{Points: 100},
						},
					},
				},
			},
			{
				Name:   "participation",
				Weight: 0.20,
				Bindings: []Binding{
					{
						Feature:   "volume_trend",
						Direction: DirectionHigherBetter,
						Bands: []Band{
							{UpperBound: bound(-20), Points: 10},
							{UpperBound: bound(0), Points: 40},
							{UpperBound: bound(25), Points: 70},
							{UpperBound: bound(60), Points: 90},
							{Points: 100},
						},
					},
				},
			},
		},
		Ratings: standardRatings(),
	}
}

func meanReversion() *Model {
	return &Model{
		Meta: Meta{
			ModelID:     "mean-reversion",
			Version:     "1.0.0",
			Description: "Oversold names that historically snap back fast",
		},
		Components: []Component{
			{
				Name:   "reversion",
				Weight: 0.40,
				Bindings: []Binding{
					{
						Feature:   "reversion_strength",
						Direction: DirectionHigherBetter,
						Bands: []Band{
							{UpperBound: bound(10), Points: 0},
							{UpperBound: bound(25), Points: 35},
							{UpperBound: bound(45), Points: 65},
							{UpperBound: bound(70), Points: 85},
							{Points: 100},
						},
					},
					{
						Feature:   "half_life",
						Direction: DirectionLowerBetter,
						Bands: []Band{
							{UpperBound: bound(5), Points: 100},
							{UpperBound: bound(10), Points: 75},
							{UpperBound: bound(18), Points: 50},
							{UpperBound: bound(26), Points: 25},
							{Points: 0},
						},
					},
				},
			},
			{
				Name:   "oversold",
				Weight: 0.35,
				Bindings: []Binding{
					{
						Feature:   "rsi_14",
						Direction: DirectionLowerBetter,
						Bands: []Band{
							{UpperBound: bound(25), Points: 100},
							{UpperBound: bound(35), Points: 80},
							{UpperBound: bound(45), Points: 55},
							{UpperBound: bound(55), Points: 30},
							{Points: 0},
						},
					},
					{
						Feature:   "bollinger_position",
						Direction: DirectionLowerBetter,
						Bands: []Band{
							{UpperBound: bound(0.15), Points: 100},
							{UpperBound: bound(0.35), Points: 75},
							{UpperBound: bound(0.55), Points: 45},
							{UpperBound: bound(0.80), Points: 20},
							{Points: 0},
						},
					},
				},
			},
			{
				Name:   "stability",
				Weight: 0.25,
				Bindings: []Binding{
					{
						Feature:   "volatility_annualized",
						Direction: DirectionLowerBetter,
						Bands: []Band{
							{UpperBound: bound(0.25), Points: 100},
							{UpperBound: bound(0.40), Points: 70},
							{UpperBound: bound(0.60), Points: 40},
							{Points: 10},
						},
					},
					{
						Feature:   "profit_margin",
						Direction: DirectionHigherBetter,
						Bands: []Band{
							{UpperBound: bound(0), Points: 0},
							{UpperBound: bound(0.05), Points: 40},
							{UpperBound: bound(0.12), Points: 70},
							{Points: 100},
						},
					},
				},
			},
		},
		Ratings: standardRatings(),
	}
}

func bound(v float64) *float64 {
	return &v
}
