package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhitfield/alphascore/internal/features"
	"github.com/mwhitfield/alphascore/internal/modelconfig"
	"github.com/mwhitfield/alphascore/pkg/logger"
)

func bound(v float64) *float64 { return &v }

// twoPillarModel splits 60/40 between an RSI pillar and a volatility
// pillar with easily hand-checked band tables.
func twoPillarModel(t *testing.T) *modelconfig.Model {
	t.Helper()
	m := &modelconfig.Model{
		Meta: modelconfig.Meta{ModelID: "two-pillar", Version: "1.0.0"},
		Components: []modelconfig.Component{
			{
				Name:   "momentum",
				Weight: 0.6,
				Bindings: []modelconfig.Binding{
					{
						Feature:   "rsi_14",
						Direction: modelconfig.DirectionHigherBetter,
						Bands: []modelconfig.Band{
							{UpperBound: bound(40), Points: 20},
							{UpperBound: bound(60), Points: 50},
							{Points: 100},
						},
					},
				},
			},
			{
				Name:   "stability",
				Weight: 0.4,
				Bindings: []modelconfig.Binding{
					{
						Feature:   "volatility_annualized",
						Direction: modelconfig.DirectionLowerBetter,
						Bands: []modelconfig.Band{
							{UpperBound: bound(0.3), Points: 80},
							{Points: 20},
						},
					},
				},
			},
		},
		Ratings: []modelconfig.Rating{
			{Label: "Excellent", Min: 80},
			{Label: "Strong", Min: 70},
			{Label: "Neutral", Min: 55},
			{Label: "Weak", Min: 40},
			{Label: "Poor", Min: 0},
		},
	}
	require.NoError(t, modelconfig.Validate(m))
	return m
}

func TestAggregateExactScores(t *testing.T) {
	s := NewScorer(logger.Nop())
	m := twoPillarModel(t)

	// RSI 70 hits the unbounded band: 100/100 -> 100.
	// Volatility 0.2 hits the first band: 80/80 -> 100.
	v := &features.Vector{RSI14: 70, Volatility: 0.2}

	scores, composite, rating := s.Aggregate(m, v)
	require.Len(t, scores, 2)

	assert.Equal(t, "momentum", scores[0].Name)
	assert.Equal(t, 100.0, scores[0].Score)
	assert.Equal(t, "stability", scores[1].Name)
	assert.Equal(t, 100.0, scores[1].Score)
	assert.InDelta(t, 100.0, composite, 1e-9)
	assert.Equal(t, "Excellent", rating)
}

func TestAggregateMidBand(t *testing.T) {
	s := NewScorer(logger.Nop())
	m := twoPillarModel(t)

	// RSI 45: middle band, 50/100 -> 50.
	// Volatility 0.5: last band, 20/80 -> 25.
	v := &features.Vector{RSI14: 45, Volatility: 0.5}

	scores, composite, rating := s.Aggregate(m, v)

	assert.Equal(t, 50.0, scores[0].Score)
	assert.Equal(t, 25.0, scores[1].Score)
	assert.InDelta(t, 0.6*50+0.4*25, composite, 1e-9) // 40.0
	assert.Equal(t, "Weak", rating)
}

func TestAggregateRatingBoundaries(t *testing.T) {
	s := NewScorer(logger.Nop())
	m := twoPillarModel(t)

	tests := []struct {
		name      string
		vector    features.Vector
		composite float64
		rating    string
	}{
		// 0.6*100 + 0.4*(20/80*100)=25 -> 70, the Strong floor.
		{"strong floor", features.Vector{RSI14: 70, Volatility: 0.5}, 70, "Strong"},
		// 0.6*50 + 0.4*100 -> 70 as well, from the other side.
		{"strong floor mixed", features.Vector{RSI14: 45, Volatility: 0.2}, 70, "Strong"},
		// 0.6*20 + 0.4*25 -> 22.
		{"deep poor", features.Vector{RSI14: 10, Volatility: 0.9}, 22, "Poor"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, composite, rating := s.Aggregate(m, &tc.vector)
			assert.InDelta(t, tc.composite, composite, 1e-9)
			assert.Equal(t, tc.rating, rating)
		})
	}
}

func TestAggregateMatchesRatingFor(t *testing.T) {
	s := NewScorer(logger.Nop())
	m := twoPillarModel(t)

	for _, v := range []features.Vector{
		{RSI14: 5, Volatility: 1.2},
		{RSI14: 45, Volatility: 0.25},
		{RSI14: 75, Volatility: 0.1},
	} {
		_, composite, rating := s.Aggregate(m, &v)
		assert.Equal(t, m.RatingFor(composite), rating)
		assert.GreaterOrEqual(t, composite, 0.0)
		assert.LessOrEqual(t, composite, 100.0)
	}
}

func TestScoreComponentMultipleBindings(t *testing.T) {
	c := modelconfig.Component{
		Name:   "blend",
		Weight: 1.0,
		Bindings: []modelconfig.Binding{
			{
				Feature:   "rsi_14",
				Direction: modelconfig.DirectionHigherBetter,
				Bands: []modelconfig.Band{
					{UpperBound: bound(50), Points: 0},
					{Points: 80},
				},
			},
			{
				Feature:   "momentum_blend",
				Direction: modelconfig.DirectionHigherBetter,
				Bands: []modelconfig.Band{
					{UpperBound: bound(0), Points: 0},
					{Points: 20},
				},
			},
		},
	}

	// 80 of 80 plus 0 of 20: 80/100 -> 80.
	v := &features.Vector{RSI14: 60, MomentumBlend: -5}
	assert.Equal(t, 80.0, scoreComponent(&c, v))

	// Both top bands: 100/100.
	v = &features.Vector{RSI14: 60, MomentumBlend: 12}
	assert.Equal(t, 100.0, scoreComponent(&c, v))
}

func TestScoreComponentZeroMax(t *testing.T) {
	c := modelconfig.Component{
		Name:   "degenerate",
		Weight: 1.0,
		Bindings: []modelconfig.Binding{
			{
				Feature:   "rsi_14",
				Direction: modelconfig.DirectionHigherBetter,
				Bands:     []modelconfig.Band{{Points: 0}},
			},
		},
	}

	assert.Equal(t, 0.0, scoreComponent(&c, &features.Vector{RSI14: 99}))
}

func TestAggregateBuiltinsStayInRange(t *testing.T) {
	s := NewScorer(logger.Nop())

	vectors := []features.Vector{
		{},
		{RSI14: 28, Volatility: 0.22, ReversionStrength: 85, HalfLife: 4, BollingerPosition: 0.1, ProfitMargin: 0.21},
		{RSI14: 72, MomentumBlend: 30, Momentum20: 12, Momentum60: 25, SMAGap: 9, HighDistance: -1, VolumeTrend: 40},
		{ROE: 0.3, ProfitMargin: 0.25, DebtToEquity: 0.3, RevenueGrowth: 0.2, Volatility: 0.18, MomentumBlend: 15, RSI14: 62},
	}

	for _, m := range modelconfig.Builtin() {
		for _, v := range vectors {
			scores, composite, rating := s.Aggregate(m, &v)
			assert.Len(t, scores, len(m.Components))
			assert.GreaterOrEqual(t, composite, 0.0)
			assert.LessOrEqual(t, composite, 100.0)
			assert.NotEmpty(t, rating)
			for _, cs := range scores {
				assert.GreaterOrEqual(t, cs.Score, 0.0)
				assert.LessOrEqual(t, cs.Score, 100.0)
			}
		}
	}
}

func TestComposite(t *testing.T) {
	scores := []ComponentScore{
		{Name: "a", Weight: 0.6, Score: 90},
		{Name: "b", Weight: 0.4, Score: 70},
	}

	assert.InDelta(t, 82.0, Composite(scores), 1e-9)
	assert.Equal(t, 0.0, Composite(nil))
}
