package modelconfig

import (
	"math"
	"strings"
	"testing"
)

func validModel() *Model {
	return &Model{
		Meta: Meta{ModelID: "valid-model", Version: "1.0.0"},
		Components: []Component{
			{
				Name:   "alpha",
				Weight: 0.5,
				Bindings: []Binding{
					{
						Feature:   "rsi_14",
						Direction: DirectionHigherBetter,
						Bands: []Band{
							{UpperBound: bound(50), Points: 20},
							{Points: 80},
						},
					},
				},
			},
			{
				Name:   "beta",
				Weight: 0.5,
				Bindings: []Binding{
					{
						Feature:   "volatility_annualized",
						Direction: DirectionLowerBetter,
						Bands: []Band{
							{UpperBound: bound(0.3), Points: 90},
							{Points: 10},
						},
					},
				},
			},
		},
		Ratings: []Rating{
			{Label: "Excellent", Min: 80},
			{Label: "Neutral", Min: 55},
			{Label: "Poor", Min: 0},
		},
	}
}

func TestValidateAcceptsValidModel(t *testing.T) {
	if err := Validate(validModel()); err != nil {
		t.Fatalf("valid model rejected: %v", err)
	}
}

func TestValidateAcceptsFloatWeightResidue(t *testing.T) {
	m := validModel()
	third := 1.0 / 3.0
	m.Components = append(m.Components, m.Components[1])
	m.Components[0].Weight = third
	m.Components[1].Weight = third
	m.Components[2].Weight = third
	m.Components[2].Name = "gamma"

	if sum := m.WeightSum(); sum == 1.0 {
		t.Fatal("fixture should not sum to exactly 1.0")
	}
	if err := Validate(m); err != nil {
		t.Fatalf("weights within tolerance rejected: %v", err)
	}
}

func TestValidateBuiltins(t *testing.T) {
	models := Builtin()
	if len(models) != 3 {
		t.Fatalf("expected 3 builtin models, got %d", len(models))
	}

	seen := map[string]bool{}
	for _, m := range models {
		if err := Validate(m); err != nil {
			t.Errorf("builtin %s invalid: %v", m.Meta.ModelID, err)
		}
		if seen[m.Meta.ModelID] {
			t.Errorf("duplicate builtin id %s", m.Meta.ModelID)
		}
		seen[m.Meta.ModelID] = true

		if math.Abs(m.WeightSum()-1.0) > 1e-9 {
			t.Errorf("builtin %s weights sum to %.12f", m.Meta.ModelID, m.WeightSum())
		}
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Model)
		field  string
	}{
		{
			"missing model id",
			func(m *Model) { m.Meta.ModelID = "" },
			"meta.model_id",
		},
		{
			"missing version",
			func(m *Model) { m.Meta.Version = "" },
			"meta.version",
		},
		{
			"no components",
			func(m *Model) { m.Components = nil },
			"components",
		},
		{
			"duplicate component name",
			func(m *Model) { m.Components[1].Name = "alpha" },
			"components[1].name",
		},
		{
			"weight above one",
			func(m *Model) { m.Components[0].Weight = 1.2 },
			"components[0].weight",
		},
		{
			"negative weight",
			func(m *Model) { m.Components[0].Weight = -0.1 },
			"components[0].weight",
		},
		{
			"weights off target",
			func(m *Model) { m.Components[0].Weight = 0.6 },
			"components.weight",
		},
		{
			"no bindings",
			func(m *Model) { m.Components[0].Bindings = nil },
			"components[0].bindings",
		},
		{
			"unknown feature",
			func(m *Model) { m.Components[0].Bindings[0].Feature = "sharpe_ratio" },
			"feature",
		},
		{
			"bad direction",
			func(m *Model) { m.Components[0].Bindings[0].Direction = "sideways" },
			"direction",
		},
		{
			"no bands",
			func(m *Model) { m.Components[0].Bindings[0].Bands = nil },
			"bands",
		},
		{
			"bounded last band",
			func(m *Model) { m.Components[0].Bindings[0].Bands[1].UpperBound = bound(90) },
			"upper_bound",
		},
		{
			"unbounded inner band",
			func(m *Model) { m.Components[0].Bindings[0].Bands[0].UpperBound = nil },
			"upper_bound",
		},
		{
			"non increasing bounds",
			func(m *Model) {
				m.Components[0].Bindings[0].Bands = []Band{
					{UpperBound: bound(50), Points: 10},
					{UpperBound: bound(50), Points: 20},
					{Points: 30},
				}
			},
			"upper_bound",
		},
		{
			"negative points",
			func(m *Model) { m.Components[0].Bindings[0].Bands[0].Points = -5 },
			"points",
		},
		{
			"points fall for higher_better",
			func(m *Model) {
				m.Components[0].Bindings[0].Bands[0].Points = 80
				m.Components[0].Bindings[0].Bands[1].Points = 20
			},
			"points",
		},
		{
			"points rise for lower_better",
			func(m *Model) {
				m.Components[1].Bindings[0].Bands[0].Points = 10
				m.Components[1].Bindings[0].Bands[1].Points = 90
			},
			"points",
		},
		{
			"no ratings",
			func(m *Model) { m.Ratings = nil },
			"ratings",
		},
		{
			"duplicate rating label",
			func(m *Model) { m.Ratings[1].Label = "Excellent" },
			"label",
		},
		{
			"ascending rating thresholds",
			func(m *Model) { m.Ratings[1].Min = 85 },
			"min",
		},
		{
			"rating above 100",
			func(m *Model) { m.Ratings[0].Min = 120 },
			"min",
		},
		{
			"last rating not zero",
			func(m *Model) { m.Ratings[2].Min = 10 },
			"ratings",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := validModel()
			tc.mutate(m)

			err := Validate(m)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.field) {
				t.Errorf("expected error mentioning %q, got: %v", tc.field, err)
			}
		})
	}
}

func TestRatingFor(t *testing.T) {
	m := validModel()

	tests := []struct {
		composite float64
		want      string
	}{
		{100, "Excellent"},
		{80, "Excellent"},
		{79.999, "Neutral"},
		{55, "Neutral"},
		{54.9, "Poor"},
		{0, "Poor"},
	}

	for _, tc := range tests {
		if got := m.RatingFor(tc.composite); got != tc.want {
			t.Errorf("RatingFor(%.3f) = %s, want %s", tc.composite, got, tc.want)
		}
	}
}

func TestRatingForIsIdempotent(t *testing.T) {
	m := Builtin()[0]
	for _, score := range []float64{0, 12.5, 40, 55, 69.999, 70, 82, 100} {
		first := m.RatingFor(score)
		for i := 0; i < 3; i++ {
			if got := m.RatingFor(score); got != first {
				t.Fatalf("RatingFor(%.3f) changed from %s to %s", score, first, got)
			}
		}
	}
}

func TestPointsFor(t *testing.T) {
	b := Binding{
		Feature:   "momentum_blend",
		Direction: DirectionHigherBetter,
		Bands: []Band{
			{UpperBound: bound(0), Points: 0},
			{UpperBound: bound(10), Points: 50},
			{Points: 100},
		},
	}

	tests := []struct {
		value float64
		want  float64
	}{
		{-5, 0},
		{0, 50},   // bound belongs to the next band
		{9.99, 50},
		{10, 100}, // same here
		{250, 100},
	}

	for _, tc := range tests {
		if got := b.PointsFor(tc.value); got != tc.want {
			t.Errorf("PointsFor(%.2f) = %.0f, want %.0f", tc.value, got, tc.want)
		}
	}
}

func TestPointsForExactlyOneBand(t *testing.T) {
	// Every probe value must land in exactly one band of a builtin
	// table, which PointsFor guarantees by construction. Probe the
	// boundaries themselves.
	for _, m := range Builtin() {
		for _, c := range m.Components {
			for _, binding := range c.Bindings {
				for _, band := range binding.Bands {
					if band.UpperBound == nil {
						continue
					}
					edge := *band.UpperBound
					for _, v := range []float64{edge - 1e-9, edge, edge + 1e-9} {
						got := binding.PointsFor(v)
						found := false
						for _, candidate := range binding.Bands {
							if candidate.Points == got {
								found = true
							}
						}
						if !found {
							t.Fatalf("%s/%s: PointsFor(%v) = %v not from any band",
								c.Name, binding.Feature, v, got)
						}
					}
				}
			}
		}
	}
}

func TestMaxPoints(t *testing.T) {
	m := validModel()

	if got := m.Components[0].Bindings[0].MaxPoints(); got != 80 {
		t.Errorf("binding max = %.0f, want 80", got)
	}
	if got := m.Components[1].Bindings[0].MaxPoints(); got != 90 {
		t.Errorf("binding max = %.0f, want 90", got)
	}
	if got := m.Components[0].MaxPoints(); got != 80 {
		t.Errorf("component max = %.0f, want 80", got)
	}
}

func TestWarn(t *testing.T) {
	m := validModel()
	m.Components[0].Weight = 0.7
	m.Components[1].Weight = 0.3
	m.Components[1].Bindings[0].Bands = []Band{
		{UpperBound: bound(0.3), Points: 50},
		{Points: 50},
	}
	m.Ratings = []Rating{
		{Label: "Good", Min: 60},
		{Label: "Bad", Min: 0},
	}

	warnings := Warn(m)
	if len(warnings) < 3 {
		t.Fatalf("expected at least 3 warnings, got %d: %+v", len(warnings), warnings)
	}

	codes := map[string]bool{}
	for _, w := range warnings {
		codes[w.Code] = true
	}
	for _, want := range []string{"CONCENTRATED_WEIGHT", "FLAT_BANDS", "COARSE_RATINGS"} {
		if !codes[want] {
			t.Errorf("missing warning %s", want)
		}
	}
}

func TestWarnCleanModel(t *testing.T) {
	if warnings := Warn(validModel()); len(warnings) != 0 {
		t.Errorf("expected no warnings, got %+v", warnings)
	}
}
