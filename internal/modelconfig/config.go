package modelconfig

// Model is the full definition of one scoring model: weighted
// components, each mapping feature values to points through band
// tables, plus the rating ladder applied to the composite.
type Model struct {
	Meta       Meta        `yaml:"meta" json:"meta"`
	Components []Component `yaml:"components" json:"components"`
	Ratings    []Rating    `yaml:"ratings" json:"ratings"`
}

// Meta identifies a model.
type Meta struct {
	ModelID     string `yaml:"model_id" json:"model_id"`
	Version     string `yaml:"version" json:"version"`
	Description string `yaml:"description" json:"description"`
}

// Component is one weighted pillar of the composite. Its score is the
// points its bindings award, normalized to 0-100.
type Component struct {
	Name     string    `yaml:"name" json:"name"`
	Weight   float64   `yaml:"weight" json:"weight"` // sum over components = 1.0
	Bindings []Binding `yaml:"bindings" json:"bindings"`
}

// Binding maps one feature to points through an ordered band table.
type Binding struct {
	Feature   string `yaml:"feature" json:"feature"`
	Direction string `yaml:"direction" json:"direction"` // higher_better | lower_better
	Bands     []Band `yaml:"bands" json:"bands"`
}

// Band is one half-open interval of the table. A band covers values
// below its upper bound that no earlier band claimed; the last band
// has no bound and catches everything else.
type Band struct {
	UpperBound *float64 `yaml:"upper_bound,omitempty" json:"upper_bound,omitempty"`
	Points     float64  `yaml:"points" json:"points"`
}

// Rating is one rung of the label ladder. Composite scores at or above
// Min earn the label, checked from the top rung down.
type Rating struct {
	Label string  `yaml:"label" json:"label"`
	Min   float64 `yaml:"min" json:"min"`
}

// Directions a binding may declare.
const (
	DirectionHigherBetter = "higher_better"
	DirectionLowerBetter  = "lower_better"
)

// WeightSum returns the sum of all component weights.
func (m *Model) WeightSum() float64 {
	sum := 0.0
	for _, c := range m.Components {
		sum += c.Weight
	}
	return sum
}

// ComponentNames returns component names in declaration order.
func (m *Model) ComponentNames() []string {
	names := make([]string, len(m.Components))
	for i, c := range m.Components {
		names[i] = c.Name
	}
	return names
}

// RatingFor maps a composite score to its rating label. Ratings are
// validated to descend strictly and end at zero, so every non-negative
// composite lands somewhere.
func (m *Model) RatingFor(composite float64) string {
	for _, r := range m.Ratings {
		if composite >= r.Min {
			return r.Label
		}
	}
	if len(m.Ratings) == 0 {
		return ""
	}
	return m.Ratings[len(m.Ratings)-1].Label
}

// PointsFor resolves a feature value against the band table: the first
// band whose upper bound exceeds the value wins, the unbounded last
// band takes the rest.
func (b *Binding) PointsFor(value float64) float64 {
	for _, band := range b.Bands {
		if band.UpperBound != nil && value < *band.UpperBound {
			return band.Points
		}
	}
	if len(b.Bands) == 0 {
		return 0
	}
	return b.Bands[len(b.Bands)-1].Points
}

// MaxPoints returns the highest points any band of this table awards.
func (b *Binding) MaxPoints() float64 {
	max := 0.0
	for _, band := range b.Bands {
		if band.Points > max {
			max = band.Points
		}
	}
	return max
}

// MaxPoints returns the highest total a component can award across all
// of its bindings.
func (c *Component) MaxPoints() float64 {
	total := 0.0
	for _, b := range c.Bindings {
		total += b.MaxPoints()
	}
	return total
}
