package modelconfig

import (
	"errors"
	"fmt"
	"math"

	"github.com/mwhitfield/alphascore/internal/features"
)

// weightEpsilon is the tolerance for the component weight sum. Tighter
// than float noise, looser than nothing.
const weightEpsilon = 1e-9

// ValidationError is a hard config failure. The run must not start.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning flags a legal but questionable model. Logged, never fatal.
type Warning struct {
	Code    string
	Message string
}

// Validate checks every structural constraint of a model. It returns
// the first violation so the operator fixes one clear thing at a time.
func (m *Model) Validate() error {
	return Validate(m)
}

// Validate checks all required constraints.
func Validate(m *Model) error {
	if m.Meta.ModelID == "" {
		return ValidationError{"meta.model_id", "required"}
	}
	if m.Meta.Version == "" {
		return ValidationError{"meta.version", "required"}
	}

	if len(m.Components) == 0 {
		return ValidationError{"components", "must not be empty"}
	}

	weights := make([]float64, 0, len(m.Components))
	seenNames := make(map[string]bool)
	for i, c := range m.Components {
		field := fmt.Sprintf("components[%d]", i)

		if c.Name == "" {
			return ValidationError{field + ".name", "required"}
		}
		if seenNames[c.Name] {
			return ValidationError{field + ".name", fmt.Sprintf("duplicate component %q", c.Name)}
		}
		seenNames[c.Name] = true

		if c.Weight < 0 || c.Weight > 1 {
			return ValidationError{field + ".weight", "must be in range [0, 1]"}
		}
		weights = append(weights, c.Weight)

		if len(c.Bindings) == 0 {
			return ValidationError{field + ".bindings", "must not be empty"}
		}

		for j, b := range c.Bindings {
			bField := fmt.Sprintf("%s.bindings[%d]", field, j)
			if err := validateBinding(&b); err != nil {
				var ve ValidationError
				if errors.As(err, &ve) {
					return ValidationError{bField + "." + ve.Field, ve.Message}
				}
				return ValidationError{bField, err.Error()}
			}
		}
	}

	if err := validateWeightsSum(weights, 1.0, weightEpsilon); err != nil {
		return ValidationError{"components.weight", err.Error()}
	}

	if err := validateRatings(m.Ratings); err != nil {
		var ve ValidationError
		if errors.As(err, &ve) {
			return ve
		}
		return ValidationError{"ratings", err.Error()}
	}

	return nil
}

func validateBinding(b *Binding) error {
	if b.Feature == "" {
		return ValidationError{"feature", "required"}
	}
	if !features.Valid(b.Feature) {
		return ValidationError{"feature", fmt.Sprintf("unknown feature %q", b.Feature)}
	}

	if b.Direction != DirectionHigherBetter && b.Direction != DirectionLowerBetter {
		return ValidationError{"direction", "must be higher_better or lower_better"}
	}

	if len(b.Bands) == 0 {
		return ValidationError{"bands", "must not be empty"}
	}

	last := len(b.Bands) - 1
	for i, band := range b.Bands {
		field := fmt.Sprintf("bands[%d]", i)

		if i == last {
			if band.UpperBound != nil {
				return ValidationError{field + ".upper_bound", "last band must be unbounded"}
			}
		} else {
			if band.UpperBound == nil {
				return ValidationError{field + ".upper_bound", "only the last band may be unbounded"}
			}
			if i > 0 && *band.UpperBound <= *b.Bands[i-1].UpperBound {
				return ValidationError{field + ".upper_bound", "bounds must be strictly increasing"}
			}
		}

		if band.Points < 0 {
			return ValidationError{field + ".points", "must be >= 0"}
		}
	}

	// Points must follow the declared direction, otherwise the table
	// contradicts itself.
	for i := 1; i < len(b.Bands); i++ {
		prev, cur := b.Bands[i-1].Points, b.Bands[i].Points
		if b.Direction == DirectionHigherBetter && cur < prev {
			return ValidationError{
				Field:   fmt.Sprintf("bands[%d].points", i),
				Message: "must not decrease for higher_better",
			}
		}
		if b.Direction == DirectionLowerBetter && cur > prev {
			return ValidationError{
				Field:   fmt.Sprintf("bands[%d].points", i),
				Message: "must not increase for lower_better",
			}
		}
	}

	return nil
}

func validateRatings(ratings []Rating) error {
	if len(ratings) == 0 {
		return ValidationError{"ratings", "must not be empty"}
	}

	seen := make(map[string]bool)
	for i, r := range ratings {
		field := fmt.Sprintf("ratings[%d]", i)

		if r.Label == "" {
			return ValidationError{field + ".label", "required"}
		}
		if seen[r.Label] {
			return ValidationError{field + ".label", fmt.Sprintf("duplicate rating %q", r.Label)}
		}
		seen[r.Label] = true

		if r.Min < 0 || r.Min > 100 {
			return ValidationError{field + ".min", "must be in range [0, 100]"}
		}
		if i > 0 && r.Min >= ratings[i-1].Min {
			return ValidationError{field + ".min", "thresholds must be strictly descending"}
		}
	}

	if ratings[len(ratings)-1].Min != 0 {
		return ValidationError{"ratings", "last threshold must be 0 so every score maps to a label"}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal).
func Warn(m *Model) []Warning {
	var warnings []Warning

	for _, c := range m.Components {
		if c.Weight > 0.5 {
			warnings = append(warnings, Warning{
				Code:    "CONCENTRATED_WEIGHT",
				Message: fmt.Sprintf("component %q carries %.0f%% of the composite", c.Name, c.Weight*100),
			})
		}

		for _, b := range c.Bindings {
			if flatBands(b.Bands) {
				warnings = append(warnings, Warning{
					Code:    "FLAT_BANDS",
					Message: fmt.Sprintf("binding %s/%s awards the same points everywhere", c.Name, b.Feature),
				})
			}
		}
	}

	if len(m.Ratings) < 3 {
		warnings = append(warnings, Warning{
			Code:    "COARSE_RATINGS",
			Message: fmt.Sprintf("only %d rating levels, scores will bunch", len(m.Ratings)),
		})
	}

	return warnings
}

func flatBands(bands []Band) bool {
	for i := 1; i < len(bands); i++ {
		if bands[i].Points != bands[0].Points {
			return false
		}
	}
	return len(bands) > 0
}

func validateWeightsSum(weights []float64, target float64, epsilon float64) error {
	if len(weights) == 0 {
		return errors.New("must not be empty")
	}
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	if math.Abs(sum-target) > epsilon {
		return fmt.Errorf("must sum to %.2f, got %.4f", target, sum)
	}
	return nil
}
