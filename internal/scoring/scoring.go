// Package scoring turns a feature vector into component scores and the
// weighted composite. All the judgment lives in the model's band
// tables; this package only evaluates them.
package scoring

import (
	"github.com/mwhitfield/alphascore/internal/features"
	"github.com/mwhitfield/alphascore/internal/modelconfig"
	"github.com/mwhitfield/alphascore/pkg/logger"
)

// ComponentScore is one scored pillar, normalized to 0-100.
type ComponentScore struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
	Score  float64 `json:"score"`
}

// Scorer evaluates models against extracted vectors.
type Scorer struct {
	logger *logger.Logger
}

// NewScorer creates a new scorer
func NewScorer(log *logger.Logger) *Scorer {
	return &Scorer{
		logger: log,
	}
}

// Aggregate scores every component and folds them into the composite
// and its rating. The composite stays on the 0-100 scale because
// component scores are 0-100 and weights sum to one.
func (s *Scorer) Aggregate(model *modelconfig.Model, v *features.Vector) ([]ComponentScore, float64, string) {
	scores := make([]ComponentScore, 0, len(model.Components))
	composite := 0.0

	for i := range model.Components {
		c := &model.Components[i]
		score := scoreComponent(c, v)

		scores = append(scores, ComponentScore{
			Name:   c.Name,
			Weight: c.Weight,
			Score:  score,
		})
		composite += score * c.Weight
	}

	composite = features.Clip(composite, 0, 100)
	rating := model.RatingFor(composite)

	s.logger.WithFields(map[string]interface{}{
		"model":     model.Meta.ModelID,
		"composite": composite,
		"rating":    rating,
	}).Debug("Aggregated composite")

	return scores, composite, rating
}

// scoreComponent awards band points per binding and normalizes against
// the component maximum. Bindings whose feature the vector cannot
// resolve are left out entirely; load-time validation makes that
// unreachable for real models.
func scoreComponent(c *modelconfig.Component, v *features.Vector) float64 {
	awarded := 0.0
	max := 0.0

	for i := range c.Bindings {
		b := &c.Bindings[i]
		value, ok := v.Get(features.Name(b.Feature))
		if !ok {
			continue
		}
		awarded += b.PointsFor(value)
		max += b.MaxPoints()
	}

	if awarded > max {
		awarded = max
	}

	return features.SafeDiv(awarded, max, 0) * 100
}

// Composite folds already-computed component scores by weight. Used
// when scores were persisted and the composite needs recomputing.
func Composite(scores []ComponentScore) float64 {
	total := 0.0
	for _, cs := range scores {
		total += cs.Score * cs.Weight
	}
	return features.Clip(total, 0, 100)
}
