// Package score folds upstream extraction and mapping confidence together
// with the validation outcome into one document confidence figure. The
// breakdown ships with the score: every component and weight is visible in
// the report, so the number is checkable by hand.
package score

import "github.com/cfliu/paycheck/internal/model"

// Scorer aggregates confidence components
type Scorer struct {
	weights model.ConfidenceConfig
}

// NewScorer creates a scorer with the given weights. Weights that do not
// sum to 1 are normalized so the result stays in [0,1].
func NewScorer(weights model.ConfidenceConfig) *Scorer {
	return &Scorer{weights: weights}
}

// ValidationConfidence is the pass ratio over all findings. Warnings count
// half: the document was not contradicted, but a human still has to look.
func ValidationConfidence(findings []model.Finding) float64 {
	if len(findings) == 0 {
		return 1.0
	}

	var score float64
	for _, f := range findings {
		switch f.Severity {
		case model.SeverityPass:
			score += 1.0
		case model.SeverityWarning:
			score += 0.5
		}
	}
	return score / float64(len(findings))
}

// Aggregate combines the three components under the configured weights
func (s *Scorer) Aggregate(extraction, mapping float64, findings []model.Finding) model.Confidence {
	validation := ValidationConfidence(findings)

	extraction = clamp01(extraction)
	mapping = clamp01(mapping)

	we, wm, wv := s.weights.ExtractionWeight, s.weights.MappingWeight, s.weights.ValidationWeight
	total := we + wm + wv
	if total <= 0 {
		we, wm, wv = 0.3, 0.4, 0.3
		total = 1.0
	}

	overall := clamp01((extraction*we + mapping*wm + validation*wv) / total)

	return model.Confidence{
		Overall: overall,
		Band:    band(overall),
		Components: map[string]float64{
			"extraction": extraction,
			"mapping":    mapping,
			"validation": validation,
		},
		Weights: map[string]float64{
			"extraction": we / total,
			"mapping":    wm / total,
			"validation": wv / total,
		},
	}
}

func band(v float64) string {
	switch {
	case v >= 0.8:
		return "high"
	case v >= 0.6:
		return "medium"
	default:
		return "low"
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
