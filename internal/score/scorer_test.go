package score

import (
	"math"
	"testing"

	"github.com/cfliu/paycheck/internal/model"
)

func TestValidationConfidence(t *testing.T) {
	tests := []struct {
		name     string
		findings []model.Finding
		want     float64
	}{
		{"no findings is full confidence", nil, 1.0},
		{
			"all pass",
			[]model.Finding{{Severity: model.SeverityPass}, {Severity: model.SeverityPass}},
			1.0,
		},
		{
			"one of two failed",
			[]model.Finding{{Severity: model.SeverityPass}, {Severity: model.SeverityFail}},
			0.5,
		},
		{
			"warnings count half",
			[]model.Finding{{Severity: model.SeverityWarning}, {Severity: model.SeverityWarning}},
			0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidationConfidence(tt.findings); got != tt.want {
				t.Errorf("ValidationConfidence = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScorer_Aggregate(t *testing.T) {
	s := NewScorer(model.DefaultConfig().Confidence)

	findings := []model.Finding{
		{Severity: model.SeverityPass},
		{Severity: model.SeverityPass},
	}

	c := s.Aggregate(0.95, 0.9, findings)

	// 0.95*0.3 + 0.9*0.4 + 1.0*0.3 = 0.945
	if math.Abs(c.Overall-0.945) > 1e-9 {
		t.Errorf("Overall = %v, want 0.945", c.Overall)
	}
	if c.Band != "high" {
		t.Errorf("Band = %s, want high", c.Band)
	}
	if c.Components["validation"] != 1.0 {
		t.Errorf("validation component = %v, want 1.0", c.Components["validation"])
	}
}

func TestScorer_Aggregate_ClampsInputs(t *testing.T) {
	s := NewScorer(model.DefaultConfig().Confidence)

	c := s.Aggregate(1.5, -0.2, nil)
	if c.Components["extraction"] != 1.0 || c.Components["mapping"] != 0.0 {
		t.Errorf("components not clamped: %+v", c.Components)
	}
	if c.Overall < 0 || c.Overall > 1 {
		t.Errorf("Overall out of range: %v", c.Overall)
	}
}

func TestScorer_Aggregate_NormalizesWeights(t *testing.T) {
	s := NewScorer(model.ConfidenceConfig{ExtractionWeight: 3, MappingWeight: 4, ValidationWeight: 3})

	c := s.Aggregate(0.95, 0.9, []model.Finding{{Severity: model.SeverityPass}})
	if math.Abs(c.Overall-0.945) > 1e-9 {
		t.Errorf("Overall = %v, want 0.945 under normalized weights", c.Overall)
	}
	if math.Abs(c.Weights["mapping"]-0.4) > 1e-9 {
		t.Errorf("normalized mapping weight = %v, want 0.4", c.Weights["mapping"])
	}
}

func TestScorer_Aggregate_ZeroWeightsFallBack(t *testing.T) {
	s := NewScorer(model.ConfidenceConfig{})

	c := s.Aggregate(1, 1, nil)
	if c.Overall != 1 {
		t.Errorf("Overall = %v, want 1 under fallback weights", c.Overall)
	}

	lowBand := s.Aggregate(0.2, 0.2, []model.Finding{{Severity: model.SeverityFail}})
	if lowBand.Band != "low" {
		t.Errorf("Band = %s, want low", lowBand.Band)
	}
}
