package accum

import (
	"testing"

	"github.com/cfliu/paycheck/internal/model"
)

func TestChecker_CheckLogic(t *testing.T) {
	c := NewChecker(0.5)

	previous := &model.PeriodRecord{
		PeriodNumber:        2,
		CurrentAccumulation: 15000000,
	}

	tests := []struct {
		name    string
		current model.PeriodRecord
		want    model.Severity
	}{
		{
			name: "consistent accumulation passes",
			current: model.PeriodRecord{
				PeriodNumber:         3,
				PeriodAmount:         3012500,
				PreviousAccumulation: 15000000,
				CurrentAccumulation:  18012500,
			},
			want: model.SeverityPass,
		},
		{
			name: "declared total short by 12500 fails",
			current: model.PeriodRecord{
				PeriodNumber:         3,
				PeriodAmount:         3012500,
				PreviousAccumulation: 15000000,
				CurrentAccumulation:  18000000,
			},
			want: model.SeverityFail,
		},
		{
			name: "carry-over disagrees with prior close",
			current: model.PeriodRecord{
				PeriodNumber:         3,
				PeriodAmount:         3012500,
				PreviousAccumulation: 14000000,
				CurrentAccumulation:  17012500,
			},
			want: model.SeverityFail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := c.CheckLogic("builtin.accum", 0.5, &tt.current, previous)
			if f.Severity != tt.want {
				t.Errorf("severity = %s, want %s (message: %s)", f.Severity, tt.want, f.Message)
			}
		})
	}
}

func TestChecker_CheckLogic_FirstPeriod(t *testing.T) {
	c := NewChecker(0.5)

	current := &model.PeriodRecord{
		PeriodNumber:         1,
		PeriodAmount:         3012500,
		PreviousAccumulation: 0,
		CurrentAccumulation:  3012500,
	}

	f := c.CheckLogic("builtin.accum", 0.5, current, nil)
	if f.Severity != model.SeverityPass {
		t.Errorf("first period severity = %s, want pass", f.Severity)
	}
}

func TestChecker_CheckContractLimit(t *testing.T) {
	c := NewChecker(0.5)
	contract := &model.ContractInfo{ContractNumber: "C-104", CeilingAmount: 50000000}

	tests := []struct {
		name         string
		accumulation float64
		want         model.Severity
	}{
		{"well under ceiling", 18012500, model.SeverityPass},
		{"92 percent of ceiling warns", 46000000, model.SeverityWarning},
		{"over ceiling fails", 51000000, model.SeverityFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := &model.PeriodRecord{PeriodNumber: 4, CurrentAccumulation: tt.accumulation}
			f := c.CheckContractLimit("builtin.limit", 0.9, current, contract)
			if f.Severity != tt.want {
				t.Errorf("severity = %s, want %s (message: %s)", f.Severity, tt.want, f.Message)
			}
		})
	}
}

func TestChecker_CheckContractLimit_NoContract(t *testing.T) {
	c := NewChecker(0.5)
	current := &model.PeriodRecord{PeriodNumber: 1, CurrentAccumulation: 100}

	f := c.CheckContractLimit("builtin.limit", 0.9, current, nil)
	if f.Severity != model.SeverityWarning {
		t.Errorf("severity = %s, want warning when no contract info", f.Severity)
	}
}

func TestChecker_CheckProgressPlausibility(t *testing.T) {
	c := NewChecker(0.5)
	contract := &model.ContractInfo{CeilingAmount: 50000000}

	t.Run("sequential period with moderate progress passes", func(t *testing.T) {
		prev := &model.PeriodRecord{PeriodNumber: 2}
		cur := &model.PeriodRecord{PeriodNumber: 3, PreviousAccumulation: 15000000, CurrentAccumulation: 18012500}
		findings := c.CheckProgressPlausibility("builtin.progress", 40, cur, prev, contract)
		if len(findings) != 1 || findings[0].Severity != model.SeverityPass {
			t.Errorf("findings = %+v, want single pass", findings)
		}
	})

	t.Run("period gap fails", func(t *testing.T) {
		prev := &model.PeriodRecord{PeriodNumber: 2}
		cur := &model.PeriodRecord{PeriodNumber: 4}
		findings := c.CheckProgressPlausibility("builtin.progress", 40, cur, prev, contract)
		if findings[0].Severity != model.SeverityFail {
			t.Errorf("severity = %s, want fail for period gap", findings[0].Severity)
		}
	})

	t.Run("period repeat fails", func(t *testing.T) {
		prev := &model.PeriodRecord{PeriodNumber: 3}
		cur := &model.PeriodRecord{PeriodNumber: 3}
		findings := c.CheckProgressPlausibility("builtin.progress", 40, cur, prev, contract)
		if findings[0].Severity != model.SeverityFail {
			t.Errorf("severity = %s, want fail for repeated period", findings[0].Severity)
		}
	})

	t.Run("large jump warns", func(t *testing.T) {
		prev := &model.PeriodRecord{PeriodNumber: 1}
		cur := &model.PeriodRecord{PeriodNumber: 2, PreviousAccumulation: 0, CurrentAccumulation: 25000000}
		findings := c.CheckProgressPlausibility("builtin.progress", 40, cur, prev, contract)
		if findings[0].Severity != model.SeverityWarning {
			t.Errorf("severity = %s, want warning for 50-point jump", findings[0].Severity)
		}
	})
}

func TestTrend(t *testing.T) {
	contract := &model.ContractInfo{CeilingAmount: 50000000}
	periods := []model.PeriodRecord{
		{PeriodNumber: 1, PeriodAmount: 10000000, CurrentAccumulation: 10000000},
		{PeriodNumber: 2, PeriodAmount: 5000000, CurrentAccumulation: 15000000},
	}

	tr := Trend(periods, contract)
	if tr == nil {
		t.Fatal("expected trend for non-empty periods")
	}
	if tr.Periods != 2 {
		t.Errorf("Periods = %d, want 2", tr.Periods)
	}
	if tr.AvgPeriodAmount != 7500000 {
		t.Errorf("AvgPeriodAmount = %v, want 7500000", tr.AvgPeriodAmount)
	}
	if tr.AvgProgressStep != 15 {
		t.Errorf("AvgProgressStep = %v, want 15", tr.AvgProgressStep)
	}

	if Trend(nil, contract) != nil {
		t.Error("expected nil trend for empty periods")
	}
}
