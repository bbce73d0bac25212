package condition

import (
	"testing"

	"github.com/cfliu/paycheck/internal/model"
)

func TestValidateShape(t *testing.T) {
	tests := []struct {
		name  string
		parse *RawParse
		want  model.TriggerType
	}{
		{"valid progress", &RawParse{Trigger: "progress-percentage", Threshold: 35, PaymentPhase: 3}, model.TriggerProgressPercent},
		{"progress threshold over 100", &RawParse{Trigger: "progress-percentage", Threshold: 120}, model.TriggerUnparsed},
		{"progress threshold zero", &RawParse{Trigger: "progress-percentage", Threshold: 0}, model.TriggerUnparsed},
		{"negative phase", &RawParse{Trigger: "progress-percentage", Threshold: 35, PaymentPhase: -1}, model.TriggerUnparsed},
		{"valid milestone", &RawParse{Trigger: "milestone", PaymentPhase: 5}, model.TriggerMilestone},
		{"valid date", &RawParse{Trigger: "date", Threshold: 6}, model.TriggerDate},
		{"date without threshold", &RawParse{Trigger: "date"}, model.TriggerUnparsed},
		{"unknown trigger name", &RawParse{Trigger: "acceptance", Threshold: 1}, model.TriggerUnparsed},
		{"nil parse", nil, model.TriggerUnparsed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond := ValidateShape("raw text", tt.parse, "llm")
			if cond.Trigger != tt.want {
				t.Errorf("trigger = %s, want %s", cond.Trigger, tt.want)
			}
			if cond.RawText != "raw text" {
				t.Errorf("raw text not preserved: %q", cond.RawText)
			}
		})
	}
}

func TestEvaluate_ProgressPercent(t *testing.T) {
	cond := model.PaymentCondition{
		RawText:      "工程完成35%後可請領第三期款",
		Trigger:      model.TriggerProgressPercent,
		Threshold:    35,
		PaymentPhase: 3,
	}

	f := Evaluate("builtin.condition", cond, model.ProgressState{ProgressPercent: 36.025})
	if f.Severity != model.SeverityPass {
		t.Errorf("severity = %s, want pass at 36.025%% vs threshold 35%%", f.Severity)
	}

	f = Evaluate("builtin.condition", cond, model.ProgressState{ProgressPercent: 30})
	if f.Severity != model.SeverityFail {
		t.Fatalf("severity = %s, want fail at 30%% vs threshold 35%%", f.Severity)
	}
	if f.Delta == nil || *f.Delta != 5 {
		t.Errorf("deficit delta = %v, want 5", f.Delta)
	}
}

func TestEvaluate_MilestoneAndDate(t *testing.T) {
	milestone := model.PaymentCondition{Trigger: model.TriggerMilestone}
	if f := Evaluate("r", milestone, model.ProgressState{MilestoneReached: true}); f.Severity != model.SeverityPass {
		t.Errorf("milestone reached: severity = %s, want pass", f.Severity)
	}
	if f := Evaluate("r", milestone, model.ProgressState{}); f.Severity != model.SeverityFail {
		t.Errorf("milestone not reached: severity = %s, want fail", f.Severity)
	}

	date := model.PaymentCondition{Trigger: model.TriggerDate, Threshold: 6}
	if f := Evaluate("r", date, model.ProgressState{DatePassed: true}); f.Severity != model.SeverityPass {
		t.Errorf("date passed: severity = %s, want pass", f.Severity)
	}
	if f := Evaluate("r", date, model.ProgressState{}); f.Severity != model.SeverityFail {
		t.Errorf("date not passed: severity = %s, want fail", f.Severity)
	}
}

func TestEvaluate_UnparsedNeverPasses(t *testing.T) {
	cond := model.PaymentCondition{Trigger: model.TriggerUnparsed, RawText: "依雙方議定辦理"}

	// Whatever the progress state says, an unparsed condition is a warning
	for _, progress := range []model.ProgressState{
		{ProgressPercent: 100, MilestoneReached: true, DatePassed: true},
		{},
	} {
		f := Evaluate("r", cond, progress)
		if f.Severity != model.SeverityWarning {
			t.Errorf("severity = %s, want warning for unparsed condition", f.Severity)
		}
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	cond := model.PaymentCondition{Trigger: model.TriggerProgressPercent, Threshold: 35}
	progress := model.ProgressState{ProgressPercent: 36.025}

	first := Evaluate("r", cond, progress)
	second := Evaluate("r", cond, progress)
	if first.Severity != second.Severity || first.Message != second.Message {
		t.Error("repeated evaluation produced different findings")
	}
}
