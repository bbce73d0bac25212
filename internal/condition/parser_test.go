package condition

import (
	"testing"

	"github.com/cfliu/paycheck/internal/model"
)

func TestParseWithRules_Progress(t *testing.T) {
	cond := ParseWithRules("工程完成35%後可請領第三期款")

	if cond.Trigger != model.TriggerProgressPercent {
		t.Fatalf("trigger = %s, want %s", cond.Trigger, model.TriggerProgressPercent)
	}
	if cond.Threshold != 35 {
		t.Errorf("threshold = %v, want 35", cond.Threshold)
	}
	if cond.PaymentPhase != 3 {
		t.Errorf("payment phase = %d, want 3", cond.PaymentPhase)
	}
}

func TestParseWithRules_ProgressArabicPhase(t *testing.T) {
	cond := ParseWithRules("工程完成30%後支付第2期款")

	if cond.Trigger != model.TriggerProgressPercent {
		t.Fatalf("trigger = %s, want progress-percentage", cond.Trigger)
	}
	if cond.Threshold != 30 || cond.PaymentPhase != 2 {
		t.Errorf("got threshold=%v phase=%d, want 30/2", cond.Threshold, cond.PaymentPhase)
	}
}

func TestParseWithRules_DecimalThreshold(t *testing.T) {
	cond := ParseWithRules("工程完成12.5%後請領第一期款")
	if cond.Threshold != 12.5 {
		t.Errorf("threshold = %v, want 12.5", cond.Threshold)
	}
	if cond.PaymentPhase != 1 {
		t.Errorf("payment phase = %d, want 1", cond.PaymentPhase)
	}
}

func TestParseWithRules_Milestone(t *testing.T) {
	cond := ParseWithRules("驗收合格後支付尾款")
	if cond.Trigger != model.TriggerMilestone {
		t.Errorf("trigger = %s, want milestone", cond.Trigger)
	}
}

func TestParseWithRules_Date(t *testing.T) {
	cond := ParseWithRules("開工後6個月支付")
	if cond.Trigger != model.TriggerDate {
		t.Fatalf("trigger = %s, want date", cond.Trigger)
	}
	if cond.Threshold != 6 {
		t.Errorf("threshold = %v, want 6", cond.Threshold)
	}
}

func TestParseWithRules_Unparsed(t *testing.T) {
	for _, text := range []string{"", "other terms apply", "依雙方議定辦理"} {
		cond := ParseWithRules(text)
		if cond.Trigger != model.TriggerUnparsed {
			t.Errorf("ParseWithRules(%q).Trigger = %s, want unparsed", text, cond.Trigger)
		}
	}
}

func TestParsePhase_Compound(t *testing.T) {
	tests := map[string]int{
		"三": 3, "十": 10, "十二": 12, "二十": 20, "二十五": 25, "5": 5,
	}
	for in, want := range tests {
		if got := parsePhase(in); got != want {
			t.Errorf("parsePhase(%q) = %d, want %d", in, got, want)
		}
	}
}
