package learn

import (
	"fmt"
	"testing"

	"github.com/cfliu/paycheck/internal/model"
	"github.com/cfliu/paycheck/internal/rules"
)

func newTestLoop(t *testing.T) (*Loop, *rules.Registry) {
	t.Helper()
	cfg := model.DefaultConfig()
	reg := rules.NewSeededRegistry(cfg)
	return NewLoop(reg, cfg.Learning), reg
}

func falsePositive(doc string, delta float64) model.FeedbackRecord {
	return model.FeedbackRecord{
		DocumentID:  doc,
		RuleKind:    model.RuleHorizontalCalc,
		Field:       "amount",
		SystemValue: 1000 + delta,
		HumanValue:  1000,
		Kind:        model.FeedbackFalsePositive,
	}
}

func TestLoop_Ingest_RejectsUnknownKind(t *testing.T) {
	loop, _ := newTestLoop(t)

	if err := loop.Ingest(model.FeedbackRecord{Kind: "typo"}); err == nil {
		t.Error("expected error for unknown feedback kind")
	}
	if err := loop.Ingest(falsePositive("D1", 1)); err != nil {
		t.Errorf("Ingest: %v", err)
	}

	stats := loop.Stats()
	if stats.Total != 1 || stats.ByKind[model.FeedbackFalsePositive] != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestLoop_FivesCorroborate_FourDoNot(t *testing.T) {
	t.Run("five records auto-promote", func(t *testing.T) {
		loop, reg := newTestLoop(t)
		for i := 0; i < 5; i++ {
			if err := loop.Ingest(falsePositive(fmt.Sprintf("D%d", i), 1.2)); err != nil {
				t.Fatal(err)
			}
		}

		proposals := loop.ProposeAdjustments()
		if len(proposals) != 1 {
			t.Fatalf("proposals = %d, want 1", len(proposals))
		}
		p := proposals[0]
		if !p.Corroborated || p.Direction != DirectionWiden {
			t.Errorf("proposal = %+v, want corroborated widen", p)
		}
		if p.ProposedValue != 1.2 {
			t.Errorf("proposed tolerance = %v, want 1.2 (smallest covering all FPs)", p.ProposedValue)
		}

		if _, err := loop.Apply(proposals); err != nil {
			t.Fatalf("Apply: %v", err)
		}

		rule, _ := reg.Get(rules.RuleIDHorizontal)
		if rule.State != model.RuleActive || rule.Version != 2 {
			t.Errorf("rule = v%d %s, want active v2", rule.Version, rule.State)
		}
		if rule.Params[rules.ParamTolerance] != 1.2 {
			t.Errorf("tolerance = %v, want 1.2", rule.Params[rules.ParamTolerance])
		}
	})

	t.Run("four records stay draft", func(t *testing.T) {
		loop, reg := newTestLoop(t)
		for i := 0; i < 4; i++ {
			if err := loop.Ingest(falsePositive(fmt.Sprintf("D%d", i), 1.2)); err != nil {
				t.Fatal(err)
			}
		}

		proposals := loop.ProposeAdjustments()
		if len(proposals) != 1 || proposals[0].Corroborated {
			t.Fatalf("proposals = %+v, want one uncorroborated", proposals)
		}

		if _, err := loop.Apply(proposals); err != nil {
			t.Fatalf("Apply: %v", err)
		}

		// Draft awaiting approval, active version unchanged
		drafts := loop.PendingDrafts()
		if len(drafts) != 1 || drafts[0].ID != rules.RuleIDHorizontal {
			t.Fatalf("drafts = %+v", drafts)
		}
		snap := reg.Snapshot()
		for _, r := range snap.Active {
			if r.ID == rules.RuleIDHorizontal && r.Version != 1 {
				t.Errorf("active version = %d, want 1 while draft pends", r.Version)
			}
		}
	})
}

func TestLoop_WidenCappedAtMax(t *testing.T) {
	loop, _ := newTestLoop(t)
	for i := 0; i < 5; i++ {
		if err := loop.Ingest(falsePositive(fmt.Sprintf("D%d", i), 100)); err != nil {
			t.Fatal(err)
		}
	}

	proposals := loop.ProposeAdjustments()
	if len(proposals) != 1 {
		t.Fatalf("proposals = %d, want 1", len(proposals))
	}
	if proposals[0].ProposedValue != model.DefaultConfig().Learning.MaxTolerance {
		t.Errorf("proposed = %v, want capped at %v",
			proposals[0].ProposedValue, model.DefaultConfig().Learning.MaxTolerance)
	}
}

func TestLoop_TightenFlooredAtMin(t *testing.T) {
	loop, _ := newTestLoop(t)
	for i := 0; i < 5; i++ {
		rec := model.FeedbackRecord{
			DocumentID:  fmt.Sprintf("D%d", i),
			RuleKind:    model.RuleVerticalSum,
			Field:       "period_amount",
			SystemValue: 1000.005,
			HumanValue:  1000,
			Kind:        model.FeedbackFalseNegative,
		}
		if err := loop.Ingest(rec); err != nil {
			t.Fatal(err)
		}
	}

	proposals := loop.ProposeAdjustments()
	if len(proposals) != 1 {
		t.Fatalf("proposals = %d, want 1", len(proposals))
	}
	p := proposals[0]
	if p.Direction != DirectionTighten {
		t.Fatalf("direction = %s, want tighten", p.Direction)
	}
	if p.ProposedValue != model.DefaultConfig().Learning.MinTolerance {
		t.Errorf("proposed = %v, want floored at %v",
			p.ProposedValue, model.DefaultConfig().Learning.MinTolerance)
	}
}

func TestLoop_MixedSignalsProposeNothing(t *testing.T) {
	loop, _ := newTestLoop(t)
	if err := loop.Ingest(falsePositive("D1", 1.2)); err != nil {
		t.Fatal(err)
	}
	neg := falsePositive("D2", 1.2)
	neg.Kind = model.FeedbackFalseNegative
	if err := loop.Ingest(neg); err != nil {
		t.Fatal(err)
	}

	if proposals := loop.ProposeAdjustments(); len(proposals) != 0 {
		t.Errorf("proposals = %+v, want none for conflicting feedback", proposals)
	}
}

func TestLoop_AppliedFeedbackNotReused(t *testing.T) {
	loop, _ := newTestLoop(t)
	for i := 0; i < 5; i++ {
		if err := loop.Ingest(falsePositive(fmt.Sprintf("D%d", i), 1.2)); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := loop.Apply(loop.ProposeAdjustments()); err != nil {
		t.Fatal(err)
	}

	// Same stored records must not drive a second round
	if proposals := loop.ProposeAdjustments(); len(proposals) != 0 {
		t.Errorf("consumed feedback produced new proposals: %+v", proposals)
	}
}

func TestLoop_LateRecordStaysPendingAcrossApply(t *testing.T) {
	loop, _ := newTestLoop(t)
	if err := loop.Ingest(falsePositive("D0", 2.0)); err != nil {
		t.Fatal(err)
	}

	proposals := loop.ProposeAdjustments()
	if len(proposals) != 1 {
		t.Fatalf("proposals = %d, want 1", len(proposals))
	}

	// Arrives after propose, before apply: it fed nothing yet
	if err := loop.Ingest(falsePositive("D1", 3.0)); err != nil {
		t.Fatal(err)
	}
	if _, err := loop.Apply(proposals); err != nil {
		t.Fatal(err)
	}

	next := loop.ProposeAdjustments()
	if len(next) != 1 {
		t.Fatalf("late record was consumed without feeding a proposal: %+v", next)
	}
	if next[0].ProposedValue != 3.0 {
		t.Errorf("proposed tolerance = %v, want 3.0 from the late record", next[0].ProposedValue)
	}
}

func TestLoop_ExtractionFeedbackIgnoredByProposals(t *testing.T) {
	loop, _ := newTestLoop(t)
	for i := 0; i < 6; i++ {
		rec := model.FeedbackRecord{
			DocumentID:  fmt.Sprintf("D%d", i),
			Field:       "contractor",
			Kind:        model.FeedbackExtractionError,
		}
		if err := loop.Ingest(rec); err != nil {
			t.Fatal(err)
		}
	}

	if proposals := loop.ProposeAdjustments(); len(proposals) != 0 {
		t.Errorf("extraction feedback should not move rule tolerances, got %+v", proposals)
	}
	if loop.Stats().ByKind[model.FeedbackExtractionError] != 6 {
		t.Error("extraction feedback should still be counted in stats")
	}
}
