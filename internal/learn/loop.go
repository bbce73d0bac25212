// Package learn is the feedback loop: it accumulates human corrections,
// turns them into explicit, inspectable rule-parameter proposals, and
// promotes corroborated proposals into new rule versions. Nothing here is
// statistical; every adjustment is a deterministic function of the
// feedback it cites.
package learn

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cfliu/paycheck/internal/model"
	"github.com/cfliu/paycheck/internal/rules"
)

// Direction says which way a proposal moves a tolerance
type Direction string

const (
	DirectionWiden   Direction = "widen"   // Rule was too strict (false positives)
	DirectionTighten Direction = "tighten" // Rule was too lax (false negatives)
)

// Proposal is one candidate rule-parameter change. Proposals are surfaced
// whole — rule, old value, new value, the records behind it — so a human
// reviewer can audit exactly what the loop wants and why.
type Proposal struct {
	RuleID        string         `json:"rule_id"`
	RuleKind      model.RuleKind `json:"rule_kind"`
	Field         string         `json:"field"`
	Direction     Direction      `json:"direction"`
	CurrentValue  float64        `json:"current_value"`
	ProposedValue float64        `json:"proposed_value"`
	SampleCount   int            `json:"sample_count"`
	Corroborated  bool           `json:"corroborated"` // SampleCount met the promotion threshold
}

// ruleIDForKind maps feedback rule kinds onto the built-in rules whose
// tolerance they adjust
var ruleIDForKind = map[model.RuleKind]string{
	model.RuleHorizontalCalc: rules.RuleIDHorizontal,
	model.RuleVerticalSum:    rules.RuleIDVertical,
	model.RuleAccumulation:   rules.RuleIDAccum,
}

// Loop accumulates feedback and writes adjustments back into the registry
type Loop struct {
	mu       sync.Mutex
	records  []model.FeedbackRecord
	consumed int // Records before this index already fed a proposal round
	proposed int // Records before this index were seen by the last ProposeAdjustments

	registry *rules.Registry
	cfg      model.LearningConfig
}

// NewLoop creates a feedback loop bound to a registry
func NewLoop(registry *rules.Registry, cfg model.LearningConfig) *Loop {
	return &Loop{registry: registry, cfg: cfg}
}

// Ingest appends one feedback record. Records are never mutated or
// removed. Unknown kinds are rejected so typos cannot silently vanish
// into the store.
func (l *Loop) Ingest(rec model.FeedbackRecord) error {
	switch rec.Kind {
	case model.FeedbackExtractionError, model.FeedbackMappingError,
		model.FeedbackFalsePositive, model.FeedbackFalseNegative:
	default:
		return fmt.Errorf("unknown feedback kind: %s", rec.Kind)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, rec)
	return nil
}

// Stats summarizes all accumulated feedback by kind
func (l *Loop) Stats() model.FeedbackStats {
	l.mu.Lock()
	defer l.mu.Unlock()

	stats := model.FeedbackStats{ByKind: make(map[model.FeedbackKind]int)}
	for _, rec := range l.records {
		stats.Total++
		stats.ByKind[rec.Kind]++
	}
	return stats
}

type groupKey struct {
	kind  model.RuleKind
	field string
}

// ProposeAdjustments computes candidate tolerance changes from the
// feedback accumulated since the last Apply. Run on demand, not per
// ingest. The result is deterministic for a given store and registry.
func (l *Loop) ProposeAdjustments() []Proposal {
	l.mu.Lock()
	pending := make([]model.FeedbackRecord, len(l.records[l.consumed:]))
	copy(pending, l.records[l.consumed:])
	l.proposed = len(l.records)
	l.mu.Unlock()

	groups := make(map[groupKey][]model.FeedbackRecord)
	for _, rec := range pending {
		if rec.Kind != model.FeedbackFalsePositive && rec.Kind != model.FeedbackFalseNegative {
			continue
		}
		if _, ok := ruleIDForKind[rec.RuleKind]; !ok {
			continue
		}
		groups[groupKey{rec.RuleKind, rec.Field}] = append(groups[groupKey{rec.RuleKind, rec.Field}], rec)
	}

	keys := make([]groupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].kind != keys[j].kind {
			return keys[i].kind < keys[j].kind
		}
		return keys[i].field < keys[j].field
	})

	var proposals []Proposal
	for _, key := range keys {
		if p := l.proposeFor(key, groups[key]); p != nil {
			proposals = append(proposals, *p)
		}
	}
	return proposals
}

// proposeFor derives one proposal from a feedback group, or nil when the
// group points both ways or the adjustment would be a no-op.
func (l *Loop) proposeFor(key groupKey, group []model.FeedbackRecord) *Proposal {
	ruleID := ruleIDForKind[key.kind]
	rule, ok := l.registry.Get(ruleID)
	if !ok {
		return nil
	}
	current := rule.Param(rules.ParamTolerance, 0.5)

	var positives, negatives []model.FeedbackRecord
	for _, rec := range group {
		if rec.Kind == model.FeedbackFalsePositive {
			positives = append(positives, rec)
		} else {
			negatives = append(negatives, rec)
		}
	}

	// Mixed signals are a human problem, not an automation problem
	if len(positives) > 0 && len(negatives) > 0 {
		return nil
	}

	p := Proposal{
		RuleID:       ruleID,
		RuleKind:     key.kind,
		Field:        key.field,
		CurrentValue: current,
	}

	if len(positives) > 0 {
		// Widen to the smallest tolerance that would have passed every
		// flagged-but-correct value, capped so the rule can't drift into
		// always-pass.
		var maxDelta float64
		for _, rec := range positives {
			if d := rec.Delta(); d > maxDelta {
				maxDelta = d
			}
		}
		proposed := maxDelta
		if l.cfg.MaxTolerance > 0 && proposed > l.cfg.MaxTolerance {
			proposed = l.cfg.MaxTolerance
		}
		if proposed <= current {
			return nil
		}
		p.Direction = DirectionWiden
		p.ProposedValue = proposed
		p.SampleCount = len(positives)
	} else {
		// Tighten to half the smallest discrepancy that slipped through,
		// floored so the rule can't demand exactness no document meets.
		minDelta := negatives[0].Delta()
		for _, rec := range negatives[1:] {
			if d := rec.Delta(); d < minDelta {
				minDelta = d
			}
		}
		proposed := minDelta / 2
		if proposed < l.cfg.MinTolerance {
			proposed = l.cfg.MinTolerance
		}
		if proposed >= current {
			return nil
		}
		p.Direction = DirectionTighten
		p.ProposedValue = proposed
		p.SampleCount = len(negatives)
	}

	p.Corroborated = p.SampleCount >= l.cfg.PromotionThreshold
	return &p
}

// Apply writes proposals into the registry: corroborated proposals become
// active rule versions, the rest become drafts awaiting approval. The
// feedback consumed by this round is marked so the next round starts
// fresh. Registry writes are serialized by the registry itself.
func (l *Loop) Apply(proposals []Proposal) ([]model.Rule, error) {
	var applied []model.Rule
	for _, p := range proposals {
		rule, err := l.registry.Promote(p.RuleID,
			map[string]float64{rules.ParamTolerance: p.ProposedValue}, p.Corroborated)
		if err != nil {
			return applied, fmt.Errorf("apply proposal for %s: %w", p.RuleID, err)
		}
		applied = append(applied, rule)
	}

	// Consume only up to the propose-time high-water mark: a record
	// ingested after ProposeAdjustments never fed these proposals and
	// stays pending for the next round.
	l.mu.Lock()
	if l.proposed > l.consumed {
		l.consumed = l.proposed
	}
	l.mu.Unlock()
	return applied, nil
}

// PendingDrafts returns learned rule versions awaiting human approval
func (l *Loop) PendingDrafts() []model.Rule {
	return l.registry.Drafts()
}
