// Package rules holds the versioned validation-rule registry and the
// execution engine that runs a rule snapshot over a document. Rule
// versions are immutable; every parameter change is a new version and the
// replaced version is kept, superseded, for audit.
package rules

import (
	"fmt"
	"sort"
	"sync"

	"github.com/cfliu/paycheck/internal/model"
)

// Registry is the versioned rule store. Reads take an immutable snapshot;
// writes (promotion, disable) are serialized behind one writer lock so two
// concurrent proposals can never produce conflicting versions.
type Registry struct {
	mu      sync.RWMutex
	rules   map[string][]model.Rule // Full version history per rule id, newest last
	version int                     // Bumps on every mutation
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{rules: make(map[string][]model.Rule)}
}

// NewSeededRegistry creates a registry loaded with the built-in rules
func NewSeededRegistry(cfg *model.Config) *Registry {
	r := NewRegistry()
	for _, rule := range BuiltinRules(cfg) {
		r.rules[rule.ID] = []model.Rule{rule}
	}
	r.version = 1
	return r
}

// Snapshot is an immutable view of the active rule set. A document's full
// validation pass runs against one snapshot even if a promotion lands
// mid-run.
type Snapshot struct {
	Version int
	Active  []model.Rule // Deterministic order: execution order, then rule id
}

// Snapshot returns the current active rule set as deep copies
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kindOrder := make(map[model.RuleKind]int, len(model.ExecutionOrder))
	for i, k := range model.ExecutionOrder {
		kindOrder[k] = i
	}

	var active []model.Rule
	for _, history := range r.rules {
		latest := history[len(history)-1]
		if latest.State == model.RuleActive {
			active = append(active, latest.Clone())
		}
	}

	sort.Slice(active, func(i, j int) bool {
		oi, oj := kindOrder[active[i].Kind], kindOrder[active[j].Kind]
		if oi != oj {
			return oi < oj
		}
		return active[i].ID < active[j].ID
	})

	return Snapshot{Version: r.version, Active: active}
}

// Get returns the latest version of a rule, active or not
func (r *Registry) Get(id string) (model.Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	history, ok := r.rules[id]
	if !ok {
		return model.Rule{}, false
	}
	return history[len(history)-1].Clone(), true
}

// History returns every version of a rule, oldest first
func (r *Registry) History(id string) []model.Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	history := r.rules[id]
	out := make([]model.Rule, len(history))
	for i, rule := range history {
		out[i] = rule.Clone()
	}
	return out
}

// All returns the latest version of every rule, sorted by id
func (r *Registry) All() []model.Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.Rule
	for _, history := range r.rules {
		out = append(out, history[len(history)-1].Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Promote appends a new version of a rule with changed parameters. The
// current version moves to superseded when the new version activates. The
// new version enters as draft when activate is false (below the
// corroboration threshold) and is then invisible to snapshots.
func (r *Registry) Promote(id string, params map[string]float64, activate bool) (model.Rule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	history, ok := r.rules[id]
	if !ok {
		return model.Rule{}, fmt.Errorf("unknown rule: %s", id)
	}

	latest := history[len(history)-1]
	if latest.State == model.RuleDisabled {
		return model.Rule{}, fmt.Errorf("rule %s is disabled, refusing to promote", id)
	}

	next := latest.Clone()
	next.Version = latest.Version + 1
	next.Provenance = model.ProvenanceLearned
	next.Params = make(map[string]float64, len(params))
	for k, v := range latest.Params {
		next.Params[k] = v
	}
	for k, v := range params {
		next.Params[k] = v
	}

	if activate {
		next.State = model.RuleActive
		if latest.State == model.RuleActive {
			history[len(history)-1].State = model.RuleSuperseded
		}
	} else {
		next.State = model.RuleDraft
	}

	r.rules[id] = append(history, next)
	r.version++
	return next.Clone(), nil
}

// ActivateDraft moves the latest version of a rule from draft to active
// (the human-approval path). The previously active version, if the draft
// was stacked on one, is superseded.
func (r *Registry) ActivateDraft(id string) (model.Rule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	history, ok := r.rules[id]
	if !ok {
		return model.Rule{}, fmt.Errorf("unknown rule: %s", id)
	}

	latest := &history[len(history)-1]
	if latest.State != model.RuleDraft {
		return model.Rule{}, fmt.Errorf("rule %s latest version is %s, not draft", id, latest.State)
	}

	for i := len(history) - 2; i >= 0; i-- {
		if history[i].State == model.RuleActive {
			history[i].State = model.RuleSuperseded
			break
		}
	}
	latest.State = model.RuleActive
	r.version++
	return latest.Clone(), nil
}

// Disable turns a rule off. Disabled rules are skipped by execution but
// stay queryable; rules are never deleted.
func (r *Registry) Disable(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	history, ok := r.rules[id]
	if !ok {
		return fmt.Errorf("unknown rule: %s", id)
	}

	latest := &history[len(history)-1]
	if latest.State != model.RuleActive && latest.State != model.RuleDraft {
		return fmt.Errorf("rule %s is %s, cannot disable", id, latest.State)
	}
	latest.State = model.RuleDisabled
	r.version++
	return nil
}

// Drafts returns the latest versions currently awaiting approval
func (r *Registry) Drafts() []model.Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.Rule
	for _, history := range r.rules {
		latest := history[len(history)-1]
		if latest.State == model.RuleDraft {
			out = append(out, latest.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Version returns the current registry version
func (r *Registry) Version() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// restore replaces a rule's full history (import path)
func (r *Registry) restore(id string, history []model.Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[id] = history
	r.version++
}
