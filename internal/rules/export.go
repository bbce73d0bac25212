package rules

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/cfliu/paycheck/internal/model"
)

// ruleBase is the on-disk form of the registry: every version of every
// rule, so an import reproduces the full audit history.
type ruleBase struct {
	Version int                     `yaml:"version"`
	Rules   map[string][]model.Rule `yaml:"rules"`
}

// Export writes the complete rule base, including superseded and disabled
// versions, as YAML.
func (r *Registry) Export(path string) error {
	r.mu.RLock()
	base := ruleBase{
		Version: r.version,
		Rules:   make(map[string][]model.Rule, len(r.rules)),
	}
	for id, history := range r.rules {
		out := make([]model.Rule, len(history))
		for i, rule := range history {
			out[i] = rule.Clone()
		}
		base.Rules[id] = out
	}
	r.mu.RUnlock()

	data, err := yaml.Marshal(base)
	if err != nil {
		return fmt.Errorf("marshal rule base: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write rule base: %w", err)
	}
	return nil
}

// Import loads a rule base written by Export, replacing histories for the
// rule ids it contains. Histories are validated for monotonically
// increasing versions before anything is applied.
func (r *Registry) Import(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read rule base: %w", err)
	}

	var base ruleBase
	if err := yaml.Unmarshal(data, &base); err != nil {
		return fmt.Errorf("unmarshal rule base: %w", err)
	}

	ids := make([]string, 0, len(base.Rules))
	for id, history := range base.Rules {
		if len(history) == 0 {
			return fmt.Errorf("rule %s: empty history", id)
		}
		for i, rule := range history {
			if rule.ID != id {
				return fmt.Errorf("rule %s: history entry %d carries id %s", id, i, rule.ID)
			}
			if i > 0 && rule.Version <= history[i-1].Version {
				return fmt.Errorf("rule %s: version %d does not follow %d", id, rule.Version, history[i-1].Version)
			}
		}
		ids = append(ids, id)
	}

	sort.Strings(ids)
	for _, id := range ids {
		r.restore(id, base.Rules[id])
	}
	return nil
}
