package model

// RuleKind is the closed set of check families the engine dispatches on
type RuleKind string

const (
	RuleVerticalSum      RuleKind = "vertical-sum"
	RuleHorizontalCalc   RuleKind = "horizontal-calc"
	RuleAccumulation     RuleKind = "accumulation-logic"
	RuleContractLimit    RuleKind = "contract-limit"
	RuleProgressCheck    RuleKind = "progress-plausibility"
	RulePaymentCondition RuleKind = "payment-condition"
	RuleLearnedCustom    RuleKind = "learned-custom"
)

// ExecutionOrder is the fixed dispatch order. Downstream kinds may consult
// upstream findings (the vertical check demotes to warning when a
// contributing row already failed horizontally), so the order is part of
// the engine's contract.
var ExecutionOrder = []RuleKind{
	RuleHorizontalCalc,
	RuleVerticalSum,
	RuleAccumulation,
	RuleContractLimit,
	RuleProgressCheck,
	RulePaymentCondition,
	RuleLearnedCustom,
}

// RuleState is the lifecycle state of a rule version
type RuleState string

const (
	RuleDraft      RuleState = "draft"      // Proposed, not executed
	RuleActive     RuleState = "active"     // Executed on every run
	RuleDisabled   RuleState = "disabled"   // Administratively off, kept for history
	RuleSuperseded RuleState = "superseded" // Replaced by a newer version, queryable for audit
)

// Provenance records where a rule version came from
type Provenance string

const (
	ProvenanceBuiltIn Provenance = "built-in"
	ProvenanceLearned Provenance = "learned"
)

// Rule is one versioned validation rule. Versions are immutable: any
// parameter change creates a new version and supersedes the old one.
type Rule struct {
	ID         string             `json:"id" yaml:"id"`
	Name       string             `json:"name" yaml:"name"`
	Kind       RuleKind           `json:"kind" yaml:"kind"`
	Version    int                `json:"version" yaml:"version"`
	State      RuleState          `json:"state" yaml:"state"`
	Provenance Provenance         `json:"provenance" yaml:"provenance"`
	Params     map[string]float64 `json:"params,omitempty" yaml:"params,omitempty"`
	Fields     []string           `json:"fields,omitempty" yaml:"fields,omitempty"` // Fields the rule applies to
}

// Param returns a rule parameter, falling back to def when unset
func (r *Rule) Param(name string, def float64) float64 {
	if v, ok := r.Params[name]; ok {
		return v
	}
	return def
}

// Clone returns a deep copy so snapshots never alias registry state
func (r *Rule) Clone() Rule {
	c := *r
	if r.Params != nil {
		c.Params = make(map[string]float64, len(r.Params))
		for k, v := range r.Params {
			c.Params[k] = v
		}
	}
	if r.Fields != nil {
		c.Fields = append([]string(nil), r.Fields...)
	}
	return c
}
