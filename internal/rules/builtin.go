package rules

import "github.com/cfliu/paycheck/internal/model"

// Built-in rule identifiers
const (
	RuleIDHorizontal = "builtin.horizontal-calc"
	RuleIDVertical   = "builtin.vertical-sum"
	RuleIDAccum      = "builtin.accumulation-logic"
	RuleIDLimit      = "builtin.contract-limit"
	RuleIDProgress   = "builtin.progress-plausibility"
	RuleIDCondition  = "builtin.payment-condition"
)

// Parameter names shared between built-ins and the learning loop
const (
	ParamTolerance        = "tolerance"
	ParamNearCeilingRatio = "near_ceiling_ratio"
	ParamMaxProgressJump  = "max_progress_jump"
)

// BuiltinRules returns the seed rule set, version 1, all active. Built-in
// parameters start from configuration; later versions come from the
// learning loop.
func BuiltinRules(cfg *model.Config) []model.Rule {
	return []model.Rule{
		{
			ID: RuleIDHorizontal, Name: "Row amount arithmetic",
			Kind: model.RuleHorizontalCalc, Version: 1,
			State: model.RuleActive, Provenance: model.ProvenanceBuiltIn,
			Params: map[string]float64{ParamTolerance: cfg.Tolerance.Amount},
			Fields: []string{"amount"},
		},
		{
			ID: RuleIDVertical, Name: "Period sum against declared totals",
			Kind: model.RuleVerticalSum, Version: 1,
			State: model.RuleActive, Provenance: model.ProvenanceBuiltIn,
			Params: map[string]float64{ParamTolerance: cfg.Tolerance.Amount},
			Fields: []string{"period_amount", "subtotal", "total"},
		},
		{
			ID: RuleIDAccum, Name: "Cross-period accumulation arithmetic",
			Kind: model.RuleAccumulation, Version: 1,
			State: model.RuleActive, Provenance: model.ProvenanceBuiltIn,
			Params: map[string]float64{ParamTolerance: cfg.Tolerance.Amount},
			Fields: []string{"current_accumulation"},
		},
		{
			ID: RuleIDLimit, Name: "Contract ceiling compliance",
			Kind: model.RuleContractLimit, Version: 1,
			State: model.RuleActive, Provenance: model.ProvenanceBuiltIn,
			Params: map[string]float64{ParamNearCeilingRatio: cfg.Accum.NearCeilingRatio},
		},
		{
			ID: RuleIDProgress, Name: "Period sequence and progress plausibility",
			Kind: model.RuleProgressCheck, Version: 1,
			State: model.RuleActive, Provenance: model.ProvenanceBuiltIn,
			Params: map[string]float64{ParamMaxProgressJump: cfg.Accum.MaxProgressJump},
		},
		{
			ID: RuleIDCondition, Name: "Payment condition satisfaction",
			Kind: model.RulePaymentCondition, Version: 1,
			State: model.RuleActive, Provenance: model.ProvenanceBuiltIn,
		},
	}
}
