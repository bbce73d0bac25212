package rules

import (
	"context"
	"fmt"

	"github.com/cfliu/paycheck/internal/accum"
	"github.com/cfliu/paycheck/internal/amount"
	"github.com/cfliu/paycheck/internal/condition"
	"github.com/cfliu/paycheck/internal/model"
	"github.com/cfliu/paycheck/internal/money"
)

// ConditionParser structures raw condition text. Satisfied by
// llm.ConditionParser; the engine never cares where structure came from.
type ConditionParser interface {
	Parse(ctx context.Context, text string) model.PaymentCondition
}

// ruleParser is the no-collaborator default
type ruleParser struct{}

func (ruleParser) Parse(_ context.Context, text string) model.PaymentCondition {
	return condition.ParseWithRules(text)
}

// Engine executes a rule snapshot over a document. Execution is a pure
// function of (document, snapshot): same inputs, same ordered findings.
type Engine struct {
	amounts *amount.Engine
	accums  *accum.Checker
	parser  ConditionParser
}

// NewEngine creates an execution engine. parser may be nil to use the
// built-in rule grammar only.
func NewEngine(cfg *model.Config, parser ConditionParser) *Engine {
	if parser == nil {
		parser = ruleParser{}
	}
	return &Engine{
		amounts: amount.NewEngine(cfg.Tolerance.Amount, cfg.Tolerance.Quantity),
		accums:  accum.NewChecker(cfg.Tolerance.Amount),
		parser:  parser,
	}
}

// execState carries cross-rule context within one run. Downstream rules
// consult it for short-circuiting; it never escapes the run.
type execState struct {
	horizontalFailed bool
}

type handler func(ctx context.Context, e *Engine, doc *model.Document, rule *model.Rule, st *execState) []model.Finding

// dispatch is the closed kind-to-handler table. Kinds outside it never
// execute, which keeps the execution surface auditable.
var dispatch = map[model.RuleKind]handler{
	model.RuleHorizontalCalc:   runHorizontal,
	model.RuleVerticalSum:      runVertical,
	model.RuleAccumulation:     runAccumulation,
	model.RuleContractLimit:    runContractLimit,
	model.RuleProgressCheck:    runProgressCheck,
	model.RulePaymentCondition: runPaymentCondition,
	model.RuleLearnedCustom:    runLearnedCustom,
}

// Execute runs every active rule of the snapshot over the document in the
// fixed execution order and returns the ordered findings.
func (e *Engine) Execute(ctx context.Context, doc *model.Document, snap Snapshot) []model.Finding {
	st := &execState{}
	var findings []model.Finding

	// Snapshot.Active is already ordered by ExecutionOrder then rule id
	for i := range snap.Active {
		rule := &snap.Active[i]
		h, ok := dispatch[rule.Kind]
		if !ok {
			continue
		}
		findings = append(findings, h(ctx, e, doc, rule, st)...)
	}
	return findings
}

func runHorizontal(_ context.Context, e *Engine, doc *model.Document, rule *model.Rule, st *execState) []model.Finding {
	tol := rule.Param(ParamTolerance, 0.5)
	var findings []model.Finding
	for _, period := range doc.Periods {
		for _, item := range period.Items {
			f := e.amounts.ValidateHorizontal(rule.ID, tol, period.PeriodNumber, item)
			if f.Severity == model.SeverityFail {
				st.horizontalFailed = true
			}
			findings = append(findings, f)

			if cf := e.amounts.ValidateCumulativeQuantity(rule.ID, period.PeriodNumber, item); cf != nil {
				if cf.Severity == model.SeverityFail {
					st.horizontalFailed = true
				}
				findings = append(findings, *cf)
			}
		}
	}
	return findings
}

func runVertical(_ context.Context, e *Engine, doc *model.Document, rule *model.Rule, st *execState) []model.Finding {
	tol := rule.Param(ParamTolerance, 0.5)
	var findings []model.Finding
	for i := range doc.Periods {
		findings = append(findings, e.amounts.ValidateVerticalSum(rule.ID, tol, &doc.Periods[i], st.horizontalFailed)...)
	}
	return findings
}

func runAccumulation(_ context.Context, e *Engine, doc *model.Document, rule *model.Rule, _ *execState) []model.Finding {
	tol := rule.Param(ParamTolerance, 0.5)
	var findings []model.Finding
	for i := range doc.Periods {
		var previous *model.PeriodRecord
		if i > 0 {
			previous = &doc.Periods[i-1]
		}
		findings = append(findings, e.accums.CheckLogic(rule.ID, tol, &doc.Periods[i], previous))
	}
	return findings
}

func runContractLimit(_ context.Context, e *Engine, doc *model.Document, rule *model.Rule, _ *execState) []model.Finding {
	current := doc.CurrentPeriod()
	if current == nil {
		return nil
	}
	ratio := rule.Param(ParamNearCeilingRatio, 0.9)
	return []model.Finding{e.accums.CheckContractLimit(rule.ID, ratio, current, doc.Contract)}
}

func runProgressCheck(_ context.Context, e *Engine, doc *model.Document, rule *model.Rule, _ *execState) []model.Finding {
	maxJump := rule.Param(ParamMaxProgressJump, 40)
	var findings []model.Finding
	for i := range doc.Periods {
		var previous *model.PeriodRecord
		if i > 0 {
			previous = &doc.Periods[i-1]
		}
		findings = append(findings, e.accums.CheckProgressPlausibility(rule.ID, maxJump, &doc.Periods[i], previous, doc.Contract)...)
	}
	return findings
}

func runPaymentCondition(ctx context.Context, e *Engine, doc *model.Document, rule *model.Rule, _ *execState) []model.Finding {
	// Each period may carry its own condition, but only the current
	// period's gates this payment request; earlier periods' conditions
	// gated requests that were settled in their own runs.
	current := doc.CurrentPeriod()
	if current == nil || current.ConditionText == "" {
		return nil
	}

	cond := e.parser.Parse(ctx, current.ConditionText)

	progress := doc.Progress
	if progress.ProgressPercent == 0 && doc.Contract != nil && doc.Contract.CeilingAmount > 0 {
		progress.ProgressPercent = current.CurrentAccumulation / doc.Contract.CeilingAmount * 100
	}

	return []model.Finding{condition.Evaluate(rule.ID, cond, progress)}
}

// runLearnedCustom re-checks a named document field with a learned
// tolerance. Learned rules say "this comparison, this slack" — nothing
// open-ended executes here.
func runLearnedCustom(_ context.Context, _ *Engine, doc *model.Document, rule *model.Rule, _ *execState) []model.Finding {
	current := doc.CurrentPeriod()
	if current == nil {
		return nil
	}
	tol := rule.Param(ParamTolerance, 0.5)

	var findings []model.Finding
	for _, field := range rule.Fields {
		var computed, declared float64
		switch field {
		case "period_amount":
			for _, item := range current.Items {
				computed += item.Amount
			}
			declared = current.PeriodAmount
		case "current_accumulation":
			computed = current.PreviousAccumulation + current.PeriodAmount
			declared = current.CurrentAccumulation
		default:
			continue
		}

		sev := model.SeverityPass
		msg := fmt.Sprintf("%s within learned tolerance %.3f", field, tol)
		if !money.WithinTolerance(computed, declared, tol) {
			sev = model.SeverityFail
			msg = fmt.Sprintf("%s outside learned tolerance %.3f", field, tol)
		}
		findings = append(findings, model.NewComparisonFinding(rule.ID, model.RuleLearnedCustom,
			sev, fmt.Sprintf("period:%d", current.PeriodNumber), msg, computed, declared))
	}
	return findings
}
