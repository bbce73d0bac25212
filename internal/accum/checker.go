// Package accum verifies cross-period accumulation: the running-total
// arithmetic between periods, compliance with the contract ceiling, and
// the plausibility of the progress movement. The checker holds no history
// of its own; prior periods are supplied by the caller.
package accum

import (
	"fmt"

	"github.com/cfliu/paycheck/internal/model"
	"github.com/cfliu/paycheck/internal/money"
)

// Checker runs the accumulation checks
type Checker struct {
	amountTol float64
}

// NewChecker creates an accumulation checker with the given amount tolerance
func NewChecker(amountTol float64) *Checker {
	return &Checker{amountTol: amountTol}
}

func scope(period int) string {
	return fmt.Sprintf("period:%d", period)
}

// CheckLogic verifies previous accumulation + period amount = current
// accumulation. For a first period the previous accumulation must be zero.
func (c *Checker) CheckLogic(ruleID string, tol float64, current, previous *model.PeriodRecord) model.Finding {
	prevTotal := current.PreviousAccumulation
	if previous != nil {
		// The declared carry-over must match what the prior period closed at
		if !money.WithinTolerance(previous.CurrentAccumulation, current.PreviousAccumulation, tol) {
			return model.NewComparisonFinding(ruleID, model.RuleAccumulation, model.SeverityFail,
				scope(current.PeriodNumber),
				fmt.Sprintf("carried-over accumulation %.2f does not match prior period close %.2f",
					current.PreviousAccumulation, previous.CurrentAccumulation),
				previous.CurrentAccumulation, current.PreviousAccumulation)
		}
		prevTotal = previous.CurrentAccumulation
	}

	computed := prevTotal + current.PeriodAmount
	if money.WithinTolerance(computed, current.CurrentAccumulation, tol) {
		return model.NewComparisonFinding(ruleID, model.RuleAccumulation, model.SeverityPass,
			scope(current.PeriodNumber), "accumulation arithmetic consistent",
			computed, current.CurrentAccumulation)
	}

	return model.NewComparisonFinding(ruleID, model.RuleAccumulation, model.SeverityFail,
		scope(current.PeriodNumber),
		fmt.Sprintf("accumulation mismatch: %.2f + %.2f = %.2f, declared %.2f",
			prevTotal, current.PeriodAmount, computed, current.CurrentAccumulation),
		computed, current.CurrentAccumulation)
}

// CheckContractLimit verifies the running total against the contract
// ceiling: fail over the ceiling, warning above the near-ceiling ratio.
// A missing contract is itself a warning — the limit cannot be checked,
// which a reviewer needs to hear about.
func (c *Checker) CheckContractLimit(ruleID string, nearRatio float64, current *model.PeriodRecord, contract *model.ContractInfo) model.Finding {
	sc := scope(current.PeriodNumber)

	if contract == nil || contract.CeilingAmount <= 0 {
		return model.Finding{
			RuleID:   ruleID,
			RuleKind: model.RuleContractLimit,
			Severity: model.SeverityWarning,
			Scope:    sc,
			Message:  "no contract ceiling available, limit not checkable",
		}
	}

	ceiling := contract.CeilingAmount
	total := current.CurrentAccumulation
	usage := total / ceiling * 100

	if total > ceiling {
		f := model.NewComparisonFinding(ruleID, model.RuleContractLimit, model.SeverityFail, sc,
			fmt.Sprintf("accumulation %.2f exceeds contract ceiling %.2f by %.2f",
				total, ceiling, total-ceiling),
			total, ceiling)
		return f
	}

	if nearRatio > 0 && total > ceiling*nearRatio {
		return model.NewComparisonFinding(ruleID, model.RuleContractLimit, model.SeverityWarning, sc,
			fmt.Sprintf("accumulation at %.1f%% of contract ceiling (remaining %.2f)", usage, ceiling-total),
			total, ceiling)
	}

	return model.NewComparisonFinding(ruleID, model.RuleContractLimit, model.SeverityPass, sc,
		fmt.Sprintf("within contract ceiling: %.1f%% used, %.2f remaining", usage, ceiling-total),
		total, ceiling)
}

// CheckProgressPlausibility flags structurally broken period sequences
// (gap or repeat — a fail) and unusually large progress jumps (a warning:
// large but sequential progress is a judgment call, not an arithmetic
// error).
func (c *Checker) CheckProgressPlausibility(ruleID string, maxJump float64, current, previous *model.PeriodRecord, contract *model.ContractInfo) []model.Finding {
	sc := scope(current.PeriodNumber)
	var findings []model.Finding

	if current.PeriodNumber < 1 {
		findings = append(findings, model.Finding{
			RuleID: ruleID, RuleKind: model.RuleProgressCheck, Severity: model.SeverityFail,
			Scope: sc, Message: fmt.Sprintf("period number %d is not positive", current.PeriodNumber),
		})
		return findings
	}

	if previous != nil && current.PeriodNumber != previous.PeriodNumber+1 {
		findings = append(findings, model.Finding{
			RuleID: ruleID, RuleKind: model.RuleProgressCheck, Severity: model.SeverityFail,
			Scope: sc,
			Message: fmt.Sprintf("non-sequential period number: %d follows %d",
				current.PeriodNumber, previous.PeriodNumber),
		})
	}

	if contract != nil && contract.CeilingAmount > 0 && maxJump > 0 {
		jump := (current.CurrentAccumulation - current.PreviousAccumulation) / contract.CeilingAmount * 100
		if jump > maxJump {
			findings = append(findings, model.NewComparisonFinding(ruleID, model.RuleProgressCheck,
				model.SeverityWarning, sc,
				fmt.Sprintf("progress jump of %.1f points in one period exceeds %.1f", jump, maxJump),
				jump, maxJump))
		}
	}

	if len(findings) == 0 {
		findings = append(findings, model.Finding{
			RuleID: ruleID, RuleKind: model.RuleProgressCheck, Severity: model.SeverityPass,
			Scope: sc, Message: "period sequence and progress magnitude plausible",
		})
	}
	return findings
}

// Trend summarizes accumulation movement over the document's ordered
// periods. Informational; it produces no findings.
func Trend(periods []model.PeriodRecord, contract *model.ContractInfo) *model.Trend {
	if len(periods) == 0 {
		return nil
	}

	t := &model.Trend{Periods: len(periods)}
	var sum float64
	for _, p := range periods {
		t.PeriodAmounts = append(t.PeriodAmounts, p.PeriodAmount)
		sum += p.PeriodAmount
	}
	t.AvgPeriodAmount = sum / float64(len(periods))

	if contract != nil && contract.CeilingAmount > 0 {
		last := periods[len(periods)-1]
		t.AvgProgressStep = last.CurrentAccumulation / contract.CeilingAmount * 100 / float64(len(periods))
	}
	return t
}
