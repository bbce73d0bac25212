// Package amount verifies per-row and per-period arithmetic of a
// progress-payment document: unit price × quantity against the declared
// row amount, and the sum of row amounts against the declared period
// amount, subtotal and total.
package amount

import (
	"fmt"

	"github.com/cfliu/paycheck/internal/model"
	"github.com/cfliu/paycheck/internal/money"
)

// Engine runs the arithmetic checks. It is a pure function of its inputs
// plus the tolerances it was built with.
type Engine struct {
	amountTol   float64
	quantityTol float64
}

// NewEngine creates an amount engine with the given tolerances
func NewEngine(amountTol, quantityTol float64) *Engine {
	return &Engine{amountTol: amountTol, quantityTol: quantityTol}
}

func itemScope(period int, itemNo string) string {
	return fmt.Sprintf("item:%d/%s", period, itemNo)
}

func periodScope(period int) string {
	return fmt.Sprintf("period:%d", period)
}

// ValidateHorizontal checks a single row: quantity × unit price must equal
// the declared amount within tolerance. A zero quantity with a non-zero
// amount is an unconditional fail: no tolerance can explain money with no
// certified work behind it.
func (e *Engine) ValidateHorizontal(ruleID string, tol float64, period int, item model.LineItem) model.Finding {
	computed := item.Quantity * item.UnitPrice
	scope := itemScope(period, item.ItemNo)

	if money.IsZero(item.Quantity, e.quantityTol) && !money.IsZero(item.Amount, tol) {
		f := model.NewComparisonFinding(ruleID, model.RuleHorizontalCalc, model.SeverityFail, scope,
			"zero quantity with non-zero amount", computed, item.Amount)
		return f
	}

	if money.WithinTolerance(computed, item.Amount, tol) {
		return model.NewComparisonFinding(ruleID, model.RuleHorizontalCalc, model.SeverityPass, scope,
			"row amount matches quantity × unit price", computed, item.Amount)
	}

	return model.NewComparisonFinding(ruleID, model.RuleHorizontalCalc, model.SeverityFail, scope,
		fmt.Sprintf("row amount mismatch: %.2f × %.2f = %.2f, declared %.2f",
			item.Quantity, item.UnitPrice, computed, item.Amount),
		computed, item.Amount)
}

// ValidateCumulativeQuantity checks that the row's cumulative total equals
// prior cumulative plus this period's quantity. Rows that carry no
// cumulative figures are skipped (nil finding).
func (e *Engine) ValidateCumulativeQuantity(ruleID string, period int, item model.LineItem) *model.Finding {
	if item.TotalQuantity == 0 && item.PreviousQuantity == 0 {
		return nil
	}
	computed := item.PreviousQuantity + item.Quantity
	scope := itemScope(period, item.ItemNo)

	sev := model.SeverityPass
	msg := "cumulative quantity consistent"
	if !money.WithinTolerance(computed, item.TotalQuantity, e.quantityTol) {
		sev = model.SeverityFail
		msg = fmt.Sprintf("cumulative quantity mismatch: %.3f + %.3f = %.3f, declared %.3f",
			item.PreviousQuantity, item.Quantity, computed, item.TotalQuantity)
	}
	f := model.NewComparisonFinding(ruleID, model.RuleHorizontalCalc, sev, scope, msg, computed, item.TotalQuantity)
	return &f
}

// ValidateVerticalSum compares the sum of row amounts to the declared
// period amount and, when the document carries them, the declared subtotal
// and total. When any contributing row already failed its horizontal
// check, a vertical mismatch is reported as a warning rather than a fail
// so one bad row does not surface twice as two root causes.
func (e *Engine) ValidateVerticalSum(ruleID string, tol float64, period *model.PeriodRecord, horizontalFailed bool) []model.Finding {
	var sum float64
	for _, item := range period.Items {
		sum += item.Amount
	}

	failSev := model.SeverityFail
	if horizontalFailed {
		failSev = model.SeverityWarning
	}

	scope := periodScope(period.PeriodNumber)
	var findings []model.Finding

	check := func(declared float64, label string) {
		if money.WithinTolerance(sum, declared, tol) {
			findings = append(findings, model.NewComparisonFinding(ruleID, model.RuleVerticalSum,
				model.SeverityPass, scope, label+" matches item sum", sum, declared))
			return
		}
		msg := fmt.Sprintf("%s mismatch: items sum to %.2f, declared %.2f", label, sum, declared)
		if horizontalFailed {
			msg += " (row-level failure already reported)"
		}
		findings = append(findings, model.NewComparisonFinding(ruleID, model.RuleVerticalSum,
			failSev, scope, msg, sum, declared))
	}

	check(period.PeriodAmount, "period amount")
	if period.Subtotal != nil {
		check(*period.Subtotal, "subtotal")
	}
	if period.Total != nil {
		check(*period.Total, "total")
	}

	return findings
}
