package condition

import (
	"fmt"

	"github.com/cfliu/paycheck/internal/model"
)

// RawParse is the untrusted structured output of the NLP collaborator.
// Nothing here is believed until ValidateShape accepts it.
type RawParse struct {
	Trigger      string  `json:"trigger"`
	Threshold    float64 `json:"threshold"`
	PaymentPhase int     `json:"payment_phase"`
}

// ValidateShape checks a collaborator parse against the closed trigger set
// and its value ranges, returning a trusted PaymentCondition. Any shape
// violation degrades to TriggerUnparsed — malformed upstream output is a
// warning-level outcome, never an error.
func ValidateShape(rawText string, parse *RawParse, source string) model.PaymentCondition {
	cond := model.PaymentCondition{
		RawText: rawText,
		Trigger: model.TriggerUnparsed,
		Source:  source,
	}
	if parse == nil {
		return cond
	}

	switch model.TriggerType(parse.Trigger) {
	case model.TriggerProgressPercent:
		if parse.Threshold <= 0 || parse.Threshold > 100 {
			return cond
		}
		if parse.PaymentPhase < 0 {
			return cond
		}
		cond.Trigger = model.TriggerProgressPercent
		cond.Threshold = parse.Threshold
		cond.PaymentPhase = parse.PaymentPhase
	case model.TriggerMilestone:
		if parse.PaymentPhase < 0 {
			return cond
		}
		cond.Trigger = model.TriggerMilestone
		cond.PaymentPhase = parse.PaymentPhase
	case model.TriggerDate:
		if parse.Threshold <= 0 {
			return cond
		}
		cond.Trigger = model.TriggerDate
		cond.Threshold = parse.Threshold
		cond.PaymentPhase = parse.PaymentPhase
	default:
		// Unknown trigger names stay unparsed
	}
	return cond
}

// Evaluate applies a validated condition to the current progress state.
// Idempotent: the same condition and state always yield the same finding.
func Evaluate(ruleID string, cond model.PaymentCondition, progress model.ProgressState) model.Finding {
	base := model.Finding{
		RuleID:   ruleID,
		RuleKind: model.RulePaymentCondition,
		Scope:    "document",
	}

	switch cond.Trigger {
	case model.TriggerProgressPercent:
		if progress.ProgressPercent >= cond.Threshold {
			f := model.NewComparisonFinding(ruleID, model.RulePaymentCondition, model.SeverityPass,
				"document",
				fmt.Sprintf("progress %.3f%% meets condition threshold %.1f%%",
					progress.ProgressPercent, cond.Threshold),
				progress.ProgressPercent, cond.Threshold)
			return f
		}
		deficit := cond.Threshold - progress.ProgressPercent
		return model.NewComparisonFinding(ruleID, model.RulePaymentCondition, model.SeverityFail,
			"document",
			fmt.Sprintf("progress %.3f%% short of condition threshold %.1f%% by %.3f points",
				progress.ProgressPercent, cond.Threshold, deficit),
			progress.ProgressPercent, cond.Threshold)

	case model.TriggerMilestone:
		if progress.MilestoneReached {
			base.Severity = model.SeverityPass
			base.Message = "milestone signal reached"
		} else {
			base.Severity = model.SeverityFail
			base.Message = "milestone signal not reached"
		}
		return base

	case model.TriggerDate:
		if progress.DatePassed {
			base.Severity = model.SeverityPass
			base.Message = "date condition satisfied"
		} else {
			base.Severity = model.SeverityFail
			base.Message = "date condition not yet satisfied"
		}
		return base

	default:
		// Unparsed conditions never silently pass; they go to a human.
		base.Severity = model.SeverityWarning
		base.Message = "condition could not be structurally validated, queued for review"
		return base
	}
}
