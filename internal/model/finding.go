package model

// Severity classifies the outcome of a single check
type Severity string

const (
	SeverityPass    Severity = "pass"
	SeverityWarning Severity = "warning"
	SeverityFail    Severity = "fail"
)

// Finding is the product of one rule applied to one scope of a document.
// Findings are produced fresh on every run and never mutated.
type Finding struct {
	RuleID   string   `json:"rule_id"`
	RuleKind RuleKind `json:"rule_kind"`
	Severity Severity `json:"severity"`
	Scope    string   `json:"scope"`              // "document", "period:N" or "item:N/<item_no>"
	Message  string   `json:"message"`

	// Computed vs declared values, where the check compares numbers.
	// Transparent by design: a reviewer can replay the arithmetic.
	Computed *float64 `json:"computed,omitempty"`
	Declared *float64 `json:"declared,omitempty"`
	Delta    *float64 `json:"delta,omitempty"`
}

// Status is the document-level roll-up of all finding severities
type Status string

const (
	StatusPass   Status = "pass"   // Every finding passed
	StatusReview Status = "review" // At least one warning, no fail
	StatusFail   Status = "fail"   // At least one fail
)

// StatusOf folds a finding set into the overall document status
func StatusOf(findings []Finding) Status {
	status := StatusPass
	for _, f := range findings {
		switch f.Severity {
		case SeverityFail:
			return StatusFail
		case SeverityWarning:
			status = StatusReview
		}
	}
	return status
}

// Report is the complete validation product for one document version
type Report struct {
	DocumentID   string     `json:"document_id"`
	Findings     []Finding  `json:"findings"`
	Status       Status     `json:"status"`
	Confidence   Confidence `json:"confidence"`
	RuleSnapshot int        `json:"rule_snapshot"`    // Registry version the run observed
	Trend        *Trend     `json:"trend,omitempty"`  // Cross-period trend summary
	Reason       string     `json:"reason,omitempty"` // Set when a structural error aborted the run
}

// Trend summarizes accumulation movement across the document's periods
type Trend struct {
	Periods         int       `json:"periods"`
	PeriodAmounts   []float64 `json:"period_amounts"`
	AvgPeriodAmount float64   `json:"avg_period_amount"`
	AvgProgressStep float64   `json:"avg_progress_step,omitempty"` // Percentage points per period, when a ceiling is known
}

// Confidence is the aggregated document confidence with its transparent
// component breakdown
type Confidence struct {
	Overall    float64            `json:"overall"` // [0,1]
	Band       string             `json:"band"`    // "low", "medium", "high"
	Components map[string]float64 `json:"components"`
	Weights    map[string]float64 `json:"weights"`
}

func ptr(v float64) *float64 { return &v }

// NewComparisonFinding builds a finding that carries computed vs declared
// values and their delta.
func NewComparisonFinding(ruleID string, kind RuleKind, sev Severity, scope, msg string, computed, declared float64) Finding {
	d := computed - declared
	if d < 0 {
		d = -d
	}
	return Finding{
		RuleID:   ruleID,
		RuleKind: kind,
		Severity: sev,
		Scope:    scope,
		Message:  msg,
		Computed: ptr(computed),
		Declared: ptr(declared),
		Delta:    ptr(d),
	}
}
