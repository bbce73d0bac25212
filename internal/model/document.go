package model

// LineItem is a single row of a progress-payment detail table
type LineItem struct {
	ItemNo           string  `json:"item_no"`                     // Unique within a period
	Description      string  `json:"description,omitempty"`      // Work item description
	Unit             string  `json:"unit,omitempty"`              // Unit of measure (m, m2, 式, ...)
	Quantity         float64 `json:"quantity"`                    // Quantity certified this period
	UnitPrice        float64 `json:"unit_price"`                  // Contract unit price
	Amount           float64 `json:"amount"`                      // Declared row amount
	PreviousQuantity float64 `json:"previous_quantity,omitempty"` // Cumulative quantity before this period
	TotalQuantity    float64 `json:"total_quantity,omitempty"`    // Cumulative quantity including this period
}

// PeriodRecord is one billing cycle of a contract. Records are immutable
// after validation; corrections produce a new document version.
type PeriodRecord struct {
	PeriodNumber         int        `json:"period_number"`
	Items                []LineItem `json:"items"`
	PeriodAmount         float64    `json:"period_amount"`             // Declared total for this period
	Subtotal             *float64   `json:"subtotal,omitempty"`        // Declared subtotal, if the document carries one
	Total                *float64   `json:"total,omitempty"`           // Declared grand total, if the document carries one
	PreviousAccumulation float64    `json:"previous_accumulation"`     // Running total before this period (0 for period 1)
	CurrentAccumulation  float64    `json:"current_accumulation"`      // Running total including this period
	ConditionText        string     `json:"condition_text,omitempty"`  // Raw payment-condition text for this period
}

// ContractInfo carries the contract-level facts the checks compare against.
// The ceiling is fixed at contract creation.
type ContractInfo struct {
	ContractNumber string  `json:"contract_number"`
	ContractName   string  `json:"contract_name,omitempty"`
	CeilingAmount  float64 `json:"ceiling_amount"`
	Contractor     string  `json:"contractor,omitempty"`
}

// ProgressState is the caller-supplied signal set a payment condition is
// evaluated against. Milestone and date signals come from upstream
// collaborators; this core never resolves them itself.
type ProgressState struct {
	ProgressPercent  float64 `json:"progress_percent"`            // current accumulation / ceiling * 100
	MilestoneReached bool    `json:"milestone_reached,omitempty"`
	DatePassed       bool    `json:"date_passed,omitempty"`
}

// Document is the standardized record produced by the extraction and
// mapping collaborators. It is the sole input to a validation run.
type Document struct {
	DocumentID string        `json:"document_id"`
	Contract   *ContractInfo `json:"contract,omitempty"`
	Periods    []PeriodRecord `json:"periods"` // Ordered by period number, current period last

	// Upstream confidence, both in [0,1]
	ExtractionConfidence float64 `json:"extraction_confidence"`
	MappingConfidence    float64 `json:"mapping_confidence"`

	Progress ProgressState `json:"progress"`
}

// CurrentPeriod returns the latest period of the document, or nil if the
// document has none.
func (d *Document) CurrentPeriod() *PeriodRecord {
	if len(d.Periods) == 0 {
		return nil
	}
	return &d.Periods[len(d.Periods)-1]
}

// PreviousPeriod returns the period immediately before the current one, or
// nil for a first-period document.
func (d *Document) PreviousPeriod() *PeriodRecord {
	if len(d.Periods) < 2 {
		return nil
	}
	return &d.Periods[len(d.Periods)-2]
}
