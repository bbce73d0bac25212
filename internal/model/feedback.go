package model

import "time"

// FeedbackKind classifies what a human correction says went wrong
type FeedbackKind string

const (
	FeedbackExtractionError FeedbackKind = "extraction-error"
	FeedbackMappingError    FeedbackKind = "mapping-error"
	FeedbackFalsePositive   FeedbackKind = "rule-false-positive" // Rule flagged a correct value
	FeedbackFalseNegative   FeedbackKind = "rule-false-negative" // Rule passed an incorrect value
)

// FeedbackRecord is one human correction. Records are append-only and
// never mutated; the learning loop reads them and marks consumption
// separately.
type FeedbackRecord struct {
	DocumentID  string       `json:"document_id"`
	RuleKind    RuleKind     `json:"rule_kind,omitempty"` // Set for rule-level feedback
	Field       string       `json:"field"`
	SystemValue float64      `json:"system_value"`
	HumanValue  float64      `json:"human_value"`
	Kind        FeedbackKind `json:"kind"`
	Comment     string       `json:"comment,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Delta returns the absolute discrepancy the reviewer observed
func (f *FeedbackRecord) Delta() float64 {
	d := f.SystemValue - f.HumanValue
	if d < 0 {
		d = -d
	}
	return d
}

// FeedbackStats summarizes accumulated feedback by kind
type FeedbackStats struct {
	Total  int                  `json:"total"`
	ByKind map[FeedbackKind]int `json:"by_kind"`
}
