package model

// TriggerType classifies what releases a payment
type TriggerType string

const (
	TriggerProgressPercent TriggerType = "progress-percentage"
	TriggerMilestone       TriggerType = "milestone"
	TriggerDate            TriggerType = "date"
	TriggerUnparsed        TriggerType = "unparsed" // Text could not be structurally validated
)

// PaymentCondition is the structured form of a natural-language payment
// trigger. Parsing is delegated to an untrusted collaborator; a condition
// only carries a trigger other than TriggerUnparsed after its output
// passed shape validation.
type PaymentCondition struct {
	RawText      string      `json:"raw_text"`
	Trigger      TriggerType `json:"trigger"`
	Threshold    float64     `json:"threshold,omitempty"`     // Percent for progress triggers, months for date triggers
	PaymentPhase int         `json:"payment_phase,omitempty"` // Which installment the condition releases
	Source       string      `json:"source,omitempty"`        // "llm", "rules" or "cache"
}
