// Package llm reaches the external semantic-understanding collaborator
// that structures natural-language payment conditions. Provider output is
// untrusted text; internal/condition shape-validates everything before it
// enters evaluation.
package llm

import (
	"context"

	"github.com/cfliu/paycheck/internal/model"
)

// Provider defines the interface for condition-parsing backends
type Provider interface {
	// Name returns the provider name
	Name() string

	// ParseCondition asks the model to structure one condition text.
	// The returned string is the model's raw JSON output.
	ParseCondition(ctx context.Context, req ParseRequest) (*ParseResponse, error)

	// IsAvailable checks if the provider is configured and reachable
	IsAvailable(ctx context.Context) bool
}

// ParseRequest is the input for condition structuring
type ParseRequest struct {
	// ConditionText is the raw payment-condition sentence
	ConditionText string

	// Model overrides the configured model (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// ParseResponse is the provider's raw output before shape validation
type ParseResponse struct {
	// RawJSON is the model's JSON payload
	RawJSON string

	// Model is the model that produced the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds provider configuration
type Config struct {
	// Provider name: "openai", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for hosted providers
	APIKey string

	// BaseURL for custom endpoints (e.g. Ollama)
	BaseURL string

	// Timeout for API requests, in seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(mc model.LLMConfig) Config {
	return Config{
		Provider:  mc.Provider,
		Model:     mc.Model,
		APIKey:    mc.APIKey,
		BaseURL:   mc.BaseURL,
		Timeout:   mc.Timeout,
		MaxTokens: mc.MaxTokens,
	}
}

// systemPrompt constrains the model to the closed trigger vocabulary.
// Anything outside the contract fails shape validation downstream, so the
// prompt and the validator describe the same shape.
const systemPrompt = `You convert construction-contract payment conditions into JSON.
Respond with ONLY a JSON object, no prose, in this exact shape:
{"trigger":"progress-percentage"|"milestone"|"date","threshold":<number>,"payment_phase":<integer>}

Rules:
- "progress-percentage": threshold is the completion percent (0-100).
- "milestone": acceptance/completion style triggers; threshold 0.
- "date": threshold is the number of months.
- payment_phase is the installment number the condition releases, 0 if not stated.
- If the text fits none of the three triggers, respond {"trigger":"unparsed"}.`

// BuildPrompt constructs the user prompt for one condition text
func BuildPrompt(conditionText string) string {
	return "Condition text:\n" + conditionText
}
