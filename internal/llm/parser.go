package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/time/rate"

	"github.com/cfliu/paycheck/internal/cache"
	"github.com/cfliu/paycheck/internal/condition"
	"github.com/cfliu/paycheck/internal/model"
)

// ConditionParser turns raw condition text into a validated
// PaymentCondition. When a provider is configured it is tried first,
// rate-limited and cached; the rule grammar is the fallback for provider
// errors and for shape-validation rejects. The parser can never fail a
// validation run: worst case is an unparsed condition.
type ConditionParser struct {
	provider Provider
	limiter  *rate.Limiter
	cache    cache.Cache
	verbose  bool
}

// NewConditionParser builds a parser from configuration. provider may be
// nil (rule grammar only). cacheStore may be nil (no caching).
func NewConditionParser(provider Provider, cfg model.LLMConfig, cacheStore cache.Cache, verbose bool) *ConditionParser {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 5
	}

	return &ConditionParser{
		provider: provider,
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
		cache:    cacheStore,
		verbose:  verbose,
	}
}

// Parse structures one condition text. Identical text always maps to the
// same structured parse, so results are cacheable by content.
func (p *ConditionParser) Parse(ctx context.Context, text string) model.PaymentCondition {
	if text == "" {
		return condition.ParseWithRules(text)
	}

	if p.cache != nil {
		if data, ok := p.cache.Get(cache.Key(text)); ok {
			var cond model.PaymentCondition
			if err := json.Unmarshal(data, &cond); err == nil {
				cond.Source = "cache"
				return cond
			}
		}
	}

	cond := p.parseFresh(ctx, text)

	if p.cache != nil && cond.Trigger != model.TriggerUnparsed {
		if data, err := json.Marshal(cond); err == nil {
			_ = p.cache.Set(cache.Key(text), data, 0)
		}
	}

	return cond
}

func (p *ConditionParser) parseFresh(ctx context.Context, text string) model.PaymentCondition {
	if p.provider == nil {
		return condition.ParseWithRules(text)
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return condition.ParseWithRules(text)
	}

	resp, err := p.provider.ParseCondition(ctx, ParseRequest{ConditionText: text})
	if err != nil {
		if p.verbose {
			fmt.Fprintf(os.Stderr, "Warning: %s condition parse failed, using rule grammar: %v\n", p.provider.Name(), err)
		}
		return condition.ParseWithRules(text)
	}

	var raw condition.RawParse
	if err := json.Unmarshal([]byte(resp.RawJSON), &raw); err != nil {
		// Collaborator broke the JSON contract; the rule grammar may still read the text
		if fallback := condition.ParseWithRules(text); fallback.Trigger != model.TriggerUnparsed {
			return fallback
		}
		return condition.ValidateShape(text, nil, p.provider.Name())
	}

	cond := condition.ValidateShape(text, &raw, p.provider.Name())
	if cond.Trigger == model.TriggerUnparsed {
		// Shape reject: give the grammar a chance before queueing for review
		if fallback := condition.ParseWithRules(text); fallback.Trigger != model.TriggerUnparsed {
			return fallback
		}
	}
	return cond
}
