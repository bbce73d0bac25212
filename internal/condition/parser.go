// Package condition turns natural-language payment triggers into
// structured conditions and evaluates them against the document's progress
// state. Structure may come from an LLM collaborator or from the built-in
// rule grammar; either way the structured form passes shape validation
// before anything arithmetic trusts it.
package condition

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cfliu/paycheck/internal/model"
)

// Grammar for the common Taiwanese public-works phrasings, e.g.
// 「工程完成35%後可請領第三期款」 or 「工程完成30%後支付第2期款」.
var (
	progressPattern = regexp.MustCompile(`工程完成.*?(\d+(?:\.\d+)?)\s*%`)
	phasePattern    = regexp.MustCompile(`第([一二三四五六七八九十\d]+)期`)
	monthsPattern   = regexp.MustCompile(`(\d+)\s*個?月`)
)

var chineseDigits = map[rune]int{
	'一': 1, '二': 2, '三': 3, '四': 4, '五': 5,
	'六': 6, '七': 7, '八': 8, '九': 9, '十': 10,
}

// parsePhase converts a phase capture that may be Chinese or Arabic
// numerals. Returns 0 when the capture cannot be read.
func parsePhase(s string) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	runes := []rune(s)
	if len(runes) == 1 {
		return chineseDigits[runes[0]]
	}
	// Compound forms up to 九十九: [X]十[Y]
	val := 0
	for i, r := range runes {
		d, ok := chineseDigits[r]
		if !ok {
			return 0
		}
		if r == '十' {
			if i == 0 {
				val = 10
			} else {
				val *= 10
			}
			continue
		}
		val += d
	}
	return val
}

// ParseWithRules parses condition text with the built-in grammar. It never
// fails: text the grammar cannot read comes back with TriggerUnparsed.
func ParseWithRules(text string) model.PaymentCondition {
	cond := model.PaymentCondition{
		RawText: text,
		Trigger: model.TriggerUnparsed,
		Source:  "rules",
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return cond
	}

	if m := progressPattern.FindStringSubmatch(trimmed); m != nil {
		threshold, err := strconv.ParseFloat(m[1], 64)
		if err == nil && threshold > 0 && threshold <= 100 {
			cond.Trigger = model.TriggerProgressPercent
			cond.Threshold = threshold
			if pm := phasePattern.FindStringSubmatch(trimmed); pm != nil {
				cond.PaymentPhase = parsePhase(pm[1])
			}
			return cond
		}
	}

	// Acceptance/completion milestones: 驗收 (acceptance), 竣工 (completion)
	if strings.Contains(trimmed, "驗收") || strings.Contains(trimmed, "竣工") {
		cond.Trigger = model.TriggerMilestone
		if pm := phasePattern.FindStringSubmatch(trimmed); pm != nil {
			cond.PaymentPhase = parsePhase(pm[1])
		}
		return cond
	}

	if m := monthsPattern.FindStringSubmatch(trimmed); m != nil {
		months, err := strconv.Atoi(m[1])
		if err == nil && months > 0 {
			cond.Trigger = model.TriggerDate
			cond.Threshold = float64(months)
			return cond
		}
	}

	return cond
}
