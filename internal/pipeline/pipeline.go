// Package pipeline wires the validation stages together: decode the
// standardized document record, check its structure, execute the active
// rule snapshot, derive the trend, aggregate confidence and assemble the
// report.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/cfliu/paycheck/internal/accum"
	"github.com/cfliu/paycheck/internal/cache"
	"github.com/cfliu/paycheck/internal/llm"
	"github.com/cfliu/paycheck/internal/model"
	"github.com/cfliu/paycheck/internal/rules"
	"github.com/cfliu/paycheck/internal/score"
)

// Pipeline orchestrates a complete validation run
type Pipeline struct {
	registry *rules.Registry
	engine   *rules.Engine
	scorer   *score.Scorer
	renderer *Renderer
	config   *model.Config
}

// NewPipeline creates a pipeline around a rule registry. When an LLM
// provider is configured it parses payment conditions, cached and
// rate-limited; otherwise the rule grammar does.
func NewPipeline(cfg *model.Config, registry *rules.Registry) *Pipeline {
	var parser rules.ConditionParser

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		fmt.Printf("Warning: Failed to initialize LLM provider: %v\n", err)
		provider = nil
	}
	if provider != nil {
		var store cache.Cache
		if cfg.Cache.Enabled {
			ttl := time.Duration(cfg.Cache.TTLMinutes) * time.Minute
			if cfg.Cache.Dir != "" {
				store = cache.NewDiskCache(cfg.Cache.Dir, ttl)
			} else {
				store = cache.NewMemoryCache(ttl, 10*time.Minute)
			}
		}
		parser = llm.NewConditionParser(provider, cfg.LLM, store, cfg.Output.Verbose)
	}

	return &Pipeline{
		registry: registry,
		engine:   rules.NewEngine(cfg, parser),
		scorer:   score.NewScorer(cfg.Confidence),
		renderer: NewRenderer(cfg.Output.IncludeFooter),
		config:   cfg,
	}
}

// checkStructure rejects records too malformed to validate. A structural
// failure aborts this document only and still yields a report, per the
// error taxonomy: the batch never dies for one bad record.
func checkStructure(doc *model.Document) error {
	if doc.DocumentID == "" {
		return fmt.Errorf("missing document_id")
	}
	if len(doc.Periods) == 0 {
		return fmt.Errorf("document has no periods")
	}
	for _, p := range doc.Periods {
		seen := make(map[string]bool, len(p.Items))
		for _, item := range p.Items {
			if item.ItemNo == "" {
				return fmt.Errorf("period %d: line item without item_no", p.PeriodNumber)
			}
			if seen[item.ItemNo] {
				return fmt.Errorf("period %d: duplicate item_no %s", p.PeriodNumber, item.ItemNo)
			}
			seen[item.ItemNo] = true
		}
	}
	return nil
}

// ValidateDocument runs one document against one pinned rule snapshot
func (p *Pipeline) ValidateDocument(ctx context.Context, doc *model.Document) *model.Report {
	// Pin the snapshot before anything executes: a promotion landing
	// mid-run must not change what this run observes.
	snap := p.registry.Snapshot()

	report := &model.Report{
		DocumentID:   doc.DocumentID,
		RuleSnapshot: snap.Version,
	}

	if err := checkStructure(doc); err != nil {
		report.Status = model.StatusFail
		report.Reason = fmt.Sprintf("structural error: %v", err)
		report.Confidence = p.scorer.Aggregate(doc.ExtractionConfidence, doc.MappingConfidence, nil)
		report.Confidence.Overall = 0
		report.Confidence.Band = "low"
		return report
	}

	findings := p.engine.Execute(ctx, doc, snap)
	report.Findings = findings
	report.Status = model.StatusOf(findings)
	report.Confidence = p.scorer.Aggregate(doc.ExtractionConfidence, doc.MappingConfidence, findings)
	report.Trend = accum.Trend(doc.Periods, doc.Contract)
	return report
}

// ValidateFile decodes a document record from a JSON file and validates
// it. Decode failures are structural: the report says fail and why.
func (p *Pipeline) ValidateFile(ctx context.Context, path string) (*model.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	var doc model.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return &model.Report{
			DocumentID:   path,
			Status:       model.StatusFail,
			Reason:       fmt.Sprintf("structural error: undecodable record: %v", err),
			RuleSnapshot: p.registry.Version(),
			Confidence:   model.Confidence{Band: "low"},
		}, nil
	}

	return p.ValidateDocument(ctx, &doc), nil
}

// RenderReport writes the report to the requested outputs and prints the
// stdout summary
func (p *Pipeline) RenderReport(report *model.Report, jsonPath, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	p.renderer.RenderSummary(report)
	return nil
}
