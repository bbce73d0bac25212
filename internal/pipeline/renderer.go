package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/cfliu/paycheck/internal/model"
)

// Renderer writes validation reports as JSON, Markdown and a stdout summary
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the full report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// RenderMarkdown writes a human-readable report
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Payment Validation Report\n\n")
	fmt.Fprintf(&b, "**Document:** %s\n\n", report.DocumentID)
	fmt.Fprintf(&b, "**Status:** %s  \n", statusLabel(report.Status))
	fmt.Fprintf(&b, "**Confidence:** %.2f (%s)  \n", report.Confidence.Overall, report.Confidence.Band)
	fmt.Fprintf(&b, "**Rule snapshot:** v%d\n\n", report.RuleSnapshot)

	if report.Reason != "" {
		fmt.Fprintf(&b, "> %s\n\n", report.Reason)
	}

	if len(report.Findings) > 0 {
		fmt.Fprintf(&b, "## Findings\n\n")
		fmt.Fprintf(&b, "| Rule | Severity | Scope | Message |\n")
		fmt.Fprintf(&b, "|------|----------|-------|--------|\n")
		for _, f := range report.Findings {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", f.RuleID, f.Severity, f.Scope, escapePipes(f.Message))
		}
		fmt.Fprintf(&b, "\n")

		if deltas := comparisonRows(report.Findings); len(deltas) > 0 {
			fmt.Fprintf(&b, "## Computed vs Declared\n\n")
			fmt.Fprintf(&b, "| Rule | Scope | Computed | Declared | Delta |\n")
			fmt.Fprintf(&b, "|------|-------|---------:|---------:|------:|\n")
			for _, row := range deltas {
				fmt.Fprintf(&b, "%s", row)
			}
			fmt.Fprintf(&b, "\n")
		}
	}

	if len(report.Confidence.Components) > 0 {
		fmt.Fprintf(&b, "## Confidence Breakdown\n\n")
		fmt.Fprintf(&b, "| Component | Value | Weight |\n")
		fmt.Fprintf(&b, "|-----------|------:|-------:|\n")
		for _, name := range []string{"extraction", "mapping", "validation"} {
			fmt.Fprintf(&b, "| %s | %.3f | %.2f |\n", name, report.Confidence.Components[name], report.Confidence.Weights[name])
		}
		fmt.Fprintf(&b, "\n")
	}

	if report.Trend != nil {
		fmt.Fprintf(&b, "## Trend\n\n")
		fmt.Fprintf(&b, "- Periods observed: %d\n", report.Trend.Periods)
		fmt.Fprintf(&b, "- Average period amount: %.2f\n", report.Trend.AvgPeriodAmount)
		if report.Trend.AvgProgressStep > 0 {
			fmt.Fprintf(&b, "- Average progress per period: %.2f%%\n", report.Trend.AvgProgressStep)
		}
		fmt.Fprintf(&b, "\n")
	}

	if r.includeFooter {
		fmt.Fprintf(&b, "---\n\nGenerated by paycheck\n")
	}

	return os.WriteFile(path, []byte(b.String()), 0644)
}

// RenderSummary prints a short human summary to stdout
func (r *Renderer) RenderSummary(report *model.Report) {
	fmt.Printf("\n")
	fmt.Printf("Document:   %s\n", report.DocumentID)
	fmt.Printf("Status:     %s\n", statusLabel(report.Status))
	fmt.Printf("Confidence: %.2f (%s)\n", report.Confidence.Overall, report.Confidence.Band)
	if report.Reason != "" {
		fmt.Printf("Reason:     %s\n", report.Reason)
	}

	fails, warns := 0, 0
	for _, f := range report.Findings {
		switch f.Severity {
		case model.SeverityFail:
			fails++
		case model.SeverityWarning:
			warns++
		}
	}
	fmt.Printf("Findings:   %d total, %d fail, %d warning\n", len(report.Findings), fails, warns)

	for _, f := range report.Findings {
		if f.Severity == model.SeverityPass {
			continue
		}
		fmt.Printf("  %s %s [%s]: %s\n", severityMark(f.Severity), f.RuleID, f.Scope, f.Message)
	}
	fmt.Printf("\n")
}

func comparisonRows(findings []model.Finding) []string {
	var rows []string
	for _, f := range findings {
		if f.Computed == nil || f.Declared == nil {
			continue
		}
		delta := 0.0
		if f.Delta != nil {
			delta = *f.Delta
		}
		rows = append(rows, fmt.Sprintf("| %s | %s | %.2f | %.2f | %.2f |\n",
			f.RuleID, f.Scope, *f.Computed, *f.Declared, delta))
	}
	return rows
}

func statusLabel(s model.Status) string {
	switch s {
	case model.StatusPass:
		return "PASS"
	case model.StatusReview:
		return "NEEDS REVIEW"
	case model.StatusFail:
		return "FAIL"
	default:
		return string(s)
	}
}

func severityMark(s model.Severity) string {
	switch s {
	case model.SeverityFail:
		return "✗"
	case model.SeverityWarning:
		return "⚠"
	default:
		return "✓"
	}
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
