package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/cfliu/paycheck/internal/learn"
	"github.com/cfliu/paycheck/internal/model"
	"github.com/cfliu/paycheck/internal/rules"
	"github.com/spf13/cobra"
)

// feedbackCmd represents the feedback command
var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Process reviewer feedback into rule adjustments",
	Long: `Feedback turns reviewer corrections into tolerance adjustments.

Records where a rule flagged a value the reviewer accepted widen the
tolerance; records where a rule passed a value the reviewer rejected
tighten it. Adjustments corroborated by enough records are promoted as
new active rule versions; the rest stay drafts awaiting activation.

The input file is a JSON array of feedback records:
  [{"document_id": "EST-2025-104-03",
    "rule_kind": "horizontal-calc",
    "field": "amount",
    "system_value": 15000000,
    "human_value": 15000001.2,
    "kind": "rule-false-positive"}]

Example:
  paycheck feedback stats feedback.json
  paycheck feedback propose feedback.json
  paycheck feedback apply feedback.json --rules registry.yaml
  paycheck feedback pending --rules registry.yaml`,
}

var feedbackStatsCmd = &cobra.Command{
	Use:   "stats <feedback.json>",
	Short: "Summarize feedback records by kind",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loop, _, err := loadFeedback(args[0])
		if err != nil {
			return err
		}

		stats := loop.Stats()
		fmt.Printf("Total records: %d\n", stats.Total)

		kinds := make([]string, 0, len(stats.ByKind))
		for k := range stats.ByKind {
			kinds = append(kinds, string(k))
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Printf("  %-22s %d\n", k, stats.ByKind[model.FeedbackKind(k)])
		}
		return nil
	},
}

var feedbackProposeCmd = &cobra.Command{
	Use:   "propose <feedback.json>",
	Short: "Show the adjustments the feedback would produce, without applying them",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loop, skipped, err := loadFeedback(args[0])
		if err != nil {
			return err
		}
		if skipped > 0 {
			fmt.Fprintf(os.Stderr, "Skipped %d non-rule record(s)\n", skipped)
		}

		proposals := loop.ProposeAdjustments()
		printProposals(proposals)
		return nil
	},
}

var feedbackApplyCmd = &cobra.Command{
	Use:   "apply <feedback.json>",
	Short: "Apply feedback adjustments to the rule registry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loop, skipped, err := loadFeedback(args[0])
		if err != nil {
			return err
		}
		if skipped > 0 {
			fmt.Fprintf(os.Stderr, "Skipped %d non-rule record(s)\n", skipped)
		}

		proposals := loop.ProposeAdjustments()
		if len(proposals) == 0 {
			fmt.Println("No adjustments to apply")
			return nil
		}
		printProposals(proposals)

		applied, err := loop.Apply(proposals)
		if err != nil {
			return fmt.Errorf("apply adjustments: %w", err)
		}

		for _, rule := range applied {
			fmt.Printf("✓ %s v%d (%s)\n", rule.ID, rule.Version, rule.State)
		}

		return saveRegistry(feedbackRegistry)
	},
}

var feedbackPendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List draft rule versions awaiting activation",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := model.DefaultConfig()
		registry, err := loadRegistry(cfg)
		if err != nil {
			return err
		}

		drafts := registry.Drafts()
		if len(drafts) == 0 {
			fmt.Println("No pending drafts")
			return nil
		}

		fmt.Printf("%-35s %4s %s\n", "ID", "VER", "PARAMS")
		for _, r := range drafts {
			fmt.Printf("%-35s %4d %s\n", r.ID, r.Version, formatParams(r.Params))
		}
		fmt.Printf("\nActivate with: paycheck rules activate <rule-id>\n")
		return nil
	},
}

// feedbackRegistry holds the registry the current feedback command is
// operating on, so apply can persist it afterwards
var feedbackRegistry *rules.Registry

func init() {
	rootCmd.AddCommand(feedbackCmd)
	feedbackCmd.AddCommand(feedbackStatsCmd)
	feedbackCmd.AddCommand(feedbackProposeCmd)
	feedbackCmd.AddCommand(feedbackApplyCmd)
	feedbackCmd.AddCommand(feedbackPendingCmd)

	feedbackCmd.PersistentFlags().StringVar(&rulesFile, "rules", "", "rule registry file (default: built-in rules)")
}

// loadFeedback builds a learning loop over the registry and ingests the
// records from a JSON file. Returns the loop and how many records were
// skipped as non-rule feedback.
func loadFeedback(path string) (*learn.Loop, int, error) {
	cfg := model.DefaultConfig()
	registry, err := loadRegistry(cfg)
	if err != nil {
		return nil, 0, err
	}
	feedbackRegistry = registry

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("read feedback: %w", err)
	}

	var records []model.FeedbackRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, 0, fmt.Errorf("decode feedback: %w", err)
	}

	loop := learn.NewLoop(registry, cfg.Learning)
	skipped := 0
	for _, rec := range records {
		if err := loop.Ingest(rec); err != nil {
			skipped++
		}
	}

	return loop, skipped, nil
}

func printProposals(proposals []learn.Proposal) {
	if len(proposals) == 0 {
		fmt.Println("No adjustment proposals")
		return
	}

	fmt.Printf("%-35s %-10s %-8s %10s %10s %7s %s\n",
		"RULE", "FIELD", "DIR", "CURRENT", "PROPOSED", "SAMPLES", "PROMOTE")
	for _, p := range proposals {
		promote := "draft"
		if p.Corroborated {
			promote = "yes"
		}
		fmt.Printf("%-35s %-10s %-8s %10.3f %10.3f %7d %s\n",
			p.RuleID, p.Field, p.Direction, p.CurrentValue, p.ProposedValue, p.SampleCount, promote)
	}
}
