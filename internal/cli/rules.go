package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/cfliu/paycheck/internal/model"
	"github.com/cfliu/paycheck/internal/rules"
	"github.com/spf13/cobra"
)

// rulesCmd represents the rules command
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and manage the versioned rule registry",
	Long: `Manage the rule registry.

Rules are versioned and append-only: adjustments create new versions,
old versions remain queryable, and disabling a rule keeps its history.

Example:
  paycheck rules list
  paycheck rules list --rules registry.yaml --all
  paycheck rules export registry.yaml
  paycheck rules disable builtin.progress-plausibility --rules registry.yaml`,
}

var showAllVersions bool

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := model.DefaultConfig()
		registry, err := loadRegistry(cfg)
		if err != nil {
			return err
		}

		var ruleSet []model.Rule
		if showAllVersions {
			ruleSet = registry.All()
		} else {
			snap := registry.Snapshot()
			ruleSet = snap.Active
		}
		sort.Slice(ruleSet, func(i, j int) bool {
			if ruleSet[i].ID != ruleSet[j].ID {
				return ruleSet[i].ID < ruleSet[j].ID
			}
			return ruleSet[i].Version < ruleSet[j].Version
		})

		fmt.Printf("Registry version: %d\n\n", registry.Version())
		fmt.Printf("%-35s %-24s %4s %-10s %-8s %s\n", "ID", "KIND", "VER", "STATE", "SOURCE", "PARAMS")
		for _, r := range ruleSet {
			fmt.Printf("%-35s %-24s %4d %-10s %-8s %s\n",
				r.ID, r.Kind, r.Version, r.State, r.Provenance, formatParams(r.Params))
		}

		if drafts := registry.Drafts(); len(drafts) > 0 && !showAllVersions {
			fmt.Printf("\n%d draft(s) pending activation (use --all to list)\n", len(drafts))
		}
		return nil
	},
}

var rulesExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export the registry to a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := model.DefaultConfig()
		registry, err := loadRegistry(cfg)
		if err != nil {
			return err
		}
		if err := registry.Export(args[0]); err != nil {
			return fmt.Errorf("export rules: %w", err)
		}
		fmt.Printf("✓ Exported %d rule version(s) to %s\n", len(registry.All()), args[0])
		return nil
	},
}

var rulesImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import rules from a YAML file into the registry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := rules.NewRegistry()
		if err := registry.Import(args[0]); err != nil {
			return fmt.Errorf("import rules: %w", err)
		}
		if err := saveRegistry(registry); err != nil {
			return err
		}
		fmt.Printf("✓ Imported %d rule version(s), registry version %d\n", len(registry.All()), registry.Version())
		return nil
	},
}

var rulesDisableCmd = &cobra.Command{
	Use:   "disable <rule-id>",
	Short: "Disable a rule without deleting its history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := model.DefaultConfig()
		registry, err := loadRegistry(cfg)
		if err != nil {
			return err
		}
		if err := registry.Disable(args[0]); err != nil {
			return fmt.Errorf("disable rule: %w", err)
		}
		if err := saveRegistry(registry); err != nil {
			return err
		}
		fmt.Printf("✓ Disabled %s (history preserved)\n", args[0])
		return nil
	},
}

var rulesActivateCmd = &cobra.Command{
	Use:   "activate <rule-id>",
	Short: "Activate a pending draft rule version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := model.DefaultConfig()
		registry, err := loadRegistry(cfg)
		if err != nil {
			return err
		}
		rule, err := registry.ActivateDraft(args[0])
		if err != nil {
			return fmt.Errorf("activate draft: %w", err)
		}
		if err := saveRegistry(registry); err != nil {
			return err
		}
		fmt.Printf("✓ Activated %s v%d\n", rule.ID, rule.Version)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesExportCmd)
	rulesCmd.AddCommand(rulesImportCmd)
	rulesCmd.AddCommand(rulesDisableCmd)
	rulesCmd.AddCommand(rulesActivateCmd)

	rulesCmd.PersistentFlags().StringVar(&rulesFile, "rules", "", "rule registry file (default: built-in rules)")
	rulesListCmd.Flags().BoolVar(&showAllVersions, "all", false, "include every version and state, not just the active snapshot")
}

// loadRegistry loads the rule registry from the --rules file when given,
// otherwise seeds the built-in rules
func loadRegistry(cfg *model.Config) (*rules.Registry, error) {
	if rulesFile == "" {
		return rules.NewSeededRegistry(cfg), nil
	}

	if _, err := os.Stat(rulesFile); os.IsNotExist(err) {
		// First run against a fresh registry file: seed the built-ins
		return rules.NewSeededRegistry(cfg), nil
	}

	registry := rules.NewRegistry()
	if err := registry.Import(rulesFile); err != nil {
		return nil, fmt.Errorf("load rules from %s: %w", rulesFile, err)
	}
	return registry, nil
}

// saveRegistry persists the registry back to the --rules file, if one
// was given
func saveRegistry(registry *rules.Registry) error {
	if rulesFile == "" {
		fmt.Fprintf(os.Stderr, "Warning: no --rules file given, changes are not persisted\n")
		return nil
	}
	if err := registry.Export(rulesFile); err != nil {
		return fmt.Errorf("save rules to %s: %w", rulesFile, err)
	}
	return nil
}

func formatParams(params map[string]float64) string {
	if len(params) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%g", k, params[k]))
	}
	return strings.Join(parts, " ")
}
