package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cfliu/paycheck/internal/model"
	"github.com/cfliu/paycheck/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	outJSON     string
	outMD       string
	timeout     time.Duration
	rulesFile   string
	noCache     bool
	noFooter    bool
	llmEnabled  bool
	llmProvider string
	llmModel    string
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <document.json>",
	Short: "Validate a single payment document and generate a report",
	Long: `Check validates a standardized estimation-payment record:
- Recompute every line item amount (quantity x unit price)
- Verify row sums against declared period totals
- Check cross-period accumulation and the contract ceiling
- Evaluate the natural-language payment condition
- Produce a transparent report with per-finding evidence

Example:
  paycheck check estimation.json
  paycheck check estimation.json --json report.json --md report.md
  paycheck check estimation.json --llm --llm-provider openai`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	// Output flags
	checkCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path")
	checkCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")

	checkCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall validation timeout")
	checkCmd.Flags().StringVar(&rulesFile, "rules", "", "rule registry file (default: built-in rules)")
	checkCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable condition parse cache")
	checkCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// LLM flags
	checkCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM payment-condition parsing")
	checkCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	checkCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

// buildConfig assembles the runtime configuration from flags and env
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	cfg.Cache.Enabled = !noCache
	cfg.Output.Verbose = verbose
	cfg.Output.IncludeFooter = !noFooter

	if llmEnabled {
		cfg.LLM.Provider = llmProvider
		cfg.LLM.Model = llmModel

		// Get API key from environment
		switch llmProvider {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
			if cfg.LLM.APIKey == "" {
				return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
			}
		case "ollama":
			// Ollama doesn't need an API key
			baseURL := os.Getenv("OLLAMA_BASE_URL")
			if baseURL != "" {
				cfg.LLM.BaseURL = baseURL
			}
		}
	}

	return cfg, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	docPath := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Checking: %s\n", docPath)
		fmt.Fprintf(os.Stderr, "Timeout: %v\n", timeout)
		fmt.Fprintln(os.Stderr)
	}

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	registry, err := loadRegistry(cfg)
	if err != nil {
		return err
	}

	p := pipeline.NewPipeline(cfg, registry)

	report, err := p.ValidateFile(ctx, docPath)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Executed rule snapshot v%d\n", report.RuleSnapshot)
		fmt.Fprintf(os.Stderr, "✓ %d findings, status: %s\n", len(report.Findings), report.Status)
		fmt.Fprintln(os.Stderr)
	}

	if err := p.RenderReport(report, outJSON, outMD, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}
