package model

// Config is the complete runtime configuration. Every check threshold the
// engine applies is a configuration surface; the defaults below are the
// documented starting points, not hard-coded behavior.
type Config struct {
	Tolerance   ToleranceConfig   `yaml:"tolerance" mapstructure:"tolerance"`
	Accum       AccumConfig       `yaml:"accumulation" mapstructure:"accumulation"`
	Learning    LearningConfig    `yaml:"learning" mapstructure:"learning"`
	Confidence  ConfidenceConfig  `yaml:"confidence" mapstructure:"confidence"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// ToleranceConfig holds the numeric comparison slack
type ToleranceConfig struct {
	Amount   float64 `yaml:"amount" mapstructure:"amount"`     // Minor currency units
	Quantity float64 `yaml:"quantity" mapstructure:"quantity"` // Quantity fields
}

// AccumConfig holds accumulation and plausibility thresholds
type AccumConfig struct {
	NearCeilingRatio float64 `yaml:"near_ceiling_ratio" mapstructure:"near_ceiling_ratio"` // Warn above this fraction of the ceiling
	MaxProgressJump  float64 `yaml:"max_progress_jump" mapstructure:"max_progress_jump"`   // Percentage points per period
}

// LearningConfig bounds the feedback loop so learned adjustments can never
// drift a rule into always-pass or always-fail territory
type LearningConfig struct {
	PromotionThreshold int     `yaml:"promotion_threshold" mapstructure:"promotion_threshold"` // Corroborating records before auto-promotion
	MaxTolerance       float64 `yaml:"max_tolerance" mapstructure:"max_tolerance"`
	MinTolerance       float64 `yaml:"min_tolerance" mapstructure:"min_tolerance"`
}

// ConfidenceConfig holds the aggregation weights
type ConfidenceConfig struct {
	ExtractionWeight float64 `yaml:"extraction_weight" mapstructure:"extraction_weight"`
	MappingWeight    float64 `yaml:"mapping_weight" mapstructure:"mapping_weight"`
	ValidationWeight float64 `yaml:"validation_weight" mapstructure:"validation_weight"`
}

// LLMConfig configures the payment-condition parsing collaborator
type LLMConfig struct {
	Provider          string  `yaml:"provider" mapstructure:"provider"` // "openai", "ollama", "" to disable
	Model             string  `yaml:"model" mapstructure:"model"`
	APIKey            string  `yaml:"-" mapstructure:"api_key"` // Never written to config files
	BaseURL           string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout           int     `yaml:"timeout" mapstructure:"timeout"` // Seconds
	MaxTokens         int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// CacheConfig configures parsed-condition caching
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled" mapstructure:"enabled"`
	Dir        string `yaml:"dir,omitempty" mapstructure:"dir"`       // Disk cache location, empty for memory-only
	TTLMinutes int    `yaml:"ttl_minutes" mapstructure:"ttl_minutes"`
}

// ConcurrencyConfig bounds batch processing
type ConcurrencyConfig struct {
	BatchWorkers int `yaml:"batch_workers" mapstructure:"batch_workers"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// DefaultConfig returns the documented defaults
func DefaultConfig() *Config {
	return &Config{
		Tolerance: ToleranceConfig{
			Amount:   0.5,
			Quantity: 0.01,
		},
		Accum: AccumConfig{
			NearCeilingRatio: 0.9,
			MaxProgressJump:  40,
		},
		Learning: LearningConfig{
			PromotionThreshold: 5,
			MaxTolerance:       5.0, // 10x the default amount tolerance
			MinTolerance:       0.01,
		},
		Confidence: ConfidenceConfig{
			ExtractionWeight: 0.3,
			MappingWeight:    0.4,
			ValidationWeight: 0.3,
		},
		LLM: LLMConfig{
			Provider:          "", // Disabled by default; the rule parser is the fallback
			Timeout:           30,
			MaxTokens:         500,
			RequestsPerSecond: 2,
			Burst:             5,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLMinutes: 24 * 60,
		},
		Concurrency: ConcurrencyConfig{
			BatchWorkers: 4,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}
