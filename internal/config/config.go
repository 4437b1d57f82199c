// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// ProviderGoogle is the only wired LLM provider. The factory rejects anything
// else so misconfiguration fails at startup instead of on the first call.
const ProviderGoogle = "google"

// Config holds the entire application configuration.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	LLM      LLMConfig      `mapstructure:"llm" yaml:"llm"`
	Heal     HealConfig     `mapstructure:"heal" yaml:"heal"`
	Ledger   LedgerConfig   `mapstructure:"ledger" yaml:"ledger"`
	Analyzer AnalyzerConfig `mapstructure:"analyzer" yaml:"analyzer"`
	Capture  CaptureConfig  `mapstructure:"capture" yaml:"capture"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// ModelPricing is the per-1K-token price sheet for one model.
type ModelPricing struct {
	InputPer1K  float64 `mapstructure:"input_per_1k" yaml:"input_per_1k"`
	OutputPer1K float64 `mapstructure:"output_per_1k" yaml:"output_per_1k"`
}

// LLMModelConfig configures one text/vision model endpoint.
type LLMModelConfig struct {
	Model          string            `mapstructure:"model" yaml:"model"`
	APIKey         string            `mapstructure:"api_key" yaml:"-"`
	Endpoint       string            `mapstructure:"endpoint" yaml:"endpoint"`
	APITimeout     time.Duration     `mapstructure:"api_timeout" yaml:"api_timeout"`
	Temperature    float32           `mapstructure:"temperature" yaml:"temperature"`
	TopP           float32           `mapstructure:"top_p" yaml:"top_p"`
	TopK           int               `mapstructure:"top_k" yaml:"top_k"`
	MaxTokens      int               `mapstructure:"max_tokens" yaml:"max_tokens"`
	RequestsPerSec float64           `mapstructure:"requests_per_sec" yaml:"requests_per_sec"`
	Burst          int               `mapstructure:"burst" yaml:"burst"`
	SafetyFilters  map[string]string `mapstructure:"safety_filters" yaml:"safety_filters"`
	Pricing        ModelPricing      `mapstructure:"pricing" yaml:"pricing"`
}

// ImageModelConfig configures the asset-generation model.
type ImageModelConfig struct {
	Model      string        `mapstructure:"model" yaml:"model"`
	APIKey     string        `mapstructure:"api_key" yaml:"-"`
	APITimeout time.Duration `mapstructure:"api_timeout" yaml:"api_timeout"`
	PerImage   float64       `mapstructure:"per_image" yaml:"per_image"`
}

// LLMConfig groups the model tiers.
type LLMConfig struct {
	Provider string           `mapstructure:"provider" yaml:"provider"`
	Fast     LLMModelConfig   `mapstructure:"fast" yaml:"fast"`
	Powerful LLMModelConfig   `mapstructure:"powerful" yaml:"powerful"`
	Image    ImageModelConfig `mapstructure:"image" yaml:"image"`
}

// HealConfig holds the orchestrator defaults. CLI flags override per run.
type HealConfig struct {
	MaxIterations int    `mapstructure:"max_iterations" yaml:"max_iterations"`
	Verify        bool   `mapstructure:"verify" yaml:"verify"`
	AutoApply     bool   `mapstructure:"auto_apply" yaml:"auto_apply"`
	PreviewSuffix string `mapstructure:"preview_suffix" yaml:"preview_suffix"`
}

// LedgerConfig locates the durable usage record and sets the session budget.
type LedgerConfig struct {
	Path   string  `mapstructure:"path" yaml:"path"`
	Budget float64 `mapstructure:"budget" yaml:"budget"`
}

// AnalyzerConfig carries the heuristic thresholds. Defaults mirror the
// analyzer's documented behavior; they are configurable so a design system
// with unusual conventions can relax individual checks.
type AnalyzerConfig struct {
	MinVerticalPaddingPx float64 `mapstructure:"min_vertical_padding_px" yaml:"min_vertical_padding_px"`
	MinFontSizePx        float64 `mapstructure:"min_font_size_px" yaml:"min_font_size_px"`
	// ContrastFloor is deliberately below the WCAG AA 4.5:1 text threshold:
	// non-text chrome gets leniency.
	ContrastFloor      float64 `mapstructure:"contrast_floor" yaml:"contrast_floor"`
	SiblingWidthRatio  float64 `mapstructure:"sibling_width_ratio" yaml:"sibling_width_ratio"`
	SpacingTolerancePx float64 `mapstructure:"spacing_tolerance_px" yaml:"spacing_tolerance_px"`
	SiblingSampleLimit int     `mapstructure:"sibling_sample_limit" yaml:"sibling_sample_limit"`
}

// CaptureConfig controls the optional chromedp screenshot capturer.
type CaptureConfig struct {
	Headless       bool          `mapstructure:"headless" yaml:"headless"`
	Timeout        time.Duration `mapstructure:"timeout" yaml:"timeout"`
	ViewportWidth  int           `mapstructure:"viewport_width" yaml:"viewport_width"`
	ViewportHeight int           `mapstructure:"viewport_height" yaml:"viewport_height"`
}

// NewDefaultConfig creates a configuration struct populated with defaults.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "restyle")
	v.SetDefault("logger.log_file", "restyle.log")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)

	// -- LLM --
	v.SetDefault("llm.provider", ProviderGoogle)
	v.SetDefault("llm.fast.model", "gemini-2.5-flash")
	v.SetDefault("llm.fast.api_timeout", "60s")
	v.SetDefault("llm.fast.temperature", 0.2)
	v.SetDefault("llm.fast.max_tokens", 8192)
	v.SetDefault("llm.fast.requests_per_sec", 1.0)
	v.SetDefault("llm.fast.burst", 1)
	v.SetDefault("llm.fast.pricing.input_per_1k", 0.00025)
	v.SetDefault("llm.fast.pricing.output_per_1k", 0.0005)
	v.SetDefault("llm.powerful.model", "gemini-2.5-pro")
	v.SetDefault("llm.powerful.api_timeout", "120s")
	v.SetDefault("llm.powerful.temperature", 0.1)
	v.SetDefault("llm.powerful.max_tokens", 32768)
	v.SetDefault("llm.powerful.requests_per_sec", 0.5)
	v.SetDefault("llm.powerful.burst", 1)
	v.SetDefault("llm.powerful.pricing.input_per_1k", 0.00125)
	v.SetDefault("llm.powerful.pricing.output_per_1k", 0.005)
	v.SetDefault("llm.image.model", "gemini-2.5-flash-image")
	v.SetDefault("llm.image.api_timeout", "120s")
	v.SetDefault("llm.image.per_image", 0.04)

	// -- Heal --
	v.SetDefault("heal.max_iterations", 2)
	v.SetDefault("heal.verify", true)
	v.SetDefault("heal.auto_apply", false)
	v.SetDefault("heal.preview_suffix", ".preview")

	// -- Ledger --
	v.SetDefault("ledger.path", "~/.restyle/usage.json")
	v.SetDefault("ledger.budget", 5.0)

	// -- Analyzer --
	v.SetDefault("analyzer.min_vertical_padding_px", 8.0)
	v.SetDefault("analyzer.min_font_size_px", 14.0)
	v.SetDefault("analyzer.contrast_floor", 3.0)
	v.SetDefault("analyzer.sibling_width_ratio", 0.9)
	v.SetDefault("analyzer.spacing_tolerance_px", 8.0)
	v.SetDefault("analyzer.sibling_sample_limit", 5)

	// -- Capture --
	v.SetDefault("capture.headless", true)
	v.SetDefault("capture.timeout", "45s")
	v.SetDefault("capture.viewport_width", 1280)
	v.SetDefault("capture.viewport_height", 800)
}

// NewConfigFromViper creates a configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Bind environment variables for sensitive data.
	_ = v.BindEnv("llm.fast.api_key", "RESTYLE_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("llm.powerful.api_key", "RESTYLE_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("llm.image.api_key", "RESTYLE_API_KEY", "GEMINI_API_KEY")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Viper's multi-key BindEnv does not always survive Unmarshal on nested
	// structs; load from the environment directly as a fallback.
	if cfg.LLM.Fast.APIKey == "" {
		cfg.LLM.Fast.APIKey = apiKeyFromEnv()
	}
	if cfg.LLM.Powerful.APIKey == "" {
		cfg.LLM.Powerful.APIKey = apiKeyFromEnv()
	}
	if cfg.LLM.Image.APIKey == "" {
		cfg.LLM.Image.APIKey = apiKeyFromEnv()
	}

	if expanded, err := homedir.Expand(cfg.Ledger.Path); err == nil {
		cfg.Ledger.Path = expanded
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func apiKeyFromEnv() string {
	if k := os.Getenv("RESTYLE_API_KEY"); k != "" {
		return k
	}
	return os.Getenv("GEMINI_API_KEY")
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.LLM.Provider != ProviderGoogle {
		return fmt.Errorf("unsupported llm.provider %q (supported: %s)", c.LLM.Provider, ProviderGoogle)
	}
	if c.Heal.MaxIterations <= 0 {
		return fmt.Errorf("heal.max_iterations must be a positive integer")
	}
	if c.Ledger.Budget < 0 {
		return fmt.Errorf("ledger.budget must not be negative")
	}
	if err := c.Analyzer.Validate(); err != nil {
		return fmt.Errorf("analyzer configuration invalid: %w", err)
	}
	return nil
}

// Validate checks the analyzer thresholds.
func (a *AnalyzerConfig) Validate() error {
	if a.ContrastFloor <= 1.0 {
		return fmt.Errorf("contrast_floor must be greater than 1.0")
	}
	if a.SiblingWidthRatio <= 0 || a.SiblingWidthRatio > 1.0 {
		return fmt.Errorf("sibling_width_ratio must be in (0, 1]")
	}
	if a.SiblingSampleLimit <= 0 {
		return fmt.Errorf("sibling_sample_limit must be a positive integer")
	}
	return nil
}
