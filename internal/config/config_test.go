// File: internal/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -- Constructor and Defaults Tests --

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	// Verify a few key defaults to ensure the mechanism works.
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, ProviderGoogle, cfg.LLM.Provider)
	assert.Equal(t, "gemini-2.5-pro", cfg.LLM.Powerful.Model)
	assert.Equal(t, 120*time.Second, cfg.LLM.Powerful.APITimeout)
	assert.Equal(t, 0.00125, cfg.LLM.Powerful.Pricing.InputPer1K)
	assert.Equal(t, 0.04, cfg.LLM.Image.PerImage)
	assert.Equal(t, 2, cfg.Heal.MaxIterations)
	assert.True(t, cfg.Heal.Verify)
	assert.False(t, cfg.Heal.AutoApply)
	assert.Equal(t, 5.0, cfg.Ledger.Budget)
	assert.Equal(t, 8.0, cfg.Analyzer.MinVerticalPaddingPx)
	assert.Equal(t, 3.0, cfg.Analyzer.ContrastFloor)
	assert.True(t, cfg.Capture.Headless)
	assert.Equal(t, 1280, cfg.Capture.ViewportWidth)
}

// -- Validation Logic Tests --

func TestConfigValidation(t *testing.T) {
	valid := NewDefaultConfig()
	assert.NoError(t, valid.Validate(), "a default config should validate")

	badProvider := *NewDefaultConfig()
	badProvider.LLM.Provider = "openai"
	err := badProvider.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported llm.provider")

	badIterations := *NewDefaultConfig()
	badIterations.Heal.MaxIterations = 0
	err = badIterations.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "heal.max_iterations")

	negativeBudget := *NewDefaultConfig()
	negativeBudget.Ledger.Budget = -1
	err = negativeBudget.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ledger.budget")

	badContrast := *NewDefaultConfig()
	badContrast.Analyzer.ContrastFloor = 1.0
	err = badContrast.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contrast_floor")

	badRatio := *NewDefaultConfig()
	badRatio.Analyzer.SiblingWidthRatio = 1.5
	err = badRatio.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sibling_width_ratio")
}

func TestAnalyzerValidation(t *testing.T) {
	a := AnalyzerConfig{
		MinVerticalPaddingPx: 8,
		MinFontSizePx:        14,
		ContrastFloor:        3.0,
		SiblingWidthRatio:    0.9,
		SpacingTolerancePx:   8,
		SiblingSampleLimit:   5,
	}
	assert.NoError(t, a.Validate())

	a.SiblingSampleLimit = 0
	assert.Error(t, a.Validate())
}

// -- Viper Loading Tests --

func TestNewConfigFromViper(t *testing.T) {
	t.Run("applies defaults and validates", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Fast.Model)
	})

	t.Run("rejects invalid override", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("ledger.budget", -2.0)

		_, err := NewConfigFromViper(v)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})

	t.Run("falls back to environment for API keys", func(t *testing.T) {
		t.Setenv("RESTYLE_API_KEY", "")
		t.Setenv("GEMINI_API_KEY", "env-key-123")

		v := viper.New()
		SetDefaults(v)

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Equal(t, "env-key-123", cfg.LLM.Fast.APIKey)
		assert.Equal(t, "env-key-123", cfg.LLM.Powerful.APIKey)
		assert.Equal(t, "env-key-123", cfg.LLM.Image.APIKey)
	})

	t.Run("expands home-relative ledger path", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.NotContains(t, cfg.Ledger.Path, "~")
	})
}
