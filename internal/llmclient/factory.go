// internal/llmclient/factory.go
package llmclient

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/restyle-dev/restyle-cli/api/schemas"
	"github.com/restyle-dev/restyle-cli/internal/config"
)

// NewClient is a factory function that creates the tiered text client based
// on the configuration.
func NewClient(cfg *config.Config, tracker schemas.UsageTracker, logger *zap.Logger) (schemas.LLMClient, error) {
	switch cfg.LLM.Provider {
	case config.ProviderGoogle:
		fast, err := NewGeminiClient(cfg.LLM.Fast, tracker, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create fast tier client: %w", err)
		}
		powerful, err := NewGeminiClient(cfg.LLM.Powerful, tracker, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create powerful tier client: %w", err)
		}
		return NewLLMRouter(logger, fast, powerful)
	default:
		return nil, fmt.Errorf("unknown or unsupported LLM provider configured: '%s'. Supported: [%s]", cfg.LLM.Provider, config.ProviderGoogle)
	}
}

// NewImageClient creates the asset-generation client for the configured
// provider.
func NewImageClient(ctx context.Context, cfg *config.Config, tracker schemas.UsageTracker, logger *zap.Logger) (schemas.ImageClient, error) {
	switch cfg.LLM.Provider {
	case config.ProviderGoogle:
		return NewGeminiImageClient(ctx, cfg.LLM.Image, tracker, logger)
	default:
		return nil, fmt.Errorf("unknown or unsupported LLM provider configured: '%s'. Supported: [%s]", cfg.LLM.Provider, config.ProviderGoogle)
	}
}
