// internal/llmclient/router.go
package llmclient

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/restyle-dev/restyle-cli/api/schemas"
)

// LLMRouter implements the LLMClient interface and routes requests to the
// tier-appropriate client.
type LLMRouter struct {
	logger  *zap.Logger
	clients map[schemas.ModelTier]schemas.LLMClient
}

// NewLLMRouter creates a new router with the specified clients for each tier.
func NewLLMRouter(logger *zap.Logger, fastClient, powerfulClient schemas.LLMClient) (*LLMRouter, error) {
	if fastClient == nil || powerfulClient == nil {
		return nil, fmt.Errorf("both fast and powerful tier clients must be provided")
	}

	return &LLMRouter{
		logger: logger.Named("llm_router"),
		clients: map[schemas.ModelTier]schemas.LLMClient{
			schemas.TierFast:     fastClient,
			schemas.TierPowerful: powerfulClient,
		},
	}, nil
}

// Generate selects the appropriate client based on the request's Tier.
func (r *LLMRouter) Generate(ctx context.Context, req schemas.GenerationRequest) (string, error) {
	tier := req.Tier
	if tier == "" {
		tier = schemas.TierPowerful // Default to the powerful tier if unspecified.
	}

	client, ok := r.clients[tier]
	if !ok {
		return "", fmt.Errorf("no LLM client configured for tier: %s", tier)
	}

	r.logger.Debug("Routing LLM request",
		zap.String("tier", string(tier)),
		zap.String("endpoint", req.Endpoint),
	)
	return client.Generate(ctx, req)
}

// Close closes every underlying client, joining the errors.
func (r *LLMRouter) Close() error {
	var errs []error
	for tier, client := range r.clients {
		if err := client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s client: %w", tier, err))
		}
	}
	return errors.Join(errs...)
}
