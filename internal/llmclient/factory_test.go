// internal/llmclient/factory_test.go
package llmclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/restyle-dev/restyle-cli/internal/config"
)

func TestNewClient_GoogleProvider(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.LLM.Fast.APIKey = "test-key"
	cfg.LLM.Powerful.APIKey = "test-key"

	client, err := NewClient(cfg, nil, zaptest.NewLogger(t))

	require.NoError(t, err)
	assert.IsType(t, &LLMRouter{}, client)
}

func TestNewClient_UnsupportedProvider(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.LLM.Provider = "openai"

	_, err := NewClient(cfg, nil, zaptest.NewLogger(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai")
}

func TestNewClient_MissingAPIKey(t *testing.T) {
	cfg := config.NewDefaultConfig()

	_, err := NewClient(cfg, nil, zaptest.NewLogger(t))

	assert.Error(t, err)
}
