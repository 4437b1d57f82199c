// internal/llmclient/gemini_client_test.go
package llmclient

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/restyle-dev/restyle-cli/api/schemas"
	"github.com/restyle-dev/restyle-cli/internal/config"
)

func testModelConfig(endpoint string) config.LLMModelConfig {
	return config.LLMModelConfig{
		Model:          "gemini-2.5-flash",
		APIKey:         "test-key",
		Endpoint:       endpoint,
		APITimeout:     5 * time.Second,
		MaxTokens:      1024,
		RequestsPerSec: 100,
		Burst:          10,
	}
}

func successBody(text string) []byte {
	payload := GeminiResponsePayload{}
	payload.Candidates = []struct {
		Content      GeminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	}{
		{Content: GeminiContent{Parts: []GeminiPart{{Text: text}}}, FinishReason: "STOP"},
	}
	payload.UsageMetadata.PromptTokenCount = 1000
	payload.UsageMetadata.CandidatesTokenCount = 500
	payload.UsageMetadata.TotalTokenCount = 1500
	body, _ := json.Marshal(payload)
	return body
}

func TestGeminiClient_Generate_Success(t *testing.T) {
	var captured GeminiRequestPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write(successBody(`{"looksGood":true}`))
	}))
	defer server.Close()

	tracker := newFakeTracker()
	client, err := NewGeminiClient(testModelConfig(server.URL), tracker, zaptest.NewLogger(t))
	require.NoError(t, err)

	resp, err := client.Generate(context.Background(), schemas.GenerationRequest{
		SystemPrompt: "You are a design reviewer.",
		UserPrompt:   "Inspect this.",
		Endpoint:     "inspect",
		Options:      schemas.GenerationOptions{ForceJSONFormat: true},
	})

	require.NoError(t, err)
	assert.Equal(t, `{"looksGood":true}`, resp)
	require.Len(t, captured.Contents, 1)
	assert.Equal(t, "Inspect this.", captured.Contents[0].Parts[0].Text)
	assert.Equal(t, "You are a design reviewer.", captured.SystemInstruction.Parts[0].Text)
	assert.Equal(t, "application/json", captured.GenerationConfig.ResponseMimeType)

	events := tracker.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "inspect", events[0].Endpoint)
	assert.Equal(t, "gemini-2.5-flash", events[0].Model)
	assert.Equal(t, 1000, events[0].InputTokens)
	assert.Equal(t, 500, events[0].OutputTokens)
}

func TestGeminiClient_Generate_InlineImages(t *testing.T) {
	var captured GeminiRequestPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write(successBody("ok response text"))
	}))
	defer server.Close()

	client, err := NewGeminiClient(testModelConfig(server.URL), nil, zaptest.NewLogger(t))
	require.NoError(t, err)

	imgData := []byte{0x89, 0x50, 0x4e, 0x47}
	_, err = client.Generate(context.Background(), schemas.GenerationRequest{
		UserPrompt: "What is wrong with this screenshot?",
		Images:     []schemas.ImagePart{{Data: imgData, MimeType: "image/png"}},
	})
	require.NoError(t, err)

	require.Len(t, captured.Contents[0].Parts, 2)
	inline := captured.Contents[0].Parts[1].InlineData
	require.NotNil(t, inline)
	assert.Equal(t, "image/png", inline.MimeType)
	assert.Equal(t, base64.StdEncoding.EncodeToString(imgData), inline.Data)
}

func TestGeminiClient_Generate_RetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write(successBody("recovered"))
	}))
	defer server.Close()

	client, err := NewGeminiClient(testModelConfig(server.URL), nil, zaptest.NewLogger(t))
	require.NoError(t, err)

	resp, err := client.Generate(context.Background(), schemas.GenerationRequest{UserPrompt: "hi"})

	require.NoError(t, err)
	assert.Equal(t, "recovered", resp)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGeminiClient_Generate_PermanentErrorNoRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client, err := NewGeminiClient(testModelConfig(server.URL), nil, zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), schemas.GenerationRequest{UserPrompt: "hi"})

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "4xx must not be retried")
}

func TestGeminiClient_Generate_SafetyBlockIsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"content":{"parts":[]},"finishReason":"SAFETY"}]}`))
	}))
	defer server.Close()

	client, err := NewGeminiClient(testModelConfig(server.URL), nil, zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), schemas.GenerationRequest{UserPrompt: "hi"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "SAFETY")
}

func TestNewGeminiClient_RequiresAPIKey(t *testing.T) {
	cfg := testModelConfig("")
	cfg.APIKey = ""

	_, err := NewGeminiClient(cfg, nil, zaptest.NewLogger(t))

	assert.Error(t, err)
}
