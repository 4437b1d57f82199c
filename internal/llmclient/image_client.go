// internal/llmclient/image_client.go
package llmclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	genai "google.golang.org/genai"

	"github.com/restyle-dev/restyle-cli/api/schemas"
	"github.com/restyle-dev/restyle-cli/internal/config"
)

// ErrNoImageData indicates the model answered without any usable image part,
// inline or file-based.
var ErrNoImageData = errors.New("image model returned no image data")

// GeminiImageClient implements schemas.ImageClient on top of the official
// genai SDK. Image generation has no streaming or retry subtleties worth the
// raw HTTP treatment the text client gets; the SDK is the simpler fit here.
type GeminiImageClient struct {
	cli     *genai.Client
	model   string
	timeout time.Duration
	tracker schemas.UsageTracker
	logger  *zap.Logger
}

// NewGeminiImageClient initializes the image client.
func NewGeminiImageClient(ctx context.Context, cfg config.ImageModelConfig, tracker schemas.UsageTracker, logger *zap.Logger) (*GeminiImageClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Gemini API Key is required")
	}

	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiImageClient{
		cli:     cli,
		model:   cfg.Model,
		timeout: cfg.APITimeout,
		tracker: tracker,
		logger:  logger.Named("llm_client.gemini_image"),
	}, nil
}

// GenerateImage asks the model for an image and extracts the first usable
// part: inline bytes win over file URIs, first match of either kind wins.
func (c *GeminiImageClient) GenerateImage(ctx context.Context, prompt string) (*schemas.AssetResult, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	startTime := time.Now()
	resp, err := c.cli.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		&genai.GenerateContentConfig{
			ResponseModalities: []string{"IMAGE", "TEXT"},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("image generation failed: %w", err)
	}

	result, err := extractImage(resp)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Image generation complete (Gemini)",
		zap.Duration("duration", time.Since(startTime)),
		zap.String("mime_type", result.MimeType),
		zap.Int("bytes", len(result.Image)),
	)
	c.trackUsage()

	return result, nil
}

// Close satisfies schemas.ImageClient.
func (c *GeminiImageClient) Close() error {
	return nil
}

func (c *GeminiImageClient) trackUsage() {
	if c.tracker == nil {
		return
	}
	err := c.tracker.Track(schemas.UsageEvent{
		Model:    c.model,
		Endpoint: "asset",
		Image:    true,
		At:       time.Now().UTC(),
	})
	if err != nil {
		c.logger.Warn("Failed to record usage; spend may be under-reported.", zap.Error(err))
	}
}

func extractImage(resp *genai.GenerateContentResponse) (*schemas.AssetResult, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, ErrNoImageData
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil {
			continue
		}
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return &schemas.AssetResult{
				Success:  true,
				Image:    part.InlineData.Data,
				MimeType: part.InlineData.MIMEType,
			}, nil
		}
		if part.FileData != nil && part.FileData.FileURI != "" {
			return &schemas.AssetResult{
				Success:  true,
				URL:      part.FileData.FileURI,
				MimeType: part.FileData.MIMEType,
			}, nil
		}
	}
	return nil, ErrNoImageData
}
