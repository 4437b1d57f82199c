// internal/capture/capture.go
package capture

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/restyle-dev/restyle-cli/internal/config"
)

// Capturer takes full-page screenshots of a URL with a headless browser. It
// exists so a heal run can re-verify against a freshly rendered page instead
// of the stale input screenshot.
type Capturer struct {
	cfg    config.CaptureConfig
	logger *zap.Logger
}

// New constructs a capturer. Each Screenshot call launches and tears down its
// own browser; heal runs are rare enough that keeping a browser warm is not
// worth the lifecycle complexity.
func New(cfg config.CaptureConfig, logger *zap.Logger) *Capturer {
	return &Capturer{
		cfg:    cfg,
		logger: logger.Named("capture"),
	}
}

// Screenshot renders the target and writes a full-page PNG to a temp file,
// returning its path. Local paths are accepted and converted to file:// URLs.
func (c *Capturer) Screenshot(ctx context.Context, target string) (string, error) {
	url := normalizeTarget(target)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", c.cfg.Headless),
		chromedp.WindowSize(c.cfg.ViewportWidth, c.cfg.ViewportHeight),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		browserCtx, cancel = context.WithTimeout(browserCtx, c.cfg.Timeout)
		defer cancel()
	}

	var buf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.FullScreenshot(&buf, 90),
	)
	if err != nil {
		return "", fmt.Errorf("failed to capture screenshot of %s: %w", url, err)
	}

	tmp, err := os.CreateTemp("", "restyle-shot-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create screenshot file: %w", err)
	}
	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write screenshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close screenshot file: %w", err)
	}

	c.logger.Info("Screenshot captured.",
		zap.String("url", url),
		zap.String("path", tmp.Name()),
		zap.Int("bytes", len(buf)),
	)
	return tmp.Name(), nil
}

// RecaptureFunc adapts the capturer to the orchestrator's verification hook
// for a fixed target.
func (c *Capturer) RecaptureFunc(target string) func(ctx context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		return c.Screenshot(ctx, target)
	}
}

func normalizeTarget(target string) string {
	if strings.Contains(target, "://") {
		return target
	}
	return "file://" + target
}
