// internal/asset/asset.go
package asset

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/restyle-dev/restyle-cli/api/schemas"
	"github.com/restyle-dev/restyle-cli/internal/ledger"
)

// Usage context for a generated asset; keys the aspect-ratio/quality phrase
// appended to the prompt. Unknown values fall back to ContextGeneral.
const (
	ContextAvatar  = "avatar"
	ContextIcon    = "icon"
	ContextHero    = "hero"
	ContextCard    = "card"
	ContextGeneral = "general"
)

const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

var contextTemplates = map[string]string{
	ContextAvatar:  "Square 1:1 aspect ratio, centered subject, clean background, suitable as a profile avatar.",
	ContextIcon:    "Simple flat icon, square 1:1 aspect ratio, bold silhouette, minimal detail, transparent-friendly background.",
	ContextHero:    "Wide 16:9 aspect ratio, high detail, cinematic composition, suitable as a page hero banner.",
	ContextCard:    "4:3 aspect ratio, balanced composition, clear focal point, suitable as a content card thumbnail.",
	ContextGeneral: "Well-composed, high quality, suitable for embedding in a modern web UI.",
}

var themeTemplates = map[string]string{
	ThemeDark:  "Dark color palette with muted tones that sit naturally on a dark interface.",
	ThemeLight: "Light, airy color palette that sits naturally on a light interface.",
}

// Service wraps the image-generation model with prompt templating and a
// budget gate. The gate runs before the network call: a rejected request
// costs nothing.
type Service struct {
	client   schemas.ImageClient
	tracker  schemas.UsageTracker
	perImage float64
	logger   *zap.Logger
}

// NewService constructs the asset service. perImage is the flat price used
// for the pre-call budget estimate.
func NewService(client schemas.ImageClient, tracker schemas.UsageTracker, perImage float64, logger *zap.Logger) *Service {
	return &Service{
		client:   client,
		tracker:  tracker,
		perImage: perImage,
		logger:   logger.Named("asset"),
	}
}

// Generate augments the prompt with context/theme phrases and calls the image
// model. outPath, when non-empty, receives the image bytes on success.
func (s *Service) Generate(ctx context.Context, prompt, usageContext, theme, outPath string) *schemas.AssetResult {
	if strings.TrimSpace(prompt) == "" {
		return &schemas.AssetResult{Success: false, Error: "prompt is empty"}
	}

	if s.tracker != nil {
		if decision := s.tracker.CheckBudget(s.perImage); !decision.Allowed {
			s.logger.Warn("Asset generation rejected by budget gate.",
				zap.Float64("estimated", s.perImage),
				zap.Float64("remaining", decision.Remaining),
			)
			return &schemas.AssetResult{
				Success: false,
				Error: fmt.Sprintf("%s: image costs %.2f, %.2f remaining",
					ledger.ErrBudgetExceeded.Error(), s.perImage, decision.Remaining),
			}
		}
	}

	full := BuildPrompt(prompt, usageContext, theme)
	result, err := s.client.GenerateImage(ctx, full)
	if err != nil {
		s.logger.Warn("Asset generation failed.", zap.Error(err))
		return &schemas.AssetResult{Success: false, Error: err.Error()}
	}

	if outPath != "" && len(result.Image) > 0 {
		if err := os.WriteFile(outPath, result.Image, 0o644); err != nil {
			return &schemas.AssetResult{Success: false, Error: fmt.Sprintf("image generated but write failed: %v", err)}
		}
		s.logger.Info("Asset written to disk.", zap.String("path", outPath), zap.Int("bytes", len(result.Image)))
	}

	return result
}

// BuildPrompt appends the context and theme phrase templates to the user
// prompt. Unrecognized values never fail; they degrade to the general/no-op
// template.
func BuildPrompt(prompt, usageContext, theme string) string {
	parts := []string{strings.TrimSpace(prompt)}

	tmpl, ok := contextTemplates[strings.ToLower(usageContext)]
	if !ok {
		tmpl = contextTemplates[ContextGeneral]
	}
	parts = append(parts, tmpl)

	if themeTmpl, ok := themeTemplates[strings.ToLower(theme)]; ok {
		parts = append(parts, themeTmpl)
	}
	return strings.Join(parts, " ")
}
