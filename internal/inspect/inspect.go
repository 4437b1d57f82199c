// internal/inspect/inspect.go
package inspect

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/restyle-dev/restyle-cli/api/schemas"
	"github.com/restyle-dev/restyle-cli/internal/config"
	"github.com/restyle-dev/restyle-cli/internal/heuristics"
	"github.com/restyle-dev/restyle-cli/internal/normalize"
	"github.com/restyle-dev/restyle-cli/internal/style"
)

const cacheSize = 64

const inspectionSystemPrompt = `You are a meticulous UI design reviewer. You receive a screenshot of a web UI element or region. Identify concrete visual defects: spacing, alignment, contrast, sizing, broken or placeholder imagery.

Respond with ONLY a JSON object, no prose, in this exact shape:
{
  "looksGood": boolean,
  "defects": [
    {
      "id": "defect-1",
      "element": "tag or short description",
      "elementText": "visible text if any",
      "selectorHint": "best-guess CSS selector",
      "issue": "what is wrong",
      "expected": "what it should be",
      "why": "why it matters",
      "autoFix": {"css-property": "value"}
    }
  ],
  "needsAssetGeneration": boolean,
  "assetGenerationPrompt": "prompt for a replacement image, when applicable"
}

If the UI looks correct, return {"looksGood": true, "defects": [], "needsAssetGeneration": false}.`

// Result wraps a defect report with an explicit success flag. Transport and
// model errors land in Error; they are never propagated as Go errors to keep
// the orchestrator's control flow on one path.
type Result struct {
	Success bool                  `json:"success"`
	Report  *schemas.DefectReport `json:"report,omitempty"`
	Error   string                `json:"error,omitempty"`
}

// Service performs vision-model inspection of screenshots with a
// rule-table fallback for callers that only have structured element context.
type Service struct {
	llm      schemas.LLMClient
	analyzer *heuristics.Analyzer
	cache    *lru.Cache[string, schemas.DefectReport]
	logger   *zap.Logger
}

// NewService constructs the inspection service. The LRU cache keys on a
// content fingerprint so repeated inspections of an unchanged screenshot do
// not burn budget.
func NewService(llm schemas.LLMClient, analyzerCfg config.AnalyzerConfig, logger *zap.Logger) (*Service, error) {
	cache, err := lru.New[string, schemas.DefectReport](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create inspection cache: %w", err)
	}
	return &Service{
		llm:      llm,
		analyzer: heuristics.NewAnalyzer(analyzerCfg),
		cache:    cache,
		logger:   logger.Named("inspect"),
	}, nil
}

// InspectScreenshot reads the image at path, submits it to the vision model
// and normalizes the response. A missing file fails before any network call.
func (s *Service) InspectScreenshot(ctx context.Context, path string) Result {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Success: false, Error: fmt.Sprintf("screenshot not found: %s", path)}
		}
		return Result{Success: false, Error: fmt.Sprintf("failed to read screenshot: %v", err)}
	}
	if len(data) == 0 {
		return Result{Success: false, Error: fmt.Sprintf("screenshot is empty: %s", path)}
	}

	fingerprint := contentFingerprint(data)
	if report, ok := s.cache.Get(fingerprint); ok {
		s.logger.Debug("Inspection cache hit.", zap.String("fingerprint", fingerprint[:12]))
		return Result{Success: true, Report: &report}
	}

	raw, err := s.llm.Generate(ctx, schemas.GenerationRequest{
		SystemPrompt: inspectionSystemPrompt,
		UserPrompt:   "Inspect this UI screenshot for visual defects.",
		Images: []schemas.ImagePart{{
			Data:     data,
			MimeType: sniffMime(path, data),
		}},
		Tier:     schemas.TierPowerful,
		Endpoint: "inspect",
		Options: schemas.GenerationOptions{
			Temperature:     0.1,
			ForceJSONFormat: true,
		},
	})
	if err != nil {
		s.logger.Warn("Vision inspection failed.", zap.Error(err))
		return Result{Success: false, Error: fmt.Sprintf("inspection failed: %v", err)}
	}

	report := normalize.NormalizeDefectReport(raw)
	s.cache.Add(fingerprint, report)
	s.logger.Info("Screenshot inspected.",
		zap.Bool("looks_good", report.LooksGood),
		zap.Int("defects", len(report.Defects)),
	)
	return Result{Success: true, Report: &report}
}

// InspectContext is the degraded path for callers without a screenshot: a
// deterministic rule table over the supplied element context. No network.
func (s *Service) InspectContext(_ context.Context, ectx schemas.ElementContext) Result {
	snap := snapshotFromContext(ectx)
	defects := s.analyzer.Analyze(snap, baselineFromContext(ectx))

	report := schemas.DefectReport{
		LooksGood: len(defects) == 0,
		Defects:   defects,
	}
	for _, d := range defects {
		if d.NeedsAsset {
			report.NeedsAssetGeneration = true
			break
		}
	}
	s.logger.Info("Context inspected.",
		zap.String("tag", ectx.Tag),
		zap.Int("defects", len(defects)),
	)
	return Result{Success: true, Report: &report}
}

// Fingerprint exposes the cache key derivation for callers that want to
// invalidate or correlate entries.
func Fingerprint(data []byte) string {
	return contentFingerprint(data)
}

func contentFingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func snapshotFromContext(ectx schemas.ElementContext) schemas.ElementSnapshot {
	return schemas.ElementSnapshot{
		Tag:      ectx.Tag,
		Text:     ectx.Text,
		Selector: ectx.SelectorHint,
		Role:     heuristics.DetectRole(ectx.Tag),
		Styles:   ectx.Styles,
		Box:      schemas.Geometry{Width: ectx.Width, Height: ectx.Height},
	}
}

func baselineFromContext(ectx schemas.ElementContext) heuristics.Baseline {
	b := heuristics.Baseline{
		ButtonPadding: ectx.Baseline["buttonPadding"],
		InputPadding:  ectx.Baseline["inputPadding"],
	}
	if v := ectx.Baseline["cornerRadius"]; v != "" {
		b.CornerRadiusPx = style.ParsePx(v)
	}
	if v := ectx.Baseline["fontSize"]; v != "" {
		b.FontSizePx = style.ParsePx(v)
	}
	return b
}

func sniffMime(path string, data []byte) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	}
	return http.DetectContentType(data)
}

// ParseContextFile loads an ElementContext from a JSON document on disk, the
// shape the CLI accepts for the no-screenshot path.
func ParseContextFile(path string) (schemas.ElementContext, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return schemas.ElementContext{}, fmt.Errorf("failed to read context file: %w", err)
	}
	var ectx schemas.ElementContext
	if err := json.Unmarshal(data, &ectx); err != nil {
		return schemas.ElementContext{}, fmt.Errorf("failed to parse context file: %w", err)
	}
	if ectx.Tag == "" {
		return schemas.ElementContext{}, fmt.Errorf("context file must set a tag")
	}
	return ectx, nil
}
