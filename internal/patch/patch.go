// internal/patch/patch.go
package patch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/restyle-dev/restyle-cli/api/schemas"
	"github.com/restyle-dev/restyle-cli/internal/normalize"
)

// Precondition violations short-circuit before any model call.
var (
	ErrEmptyDefects = errors.New("defect list is empty")
	ErrEmptyCode    = errors.New("source code is empty")
)

const surgerySystemPrompt = `You are an expert front-end engineer performing targeted code surgery. You receive source code and a numbered list of visual defects. Rewrite the code so every listed defect is fixed.

Rules:
- Preserve ALL behavior unrelated to the listed defects.
- Keep the file structure, imports, exports and names intact.
- Return ONLY the complete rewritten source file. No prose, no explanation. A single fenced code block is acceptable.`

// Service wraps the code-generation model call that rewrites source code
// against a defect list.
type Service struct {
	llm    schemas.LLMClient
	logger *zap.Logger
}

// NewService constructs the patch service.
func NewService(llm schemas.LLMClient, logger *zap.Logger) *Service {
	return &Service{
		llm:    llm,
		logger: logger.Named("patch"),
	}
}

// Patch submits the source and the rendered defect list to the model and
// normalizes the response. Preconditions fail without spending budget.
func (s *Service) Patch(ctx context.Context, sourceCode string, defects []schemas.Defect) schemas.PatchResult {
	if len(defects) == 0 {
		return schemas.PatchResult{Success: false, Error: ErrEmptyDefects.Error()}
	}
	if strings.TrimSpace(sourceCode) == "" {
		return schemas.PatchResult{Success: false, Error: ErrEmptyCode.Error()}
	}

	raw, err := s.llm.Generate(ctx, schemas.GenerationRequest{
		SystemPrompt: surgerySystemPrompt,
		UserPrompt:   buildUserPrompt(sourceCode, defects),
		Tier:         schemas.TierPowerful,
		Endpoint:     "surgery",
		Options: schemas.GenerationOptions{
			Temperature: 0.1,
		},
	})
	if err != nil {
		s.logger.Warn("Patch generation failed.", zap.Error(err))
		return schemas.PatchResult{Success: false, Error: fmt.Sprintf("patch failed: %v", err)}
	}

	result := normalize.NormalizePatch(raw)
	s.logger.Info("Patch generated.",
		zap.Bool("success", result.Success),
		zap.Int("defects", len(defects)),
		zap.Int("code_length", len(result.Code)),
	)
	return result
}

func buildUserPrompt(sourceCode string, defects []schemas.Defect) string {
	var b strings.Builder
	b.WriteString("Fix the following visual defects:\n")
	for i, d := range defects {
		fmt.Fprintf(&b, "%d. %s\n", i+1, d.Describe())
	}
	b.WriteString("\nSource code:\n")
	b.WriteString(sourceCode)
	return b.String()
}

// PreviewPath derives the sibling preview file for an input path:
// src.jsx -> src.preview.jsx. The suffix sits before the extension so
// editors keep the original syntax highlighting.
func PreviewPath(original, suffix string) string {
	if suffix == "" {
		suffix = ".preview"
	}
	ext := filepath.Ext(original)
	return strings.TrimSuffix(original, ext) + suffix + ext
}

// WritePreview writes the patched code next to the original, never touching
// the original file.
func WritePreview(original, suffix, code string) (string, error) {
	path := PreviewPath(original, suffix)
	if path == original {
		return "", fmt.Errorf("preview path would overwrite the original: %s", original)
	}
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		return "", fmt.Errorf("failed to write preview file: %w", err)
	}
	return path, nil
}
