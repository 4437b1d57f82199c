// internal/heal/heal.go
package heal

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/restyle-dev/restyle-cli/api/schemas"
	"github.com/restyle-dev/restyle-cli/internal/inspect"
	"github.com/restyle-dev/restyle-cli/internal/patch"
)

// Inspector is the slice of the inspection service the orchestrator drives.
type Inspector interface {
	InspectScreenshot(ctx context.Context, path string) inspect.Result
}

// Patcher is the slice of the patch service the orchestrator drives.
type Patcher interface {
	Patch(ctx context.Context, sourceCode string, defects []schemas.Defect) schemas.PatchResult
}

// RecaptureFunc re-renders the UI under repair and returns the path of a
// fresh screenshot. It is the extension point that makes Verify a real
// re-inspection loop; without one the loop stops after a single patch pass.
type RecaptureFunc func(ctx context.Context) (string, error)

// Orchestrator chains inspection, patching and optional re-verification into
// one bounded heal run. Model calls are strictly sequential; each step's
// input is the previous step's output.
type Orchestrator struct {
	inspector     Inspector
	patcher       Patcher
	recapture     RecaptureFunc
	previewSuffix string
	logger        *zap.Logger
}

// NewOrchestrator wires the services. recapture may be nil.
func NewOrchestrator(inspector Inspector, patcher Patcher, recapture RecaptureFunc, previewSuffix string, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		inspector:     inspector,
		patcher:       patcher,
		recapture:     recapture,
		previewSuffix: previewSuffix,
		logger:        logger.Named("heal"),
	}
}

// RunHeal drives the state machine: inspect, then patch if defects were
// found, then optionally recapture and re-inspect, up to the iteration bound.
// localDefects are the caller's instant heuristic findings; they are merged
// ahead of every model defect list. An inspection transport failure aborts
// the run without retry so a repeating error cannot burn budget.
func (o *Orchestrator) RunHeal(ctx context.Context, screenshotPath, codePath string, localDefects []schemas.Defect, opts schemas.HealOptions) schemas.HealResult {
	runID := uuid.NewString()
	logger := o.logger.With(zap.String("run_id", runID))

	maxIterations := opts.MaxIterations
	if maxIterations <= 0 {
		maxIterations = schemas.DefaultMaxIterations
	}

	result := schemas.HealResult{RunID: runID}

	original, err := os.ReadFile(codePath)
	if err != nil {
		result.Error = fmt.Sprintf("failed to read source file: %v", err)
		result.Summary = "Heal aborted: source file unreadable."
		return result
	}
	currentCode := string(original)
	currentShot := screenshotPath
	patched := false

	logger.Info("Heal run starting.",
		zap.String("screenshot", screenshotPath),
		zap.String("code", codePath),
		zap.Int("max_iterations", maxIterations),
		zap.Bool("verify", opts.Verify),
		zap.Int("local_defects", len(localDefects)),
	)

	for iteration := 1; iteration <= maxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			result.Error = fmt.Sprintf("heal cancelled: %v", err)
			result.Summary = fmt.Sprintf("Cancelled during iteration %d.", iteration)
			return result
		}

		iterResult := schemas.HealIterationResult{Iteration: iteration}

		insp := o.inspector.InspectScreenshot(ctx, currentShot)
		if !insp.Success {
			// Deliberately not retried: a transient failure is surfaced
			// instead of silently re-spent.
			iterResult.InspectionError = insp.Error
			result.Iterations = append(result.Iterations, iterResult)
			result.Error = fmt.Sprintf("inspection failed: %s", insp.Error)
			result.Summary = fmt.Sprintf("Heal aborted: inspection failed on iteration %d.", iteration)
			logger.Warn("Inspection failed; aborting heal.", zap.Int("iteration", iteration), zap.String("error", insp.Error))
			return result
		}
		report := insp.Report
		iterResult.Inspection = report

		if report.NeedsAssetGeneration && report.AssetGenerationPrompt != "" && result.AssetPrompt == "" {
			result.AssetPrompt = report.AssetGenerationPrompt
		}

		if report.LooksGood {
			result.Iterations = append(result.Iterations, iterResult)
			result.Success = true
			if iteration == 1 {
				result.Summary = "No defects found on first pass."
			} else {
				result.Summary = fmt.Sprintf("Fixed after %d iterations.", iteration)
			}
			logger.Info("Element looks good; heal complete.", zap.Int("iteration", iteration))
			return o.finalize(result, codePath, currentCode, patched, opts, logger)
		}

		defects := MergeDefects(localDefects, report.Defects)
		logger.Info("Defects found; patching.",
			zap.Int("iteration", iteration),
			zap.Int("remote_defects", len(report.Defects)),
			zap.Int("merged_defects", len(defects)),
		)

		patchResult := o.patcher.Patch(ctx, currentCode, defects)
		if !patchResult.Success {
			iterResult.SurgeryError = patchResult.Error
			result.Iterations = append(result.Iterations, iterResult)
			result.Error = fmt.Sprintf("surgery failed: %s", patchResult.Error)
			result.Summary = fmt.Sprintf("Heal aborted: patch failed on iteration %d.", iteration)
			logger.Warn("Patch failed; aborting heal.", zap.Int("iteration", iteration), zap.String("error", patchResult.Error))
			return result
		}

		iterResult.Surgery = &schemas.SurgeryOutcome{Success: true, CodeLength: len(patchResult.Code)}
		result.Iterations = append(result.Iterations, iterResult)
		currentCode = patchResult.Code
		patched = true

		if !opts.Verify {
			result.Summary = fmt.Sprintf("Patched after %d iteration(s); verification skipped.", iteration)
			break
		}
		if o.recapture == nil {
			// Re-inspecting the stale screenshot would only re-find the
			// defects the patch just addressed.
			logger.Info("Verification requested but no recapture is wired; stopping after one patch pass.")
			result.Summary = fmt.Sprintf("Patched after %d iteration(s); re-verification needs a fresh screenshot.", iteration)
			break
		}

		freshShot, err := o.recapture(ctx)
		if err != nil {
			logger.Warn("Recapture failed; keeping the patch and stopping.", zap.Error(err))
			result.Summary = fmt.Sprintf("Patched after %d iteration(s); recapture failed: %v.", iteration, err)
			break
		}
		currentShot = freshShot
		if result.Summary == "" || iteration == maxIterations {
			result.Summary = fmt.Sprintf("Patched %d time(s); iteration budget reached with defects still reported.", iteration)
		}
	}

	result.Success = patched
	if !patched && result.Error == "" {
		result.Error = "heal loop exited without producing a patch"
		result.Summary = "Heal made no progress."
	}
	return o.finalize(result, codePath, currentCode, patched, opts, logger)
}

// finalize writes the artifacts for a completed run: always a preview when a
// patch was produced, the original only under AutoApply.
func (o *Orchestrator) finalize(result schemas.HealResult, codePath, finalCode string, patched bool, opts schemas.HealOptions, logger *zap.Logger) schemas.HealResult {
	if !patched {
		return result
	}
	result.FinalCode = finalCode

	previewPath, err := patch.WritePreview(codePath, o.previewSuffix, finalCode)
	if err != nil {
		result.Success = false
		result.Error = err.Error()
		result.Summary = "Patched code could not be written to the preview file."
		return result
	}
	result.PreviewPath = previewPath
	logger.Info("Preview written.", zap.String("path", previewPath))

	if opts.AutoApply {
		if err := os.WriteFile(codePath, []byte(finalCode), 0o644); err != nil {
			result.Success = false
			result.Error = fmt.Sprintf("failed to apply patch to original: %v", err)
			result.Summary = "Preview written but auto-apply failed."
			return result
		}
		logger.Info("Patch applied to original file.", zap.String("path", codePath))
	}
	return result
}
