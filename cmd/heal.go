// -- cmd/heal.go --
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/restyle-dev/restyle-cli/api/schemas"
	"github.com/restyle-dev/restyle-cli/internal/capture"
	"github.com/restyle-dev/restyle-cli/internal/config"
	"github.com/restyle-dev/restyle-cli/internal/heal"
	"github.com/restyle-dev/restyle-cli/internal/heuristics"
	"github.com/restyle-dev/restyle-cli/internal/observability"
)

func newHealCmd() *cobra.Command {
	var (
		screenshot    string
		codePath      string
		autoApply     bool
		verify        bool
		maxIterations int
		targetURL     string
	)

	cmd := &cobra.Command{
		Use:   "heal",
		Short: "Inspect a screenshot and rewrite the source code behind it until it looks right.",
		Long: `Heal runs the full pipeline: vision inspection of the screenshot, code surgery
against the reported defects, and (with --url) re-capture and re-inspection up
to the iteration bound. When --code points at an HTML file, the local heuristic
analyzer runs on its markup and feeds its findings into the surgery alongside
the model's. The patched code lands in a sibling preview file; --auto-apply
additionally overwrites the original.

Flag defaults for --auto-apply, --verify and --max-iterations come from the
heal section of the config file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := buildPipeline()
			if err != nil {
				return err
			}

			var recapture heal.RecaptureFunc
			if targetURL != "" {
				capturer := capture.New(cfg.Capture, observability.GetLogger())
				recapture = capturer.RecaptureFunc(targetURL)
			}

			orchestrator := heal.NewOrchestrator(
				p.inspector,
				p.patcher,
				recapture,
				cfg.Heal.PreviewSuffix,
				observability.GetLogger(),
			)

			opts := resolveHealOptions(cmd.Flags(), cfg.Heal, autoApply, verify, maxIterations)
			localDefects := localDefectsFromMarkup(codePath, cfg.Analyzer, observability.GetLogger())

			result := orchestrator.RunHeal(cmd.Context(), screenshot, codePath, localDefects, opts)

			if err := printJSON(result); err != nil {
				return err
			}
			if !result.Success {
				return fmt.Errorf("heal failed: %s", result.Error)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&screenshot, "screenshot", "", "Path to the screenshot to inspect.")
	cmd.Flags().StringVar(&codePath, "code", "", "Path to the source file to patch.")
	cmd.Flags().BoolVar(&autoApply, "auto-apply", false, "Overwrite the original source file with the patched code.")
	cmd.Flags().BoolVar(&verify, "verify", true, "Re-inspect after patching (needs --url for a fresh screenshot).")
	cmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "Iteration bound for the inspect/patch loop.")
	cmd.Flags().StringVar(&targetURL, "url", "", "Page URL (or local HTML file) to re-capture for verification.")
	_ = cmd.MarkFlagRequired("screenshot")
	_ = cmd.MarkFlagRequired("code")

	return cmd
}

// resolveHealOptions folds configured defaults under the flag values: a flag
// the user left untouched takes its value from the heal config section.
func resolveHealOptions(flags *pflag.FlagSet, defaults config.HealConfig, autoApply, verify bool, maxIterations int) schemas.HealOptions {
	opts := schemas.HealOptions{
		AutoApply:     autoApply,
		Verify:        verify,
		MaxIterations: maxIterations,
	}
	if !flags.Changed("auto-apply") {
		opts.AutoApply = defaults.AutoApply
	}
	if !flags.Changed("verify") {
		opts.Verify = defaults.Verify
	}
	if !flags.Changed("max-iterations") {
		opts.MaxIterations = defaults.MaxIterations
	}
	return opts
}

// localDefectsFromMarkup runs the heuristic analyzer over an HTML source file
// so the surgery sees deterministic findings alongside the model's. Non-markup
// sources (JSX, templates) return nil: the vision inspection covers them.
func localDefectsFromMarkup(codePath string, analyzerCfg config.AnalyzerConfig, logger *zap.Logger) []schemas.Defect {
	ext := strings.ToLower(filepath.Ext(codePath))
	if ext != ".html" && ext != ".htm" {
		return nil
	}

	markup, err := os.ReadFile(codePath)
	if err != nil {
		return nil
	}
	snap, err := heuristics.SnapshotFromHTML(string(markup))
	if err != nil {
		logger.Debug("Markup not analyzable locally; relying on vision inspection alone.",
			zap.String("code", codePath), zap.Error(err))
		return nil
	}

	defects := heuristics.NewAnalyzer(analyzerCfg).Analyze(snap, heuristics.ComputeBaseline(nil))
	if len(defects) > 0 {
		logger.Info("Local heuristics found defects in the markup.",
			zap.String("code", codePath), zap.Int("count", len(defects)))
	}
	return defects
}
