// -- cmd/patch.go --
package cmd

import (
	"fmt"
	"os"

	json "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/restyle-dev/restyle-cli/api/schemas"
	"github.com/restyle-dev/restyle-cli/internal/patch"
)

func newPatchCmd() *cobra.Command {
	var (
		codePath    string
		defectsFile string
		apply       bool
	)

	cmd := &cobra.Command{
		Use:   "patch",
		Short: "Rewrite a source file against a defect list, writing the result to a preview file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(codePath)
			if err != nil {
				return fmt.Errorf("failed to read source file: %w", err)
			}
			defects, err := loadDefects(defectsFile)
			if err != nil {
				return err
			}

			p, err := buildPipeline()
			if err != nil {
				return err
			}

			result := p.patcher.Patch(cmd.Context(), string(source), defects)

			output := struct {
				schemas.PatchResult
				PreviewPath string `json:"previewPath,omitempty"`
			}{PatchResult: result}

			if result.Success {
				previewPath, err := patch.WritePreview(codePath, cfg.Heal.PreviewSuffix, result.Code)
				if err != nil {
					return err
				}
				output.PreviewPath = previewPath
				if apply {
					if err := os.WriteFile(codePath, []byte(result.Code), 0o644); err != nil {
						return fmt.Errorf("failed to apply patch: %w", err)
					}
				}
			}

			if err := printJSON(output); err != nil {
				return err
			}
			if !result.Success {
				return fmt.Errorf("patch failed: %s", result.Error)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&codePath, "code", "", "Path to the source file to patch.")
	cmd.Flags().StringVar(&defectsFile, "defects", "", "Path to a JSON file holding a defect list or a full defect report.")
	cmd.Flags().BoolVar(&apply, "apply", false, "Also overwrite the original source file.")
	_ = cmd.MarkFlagRequired("code")
	_ = cmd.MarkFlagRequired("defects")

	return cmd
}

// loadDefects accepts either a bare defect array or a full DefectReport
// document, in both the rich and the legacy string-entry shapes.
func loadDefects(path string) ([]schemas.Defect, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read defects file: %w", err)
	}

	var raw []schemas.RawDefect
	if err := json.Unmarshal(data, &raw); err == nil {
		return canonicalize(raw), nil
	}

	var report struct {
		Defects []schemas.RawDefect `json:"defects"`
	}
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse defects file: %w", err)
	}
	return canonicalize(report.Defects), nil
}

func canonicalize(raw []schemas.RawDefect) []schemas.Defect {
	defects := make([]schemas.Defect, 0, len(raw))
	for i, r := range raw {
		defects = append(defects, r.Canonical(i+1))
	}
	return defects
}
