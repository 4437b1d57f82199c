// -- cmd/inspect.go --
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/restyle-dev/restyle-cli/internal/inspect"
)

func newInspectCmd() *cobra.Command {
	var (
		screenshot  string
		contextFile string
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Report visual defects for a screenshot or a structured element context.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (screenshot == "") == (contextFile == "") {
				return fmt.Errorf("exactly one of --screenshot or --context is required")
			}

			p, err := buildPipeline()
			if err != nil {
				return err
			}

			var result inspect.Result
			if screenshot != "" {
				result = p.inspector.InspectScreenshot(cmd.Context(), screenshot)
			} else {
				ectx, err := inspect.ParseContextFile(contextFile)
				if err != nil {
					return err
				}
				result = p.inspector.InspectContext(cmd.Context(), ectx)
			}

			if err := printJSON(result); err != nil {
				return err
			}
			if !result.Success {
				return fmt.Errorf("inspection failed: %s", result.Error)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&screenshot, "screenshot", "", "Path to the screenshot to inspect.")
	cmd.Flags().StringVar(&contextFile, "context", "", "Path to an element-context JSON file (no-screenshot fallback).")

	return cmd
}
