// -- cmd/asset.go --
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/restyle-dev/restyle-cli/internal/asset"
	"github.com/restyle-dev/restyle-cli/internal/llmclient"
	"github.com/restyle-dev/restyle-cli/internal/observability"
)

func newAssetCmd() *cobra.Command {
	var (
		prompt       string
		usageContext string
		theme        string
		outPath      string
	)

	cmd := &cobra.Command{
		Use:   "asset",
		Short: "Generate a replacement image asset from a text prompt.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()

			led, err := buildLedger()
			if err != nil {
				return fmt.Errorf("failed to open usage ledger: %w", err)
			}

			client, err := llmclient.NewImageClient(cmd.Context(), cfg, led, logger)
			if err != nil {
				return err
			}
			defer client.Close()

			svc := asset.NewService(client, led, cfg.LLM.Image.PerImage, logger)
			result := svc.Generate(cmd.Context(), prompt, usageContext, theme, outPath)

			output := struct {
				Success  bool   `json:"success"`
				URL      string `json:"url,omitempty"`
				MimeType string `json:"mimeType,omitempty"`
				Bytes    int    `json:"bytes,omitempty"`
				OutPath  string `json:"outPath,omitempty"`
				Error    string `json:"error,omitempty"`
			}{
				Success:  result.Success,
				URL:      result.URL,
				MimeType: result.MimeType,
				Bytes:    len(result.Image),
				Error:    result.Error,
			}
			if result.Success && outPath != "" {
				output.OutPath = outPath
			}

			if err := printJSON(output); err != nil {
				return err
			}
			if !result.Success {
				return fmt.Errorf("asset generation failed: %s", result.Error)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&prompt, "prompt", "", "What the image should show.")
	cmd.Flags().StringVar(&usageContext, "context", asset.ContextGeneral, "Usage context: avatar|icon|hero|card|general.")
	cmd.Flags().StringVar(&theme, "theme", "", "Theme hint: dark|light.")
	cmd.Flags().StringVar(&outPath, "out", "", "Write the generated image to this path.")
	_ = cmd.MarkFlagRequired("prompt")

	return cmd
}
