// -- cmd/root.go --
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/restyle-dev/restyle-cli/internal/config"
	"github.com/restyle-dev/restyle-cli/internal/observability"
)

var (
	cfgFile string
	cfg     *config.Config
)

// NewRootCommand builds the restyle command tree. Each invocation gets a
// fresh tree so flag state never leaks between runs.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "restyle",
		Short:   "Restyle inspects UI screenshots for visual defects and heals the source code behind them.",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// This runs before any command, setting up config and logging.
			if err := initializeConfig(); err != nil {
				return err
			}

			loaded, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				// Initialize a fallback logger so the error itself is visible.
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "restyle"})
				return err
			}
			cfg = loaded

			observability.InitializeLogger(cfg.Logger)
			observability.GetLogger().Debug("Starting restyle", zap.String("version", Version))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./restyle.yaml)")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	rootCmd.AddCommand(
		newHealCmd(),
		newInspectCmd(),
		newPatchCmd(),
		newAssetCmd(),
		newUsageCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the command tree under the given context.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if logger := observability.GetLogger(); logger != nil {
			logger.Error("Command execution failed", zap.Error(err))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return err
	}
	return nil
}

// initializeConfig reads in config file and ENV variables if set.
func initializeConfig() error {
	v := viper.GetViper()
	config.SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("restyle")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("RESTYLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; proceed with defaults/env vars.
	}
	return nil
}
