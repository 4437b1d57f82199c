// -- cmd/usage.go --
package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newUsageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show the usage ledger: tokens, images, cost, and remaining budget.",
		RunE: func(cmd *cobra.Command, args []string) error {
			led, err := buildLedger()
			if err != nil {
				return err
			}
			return printJSON(led.Summary())
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "reset",
			Short: "Clear all recorded usage, keeping the budget.",
			RunE: func(cmd *cobra.Command, args []string) error {
				led, err := buildLedger()
				if err != nil {
					return err
				}
				if err := led.Reset(); err != nil {
					return err
				}
				return printJSON(led.Summary())
			},
		},
		&cobra.Command{
			Use:   "set-budget <amount>",
			Short: "Set the spend ceiling in USD. 0 disables the gate.",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				budget, err := strconv.ParseFloat(args[0], 64)
				if err != nil {
					return fmt.Errorf("invalid budget %q: %w", args[0], err)
				}
				led, err := buildLedger()
				if err != nil {
					return err
				}
				if err := led.SetBudget(budget); err != nil {
					return err
				}
				return printJSON(led.Summary())
			},
		},
	)

	return cmd
}
