// -- cmd/restyle/main.go --
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/restyle-dev/restyle-cli/cmd"
	"github.com/restyle-dev/restyle-cli/internal/observability"
)

func main() {
	// Graceful shutdown on SIGINT/SIGTERM; a heal in flight stops at its
	// next suspension point.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := cmd.Execute(ctx)
	observability.Sync()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		os.Exit(1)
	}
}
