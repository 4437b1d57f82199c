// -- cmd/services.go --
package cmd

import (
	"fmt"
	"os"

	json "github.com/json-iterator/go"

	"github.com/restyle-dev/restyle-cli/internal/inspect"
	"github.com/restyle-dev/restyle-cli/internal/ledger"
	"github.com/restyle-dev/restyle-cli/internal/llmclient"
	"github.com/restyle-dev/restyle-cli/internal/observability"
	"github.com/restyle-dev/restyle-cli/internal/patch"
)

// buildLedger opens the shared usage ledger. Everything that spends money
// receives this one instance by reference.
func buildLedger() (*ledger.Ledger, error) {
	return ledger.NewLedger(
		cfg.Ledger.Path,
		cfg.Ledger.Budget,
		ledger.PriceSheetFromConfig(cfg.LLM),
		observability.GetLogger(),
	)
}

// pipeline bundles the services a heal-family command needs.
type pipeline struct {
	ledger    *ledger.Ledger
	inspector *inspect.Service
	patcher   *patch.Service
}

func buildPipeline() (*pipeline, error) {
	logger := observability.GetLogger()

	led, err := buildLedger()
	if err != nil {
		return nil, fmt.Errorf("failed to open usage ledger: %w", err)
	}

	llm, err := llmclient.NewClient(cfg, led, logger)
	if err != nil {
		return nil, err
	}

	inspector, err := inspect.NewService(llm, cfg.Analyzer, logger)
	if err != nil {
		return nil, err
	}

	return &pipeline{
		ledger:    led,
		inspector: inspector,
		patcher:   patch.NewService(llm, logger),
	}, nil
}

// printJSON renders a result object to stdout. Every command's output is a
// single JSON document with an explicit success flag.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render result: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}
