// internal/ledger/ledger.go
package ledger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/restyle-dev/restyle-cli/api/schemas"
	"github.com/restyle-dev/restyle-cli/internal/config"
	"github.com/restyle-dev/restyle-cli/internal/observability"
)

// ErrBudgetExceeded is returned by callers that treat a failed budget check
// as a hard stop. The ledger itself never blocks a Track call: spend that
// already happened must be recorded even when it lands over budget.
var ErrBudgetExceeded = errors.New("usage budget exceeded")

const (
	schemaVersion = 1
	historyCap    = 100
)

// ModelRate is the per-1K-token price for one model.
type ModelRate struct {
	InputPer1K  float64
	OutputPer1K float64
}

// PriceSheet maps model names to token rates plus a flat per-image price.
type PriceSheet struct {
	Models   map[string]ModelRate
	PerImage float64
}

// PriceSheetFromConfig flattens the tiered LLM configuration into the lookup
// the ledger prices events against.
func PriceSheetFromConfig(cfg config.LLMConfig) PriceSheet {
	return PriceSheet{
		Models: map[string]ModelRate{
			cfg.Fast.Model: {
				InputPer1K:  cfg.Fast.Pricing.InputPer1K,
				OutputPer1K: cfg.Fast.Pricing.OutputPer1K,
			},
			cfg.Powerful.Model: {
				InputPer1K:  cfg.Powerful.Pricing.InputPer1K,
				OutputPer1K: cfg.Powerful.Pricing.OutputPer1K,
			},
		},
		PerImage: cfg.Image.PerImage,
	}
}

// Cost prices a single usage event: token counts against the model's per-1K
// rates, plus the flat image price when the event produced an image. Unknown
// models price their tokens at zero rather than guessing.
func (p PriceSheet) Cost(ev schemas.UsageEvent) float64 {
	var cost float64
	if rate, ok := p.Models[ev.Model]; ok {
		cost += float64(ev.InputTokens) / 1000 * rate.InputPer1K
		cost += float64(ev.OutputTokens) / 1000 * rate.OutputPer1K
	}
	if ev.Image {
		cost += p.PerImage
	}
	return cost
}

// Entry is one priced event in the history, newest first.
type Entry struct {
	At           time.Time `json:"at"`
	Model        string    `json:"model"`
	Endpoint     string    `json:"endpoint"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	Image        bool      `json:"image,omitempty"`
	Cost         float64   `json:"cost"`
}

// AssetRecord notes one generated image so users can audit the expensive
// calls separately from token traffic.
type AssetRecord struct {
	At    time.Time `json:"at"`
	Model string    `json:"model"`
	Cost  float64   `json:"cost"`
}

// ModelUsage is the per-model rollup: call and token counts alongside cost.
type ModelUsage struct {
	Calls        int64   `json:"calls"`
	InputTokens  int64   `json:"input_tokens"`
	OutputTokens int64   `json:"output_tokens"`
	Cost         float64 `json:"cost"`
}

// EndpointUsage is the per-pipeline-stage rollup.
type EndpointUsage struct {
	Calls int64   `json:"calls"`
	Cost  float64 `json:"cost"`
}

// document is the persisted shape of the ledger file.
type document struct {
	SchemaVersion     int                      `json:"schema_version"`
	Budget            float64                  `json:"budget"`
	StartedAt         time.Time                `json:"started_at"`
	APICalls          int64                    `json:"api_calls"`
	TotalCost         float64                  `json:"total_cost"`
	TotalInputTokens  int64                    `json:"total_input_tokens"`
	TotalOutputTokens int64                    `json:"total_output_tokens"`
	ImagesGenerated   int                      `json:"images_generated"`
	ByModel           map[string]ModelUsage    `json:"by_model"`
	ByEndpoint        map[string]EndpointUsage `json:"by_endpoint"`
	History           []Entry                  `json:"history"`
	Assets            []AssetRecord            `json:"assets"`
	UpdatedAt         time.Time                `json:"updated_at"`
}

func newDocument(budget float64) document {
	return document{
		SchemaVersion: schemaVersion,
		Budget:        budget,
		StartedAt:     time.Now().UTC(),
		ByModel:       map[string]ModelUsage{},
		ByEndpoint:    map[string]EndpointUsage{},
	}
}

// Summary is a read-only snapshot for display. BudgetPercent is derived:
// spend as a percentage of the budget, zero when the gate is disabled.
type Summary struct {
	Budget            float64                  `json:"budget"`
	Remaining         float64                  `json:"remaining"`
	BudgetPercent     float64                  `json:"budget_percent"`
	StartedAt         time.Time                `json:"started_at"`
	APICalls          int64                    `json:"api_calls"`
	TotalCost         float64                  `json:"total_cost"`
	TotalInputTokens  int64                    `json:"total_input_tokens"`
	TotalOutputTokens int64                    `json:"total_output_tokens"`
	ImagesGenerated   int                      `json:"images_generated"`
	ByModel           map[string]ModelUsage    `json:"by_model"`
	ByEndpoint        map[string]EndpointUsage `json:"by_endpoint"`
	History           []Entry                  `json:"history"`
	Assets            []AssetRecord            `json:"assets"`
}

// Ledger is the durable, write-through usage record. Every mutation persists
// before it returns so a crashed process never under-reports spend.
type Ledger struct {
	mu     sync.Mutex
	path   string
	prices PriceSheet
	doc    document
	logger *zap.Logger
}

var _ schemas.UsageTracker = (*Ledger)(nil)

// NewLedger opens the ledger file at path, creating it with the given budget
// when absent. A persisted budget wins over the configured one so a user's
// set-budget survives restarts.
func NewLedger(path string, budget float64, prices PriceSheet, logger *zap.Logger) (*Ledger, error) {
	if logger == nil {
		logger = observability.GetLogger()
	}
	l := &Ledger{
		path:   path,
		prices: prices,
		doc:    newDocument(budget),
		logger: logger.Named("ledger"),
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var doc document
		if jsonErr := json.Unmarshal(data, &doc); jsonErr != nil {
			// A corrupt ledger must not brick the tool; start fresh but keep
			// the broken file aside for inspection.
			backup := path + ".corrupt"
			if renameErr := os.Rename(path, backup); renameErr == nil {
				l.logger.Warn("Ledger file was unreadable; moved aside and starting fresh.",
					zap.String("backup", backup), zap.Error(jsonErr))
			}
		} else if doc.SchemaVersion != schemaVersion {
			// A version this build does not understand is never reinterpreted;
			// rearchive it and start fresh.
			backup := fmt.Sprintf("%s.v%d", path, doc.SchemaVersion)
			if renameErr := os.Rename(path, backup); renameErr == nil {
				l.logger.Warn("Ledger file has an unknown schema version; moved aside and starting fresh.",
					zap.Int("schema_version", doc.SchemaVersion), zap.String("backup", backup))
			}
		} else {
			if doc.ByModel == nil {
				doc.ByModel = map[string]ModelUsage{}
			}
			if doc.ByEndpoint == nil {
				doc.ByEndpoint = map[string]EndpointUsage{}
			}
			if doc.StartedAt.IsZero() {
				doc.StartedAt = time.Now().UTC()
			}
			l.doc = doc
		}
	case os.IsNotExist(err):
		// First run; persisted below.
	default:
		return nil, fmt.Errorf("failed to read ledger file %s: %w", path, err)
	}

	if err := l.persistLocked(); err != nil {
		return nil, err
	}
	return l, nil
}

// Track prices and records a usage event, then persists. It never rejects an
// event: the budget gate runs before spend, not after.
func (l *Ledger) Track(ev schemas.UsageEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	at := ev.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	cost := l.prices.Cost(ev)

	l.doc.APICalls++
	l.doc.TotalCost += cost
	l.doc.TotalInputTokens += int64(ev.InputTokens)
	l.doc.TotalOutputTokens += int64(ev.OutputTokens)

	mu := l.doc.ByModel[ev.Model]
	mu.Calls++
	mu.InputTokens += int64(ev.InputTokens)
	mu.OutputTokens += int64(ev.OutputTokens)
	mu.Cost += cost
	l.doc.ByModel[ev.Model] = mu

	eu := l.doc.ByEndpoint[ev.Endpoint]
	eu.Calls++
	eu.Cost += cost
	l.doc.ByEndpoint[ev.Endpoint] = eu
	if ev.Image {
		l.doc.ImagesGenerated++
		l.doc.Assets = append(l.doc.Assets, AssetRecord{At: at, Model: ev.Model, Cost: cost})
	}

	l.doc.History = append([]Entry{{
		At:           at,
		Model:        ev.Model,
		Endpoint:     ev.Endpoint,
		InputTokens:  ev.InputTokens,
		OutputTokens: ev.OutputTokens,
		Image:        ev.Image,
		Cost:         cost,
	}}, l.doc.History...)
	if len(l.doc.History) > historyCap {
		l.doc.History = l.doc.History[:historyCap]
	}

	l.logger.Debug("Usage tracked.",
		zap.String("model", ev.Model),
		zap.String("endpoint", ev.Endpoint),
		zap.Int("input_tokens", ev.InputTokens),
		zap.Int("output_tokens", ev.OutputTokens),
		zap.Bool("image", ev.Image),
		zap.Float64("cost", cost),
		zap.Float64("total_cost", l.doc.TotalCost),
	)

	return l.persistLocked()
}

// CheckBudget reports whether an estimated spend fits in what remains. A zero
// budget disables the gate entirely.
func (l *Ledger) CheckBudget(estimated float64) schemas.BudgetDecision {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.doc.Budget <= 0 {
		return schemas.BudgetDecision{Allowed: true, Remaining: 0}
	}
	remaining := l.doc.Budget - l.doc.TotalCost
	return schemas.BudgetDecision{
		Allowed:   estimated <= remaining,
		Remaining: remaining,
	}
}

// SetBudget persists a new budget ceiling without touching recorded usage.
func (l *Ledger) SetBudget(budget float64) error {
	if budget < 0 {
		return fmt.Errorf("budget must not be negative, got %.4f", budget)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.doc.Budget = budget
	return l.persistLocked()
}

// Reset clears all recorded usage but keeps the budget.
func (l *Ledger) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	budget := l.doc.Budget
	l.doc = newDocument(budget)
	return l.persistLocked()
}

// Summary returns a copy of the current state; the caller may retain it.
func (l *Ledger) Summary() Summary {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := Summary{
		Budget:            l.doc.Budget,
		Remaining:         l.doc.Budget - l.doc.TotalCost,
		StartedAt:         l.doc.StartedAt,
		APICalls:          l.doc.APICalls,
		TotalCost:         l.doc.TotalCost,
		TotalInputTokens:  l.doc.TotalInputTokens,
		TotalOutputTokens: l.doc.TotalOutputTokens,
		ImagesGenerated:   l.doc.ImagesGenerated,
		ByModel:           make(map[string]ModelUsage, len(l.doc.ByModel)),
		ByEndpoint:        make(map[string]EndpointUsage, len(l.doc.ByEndpoint)),
		History:           append([]Entry(nil), l.doc.History...),
		Assets:            append([]AssetRecord(nil), l.doc.Assets...),
	}
	if l.doc.Budget > 0 {
		s.BudgetPercent = l.doc.TotalCost / l.doc.Budget * 100
	}
	for k, v := range l.doc.ByModel {
		s.ByModel[k] = v
	}
	for k, v := range l.doc.ByEndpoint {
		s.ByEndpoint[k] = v
	}
	return s
}

// EstimateCost prices a hypothetical event without recording it. Callers use
// this to feed CheckBudget before making a model call.
func (l *Ledger) EstimateCost(ev schemas.UsageEvent) float64 {
	return l.prices.Cost(ev)
}

func (l *Ledger) persistLocked() error {
	l.doc.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(l.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal ledger: %w", err)
	}

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create ledger directory %s: %w", dir, err)
	}

	// Write-through via temp file and rename so a crash mid-write never
	// leaves a truncated document.
	tmp, err := os.CreateTemp(dir, ".usage-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp ledger file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close ledger file: %w", err)
	}
	if err := os.Rename(tmpName, l.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace ledger file: %w", err)
	}
	return nil
}
