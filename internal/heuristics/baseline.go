// internal/heuristics/baseline.go
package heuristics

import (
	"sort"
	"sync"

	"github.com/restyle-dev/restyle-cli/api/schemas"
	"github.com/restyle-dev/restyle-cli/internal/style"
)

// Baseline is the detected page-wide design system: the statistically most
// common style values across same-role elements. Checks compare the target
// element against it; missing fields fall back to hardcoded defaults.
type Baseline struct {
	ButtonPadding  string
	InputPadding   string
	CornerRadiusPx float64
	FontSizePx     float64
}

// Fallback values used when the page offered nothing to sample.
const (
	FallbackButtonPadding = "12px 24px"
	FallbackInputPadding  = "8px 12px"
)

// ComputeBaseline derives a Baseline from page-wide samples of button-like and
// input-like elements by taking the mode of each style dimension.
func ComputeBaseline(samples []schemas.ElementSnapshot) Baseline {
	var b Baseline

	var buttonPaddings, inputPaddings []string
	var radii, fontSizes []float64

	for _, s := range samples {
		switch s.Role {
		case schemas.RoleButton:
			if p := s.Style("padding", ""); p != "" {
				buttonPaddings = append(buttonPaddings, p)
			}
		case schemas.RoleInput:
			if p := s.Style("padding", ""); p != "" {
				inputPaddings = append(inputPaddings, p)
			}
		default:
			continue
		}
		if r := s.Style("border-radius", ""); r != "" {
			radii = append(radii, style.ParsePx(r))
		}
		if f := s.Style("font-size", ""); f != "" {
			fontSizes = append(fontSizes, style.ParsePx(f))
		}
	}

	b.ButtonPadding = stringMode(buttonPaddings)
	b.InputPadding = stringMode(inputPaddings)
	b.CornerRadiusPx = floatMode(radii)
	b.FontSizePx = floatMode(fontSizes)
	return b
}

// PaddingFor returns the expected padding for a role, falling back to the
// hardcoded defaults when the baseline has no sampled value.
func (b Baseline) PaddingFor(role schemas.ElementRole) string {
	switch role {
	case schemas.RoleInput:
		if b.InputPadding != "" {
			return b.InputPadding
		}
		return FallbackInputPadding
	default:
		if b.ButtonPadding != "" {
			return b.ButtonPadding
		}
		return FallbackButtonPadding
	}
}

// BaselineCache memoizes the computed baseline for the lifetime of a page
// session. Invalidate must be called on navigation or reset; there is no
// implicit page-lifetime coupling.
type BaselineCache struct {
	mu      sync.Mutex
	sampler func() []schemas.ElementSnapshot
	value   Baseline
	valid   bool
}

// NewBaselineCache wires a sampler that produces the page-wide element
// snapshots on demand. The sampler runs at most once per validity window.
func NewBaselineCache(sampler func() []schemas.ElementSnapshot) *BaselineCache {
	return &BaselineCache{sampler: sampler}
}

// Get returns the memoized baseline, computing it on first use.
func (c *BaselineCache) Get() Baseline {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.valid {
		var samples []schemas.ElementSnapshot
		if c.sampler != nil {
			samples = c.sampler()
		}
		c.value = ComputeBaseline(samples)
		c.valid = true
	}
	return c.value
}

// Invalidate drops the memoized value; the next Get resamples.
func (c *BaselineCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid = false
}

// stringMode returns the most frequent value; ties break lexicographically so
// the result is deterministic.
func stringMode(values []string) string {
	if len(values) == 0 {
		return ""
	}
	counts := make(map[string]int)
	for _, v := range values {
		counts[v]++
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	best, bestCount := "", 0
	for _, k := range keys {
		if counts[k] > bestCount {
			best, bestCount = k, counts[k]
		}
	}
	return best
}

func floatMode(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	counts := make(map[float64]int)
	for _, v := range values {
		counts[v]++
	}
	keys := make([]float64, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Float64s(keys)
	var best float64
	bestCount := 0
	for _, k := range keys {
		if counts[k] > bestCount {
			best, bestCount = k, counts[k]
		}
	}
	return best
}
