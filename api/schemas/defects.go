// api/schemas/defects.go
package schemas

import (
	"fmt"
	"strings"

	json "github.com/json-iterator/go"
)

// DefectSource identifies which analyzer produced a defect. Local defects come
// from the synchronous heuristic analyzer; model defects from the vision call.
type DefectSource string

const (
	SourceLocal DefectSource = "local"
	SourceModel DefectSource = "model"
)

// Defect is a single identified visual/styling problem on one UI element.
// This is the canonical ("rich") shape: the normalizer collapses the legacy
// bare-string form into it at the boundary, so internal code never sees
// anything else.
type Defect struct {
	ID           string            `json:"id"`
	Element      string            `json:"element"`
	ElementText  string            `json:"elementText,omitempty"`
	SelectorHint string            `json:"selectorHint"`
	Issue        string            `json:"issue"`
	Expected     string            `json:"expected,omitempty"`
	Why          string            `json:"why,omitempty"`
	// AutoFix maps style properties to corrected values when a mechanical fix
	// is known. Only locally-generated defects carry it.
	AutoFix map[string]string `json:"autoFix,omitempty"`
	// NeedsAsset marks a defect that cannot be fixed in code (broken or
	// placeholder image); the orchestrator routes it to an asset suggestion.
	NeedsAsset bool         `json:"needsAsset,omitempty"`
	Source     DefectSource `json:"source,omitempty"`
}

// Describe renders the defect as a single human-readable line, suitable for
// embedding in a patch prompt.
func (d Defect) Describe() string {
	var b strings.Builder
	b.WriteString(d.Issue)
	if d.Element != "" && d.Element != "unknown" {
		fmt.Fprintf(&b, " (element: %s", d.Element)
		if d.ElementText != "" {
			fmt.Fprintf(&b, " %q", truncate(d.ElementText, 40))
		}
		b.WriteString(")")
	}
	if d.Expected != "" {
		fmt.Fprintf(&b, "; expected: %s", d.Expected)
	}
	return b.String()
}

// RawDefect accepts the two shapes language models actually produce: a bare
// string (treated as the issue text) or a rich object. It exists only for
// decoding; call Canonical to obtain a Defect.
type RawDefect struct {
	legacy string
	fields Defect
	isStr  bool
}

// UnmarshalJSON implements the string-or-object union.
func (r *RawDefect) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		r.legacy = s
		r.isStr = true
		return nil
	}
	var d Defect
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	r.fields = d
	return nil
}

// Canonical collapses the union into the rich shape, applying field defaults.
// The position argument is 1-based and used to synthesize a stable id when the
// source omitted one.
func (r RawDefect) Canonical(position int) Defect {
	d := r.fields
	if r.isStr {
		d = Defect{Issue: r.legacy}
	}
	if d.ID == "" {
		d.ID = fmt.Sprintf("defect-%d", position)
	}
	if d.Element == "" {
		d.Element = "unknown"
	}
	if d.SelectorHint == "" {
		d.SelectorHint = "*"
	}
	if d.Issue == "" {
		d.Issue = "Unknown issue"
	}
	if d.Source == "" {
		d.Source = SourceModel
	}
	return d
}

// DefectReport is the top-level inspection result. Defects keep detection
// order and are not deduplicated here; dedup happens when local and model
// reports are merged by the orchestrator.
type DefectReport struct {
	LooksGood             bool     `json:"looksGood"`
	Defects               []Defect `json:"defects"`
	NeedsAssetGeneration  bool     `json:"needsAssetGeneration"`
	AssetGenerationPrompt string   `json:"assetGenerationPrompt,omitempty"`
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
