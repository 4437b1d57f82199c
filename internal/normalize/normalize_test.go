// internal/normalize/normalize_test.go
package normalize

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDefectReport_ValidPayload(t *testing.T) {
	raw := `{
		"looksGood": false,
		"defects": [
			{"id": "d-1", "element": "button", "issue": "Padding too small", "expected": "12px 24px"},
			{"element": "input", "issue": "Low contrast"}
		],
		"needsAssetGeneration": true,
		"assetGenerationPrompt": "a friendly robot avatar"
	}`

	report := NormalizeDefectReport(raw)

	require.Len(t, report.Defects, 2)
	assert.False(t, report.LooksGood)
	assert.True(t, report.NeedsAssetGeneration)
	assert.Equal(t, "a friendly robot avatar", report.AssetGenerationPrompt)

	assert.Equal(t, "d-1", report.Defects[0].ID, "explicit id must be preserved")
	assert.Equal(t, "12px 24px", report.Defects[0].Expected)
	// Second entry had no id; it is synthesized from its 1-based position.
	assert.Equal(t, "defect-2", report.Defects[1].ID)
	assert.Equal(t, "*", report.Defects[1].SelectorHint)
}

func TestNormalizeDefectReport_MarkdownWrapped(t *testing.T) {
	raw := "```json\n{\"looksGood\": true, \"defects\": [], \"needsAssetGeneration\": false}\n```"

	report := NormalizeDefectReport(raw)

	assert.True(t, report.LooksGood)
	assert.Empty(t, report.Defects)
}

func TestNormalizeDefectReport_ConversationalFraming(t *testing.T) {
	raw := `Sure! Here is my analysis of the screenshot:
{"looksGood": true, "defects": [], "needsAssetGeneration": false}
Let me know if you need anything else.`

	report := NormalizeDefectReport(raw)
	assert.True(t, report.LooksGood)
}

func TestNormalizeDefectReport_LegacyStringDefects(t *testing.T) {
	raw := `{"looksGood": false, "defects": ["Button text is clipped", "Misaligned icon"], "needsAssetGeneration": false}`

	report := NormalizeDefectReport(raw)

	require.Len(t, report.Defects, 2)
	assert.Equal(t, "Button text is clipped", report.Defects[0].Issue)
	assert.Equal(t, "defect-1", report.Defects[0].ID)
	assert.Equal(t, "unknown", report.Defects[0].Element)
	assert.Equal(t, "defect-2", report.Defects[1].ID)
}

// Property: for any malformed input the normalizer produces the fail-safe
// report, and the fail-safe report never claims the page looks good.
func TestNormalizeDefectReport_FailClosed(t *testing.T) {
	cases := map[string]string{
		"empty":               "",
		"whitespace":          "   \n\t ",
		"plain prose":         "I could not find any issues with the screenshot.",
		"truncated json":      `{"looksGood": false, "defects": [{"issue": "cut off`,
		"mistyped looksGood":  `{"looksGood": "yes", "defects": [], "needsAssetGeneration": false}`,
		"mistyped defects":    `{"looksGood": true, "defects": "none", "needsAssetGeneration": false}`,
		"missing defects":     `{"looksGood": true, "needsAssetGeneration": false}`,
		"missing needsAsset":  `{"looksGood": true, "defects": []}`,
		"null required field": `{"looksGood": null, "defects": [], "needsAssetGeneration": false}`,
		"array payload":       `[1, 2, 3]`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			report := NormalizeDefectReport(raw)

			assert.False(t, report.LooksGood, "fallback must never report success")
			require.Len(t, report.Defects, 1)
			assert.Equal(t, "defect-parse-error", report.Defects[0].ID)
			assert.Equal(t, ParseErrorIssue, report.Defects[0].Issue)
			assert.False(t, report.NeedsAssetGeneration)
		})
	}
}

// Property: synthesized ids are unique and match 1-based position order.
func TestNormalizeDefectReport_SynthesizedIDUniqueness(t *testing.T) {
	raw := `{"looksGood": false, "defects": [
		{"issue": "a"}, {"issue": "b"}, {"issue": "c"}, {"issue": "d"}
	], "needsAssetGeneration": false}`

	report := NormalizeDefectReport(raw)

	require.Len(t, report.Defects, 4)
	seen := make(map[string]bool)
	for i, d := range report.Defects {
		assert.Equal(t, fmt.Sprintf("defect-%d", i+1), d.ID)
		assert.False(t, seen[d.ID], "duplicate id %s", d.ID)
		seen[d.ID] = true
	}
}

func TestNormalizePatch_FencedCode(t *testing.T) {
	result := NormalizePatch("```jsx\nconst x = 1;\n```")

	require.True(t, result.Success)
	assert.Equal(t, "const x = 1;", result.Code)
	assert.Empty(t, result.Error)
}

func TestNormalizePatch_BareCode(t *testing.T) {
	code := "export function Button() {\n  return null;\n}"
	result := NormalizePatch("  " + code + "\n")

	require.True(t, result.Success)
	assert.Equal(t, code, result.Code)
}

func TestNormalizePatch_RejectsNearEmptyOutput(t *testing.T) {
	cases := []string{"", "ok", "```\n\n```", "Sure!"}
	for _, raw := range cases {
		result := NormalizePatch(raw)
		assert.False(t, result.Success, "input %q must fail", raw)
		assert.Empty(t, result.Code)
		assert.NotEmpty(t, result.Error)
	}
}

// Invariant: Success == (Code != "") for every normalized patch.
func TestNormalizePatch_SuccessCodeInvariant(t *testing.T) {
	inputs := []string{
		"", "ok", "const notFenced = true;",
		"```css\n.button { padding: 12px 24px; }\n```",
		"```\nshort\n```",
	}
	for _, raw := range inputs {
		result := NormalizePatch(raw)
		assert.Equal(t, result.Success, result.Code != "", "input %q", raw)
	}
}

// Total-function property over arbitrary inputs: never panic, always a
// structurally valid shape.
func FuzzNormalizeDefectReport(f *testing.F) {
	f.Add("")
	f.Add("{")
	f.Add(`{"looksGood": true, "defects": [], "needsAssetGeneration": false}`)
	f.Add("```json\n{\"defects\": [\"x\"]}\n```")
	f.Add(`{"looksGood": false, "defects": [{"issue": 42}], "needsAssetGeneration": false}`)

	f.Fuzz(func(t *testing.T, raw string) {
		report := NormalizeDefectReport(raw)
		if report.Defects == nil {
			t.Fatal("defects must never be nil")
		}
		for _, d := range report.Defects {
			if d.ID == "" || d.Issue == "" {
				t.Fatalf("defect missing required defaults: %+v", d)
			}
		}
	})
}

func FuzzNormalizePatch(f *testing.F) {
	f.Add("```go\npackage main\n```")
	f.Add("plain text")
	f.Fuzz(func(t *testing.T, raw string) {
		result := NormalizePatch(raw)
		if result.Success != (result.Code != "") {
			t.Fatalf("invariant violated for %q: %+v", raw, result)
		}
	})
}
