// internal/normalize/normalize.go
//
// Normalize converts raw, possibly malformed model output into the two fixed
// result schemas. Both entry points are total functions: they never panic and
// never return a structurally invalid value, regardless of input. Language
// model output is adversarial-by-unreliability; this package is the single
// place where that unreliability is absorbed.
package normalize

import (
	"regexp"
	"strings"

	json "github.com/json-iterator/go"

	"github.com/restyle-dev/restyle-cli/api/schemas"
)

var (
	// Regex definitions use \x60 (hex representation) for backticks because Go raw strings cannot contain backticks.

	// jsonObjectRegex extracts a JSON object if the response is wrapped in markdown.
	jsonObjectRegex = regexp.MustCompile("(?s)\x60\x60\x60(?:json)?\\s*({.*})\\s*\x60\x60\x60")
	// jsonArrayRegex extracts a JSON array if the response is wrapped in markdown.
	jsonArrayRegex = regexp.MustCompile("(?s)\x60\x60\x60(?:json)?\\s*(\\[.*\\])\\s*\x60\x60\x60")

	// codeBlockRegex extracts content wrapped in markdown, supporting various language tags (jsx, css, html, etc.).
	codeBlockRegex = regexp.MustCompile("(?s)\x60\x60\x60[a-zA-Z]*\\s*(.*?)\\s*\x60\x60\x60")
)

// ParseErrorIssue is the issue text of the synthetic defect produced when the
// model response could not be decoded. The fallback never claims success:
// unparseable output is routed to manual review, not silently accepted.
const ParseErrorIssue = "⚠️ Parse error — manual review required"

// minPatchLength rejects near-empty patch output. A model that returns a
// couple of characters produced conversational filler, not code.
const minPatchLength = 10

// parseErrorReport is the fail-safe defect report. LooksGood is always false
// here so a broken upstream response can never masquerade as a clean pass.
func parseErrorReport() schemas.DefectReport {
	return schemas.DefectReport{
		LooksGood: false,
		Defects: []schemas.Defect{{
			ID:           "defect-parse-error",
			Element:      "unknown",
			SelectorHint: "*",
			Issue:        ParseErrorIssue,
			Source:       schemas.SourceModel,
		}},
		NeedsAssetGeneration: false,
	}
}

// rawReport shadows DefectReport with pointer fields so that a missing or
// null required field is distinguishable from a zero value. A mistyped field
// fails json.Unmarshal outright, which takes the same fallback path.
type rawReport struct {
	LooksGood             *bool                `json:"looksGood"`
	Defects               *[]schemas.RawDefect `json:"defects"`
	NeedsAssetGeneration  *bool                `json:"needsAssetGeneration"`
	AssetGenerationPrompt string               `json:"assetGenerationPrompt"`
}

// NormalizeDefectReport decodes a raw inspection response into a DefectReport.
// It strips markdown fences, tolerates conversational framing around the JSON,
// accepts both legacy (bare string) and rich defect entries, and falls back to
// the parse-error report on any failure.
func NormalizeDefectReport(response string) (report schemas.DefectReport) {
	defer func() {
		if r := recover(); r != nil {
			report = parseErrorReport()
		}
	}()

	payload := extractJSON(response)

	var raw rawReport
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return parseErrorReport()
	}
	// All three top-level fields are required; treat absence like a parse
	// failure rather than guessing.
	if raw.LooksGood == nil || raw.Defects == nil || raw.NeedsAssetGeneration == nil {
		return parseErrorReport()
	}

	defects := make([]schemas.Defect, 0, len(*raw.Defects))
	for i, rd := range *raw.Defects {
		defects = append(defects, rd.Canonical(i+1))
	}

	return schemas.DefectReport{
		LooksGood:             *raw.LooksGood,
		Defects:               defects,
		NeedsAssetGeneration:  *raw.NeedsAssetGeneration,
		AssetGenerationPrompt: raw.AssetGenerationPrompt,
	}
}

// NormalizePatch decodes a raw surgery response into a PatchResult. If the
// response contains a fenced code block, only the fenced content is kept;
// otherwise the trimmed text is used verbatim. Near-empty output fails.
func NormalizePatch(response string) (result schemas.PatchResult) {
	defer func() {
		if r := recover(); r != nil {
			result = schemas.PatchResult{Success: false, Error: "patch extraction failed"}
		}
	}()

	code := strings.TrimSpace(response)
	if strings.Contains(code, "```") {
		if matches := codeBlockRegex.FindStringSubmatch(code); len(matches) > 1 {
			code = strings.TrimSpace(matches[1])
		}
	}

	if len(code) < minPatchLength {
		return schemas.PatchResult{
			Success: false,
			Error:   "model returned no usable code (output too short)",
		}
	}

	return schemas.PatchResult{Success: true, Code: code}
}

// extractJSON pulls the JSON payload out of a free-text model response. It
// handles the markdown-wrapped case first, then falls back to slicing the
// outermost bracket pair out of conversational text.
func extractJSON(response string) string {
	response = strings.TrimSpace(response)
	payload := response

	isObject := strings.Contains(response, "{")
	isArray := strings.Contains(response, "[")

	if strings.HasPrefix(response, "```") {
		var matches []string
		if isObject {
			matches = jsonObjectRegex.FindStringSubmatch(response)
		}
		if len(matches) <= 1 && isArray {
			matches = jsonArrayRegex.FindStringSubmatch(response)
		}
		if len(matches) > 1 {
			payload = matches[1]
		}
	} else if isObject && !strings.HasPrefix(response, "{") {
		fb := strings.Index(response, "{")
		lb := strings.LastIndex(response, "}")
		if fb != -1 && lb > fb {
			payload = response[fb : lb+1]
		}
	}

	return payload
}
