// api/schemas/heal.go
package schemas

// PatchResult is the outcome of one code-surgery call. The invariant
// Success == (Code != "") holds for every value the normalizer produces.
type PatchResult struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AssetResult carries generated image data, or a provider-side reference URL
// when the model returned a file handle instead of inline bytes.
type AssetResult struct {
	Success  bool   `json:"success"`
	Image    []byte `json:"-"`
	URL      string `json:"url,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
	Error    string `json:"error,omitempty"`
}

// HealOptions controls one RunHeal invocation.
type HealOptions struct {
	// AutoApply overwrites the original source file with the final code.
	// When false, only the preview artifact is written.
	AutoApply bool `json:"autoApply"`
	// Verify requests re-inspection after a patch. True verification needs a
	// fresh screenshot; without a recapture callback the loop still stops
	// after one patch pass.
	Verify bool `json:"verify"`
	// MaxIterations bounds the inspect/patch loop. Zero means the default (2).
	MaxIterations int `json:"maxIterations"`
}

// DefaultMaxIterations bounds the heal loop when the caller does not say.
const DefaultMaxIterations = 2

// SurgeryOutcome summarizes the patch step of one iteration.
type SurgeryOutcome struct {
	Success    bool `json:"success"`
	CodeLength int  `json:"codeLength"`
}

// HealIterationResult is one entry in the audit trail of a heal run.
type HealIterationResult struct {
	Iteration       int             `json:"iteration"`
	Inspection      *DefectReport   `json:"inspection,omitempty"`
	InspectionError string          `json:"inspectionError,omitempty"`
	Surgery         *SurgeryOutcome `json:"surgery,omitempty"`
	SurgeryError    string          `json:"surgeryError,omitempty"`
}

// HealResult is the final object returned by the orchestrator.
type HealResult struct {
	Success     bool                  `json:"success"`
	RunID       string                `json:"runId"`
	Iterations  []HealIterationResult `json:"iterations"`
	FinalCode   string                `json:"finalCode,omitempty"`
	PreviewPath string                `json:"previewPath,omitempty"`
	AssetPrompt string                `json:"assetPrompt,omitempty"`
	Summary     string                `json:"summary"`
	Error       string                `json:"error,omitempty"`
}
