// api/schemas/interfaces.go
package schemas

import (
	"context"
	"time"
)

// -- LLM Client Schemas & Interfaces --

// ModelTier allows for selecting a model based on a preference for speed
// versus advanced capabilities. The inspection path wants the powerful
// (vision-capable) tier; context-only fallbacks can run on the fast tier.
type ModelTier string

const (
	TierFast     ModelTier = "fast"     // Prefers a faster, potentially less capable model.
	TierPowerful ModelTier = "powerful" // Prefers a more capable, potentially slower model.
)

// ImagePart attaches binary image data to a generation request. The client
// encodes it as an inline part alongside the text prompt.
type ImagePart struct {
	Data     []byte `json:"-"`
	MimeType string `json:"mimeType"`
}

// GenerationOptions controls the text generation process.
type GenerationOptions struct {
	Temperature     float64 `json:"temperature"`       // Controls randomness. Lower is more deterministic.
	ForceJSONFormat bool    `json:"force_json_format"` // If true, forces the model to output valid JSON.
	TopP            float64 `json:"top_p"`
	TopK            int     `json:"top_k"`
}

// GenerationRequest encapsulates a complete request to the LLM: prompts,
// optional image attachments, the desired tier, and generation options.
type GenerationRequest struct {
	SystemPrompt string            `json:"system_prompt"`
	UserPrompt   string            `json:"user_prompt"`
	Images       []ImagePart       `json:"images,omitempty"`
	Tier         ModelTier         `json:"tier"`
	Options      GenerationOptions `json:"options"`
	// Endpoint labels the pipeline stage (inspect | surgery | asset) for
	// usage accounting.
	Endpoint string `json:"endpoint,omitempty"`
}

// LLMClient is a standard interface for a text/vision language model,
// abstracting the specifics of the underlying provider.
type LLMClient interface {
	// Generate produces a text completion based on the provided request.
	Generate(ctx context.Context, req GenerationRequest) (string, error)
	// Close cleans up any resources held by the client.
	Close() error
}

// ImageClient generates image assets from a text prompt.
type ImageClient interface {
	GenerateImage(ctx context.Context, prompt string) (*AssetResult, error)
	Close() error
}

// -- Usage Accounting --

// UsageEvent describes one completed (or about-to-complete) paid API call.
// It is the sole input to the ledger's Track operation.
type UsageEvent struct {
	Model        string    `json:"model"`
	Endpoint     string    `json:"endpoint"` // inspect | surgery | asset
	InputTokens  int       `json:"inputTokens"`
	OutputTokens int       `json:"outputTokens"`
	Image        bool      `json:"image"` // flat per-image pricing applies
	At           time.Time `json:"at"`
}

// BudgetDecision is the answer to a pre-call budget check.
type BudgetDecision struct {
	Allowed   bool    `json:"allowed"`
	Remaining float64 `json:"remaining"`
}

// UsageTracker is the narrow ledger surface the services depend on. The
// concrete ledger is constructed once at process start and injected by
// reference everywhere; there is no package-level singleton.
type UsageTracker interface {
	Track(event UsageEvent) error
	CheckBudget(estimatedCost float64) BudgetDecision
}
