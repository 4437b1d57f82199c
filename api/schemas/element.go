// api/schemas/element.go
package schemas

// ElementRole is the semantic bucket the heuristic analyzer branches on.
type ElementRole string

const (
	RoleButton  ElementRole = "button"
	RoleInput   ElementRole = "input"
	RoleImage   ElementRole = "image"
	RoleGeneric ElementRole = "generic"
)

// Geometry is the rendered box of an element in CSS pixels.
type Geometry struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// SiblingSnapshot is the subset of sibling state the consistency checks need.
type SiblingSnapshot struct {
	Tag          string      `json:"tag"`
	Role         ElementRole `json:"role"`
	Width        float64     `json:"width"`
	MarginBottom float64     `json:"marginBottom"`
}

// ElementSnapshot is a pure-data capture of one element's computed style and
// geometry. It is everything the local analyzer is allowed to look at: no DOM
// handles, no I/O.
type ElementSnapshot struct {
	Tag          string            `json:"tag"`
	Text         string            `json:"text,omitempty"`
	Selector     string            `json:"selector,omitempty"`
	Role         ElementRole       `json:"role"`
	Styles       map[string]string `json:"styles"`
	Box          Geometry          `json:"box"`
	Siblings     []SiblingSnapshot `json:"siblings,omitempty"`
	ImageSource  string            `json:"imageSource,omitempty"`
	NaturalWidth float64           `json:"naturalWidth,omitempty"`
}

// Style returns a computed style value or the fallback when absent.
func (e ElementSnapshot) Style(property, fallback string) string {
	if v, ok := e.Styles[property]; ok && v != "" {
		return v
	}
	return fallback
}

// ElementContext is the structured fallback submitted to the inspection
// service when no screenshot is obtainable. It mirrors ElementSnapshot but is
// supplied by the caller rather than captured from a live page, and carries
// the detected design-system baseline so the rule table can compare against
// page-wide expectations.
type ElementContext struct {
	Tag          string            `json:"tag"`
	Text         string            `json:"text,omitempty"`
	SelectorHint string            `json:"selectorHint,omitempty"`
	Styles       map[string]string `json:"styles,omitempty"`
	Width        float64           `json:"width,omitempty"`
	Height       float64           `json:"height,omitempty"`
	Baseline     map[string]string `json:"baseline,omitempty"`
}
