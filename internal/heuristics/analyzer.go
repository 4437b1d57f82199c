// internal/heuristics/analyzer.go
//
// The local heuristic analyzer is a synchronous, rule-based defect detector.
// It inspects computed-style and geometry snapshots only: no network, no AI,
// no DOM handles. Given the same snapshot and baseline it always produces the
// same defects, so it can run before (and independently of) the remote
// inspection path and give the caller instant partial results.
package heuristics

import (
	"fmt"
	"math"
	"strings"

	"github.com/restyle-dev/restyle-cli/api/schemas"
	"github.com/restyle-dev/restyle-cli/internal/config"
	"github.com/restyle-dev/restyle-cli/internal/style"
)

// Analyzer applies the heuristic rule set with configured thresholds.
type Analyzer struct {
	cfg config.AnalyzerConfig
}

// NewAnalyzer builds an analyzer. Zero-valued thresholds are replaced with
// the documented defaults so a partially-filled config cannot disable checks
// by accident.
func NewAnalyzer(cfg config.AnalyzerConfig) *Analyzer {
	if cfg.MinVerticalPaddingPx == 0 {
		cfg.MinVerticalPaddingPx = 8
	}
	if cfg.MinFontSizePx == 0 {
		cfg.MinFontSizePx = 14
	}
	if cfg.ContrastFloor == 0 {
		cfg.ContrastFloor = 3.0
	}
	if cfg.SiblingWidthRatio == 0 {
		cfg.SiblingWidthRatio = 0.9
	}
	if cfg.SpacingTolerancePx == 0 {
		cfg.SpacingTolerancePx = 8
	}
	if cfg.SiblingSampleLimit == 0 {
		cfg.SiblingSampleLimit = 5
	}
	return &Analyzer{cfg: cfg}
}

// Analyze runs every applicable check against one element snapshot. The
// returned defects carry AutoFix patches whenever the remediation is a direct
// style-property assignment.
func (a *Analyzer) Analyze(snap schemas.ElementSnapshot, baseline Baseline) []schemas.Defect {
	defects := make([]schemas.Defect, 0, 4)

	role := snap.Role
	if role == "" {
		role = DetectRole(snap.Tag)
	}

	switch role {
	case schemas.RoleImage:
		if d, ok := a.checkImageSource(snap); ok {
			defects = append(defects, d)
		}
	case schemas.RoleButton, schemas.RoleInput:
		if d, ok := a.checkPadding(snap, role, baseline); ok {
			defects = append(defects, d)
		}
		if d, ok := a.checkCornerRadius(snap, baseline); ok {
			defects = append(defects, d)
		}
		if d, ok := a.checkContrast(snap); ok {
			defects = append(defects, d)
		}
		if d, ok := a.checkFontSize(snap); ok {
			defects = append(defects, d)
		}
		if role == schemas.RoleInput {
			if d, ok := a.checkSiblingWidth(snap); ok {
				defects = append(defects, d)
			}
		}
		if d, ok := a.checkSpacing(snap); ok {
			defects = append(defects, d)
		}
	default:
		if d, ok := a.checkContrast(snap); ok {
			defects = append(defects, d)
		}
		if d, ok := a.checkSpacing(snap); ok {
			defects = append(defects, d)
		}
	}

	return defects
}

// DetectRole buckets a tag into the semantic role the checks branch on.
func DetectRole(tag string) schemas.ElementRole {
	switch strings.ToLower(tag) {
	case "button":
		return schemas.RoleButton
	case "input", "select", "textarea":
		return schemas.RoleInput
	case "img", "image", "picture", "svg":
		return schemas.RoleImage
	default:
		return schemas.RoleGeneric
	}
}

func (a *Analyzer) checkPadding(snap schemas.ElementSnapshot, role schemas.ElementRole, baseline Baseline) (schemas.Defect, bool) {
	raw := snap.Style("padding", "")
	if raw == "" {
		return schemas.Defect{}, false
	}
	box := style.ParsePadding(raw)
	vertical := math.Min(box.Top, box.Bottom)
	if vertical >= a.cfg.MinVerticalPaddingPx {
		return schemas.Defect{}, false
	}

	expected := baseline.PaddingFor(role)
	return a.newDefect(snap, "local-padding",
		fmt.Sprintf("Padding is too tight (%s); interactive elements need breathing room", raw),
		expected,
		"Consistent padding keeps touch targets comfortable and aligned with the page's design system",
		map[string]string{"padding": expected},
	), true
}

func (a *Analyzer) checkCornerRadius(snap schemas.ElementSnapshot, baseline Baseline) (schemas.Defect, bool) {
	if baseline.CornerRadiusPx < 4 {
		// No meaningful rounded-corner convention detected on this page.
		return schemas.Defect{}, false
	}
	raw := snap.Style("border-radius", "0")
	radius := style.ParsePx(raw)
	// Flag only when far below convention: under half the baseline and more
	// than 2px absolute difference, so 7px vs 8px never fires.
	if radius >= baseline.CornerRadiusPx*0.5 || baseline.CornerRadiusPx-radius <= 2 {
		return schemas.Defect{}, false
	}

	expected := fmt.Sprintf("%gpx", baseline.CornerRadiusPx)
	return a.newDefect(snap, "local-radius",
		fmt.Sprintf("Corner radius %s is far below the page convention of %s", raw, expected),
		expected,
		"Mismatched corner radii make one control look foreign next to its peers",
		map[string]string{"border-radius": expected},
	), true
}

func (a *Analyzer) checkContrast(snap schemas.ElementSnapshot) (schemas.Defect, bool) {
	bgRaw := snap.Style("background-color", snap.Style("background", ""))
	fgRaw := snap.Style("color", "")
	if bgRaw == "" || fgRaw == "" {
		return schemas.Defect{}, false
	}
	bg, okBg := style.ParseColor(bgRaw)
	fg, okFg := style.ParseColor(fgRaw)
	if !okBg || !okFg || bg.A == 0 {
		return schemas.Defect{}, false
	}

	ratio := style.ContrastRatio(bg, fg)
	if ratio >= a.cfg.ContrastFloor {
		return schemas.Defect{}, false
	}

	return a.newDefect(snap, "local-contrast",
		fmt.Sprintf("Text contrast ratio %.2f:1 is below the %.1f:1 floor", ratio, a.cfg.ContrastFloor),
		fmt.Sprintf("contrast ratio of at least %.1f:1 between %s and %s", a.cfg.ContrastFloor, fgRaw, bgRaw),
		"Low contrast text is unreadable for a large share of users",
		nil,
	), true
}

func (a *Analyzer) checkFontSize(snap schemas.ElementSnapshot) (schemas.Defect, bool) {
	raw := snap.Style("font-size", "")
	if raw == "" {
		return schemas.Defect{}, false
	}
	size := style.ParsePx(raw)
	if size <= 0 || size >= a.cfg.MinFontSizePx {
		return schemas.Defect{}, false
	}

	expected := fmt.Sprintf("%gpx", a.cfg.MinFontSizePx)
	return a.newDefect(snap, "local-font-size",
		fmt.Sprintf("Font size %s is below the %s readability floor", raw, expected),
		expected,
		"Small control text fails readability on standard-density displays",
		map[string]string{"font-size": expected},
	), true
}

func (a *Analyzer) checkSiblingWidth(snap schemas.ElementSnapshot) (schemas.Defect, bool) {
	if len(snap.Siblings) == 0 || snap.Box.Width <= 0 {
		return schemas.Defect{}, false
	}
	var widest float64
	for _, s := range snap.Siblings {
		if s.Role == schemas.RoleInput && s.Width > widest {
			widest = s.Width
		}
	}
	if widest <= 0 || snap.Box.Width >= widest*a.cfg.SiblingWidthRatio {
		return schemas.Defect{}, false
	}

	return a.newDefect(snap, "local-width",
		fmt.Sprintf("Input width %.0fpx is narrower than sibling form inputs (%.0fpx)", snap.Box.Width, widest),
		"100%",
		"Form inputs in one group should share a common width",
		map[string]string{"width": "100%"},
	), true
}

func (a *Analyzer) checkSpacing(snap schemas.ElementSnapshot) (schemas.Defect, bool) {
	// With no comparison set there is nothing to be inconsistent with; skip
	// rather than produce a false positive.
	if len(snap.Siblings) == 0 {
		return schemas.Defect{}, false
	}
	raw := snap.Style("margin-bottom", "")
	if raw == "" {
		return schemas.Defect{}, false
	}
	own := style.ParsePx(raw)

	limit := a.cfg.SiblingSampleLimit
	var sum float64
	var count int
	for _, s := range snap.Siblings {
		if count >= limit {
			break
		}
		sum += s.MarginBottom
		count++
	}
	if count == 0 {
		return schemas.Defect{}, false
	}
	mean := sum / float64(count)
	if math.Abs(own-mean) <= a.cfg.SpacingTolerancePx {
		return schemas.Defect{}, false
	}

	expected := fmt.Sprintf("%.0fpx", mean)
	return a.newDefect(snap, "local-spacing",
		fmt.Sprintf("Bottom margin %s deviates from the sibling rhythm of %s", raw, expected),
		expected,
		"Uneven vertical rhythm between repeated elements reads as sloppy",
		map[string]string{"margin-bottom": expected},
	), true
}

func (a *Analyzer) checkImageSource(snap schemas.ElementSnapshot) (schemas.Defect, bool) {
	src := strings.TrimSpace(snap.ImageSource)
	broken := src == "" ||
		strings.Contains(strings.ToLower(src), "placeholder") ||
		snap.NaturalWidth == 0
	if !broken {
		return schemas.Defect{}, false
	}

	d := a.newDefect(snap, "local-asset",
		"Image has a missing or placeholder source",
		"a real image asset matching the surrounding content",
		"Placeholder imagery ships broken-looking UI to users",
		nil,
	)
	d.NeedsAsset = true
	return d, true
}

func (a *Analyzer) newDefect(snap schemas.ElementSnapshot, id, issue, expected, why string, autoFix map[string]string) schemas.Defect {
	selector := snap.Selector
	if selector == "" {
		selector = snap.Tag
	}
	if selector == "" {
		selector = "*"
	}
	element := snap.Tag
	if element == "" {
		element = "unknown"
	}
	return schemas.Defect{
		ID:           id,
		Element:      element,
		ElementText:  snap.Text,
		SelectorHint: selector,
		Issue:        issue,
		Expected:     expected,
		Why:          why,
		AutoFix:      autoFix,
		Source:       schemas.SourceLocal,
	}
}
