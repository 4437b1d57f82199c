// internal/style/contrast.go
package style

import "math"

// RelativeLuminance computes the WCAG relative luminance of a color: each
// channel is gamma-corrected, then weighted by the 0.2126/0.7152/0.0722
// coefficients.
func RelativeLuminance(c Color) float64 {
	r := linearize(float64(c.R) / 255.0)
	g := linearize(float64(c.G) / 255.0)
	b := linearize(float64(c.B) / 255.0)
	return 0.2126*r + 0.7152*g + 0.0722*b
}

func linearize(ch float64) float64 {
	if ch <= 0.03928 {
		return ch / 12.92
	}
	return math.Pow((ch+0.055)/1.055, 2.4)
}

// ContrastRatio returns the WCAG contrast ratio between two colors, always
// >= 1 regardless of argument order.
func ContrastRatio(a, b Color) float64 {
	la := RelativeLuminance(a)
	lb := RelativeLuminance(b)
	lighter := math.Max(la, lb)
	darker := math.Min(la, lb)
	return (lighter + 0.05) / (darker + 0.05)
}
