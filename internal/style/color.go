// internal/style/color.go
package style

import (
	"regexp"
	"strconv"
	"strings"
)

// Color is an 8-bit-per-channel RGBA color.
type Color struct {
	R, G, B, A uint8
}

// cssColors covers the named colors the heuristic checks actually encounter.
var cssColors = map[string]Color{
	"black":       {0, 0, 0, 255},
	"white":       {255, 255, 255, 255},
	"red":         {255, 0, 0, 255},
	"green":       {0, 128, 0, 255},
	"blue":        {0, 0, 255, 255},
	"gray":        {128, 128, 128, 255},
	"grey":        {128, 128, 128, 255},
	"transparent": {0, 0, 0, 0},
}

// ParseColor parses hex, rgb()/rgba(), and a small set of named colors.
// The second return value reports whether the input was understood.
func ParseColor(value string) (Color, bool) {
	value = strings.TrimSpace(strings.ToLower(value))

	if color, ok := cssColors[value]; ok {
		return color, true
	}

	if strings.HasPrefix(value, "#") {
		return parseHexColor(value)
	}

	if strings.HasPrefix(value, "rgb") {
		return parseRGBColor(value)
	}

	return Color{0, 0, 0, 255}, false
}

func parseHexColor(hex string) (Color, bool) {
	hex = strings.TrimPrefix(hex, "#")
	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 3:
		r = hexDigit(hex[0]) * 17
		g = hexDigit(hex[1]) * 17
		b = hexDigit(hex[2]) * 17
	case 4:
		r = hexDigit(hex[0]) * 17
		g = hexDigit(hex[1]) * 17
		b = hexDigit(hex[2]) * 17
		a = hexDigit(hex[3]) * 17
	case 6:
		r = hexDigit(hex[0])<<4 | hexDigit(hex[1])
		g = hexDigit(hex[2])<<4 | hexDigit(hex[3])
		b = hexDigit(hex[4])<<4 | hexDigit(hex[5])
	case 8:
		r = hexDigit(hex[0])<<4 | hexDigit(hex[1])
		g = hexDigit(hex[2])<<4 | hexDigit(hex[3])
		b = hexDigit(hex[4])<<4 | hexDigit(hex[5])
		a = hexDigit(hex[6])<<4 | hexDigit(hex[7])
	default:
		return Color{}, false
	}
	return Color{R: r, G: g, B: b, A: a}, true
}

func hexDigit(c byte) uint8 {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}

var rgbRegex = regexp.MustCompile(`rgba?\((.*?)\)`)

func parseRGBColor(value string) (Color, bool) {
	matches := rgbRegex.FindStringSubmatch(value)
	if len(matches) != 2 {
		return Color{}, false
	}

	parts := strings.FieldsFunc(matches[1], func(r rune) bool {
		return r == ',' || r == ' ' || r == '/'
	})

	var values []string
	for _, p := range parts {
		if p != "" && len(values) < 4 {
			values = append(values, p)
		}
	}

	if len(values) < 3 {
		return Color{}, false
	}

	c := Color{
		R: parseColorComponent(values[0], false),
		G: parseColorComponent(values[1], false),
		B: parseColorComponent(values[2], false),
		A: 255,
	}
	if len(values) == 4 {
		c.A = parseColorComponent(values[3], true)
	}
	return c, true
}

func parseColorComponent(value string, isAlpha bool) uint8 {
	value = strings.TrimSpace(value)

	if strings.HasSuffix(value, "%") {
		percent, err := strconv.ParseFloat(strings.TrimSuffix(value, "%"), 64)
		if err != nil {
			return 0
		}
		return uint8(clamp(percent/100.0*255.0+0.5, 0, 255))
	}

	if isAlpha {
		val, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 255
		}
		return uint8(clamp(val*255.0+0.5, 0, 255))
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		if fval, ferr := strconv.ParseFloat(value, 64); ferr == nil {
			return uint8(clamp(fval+0.5, 0, 255))
		}
		return 0
	}
	return uint8(clamp(float64(val), 0, 255))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
