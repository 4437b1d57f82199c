// internal/style/style_test.go
package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		input string
		want  Color
		ok    bool
	}{
		{"#fff", Color{255, 255, 255, 255}, true},
		{"#1a2b3c", Color{26, 43, 60, 255}, true},
		{"#1a2b3c80", Color{26, 43, 60, 128}, true},
		{"rgb(20, 20, 20)", Color{20, 20, 20, 255}, true},
		{"rgba(250, 250, 250, 0.5)", Color{250, 250, 250, 128}, true},
		{"rgb(100% 0% 0%)", Color{255, 0, 0, 255}, true},
		{"white", Color{255, 255, 255, 255}, true},
		{"transparent", Color{0, 0, 0, 0}, true},
		{"currentColor", Color{0, 0, 0, 255}, false},
		{"#12", Color{}, false},
		{"", Color{0, 0, 0, 255}, false},
	}

	for _, tt := range tests {
		got, ok := ParseColor(tt.input)
		assert.Equal(t, tt.ok, ok, "input %q", tt.input)
		if tt.ok {
			assert.Equal(t, tt.want, got, "input %q", tt.input)
		}
	}
}

func TestContrastRatio(t *testing.T) {
	white := Color{255, 255, 255, 255}
	black := Color{0, 0, 0, 255}

	ratio := ContrastRatio(white, black)
	assert.InDelta(t, 21.0, ratio, 0.1)

	// Symmetry: argument order must not matter.
	assert.InDelta(t, ratio, ContrastRatio(black, white), 0.0001)

	// Near-identical dark grays barely contrast at all.
	low := ContrastRatio(Color{20, 20, 20, 255}, Color{30, 30, 30, 255})
	assert.Less(t, low, 3.0)
	assert.GreaterOrEqual(t, low, 1.0)

	// Near-black on near-white is comfortably above 10:1.
	high := ContrastRatio(Color{10, 10, 11, 255}, Color{250, 250, 250, 255})
	assert.Greater(t, high, 10.0)
}

func TestParseDeclarations(t *testing.T) {
	decls := ParseDeclarations("padding: 12px 24px; color: #333; border-radius: 8px")

	require.Len(t, decls, 3)
	assert.Equal(t, "padding", decls[0].Property)
	assert.Equal(t, "12px 24px", decls[0].Value)
	assert.Equal(t, "#333", decls[1].Value)
}

// Multi-line values with commas (box-shadow) must survive as one declaration;
// naive line splitting would shred them.
func TestParseDeclarations_MultiLineValues(t *testing.T) {
	input := `box-shadow: 0 1px 2px rgba(0, 0, 0, 0.1),
               0 4px 12px rgba(0, 0, 0, 0.15);
	           color: white`

	decls := ParseDeclarations(input)

	require.Len(t, decls, 2)
	assert.Equal(t, "box-shadow", decls[0].Property)
	assert.Contains(t, decls[0].Value, "0 4px 12px")
	assert.Equal(t, "color", decls[1].Property)
}

func TestParseDeclarations_Malformed(t *testing.T) {
	assert.Empty(t, ParseDeclarations(""))
	assert.Empty(t, ParseDeclarations(";;;"))
	assert.Empty(t, ParseDeclarations("no colon here"))

	// A broken declaration must not poison its neighbors.
	decls := ParseDeclarations("???: x; padding: 4px")
	require.Len(t, decls, 1)
	assert.Equal(t, "padding", decls[0].Property)
}

func TestParseDeclarations_Important(t *testing.T) {
	decls := ParseDeclarations("color: red !important")
	require.Len(t, decls, 1)
	assert.True(t, decls[0].Important)
	assert.Equal(t, "red", decls[0].Value)
}

func TestParsePadding(t *testing.T) {
	assert.Equal(t, PaddingBox{4, 4, 4, 4}, ParsePadding("4px"))
	assert.Equal(t, PaddingBox{12, 24, 12, 24}, ParsePadding("12px 24px"))
	assert.Equal(t, PaddingBox{1, 2, 3, 2}, ParsePadding("1px 2px 3px"))
	assert.Equal(t, PaddingBox{1, 2, 3, 4}, ParsePadding("1px 2px 3px 4px"))
	assert.Equal(t, PaddingBox{}, ParsePadding(""))
}

func TestParsePx(t *testing.T) {
	assert.Equal(t, 12.0, ParsePx("12px"))
	assert.Equal(t, 12.5, ParsePx(" 12.5PX "))
	assert.Equal(t, 8.0, ParsePx("8"))
	assert.Equal(t, 0.0, ParsePx("1.5rem"))
	assert.Equal(t, 0.0, ParsePx("auto"))
}
