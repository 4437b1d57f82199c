// internal/capture/capture_test.go
package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTarget(t *testing.T) {
	assert.Equal(t, "https://example.com/page", normalizeTarget("https://example.com/page"))
	assert.Equal(t, "http://localhost:3000", normalizeTarget("http://localhost:3000"))
	assert.Equal(t, "file:///tmp/page.html", normalizeTarget("/tmp/page.html"))
}
