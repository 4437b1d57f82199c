// internal/patch/patch_test.go
package patch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/restyle-dev/restyle-cli/api/schemas"
)

type scriptedLLM struct {
	mu       sync.Mutex
	response string
	err      error
	calls    []schemas.GenerationRequest
}

func (s *scriptedLLM) Generate(_ context.Context, req schemas.GenerationRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *scriptedLLM) Close() error { return nil }

func (s *scriptedLLM) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func someDefects() []schemas.Defect {
	return []schemas.Defect{
		{ID: "defect-1", Element: "button", Issue: "Padding is cramped", Expected: "12px 24px"},
		{ID: "local-contrast", Element: "button", Issue: "Low contrast text"},
	}
}

func TestPatch_Success(t *testing.T) {
	llm := &scriptedLLM{response: "```jsx\nexport const Button = () => <button style={{padding: '12px 24px'}}>Go</button>;\n```"}
	svc := NewService(llm, zaptest.NewLogger(t))

	res := svc.Patch(context.Background(), "export const Button = () => <button>Go</button>;", someDefects())

	require.True(t, res.Success)
	assert.True(t, strings.HasPrefix(res.Code, "export const Button"))
	assert.NotContains(t, res.Code, "```")

	req := llm.calls[0]
	assert.Equal(t, "surgery", req.Endpoint)
	assert.Equal(t, schemas.TierPowerful, req.Tier)
	assert.Contains(t, req.UserPrompt, "1. ")
	assert.Contains(t, req.UserPrompt, "Padding is cramped")
	assert.Contains(t, req.UserPrompt, "2. ")
}

func TestPatch_EmptyDefectsShortCircuits(t *testing.T) {
	llm := &scriptedLLM{}
	svc := NewService(llm, zaptest.NewLogger(t))

	res := svc.Patch(context.Background(), "const x = 1;", nil)

	assert.False(t, res.Success)
	assert.Equal(t, ErrEmptyDefects.Error(), res.Error)
	assert.Zero(t, llm.callCount(), "precondition failure must not call the model")
}

func TestPatch_EmptyCodeShortCircuits(t *testing.T) {
	llm := &scriptedLLM{}
	svc := NewService(llm, zaptest.NewLogger(t))

	res := svc.Patch(context.Background(), "   \n\t", someDefects())

	assert.False(t, res.Success)
	assert.Equal(t, ErrEmptyCode.Error(), res.Error)
	assert.Zero(t, llm.callCount())
}

func TestPatch_ModelErrorIsCaught(t *testing.T) {
	svc := NewService(&scriptedLLM{err: assert.AnError}, zaptest.NewLogger(t))

	res := svc.Patch(context.Background(), "const x = 1;", someDefects())

	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
	assert.Empty(t, res.Code)
}

func TestPatch_UselessResponseFails(t *testing.T) {
	svc := NewService(&scriptedLLM{response: "Sure！"}, zaptest.NewLogger(t))

	res := svc.Patch(context.Background(), "const x = 1;", someDefects())

	assert.False(t, res.Success)
	assert.Equal(t, res.Success, res.Code != "")
}

func TestPreviewPath(t *testing.T) {
	assert.Equal(t, "src.preview.jsx", PreviewPath("src.jsx", ".preview"))
	assert.Equal(t, "a/b/comp.preview.tsx", PreviewPath("a/b/comp.tsx", ".preview"))
	assert.Equal(t, "Makefile.preview", PreviewPath("Makefile", ".preview"))
	assert.Equal(t, "src.preview.jsx", PreviewPath("src.jsx", ""))
}

func TestWritePreview_NeverTouchesOriginal(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "src.jsx")
	require.NoError(t, os.WriteFile(original, []byte("original content"), 0o644))

	path, err := WritePreview(original, ".preview", "patched content")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "src.preview.jsx"), path)

	preview, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "patched content", string(preview))

	untouched, err := os.ReadFile(original)
	require.NoError(t, err)
	assert.Equal(t, "original content", string(untouched))
}
