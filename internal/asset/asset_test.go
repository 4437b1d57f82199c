// internal/asset/asset_test.go
package asset

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/restyle-dev/restyle-cli/api/schemas"
)

type scriptedImageClient struct {
	mu     sync.Mutex
	result *schemas.AssetResult
	err    error
	calls  []string
}

func (s *scriptedImageClient) GenerateImage(_ context.Context, prompt string) (*schemas.AssetResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, prompt)
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *scriptedImageClient) Close() error { return nil }

func (s *scriptedImageClient) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type gateTracker struct {
	decision schemas.BudgetDecision
	tracked  int
}

func (g *gateTracker) Track(schemas.UsageEvent) error { g.tracked++; return nil }
func (g *gateTracker) CheckBudget(float64) schemas.BudgetDecision {
	return g.decision
}

func TestGenerate_Success(t *testing.T) {
	client := &scriptedImageClient{result: &schemas.AssetResult{
		Success:  true,
		Image:    []byte{1, 2, 3},
		MimeType: "image/png",
	}}
	svc := NewService(client, &gateTracker{decision: schemas.BudgetDecision{Allowed: true}}, 0.04, zaptest.NewLogger(t))

	res := svc.Generate(context.Background(), "a friendly robot mascot", ContextIcon, ThemeDark, "")

	require.True(t, res.Success)
	assert.Equal(t, []byte{1, 2, 3}, res.Image)

	require.Len(t, client.calls, 1)
	assert.Contains(t, client.calls[0], "a friendly robot mascot")
	assert.Contains(t, client.calls[0], "flat icon")
	assert.Contains(t, client.calls[0], "Dark color palette")
}

func TestGenerate_BudgetRejectedMakesNoNetworkCall(t *testing.T) {
	client := &scriptedImageClient{result: &schemas.AssetResult{Success: true}}
	tracker := &gateTracker{decision: schemas.BudgetDecision{Allowed: false, Remaining: 0.01}}
	svc := NewService(client, tracker, 0.04, zaptest.NewLogger(t))

	res := svc.Generate(context.Background(), "a hero banner", ContextHero, "", "")

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "budget")
	assert.Zero(t, client.callCount(), "budget rejection must cost zero network calls")
	assert.Zero(t, tracker.tracked)
}

func TestGenerate_EmptyPrompt(t *testing.T) {
	client := &scriptedImageClient{}
	svc := NewService(client, nil, 0.04, zaptest.NewLogger(t))

	res := svc.Generate(context.Background(), "   ", "", "", "")

	assert.False(t, res.Success)
	assert.Zero(t, client.callCount())
}

func TestGenerate_ClientErrorIsCaught(t *testing.T) {
	svc := NewService(&scriptedImageClient{err: assert.AnError}, nil, 0.04, zaptest.NewLogger(t))

	res := svc.Generate(context.Background(), "an avatar", ContextAvatar, "", "")

	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
}

func TestGenerate_WritesToDisk(t *testing.T) {
	client := &scriptedImageClient{result: &schemas.AssetResult{
		Success:  true,
		Image:    []byte("png bytes"),
		MimeType: "image/png",
	}}
	svc := NewService(client, nil, 0.04, zaptest.NewLogger(t))
	out := filepath.Join(t.TempDir(), "asset.png")

	res := svc.Generate(context.Background(), "an icon", ContextIcon, ThemeLight, out)

	require.True(t, res.Success)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "png bytes", string(data))
}

func TestBuildPrompt_FallbacksNeverFail(t *testing.T) {
	cases := []struct {
		name         string
		usageContext string
		theme        string
		want         string
	}{
		{"known context and theme", ContextAvatar, ThemeLight, "profile avatar"},
		{"unknown context falls back to general", "banner-ish", "", "modern web UI"},
		{"unknown theme is dropped", ContextCard, "sepia", "card thumbnail"},
		{"empty everything", "", "", "modern web UI"},
		{"case insensitive", "ICON", "DARK", "flat icon"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := BuildPrompt("base prompt", tc.usageContext, tc.theme)
			assert.Contains(t, got, "base prompt")
			assert.Contains(t, got, tc.want)
		})
	}

	// Unknown theme contributes nothing rather than erroring.
	assert.NotContains(t, BuildPrompt("p", ContextCard, "sepia"), "sepia")
}
