// internal/llmclient/helper_test.go
package llmclient

import (
	"context"
	"sync"

	"github.com/restyle-dev/restyle-cli/api/schemas"
)

// fakeTracker records ledger traffic for assertions.
type fakeTracker struct {
	mu       sync.Mutex
	events   []schemas.UsageEvent
	decision schemas.BudgetDecision
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{decision: schemas.BudgetDecision{Allowed: true}}
}

func (f *fakeTracker) Track(ev schemas.UsageEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeTracker) CheckBudget(float64) schemas.BudgetDecision {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.decision
}

func (f *fakeTracker) Events() []schemas.UsageEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]schemas.UsageEvent(nil), f.events...)
}

// stubLLM returns a canned response for router and service tests.
type stubLLM struct {
	mu       sync.Mutex
	response string
	err      error
	calls    []schemas.GenerationRequest
}

func (s *stubLLM) Generate(_ context.Context, req schemas.GenerationRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubLLM) Close() error { return nil }

func (s *stubLLM) Calls() []schemas.GenerationRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]schemas.GenerationRequest(nil), s.calls...)
}
