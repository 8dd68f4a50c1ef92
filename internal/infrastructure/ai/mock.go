package ai

import (
	"context"
	"sync"
)

// MockProvider is a canned CompletionProvider for tests and local
// development without an API key.
type MockProvider struct {
	mu      sync.Mutex
	Reply   string
	Err     error
	Calls   int
	Prompts []string
}

func NewMockProvider(reply string) *MockProvider {
	return &MockProvider{Reply: reply}
}

func (m *MockProvider) Complete(_ context.Context, systemPrompt, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls++
	m.Prompts = append(m.Prompts, systemPrompt)

	if m.Err != nil {
		return "", m.Err
	}
	return m.Reply, nil
}
