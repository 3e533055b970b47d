package llm

import (
	"context"
	"strings"
)

// MockGenerator returns canned answers for tests. If Answer is empty it
// echoes the first line of the user prompt.
type MockGenerator struct {
	Answer string
	// Calls records the prompts seen, in order.
	Calls []struct{ System, User string }
}

// Generate records the call and returns the canned answer.
func (m *MockGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m.Calls = append(m.Calls, struct{ System, User string }{systemPrompt, userPrompt})
	if m.Answer != "" {
		return m.Answer, nil
	}
	if i := strings.IndexByte(userPrompt, '\n'); i >= 0 {
		return userPrompt[:i], nil
	}
	return userPrompt, nil
}

// Close is a no-op.
func (m *MockGenerator) Close() error { return nil }
