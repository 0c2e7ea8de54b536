package services

import (
	"context"
	"sync"
)

// MockChatModel is a deterministic ChatModel implementation for testing
type MockChatModel struct {
	mu        sync.Mutex
	responses []string
	index     int
	err       error

	// Calls records every message slice passed to Complete
	Calls [][]ChatMessage
}

// NewMockChatModel creates a mock that cycles through the given responses
func NewMockChatModel(responses ...string) *MockChatModel {
	return &MockChatModel{responses: responses}
}

// SetAsMockForTesting sets this mock as the global chat model instance
func (m *MockChatModel) SetAsMockForTesting() {
	SetChatModel(m)
}

// FailWith makes every subsequent Complete call return err
func (m *MockChatModel) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Complete returns the next canned response, or the configured error
func (m *MockChatModel) Complete(_ context.Context, messages []ChatMessage, _ CompletionOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := make([]ChatMessage, len(messages))
	copy(copied, messages)
	m.Calls = append(m.Calls, copied)

	if m.err != nil {
		return "", m.err
	}
	if len(m.responses) == 0 {
		return "", nil
	}

	resp := m.responses[m.index%len(m.responses)]
	m.index++
	return resp, nil
}
