package services

import (
	"context"
	"sync"
)

// SentMessage records one message passed through the mock gateway
type SentMessage struct {
	Recipient string
	Body      string
	Template  string
}

// MockNotificationGateway is an in-memory NotificationGateway for testing
type MockNotificationGateway struct {
	mu       sync.Mutex
	sent     []SentMessage
	err      error
	failFor  map[string]error
	failures int
}

// NewMockNotificationGateway creates an empty mock gateway
func NewMockNotificationGateway() *MockNotificationGateway {
	return &MockNotificationGateway{failFor: make(map[string]error)}
}

// SetAsMockForTesting sets this mock as the global gateway instance
func (m *MockNotificationGateway) SetAsMockForTesting() {
	SetNotificationGateway(m)
}

// FailWith makes every subsequent send return err
func (m *MockNotificationGateway) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// FailRecipientWith makes sends to one recipient return err
func (m *MockNotificationGateway) FailRecipientWith(recipient string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failFor[recipient] = err
}

// FailNext makes the next n sends fail with the configured error, then succeed
func (m *MockNotificationGateway) FailNext(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = n
}

// Sent returns a copy of all messages accepted by the mock
func (m *MockNotificationGateway) Sent() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentMessage, len(m.sent))
	copy(out, m.sent)
	return out
}

// SentTo returns all messages accepted for one recipient
func (m *MockNotificationGateway) SentTo(recipient string) []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []SentMessage
	for _, msg := range m.sent {
		if msg.Recipient == recipient {
			out = append(out, msg)
		}
	}
	return out
}

// SendText records a text message, or fails per configuration
func (m *MockNotificationGateway) SendText(_ context.Context, recipient, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.sendErr(recipient); err != nil {
		return err
	}
	m.sent = append(m.sent, SentMessage{Recipient: recipient, Body: body})
	return nil
}

// SendTemplate records a template message, or fails per configuration
func (m *MockNotificationGateway) SendTemplate(_ context.Context, recipient, templateName string, _ []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.sendErr(recipient); err != nil {
		return err
	}
	m.sent = append(m.sent, SentMessage{Recipient: recipient, Template: templateName})
	return nil
}

func (m *MockNotificationGateway) sendErr(recipient string) error {
	if m.failures > 0 {
		m.failures--
		if m.err != nil {
			return m.err
		}
		return errMockSendFailed
	}
	if m.err != nil {
		return m.err
	}
	if err, ok := m.failFor[recipient]; ok {
		return err
	}
	return nil
}

var errMockSendFailed = &mockSendError{}

type mockSendError struct{}

func (*mockSendError) Error() string { return "mock send failed" }
