package mail

import (
	"context"
	"sync"
)

// MockSender records sent messages for tests.
type MockSender struct {
	mu   sync.Mutex
	Sent []Message
	Err  error
}

func (m *MockSender) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, msg)
	return nil
}

// Last returns the most recently sent message, or nil if none.
func (m *MockSender) Last() *Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return nil
	}
	return &m.Sent[len(m.Sent)-1]
}
