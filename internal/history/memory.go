package history

import (
	"context"
	"sync"

	"github.com/comigor/schoolassist-go/internal/conversation"
)

// Memory keeps transcripts in process memory. Nothing survives a restart.
type Memory struct {
	mu       sync.Mutex
	sessions map[string][]conversation.Message
}

func NewMemory() *Memory {
	return &Memory{sessions: make(map[string][]conversation.Message)}
}

func (m *Memory) Append(_ context.Context, sessionID string, msg conversation.Message) (conversation.Message, error) {
	msg = prepare(msg)
	m.mu.Lock()
	m.sessions[sessionID] = append(m.sessions[sessionID], msg)
	m.mu.Unlock()
	return msg, nil
}

func (m *Memory) List(_ context.Context, sessionID string) ([]conversation.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]conversation.Message(nil), m.sessions[sessionID]...), nil
}

func (m *Memory) Clear(_ context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error { return nil }
