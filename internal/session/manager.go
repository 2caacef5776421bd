package session

import (
	"context"
	"fmt"
	"html"
	"sync"
	"time"

	"github.com/comigor/schoolassist-go/internal/conversation"
	"github.com/comigor/schoolassist-go/internal/format"
	"github.com/comigor/schoolassist-go/internal/logger"
	"github.com/comigor/schoolassist-go/internal/metrics"
)

// DefaultID names the session used when a caller does not pick one.
const DefaultID = "default"

// Manager hands out sessions by ID, creating them on first use. IDs only
// namespace transcripts; nothing authenticates the caller.
type Manager struct {
	deps Deps

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(deps Deps) *Manager {
	return &Manager{
		deps:     deps.withDefaults(),
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for id, seeding a new one with the welcome message.
// A session is only cached once seeding succeeded, and the manager lock is
// held meanwhile so nobody can send into an unseeded session.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		id = DefaultID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	s := New(id, m.deps)
	if err := s.seed(ctx); err != nil {
		return nil, fmt.Errorf("seed session %s: %w", id, err)
	}
	m.sessions[id] = s
	return s, nil
}

// Complete answers text against a caller-supplied history without touching
// any stored transcript. Generation errors are returned as is.
func (m *Manager) Complete(ctx context.Context, past []conversation.Message, text string) (string, error) {
	turns := conversation.BuildContext(past, text)
	start := time.Now()
	reply, err := m.deps.Generator.Generate(ctx, m.deps.SystemPrompt, turns)
	m.deps.Metrics.Generation(time.Since(start))
	if err != nil {
		logger.FromContext(ctx).Error("generation failed", "error", err)
		m.deps.Metrics.Exchange(metrics.OutcomeFallback)
		return "", err
	}
	m.deps.Metrics.Exchange(metrics.OutcomeOK)
	return reply, nil
}

// Format renders model output with the manager's formatter.
func (m *Manager) Format(text string) string {
	return m.deps.Formatter.Format(text)
}

// Render formats a message for display.
func (m *Manager) Render(msg conversation.Message) string {
	return render(m.deps.Formatter, msg)
}

func render(f *format.Formatter, msg conversation.Message) string {
	if msg.Role == conversation.RoleAssistant {
		return f.Format(msg.Content)
	}
	return html.EscapeString(msg.Content)
}
