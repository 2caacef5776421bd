// Package session owns a conversation transcript and drives one exchange at
// a time through the language model.
//
// A Session is a small state machine:
//
//	Idle --send--> AwaitingReply --replied--> Idle
//
// A second send (or a clear) while a reply is pending fails with ErrBusy
// instead of queueing, the same way the chat client disables its input while
// a request is in flight.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/qmuntal/stateless"

	"github.com/comigor/schoolassist-go/internal/conversation"
	"github.com/comigor/schoolassist-go/internal/format"
	"github.com/comigor/schoolassist-go/internal/history"
	"github.com/comigor/schoolassist-go/internal/llm"
	"github.com/comigor/schoolassist-go/internal/logger"
	"github.com/comigor/schoolassist-go/internal/metrics"
)

// ErrBusy is returned when an exchange is already in flight.
var ErrBusy = errors.New("session is awaiting a reply")

const (
	StateIdle          = "Idle"
	StateAwaitingReply = "AwaitingReply"

	triggerSend    = "Send"
	triggerReplied = "Replied"
	triggerClear   = "Clear"
)

// Deps are the collaborators shared by every session of a Manager.
type Deps struct {
	Store     history.Store
	Generator llm.Generator
	Formatter *format.Formatter
	Metrics   *metrics.Metrics
	// SystemPrompt defaults to conversation.SystemPrompt.
	SystemPrompt string
	// Now defaults to time.Now.
	Now func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Formatter == nil {
		d.Formatter = format.New()
	}
	if d.SystemPrompt == "" {
		d.SystemPrompt = conversation.SystemPrompt
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// Exchange is the outcome of one Send.
type Exchange struct {
	User  conversation.Message
	Reply conversation.Message
	// HTML is Reply.Content rendered by the formatter.
	HTML string
	// Err is the generation failure that Reply stands in for, if any.
	Err error
}

// Session is one conversation.
type Session struct {
	id   string
	deps Deps

	mu  sync.Mutex
	fsm *stateless.StateMachine
}

// New creates a session. It does not touch the store.
func New(id string, deps Deps) *Session {
	s := &Session{
		id:   id,
		deps: deps.withDefaults(),
		fsm:  stateless.NewStateMachine(StateIdle),
	}
	s.fsm.Configure(StateIdle).
		Permit(triggerSend, StateAwaitingReply).
		PermitReentry(triggerClear)
	s.fsm.Configure(StateAwaitingReply).
		Permit(triggerReplied, StateIdle)
	s.fsm.OnTransitioned(func(ctx context.Context, t stateless.Transition) {
		s.log(ctx).Debug("session transition", "from", t.Source, "to", t.Destination, "trigger", t.Trigger)
	})
	return s
}

// log tags the request-scoped logger with the session ID.
func (s *Session) log(ctx context.Context) *slog.Logger {
	return logger.ForSession(ctx, s.id)
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current state name.
func (s *Session) State() string {
	return fmt.Sprint(s.fsm.MustState())
}

// Transcript lists the session's messages in order.
func (s *Session) Transcript(ctx context.Context) ([]conversation.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deps.Store.List(ctx, s.id)
}

// Send records text as a user message, asks the model for a reply and
// records the reply. Invalid input is rejected before anything is recorded.
// A failed generation is not an error: the reply becomes
// conversation.ApologyText and Exchange.Err carries the cause.
func (s *Session) Send(ctx context.Context, text string) (*Exchange, error) {
	if err := conversation.ValidateInput(text); err != nil {
		s.deps.Metrics.Exchange(metrics.OutcomeRejected)
		return nil, err
	}

	s.mu.Lock()
	if err := s.fsm.FireCtx(ctx, triggerSend); err != nil {
		s.mu.Unlock()
		s.deps.Metrics.Exchange(metrics.OutcomeBusy)
		return nil, ErrBusy
	}
	turns, user, err := s.recordUser(ctx, text)
	s.mu.Unlock()
	if err != nil {
		s.finish(ctx)
		return nil, err
	}

	start := time.Now()
	reply, genErr := s.deps.Generator.Generate(ctx, s.deps.SystemPrompt, turns)
	s.deps.Metrics.Generation(time.Since(start))
	outcome := metrics.OutcomeOK
	if genErr != nil {
		s.log(ctx).Error("generation failed", "error", genErr)
		reply = conversation.ApologyText
		outcome = metrics.OutcomeFallback
	}

	s.mu.Lock()
	assistant, err := s.deps.Store.Append(ctx, s.id, conversation.NewMessage(conversation.RoleAssistant, reply, s.deps.Now()))
	s.fireReplied(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("record reply: %w", err)
	}

	s.deps.Metrics.Exchange(outcome)
	return &Exchange{
		User:  user,
		Reply: assistant,
		HTML:  s.deps.Formatter.Format(assistant.Content),
		Err:   genErr,
	}, nil
}

// recordUser builds the context window from the transcript as it was before
// text, then appends text. Must be called with s.mu held.
func (s *Session) recordUser(ctx context.Context, text string) ([]conversation.Turn, conversation.Message, error) {
	transcript, err := s.deps.Store.List(ctx, s.id)
	if err != nil {
		return nil, conversation.Message{}, fmt.Errorf("load transcript: %w", err)
	}
	turns := conversation.BuildContext(transcript, text)
	user, err := s.deps.Store.Append(ctx, s.id, conversation.NewMessage(conversation.RoleUser, text, s.deps.Now()))
	if err != nil {
		return nil, conversation.Message{}, fmt.Errorf("record user message: %w", err)
	}
	return turns, user, nil
}

func (s *Session) finish(ctx context.Context) {
	s.mu.Lock()
	s.fireReplied(ctx)
	s.mu.Unlock()
}

func (s *Session) fireReplied(ctx context.Context) {
	if err := s.fsm.FireCtx(ctx, triggerReplied); err != nil {
		s.log(ctx).Warn("FSM fire error", "error", err)
	}
}

// Clear wipes the transcript and re-seeds the welcome message. The result is
// always exactly one message.
func (s *Session) Clear(ctx context.Context) ([]conversation.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fsm.FireCtx(ctx, triggerClear); err != nil {
		return nil, ErrBusy
	}
	if err := s.deps.Store.Clear(ctx, s.id); err != nil {
		return nil, fmt.Errorf("clear transcript: %w", err)
	}
	welcome, err := s.deps.Store.Append(ctx, s.id, conversation.Welcome(s.deps.Now()))
	if err != nil {
		return nil, fmt.Errorf("seed welcome: %w", err)
	}
	s.deps.Metrics.Clear()
	return []conversation.Message{welcome}, nil
}

// seed appends the welcome message when the transcript is empty.
func (s *Session) seed(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	transcript, err := s.deps.Store.List(ctx, s.id)
	if err != nil {
		return err
	}
	if len(transcript) > 0 {
		return nil
	}
	_, err = s.deps.Store.Append(ctx, s.id, conversation.Welcome(s.deps.Now()))
	return err
}
