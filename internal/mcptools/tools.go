package mcptools

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/comigor/schoolassist-go/internal/conversation"
	"github.com/comigor/schoolassist-go/internal/format"
	"github.com/comigor/schoolassist-go/internal/logger"
	"github.com/comigor/schoolassist-go/internal/session"
)

// FormatTool renders text as a SchoolAssist HTML fragment.
type FormatTool struct {
	Formatter *format.Formatter
}

func (FormatTool) Definition() mcp.Tool {
	return mcp.NewTool("format_response",
		mcp.WithDescription("Render markdown-like text (headings, lists, Step N: lines, code) as an HTML fragment."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Text to format")),
	)
}

func (t FormatTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := stringArg(req, "text")
	if text == "" {
		return mcp.NewToolResultError("text is required"), nil
	}
	return mcp.NewToolResultText(t.Formatter.Format(text)), nil
}

// AskTool sends a question to a tutoring session and returns the reply.
type AskTool struct {
	Sessions *session.Manager
}

func (AskTool) Definition() mcp.Tool {
	return mcp.NewTool("ask",
		mcp.WithDescription("Ask SchoolAssist a study question. The conversation continues across calls with the same session."),
		mcp.WithString("question", mcp.Required(), mcp.Description("The student's question")),
		mcp.WithString("session", mcp.Description("Conversation ID; defaults to \""+session.DefaultID+"\"")),
	)
}

func (t AskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := t.Sessions.Get(ctx, stringArg(req, "session"))
	if err != nil {
		return nil, err
	}
	ex, err := sess.Send(ctx, stringArg(req, "question"))
	switch {
	case errors.Is(err, conversation.ErrEmptyInput), errors.Is(err, conversation.ErrInputTooLong), errors.Is(err, session.ErrBusy):
		return mcp.NewToolResultError(err.Error()), nil
	case err != nil:
		return nil, err
	}
	if ex.Err != nil {
		logger.L.Warn("ask tool answered with fallback", "session", sess.ID(), "error", ex.Err)
	}
	return mcp.NewToolResultText(ex.Reply.Content), nil
}

// ClearTool resets a tutoring session.
type ClearTool struct {
	Sessions *session.Manager
}

func (ClearTool) Definition() mcp.Tool {
	return mcp.NewTool("clear_session",
		mcp.WithDescription("Forget the conversation so far and start over."),
		mcp.WithString("session", mcp.Description("Conversation ID; defaults to \""+session.DefaultID+"\"")),
	)
}

func (t ClearTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := t.Sessions.Get(ctx, stringArg(req, "session"))
	if err != nil {
		return nil, err
	}
	if _, err := sess.Clear(ctx); err != nil {
		if errors.Is(err, session.ErrBusy) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, err
	}
	return mcp.NewToolResultText(conversation.WelcomeText), nil
}

// Default registers the SchoolAssist tools.
func Default(sessions *session.Manager, f *format.Formatter) *Registry {
	r := NewRegistry()
	r.Register(FormatTool{Formatter: f})
	r.Register(AskTool{Sessions: sessions})
	r.Register(ClearTool{Sessions: sessions})
	return r
}
