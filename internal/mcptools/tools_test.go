package mcptools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/comigor/schoolassist-go/internal/conversation"
	"github.com/comigor/schoolassist-go/internal/format"
	"github.com/comigor/schoolassist-go/internal/history"
	"github.com/comigor/schoolassist-go/internal/session"
)

type mockGenerator struct {
	GenerateFunc func(ctx context.Context, system string, turns []conversation.Turn) (string, error)
}

func (m *mockGenerator) Generate(ctx context.Context, system string, turns []conversation.Turn) (string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, system, turns)
	}
	return "Photosynthesis turns light into sugar.", nil
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func newRegistry(gen *mockGenerator) (*Registry, *session.Manager) {
	mgr := session.NewManager(session.Deps{Store: history.NewMemory(), Generator: gen})
	return Default(mgr, format.New()), mgr
}

func TestRegistry(t *testing.T) {
	r, _ := newRegistry(&mockGenerator{})

	names := []string{}
	for _, tool := range r.List() {
		names = append(names, tool.Definition().Name)
	}
	require.Equal(t, []string{"ask", "clear_session", "format_response"}, names)

	_, err := r.Get("format_response")
	require.NoError(t, err)
	_, err = r.Get("turn_on_lights")
	require.EqualError(t, err, "tool not found: turn_on_lights")
}

func TestFormatTool(t *testing.T) {
	r, _ := newRegistry(&mockGenerator{})
	tool, err := r.Get("format_response")
	require.NoError(t, err)

	res, err := tool.Handle(context.Background(), callRequest("format_response", map[string]any{"text": "Step 1: **Read**"}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Equal(t, `<div class="py-2"><strong class="text-blue-300">Step 1:</strong> <strong>Read</strong></div>`, resultText(t, res))

	res, err = tool.Handle(context.Background(), callRequest("format_response", nil))
	require.NoError(t, err)
	require.True(t, res.IsError)
}

func TestAskAndClearTools(t *testing.T) {
	ctx := context.Background()
	r, mgr := newRegistry(&mockGenerator{})
	ask, err := r.Get("ask")
	require.NoError(t, err)
	clearTool, err := r.Get("clear_session")
	require.NoError(t, err)

	res, err := ask.Handle(ctx, callRequest("ask", map[string]any{"question": "What is photosynthesis?", "session": "bio"}))
	require.NoError(t, err)
	require.Equal(t, "Photosynthesis turns light into sugar.", resultText(t, res))

	sess, err := mgr.Get(ctx, "bio")
	require.NoError(t, err)
	transcript, err := sess.Transcript(ctx)
	require.NoError(t, err)
	require.Len(t, transcript, 3)

	res, err = ask.Handle(ctx, callRequest("ask", map[string]any{"question": "  "}))
	require.NoError(t, err)
	require.True(t, res.IsError)

	res, err = clearTool.Handle(ctx, callRequest("clear_session", map[string]any{"session": "bio"}))
	require.NoError(t, err)
	require.Equal(t, conversation.WelcomeText, resultText(t, res))

	transcript, err = sess.Transcript(ctx)
	require.NoError(t, err)
	require.Len(t, transcript, 1)
}

func TestServerListsTools(t *testing.T) {
	r, _ := newRegistry(&mockGenerator{})
	srv := r.Server("schoolassist", "test")

	resp := srv.HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	out, err := json.Marshal(resp)
	require.NoError(t, err)
	require.Contains(t, string(out), `"format_response"`)
	require.Contains(t, string(out), `"clear_session"`)
}
