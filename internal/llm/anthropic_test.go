package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/comigor/schoolassist-go/internal/config"
	"github.com/comigor/schoolassist-go/internal/conversation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnthropic_Generate(t *testing.T) {
	var got anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-test", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","content":[{"type":"text","text":"# Answer\n1. Add"}],"model":"claude","stop_reason":"end_turn"}`))
	}))
	defer srv.Close()

	gen := NewAnthropic(config.LLMConfig{BaseURL: srv.URL + "/", APIKey: "sk-test", Model: "claude", MaxTokens: 1000}, srv.Client())
	out, err := gen.Generate(context.Background(), conversation.SystemPrompt, []conversation.Turn{
		{Role: conversation.RoleUser, Content: "hello"},
		{Role: conversation.RoleAssistant, Content: "hi"},
		{Role: conversation.RoleUser, Content: "how do I add fractions?"},
	})
	require.NoError(t, err)
	require.Equal(t, "# Answer\n1. Add", out)

	require.Equal(t, "claude", got.Model)
	require.Equal(t, 1000, got.MaxTokens)
	require.Equal(t, conversation.SystemPrompt, got.System)
	require.Equal(t, []anthropicMessage{
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi"},
		{Role: "user", Content: "how do I add fractions?"},
	}, got.Messages)
}

func TestAnthropic_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer srv.Close()

	gen := NewAnthropic(config.LLMConfig{BaseURL: srv.URL}, srv.Client())
	_, err := gen.Generate(context.Background(), "", []conversation.Turn{{Content: "hi"}})

	var perr *ProviderError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, http.StatusUnauthorized, perr.StatusCode)
	require.Equal(t, "authentication_error", perr.Type)
	require.Equal(t, "llm: HTTP 401: authentication_error: invalid x-api-key", perr.Error())
}

func TestAnthropic_ErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewAnthropic(config.LLMConfig{BaseURL: srv.URL}, srv.Client()).Generate(context.Background(), "", nil)
	var perr *ProviderError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, "llm: HTTP 502: Unknown error", perr.Error())
}

func TestAnthropic_MalformedResponse(t *testing.T) {
	for name, body := range map[string]string{
		"no content": `{"content":[]}`,
		"tool block": `{"content":[{"type":"tool_use"}]}`,
		"empty text": `{"content":[{"type":"text","text":""}]}`,
		"not json":   `<html>`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			_, err := NewAnthropic(config.LLMConfig{BaseURL: srv.URL}, srv.Client()).Generate(context.Background(), "", nil)
			require.Error(t, err)
		})
	}
}
