package llm

import (
	"context"

	"github.com/comigor/schoolassist-go/internal/conversation"
	"github.com/sashabaranov/go-openai"
)

// Generator produces the assistant reply for a system instruction and an
// ordered list of turns.
type Generator interface {
	Generate(ctx context.Context, system string, turns []conversation.Turn) (string, error)
}

// Client is minimal subset of openai.Client used by the OpenAI generator; it is easy to mock in tests.
type Client interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}
