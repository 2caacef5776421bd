package llm

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/comigor/schoolassist-go/internal/config"
)

// DefaultMaxTokens caps the reply length when the configuration leaves it unset.
const DefaultMaxTokens = 1000

// ErrEmptyResponse is returned when the provider answered without any text.
var ErrEmptyResponse = errors.New("llm: response contained no text")

// ProviderError is returned when the LLM API responds with a non-2xx status.
type ProviderError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("llm: HTTP %d: %s: %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("llm: HTTP %d: %s", e.StatusCode, e.Message)
}

// New builds the Generator selected by cfg.Provider.
func New(cfg config.LLMConfig) (Generator, error) {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	switch cfg.Provider {
	case "", config.ProviderAnthropic:
		return NewAnthropic(cfg, &http.Client{Timeout: 2 * time.Minute}), nil
	case config.ProviderOpenAI:
		return NewOpenAI(NewClient(cfg), cfg), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}
