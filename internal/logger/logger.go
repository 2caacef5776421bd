package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

var levelVar = new(slog.LevelVar)

// L is the process-wide logger. Configure replaces it; packages should read
// it at call time rather than caching it.
var L = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: levelVar}))

// SetLevel configures the global log level (debug, info, warn, error).
func SetLevel(lvl string) {
	switch strings.ToLower(lvl) {
	case "debug":
		levelVar.Set(slog.LevelDebug)
	case "warn":
		levelVar.Set(slog.LevelWarn)
	case "error":
		levelVar.Set(slog.LevelError)
	default:
		levelVar.Set(slog.LevelInfo)
	}
}

// Level returns the currently configured level.
func Level() slog.Level {
	return levelVar.Level()
}

// Configure sets the level and output format ("json" or "text") of L.
func Configure(lvl, format string, out io.Writer) {
	SetLevel(lvl)
	if out == nil {
		out = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: levelVar}
	if strings.EqualFold(format, "text") {
		L = slog.New(slog.NewTextHandler(out, opts))
		return
	}
	L = slog.New(slog.NewJSONHandler(out, opts))
}

// ForSession returns the logger of ctx tagged with a conversation session ID.
func ForSession(ctx context.Context, id string) *slog.Logger {
	return FromContext(ctx).With("session", id)
}

type requestIDKey struct{}

// WithRequestID returns a copy of ctx carrying a request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID extracts the request ID stored by WithRequestID.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// FromContext returns L, tagged with the request ID of ctx when it has one.
func FromContext(ctx context.Context) *slog.Logger {
	if id := RequestID(ctx); id != "" {
		return L.With("request_id", id)
	}
	return L
}
