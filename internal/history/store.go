// Package history persists conversation transcripts.
//
// Every backend keeps messages per session in insertion order. Open falls
// back to an in-memory store when a persistent backend cannot be reached, so
// a misconfigured database degrades the service instead of stopping it.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/comigor/schoolassist-go/internal/config"
	"github.com/comigor/schoolassist-go/internal/conversation"
	"github.com/comigor/schoolassist-go/internal/logger"
)

// Store appends and lists transcript messages.
type Store interface {
	// Append records msg, assigning an ID when msg.ID is empty, and returns
	// the stored message.
	Append(ctx context.Context, sessionID string, msg conversation.Message) (conversation.Message, error)
	// List returns the session's messages in insertion order.
	List(ctx context.Context, sessionID string) ([]conversation.Message, error)
	// Clear removes every message of the session.
	Clear(ctx context.Context, sessionID string) error
	Close() error
}

// prepare fills in the ID and timestamp of a message about to be stored.
func prepare(msg conversation.Message) conversation.Message {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	return msg
}

// Open creates the store selected by cfg.Backend.
func Open(ctx context.Context, cfg config.HistoryConfig) Store {
	var (
		store Store
		err   error
	)
	switch cfg.Backend {
	case "", config.BackendMemory:
		return NewMemory()
	case config.BackendSQLite:
		store, err = OpenSQLite(cfg.Path)
	case config.BackendBolt:
		store, err = OpenBolt(cfg.Path)
	case config.BackendRedis:
		store, err = OpenRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
	case config.BackendPostgres:
		store, err = OpenPostgres(ctx, cfg.DSN)
	default:
		err = fmt.Errorf("unknown history backend %q", cfg.Backend)
	}
	if err != nil {
		logger.L.Warn("history backend unavailable; using in-memory history", "backend", cfg.Backend, "error", err)
		return NewMemory()
	}
	logger.L.Info("history backend initialized", "backend", cfg.Backend)
	return store
}
