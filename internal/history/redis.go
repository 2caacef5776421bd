package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/comigor/schoolassist-go/internal/conversation"
)

// Redis stores each transcript as a list of JSON-encoded messages.
type Redis struct {
	client *redis.Client
}

// OpenRedis connects to addr and verifies the connection.
func OpenRedis(ctx context.Context, addr string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedis(client), nil
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func redisKey(sessionID string) string {
	return "schoolassist:session:" + sessionID + ":messages"
}

func (r *Redis) Append(ctx context.Context, sessionID string, msg conversation.Message) (conversation.Message, error) {
	msg = prepare(msg)
	data, err := json.Marshal(msg)
	if err != nil {
		return conversation.Message{}, err
	}
	if err := r.client.RPush(ctx, redisKey(sessionID), data).Err(); err != nil {
		return conversation.Message{}, fmt.Errorf("rpush message: %w", err)
	}
	return msg, nil
}

func (r *Redis) List(ctx context.Context, sessionID string) ([]conversation.Message, error) {
	raw, err := r.client.LRange(ctx, redisKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange messages: %w", err)
	}
	out := make([]conversation.Message, 0, len(raw))
	for _, item := range raw {
		var m conversation.Message
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			return nil, fmt.Errorf("decode message: %w", err)
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *Redis) Clear(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, redisKey(sessionID)).Err()
}

func (r *Redis) Close() error { return r.client.Close() }
