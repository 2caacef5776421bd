package conversation

import (
	"fmt"
	"strings"
	"time"
)

// Role identifies who authored a message.
type Role uint8

const (
	RoleUser Role = iota
	RoleAssistant
)

// String returns the role name used by chat-completion APIs.
func (r Role) String() string {
	if r == RoleAssistant {
		return "assistant"
	}
	return "user"
}

// MarshalText encodes the role the way the web client expects it ("user" or "ai").
func (r Role) MarshalText() ([]byte, error) {
	switch r {
	case RoleUser:
		return []byte("user"), nil
	case RoleAssistant:
		return []byte("ai"), nil
	default:
		return nil, fmt.Errorf("unknown role %d", r)
	}
}

// UnmarshalText accepts "user", "ai" and "assistant".
func (r *Role) UnmarshalText(text []byte) error {
	role, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = role
	return nil
}

// ParseRole converts a wire or API role name into a Role.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user":
		return RoleUser, nil
	case "ai", "assistant":
		return RoleAssistant, nil
	default:
		return RoleUser, fmt.Errorf("unknown role %q", s)
	}
}

// Message is a single transcript entry. It is never mutated after creation.
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Role      Role      `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage builds a message stamped with now. The ID is left empty so the
// store can assign one.
func NewMessage(role Role, content string, now time.Time) Message {
	return Message{Role: role, Content: content, Timestamp: now.UTC()}
}

// Welcome returns the synthetic greeting shown on session start and after a clear.
func Welcome(now time.Time) Message {
	return Message{
		ID:        WelcomeID,
		Content:   WelcomeText,
		Role:      RoleAssistant,
		Timestamp: now.UTC(),
	}
}

// IsWelcome reports whether m is the synthetic welcome message.
func (m Message) IsWelcome() bool { return m.ID == WelcomeID }
