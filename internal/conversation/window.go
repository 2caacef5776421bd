package conversation

// HistoryWindow is how many prior messages accompany a new user message.
const HistoryWindow = 4

// Turn is the role/content pair forwarded to the generation API. IDs and
// timestamps are dropped.
type Turn struct {
	Role    Role
	Content string
}

// BuildContext selects the turns sent with a new user message: the welcome
// message is skipped, the last HistoryWindow messages are kept in order and
// text is appended as the final user turn.
func BuildContext(transcript []Message, text string) []Turn {
	history := make([]Message, 0, len(transcript))
	for _, m := range transcript {
		if m.IsWelcome() {
			continue
		}
		history = append(history, m)
	}
	if len(history) > HistoryWindow {
		history = history[len(history)-HistoryWindow:]
	}

	turns := make([]Turn, 0, len(history)+1)
	for _, m := range history {
		turns = append(turns, Turn{Role: m.Role, Content: m.Content})
	}
	return append(turns, Turn{Role: RoleUser, Content: text})
}

// WireEntry is a history entry as posted by the web client.
type WireEntry struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Type    string `json:"type"`
}

// FromWire converts client-supplied history into messages, dropping entries
// with an unknown type or no content.
func FromWire(entries []WireEntry) []Message {
	out := make([]Message, 0, len(entries))
	for _, e := range entries {
		if e.Content == "" {
			continue
		}
		role, err := ParseRole(e.Type)
		if err != nil {
			continue
		}
		out = append(out, Message{ID: e.ID, Content: e.Content, Role: role})
	}
	return out
}
