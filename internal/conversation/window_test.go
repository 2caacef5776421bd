package conversation

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func transcriptOf(n int) []Message {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	out := []Message{Welcome(now)}
	for i := 1; i <= n; i++ {
		role := RoleUser
		if i%2 == 0 {
			role = RoleAssistant
		}
		out = append(out, Message{ID: fmt.Sprint(i), Content: fmt.Sprintf("m%d", i), Role: role, Timestamp: now})
	}
	return out
}

func TestBuildContext_EmptyTranscript(t *testing.T) {
	turns := BuildContext(nil, "hi")
	require.Equal(t, []Turn{{Role: RoleUser, Content: "hi"}}, turns)
}

func TestBuildContext_OnlyWelcome(t *testing.T) {
	turns := BuildContext(transcriptOf(0), "hi")
	require.Equal(t, []Turn{{Role: RoleUser, Content: "hi"}}, turns)
}

func TestBuildContext_KeepsLastFourInOrder(t *testing.T) {
	turns := BuildContext(transcriptOf(7), "next")
	require.Len(t, turns, HistoryWindow+1)
	require.Equal(t, "m4", turns[0].Content)
	require.Equal(t, RoleAssistant, turns[0].Role)
	require.Equal(t, "m5", turns[1].Content)
	require.Equal(t, "m6", turns[2].Content)
	require.Equal(t, "m7", turns[3].Content)
	require.Equal(t, Turn{Role: RoleUser, Content: "next"}, turns[4])
}

func TestBuildContext_Bounds(t *testing.T) {
	for n := 0; n < 12; n++ {
		turns := BuildContext(transcriptOf(n), "q")
		require.LessOrEqual(t, len(turns), HistoryWindow+1, "n=%d", n)
		for _, turn := range turns {
			require.NotEqual(t, WelcomeText, turn.Content, "n=%d", n)
		}
	}
}

func TestBuildContext_WelcomeInMiddleIsSkipped(t *testing.T) {
	now := time.Now()
	transcript := []Message{
		{ID: "1", Content: "a", Role: RoleUser, Timestamp: now},
		Welcome(now),
		{ID: "2", Content: "b", Role: RoleAssistant, Timestamp: now},
	}
	turns := BuildContext(transcript, "c")
	require.Equal(t, []Turn{
		{Role: RoleUser, Content: "a"},
		{Role: RoleAssistant, Content: "b"},
		{Role: RoleUser, Content: "c"},
	}, turns)
}

func TestBuildContext_DoesNotMutateInput(t *testing.T) {
	transcript := transcriptOf(6)
	before := append([]Message(nil), transcript...)
	_ = BuildContext(transcript, "x")
	require.Equal(t, before, transcript)
}

func TestFromWire(t *testing.T) {
	msgs := FromWire([]WireEntry{
		{ID: "1", Content: "hello", Type: "user"},
		{ID: "2", Content: "hi there", Type: "ai"},
		{ID: "3", Content: "", Type: "user"},
		{ID: "4", Content: "odd", Type: "system"},
		{ID: "5", Content: "ok", Type: "assistant"},
	})
	require.Len(t, msgs, 3)
	require.Equal(t, RoleUser, msgs[0].Role)
	require.Equal(t, RoleAssistant, msgs[1].Role)
	require.Equal(t, "ok", msgs[2].Content)
}
