package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	apperrors "chathub/errors"
)

func TestMessage_Validate_Single_Target(t *testing.T) {
	req := require.New(t)

	req.NoError(Message{SenderID: "a", ReceiverID: "b"}.Validate())
	req.NoError(Message{SenderID: "a", GroupID: "g"}.Validate())
	req.NoError(Message{SenderID: "a", ChannelID: "c"}.Validate())

	req.ErrorIs(Message{SenderID: "a"}.Validate(), apperrors.ErrInvalidTarget)
	req.ErrorIs(Message{SenderID: "a", ReceiverID: "b", GroupID: "g"}.Validate(), apperrors.ErrInvalidTarget)
}

func TestMessage_Kind(t *testing.T) {
	req := require.New(t)

	req.Equal("private", Message{ReceiverID: "b"}.Kind())
	req.Equal("group", Message{GroupID: "g"}.Kind())
	req.Equal("channel", Message{ChannelID: "c"}.Kind())
}

func TestMessage_ToggleReaction(t *testing.T) {
	req := require.New(t)
	var m Message

	// First reaction creates the entry
	m.ToggleReaction("👍", "alice")
	req.Equal([]string{"alice"}, m.Reactions["👍"])

	// Same user, same emoji toggles off and drops the entry
	m.ToggleReaction("👍", "alice")
	req.NotContains(m.Reactions, "👍")

	// Distinct reactions by the same user coexist
	m.ToggleReaction("👍", "alice")
	m.ToggleReaction("🎉", "alice")
	req.Len(m.Reactions, 2)
}

func TestMessage_Render(t *testing.T) {
	req := require.New(t)
	m := Message{
		ID:         uuid.New(),
		SenderID:   "alice",
		ReceiverID: "bob",
		Body:       "hello",
		CreatedAt:  time.Now().UTC(),
	}

	// With a directory entry
	payload := m.Render(User{ID: "alice", DisplayName: "Alice", AvatarURL: "/a.png"})
	req.Equal("Alice", payload.SenderName)
	req.Equal("/a.png", payload.SenderAvatar)
	req.Equal("private", payload.Type)
	req.False(payload.IsCall)

	// Without one
	payload = m.Render(User{ID: "alice"})
	req.Equal("Unknown", payload.SenderName)

	// Call records are flagged
	m.AttachmentType = AttachmentTypeCall
	payload = m.Render(User{ID: "alice", DisplayName: "Alice"})
	req.True(payload.IsCall)
}
