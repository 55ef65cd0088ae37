package domain

import (
	"time"

	"github.com/google/uuid"

	apperrors "chathub/errors"
)

// Message is a persisted chat record. Exactly one of ReceiverID, GroupID
// and ChannelID is set. Messages are never physically removed: deletion
// flips IsDeleted and redacts the body.
type Message struct {
	ID             uuid.UUID
	SenderID       string
	ReceiverID     string
	GroupID        string
	ChannelID      string
	Body           string
	AttachmentURL  string
	AttachmentType string
	ReplyToID      *uuid.UUID
	IsRead         bool
	IsEdited       bool
	IsDeleted      bool
	IsPinned       bool
	IsStarred      bool
	Reactions      map[string][]string
	CreatedAt      time.Time
}

const DeletedBody = "This message was deleted"

// AttachmentTypeCall marks a persisted call summary, so clients can render
// it apart from ordinary chat content.
const AttachmentTypeCall = "call"

// Validate enforces the single-target invariant.
func (m Message) Validate() error {
	targets := 0
	for _, t := range []string{m.ReceiverID, m.GroupID, m.ChannelID} {
		if t != "" {
			targets++
		}
	}
	if targets != 1 {
		return apperrors.ErrInvalidTarget
	}
	return nil
}

// Kind reports the addressing mode as it appears on the wire.
func (m Message) Kind() string {
	switch {
	case m.GroupID != "":
		return "group"
	case m.ChannelID != "":
		return "channel"
	default:
		return "private"
	}
}

// ToggleReaction applies or removes one reaction by one user. Applying the
// same reaction twice toggles it off; distinct reactions by the same user
// coexist.
func (m *Message) ToggleReaction(emoji, userID string) {
	if m.Reactions == nil {
		m.Reactions = make(map[string][]string)
	}
	users := m.Reactions[emoji]
	for i, id := range users {
		if id == userID {
			users = append(users[:i], users[i+1:]...)
			if len(users) == 0 {
				delete(m.Reactions, emoji)
			} else {
				m.Reactions[emoji] = users
			}
			return
		}
	}
	m.Reactions[emoji] = append(users, userID)
}

// MessagePayload is the rendered form delivered over the realtime layer.
// Field names follow the wire contract consumed by clients.
type MessagePayload struct {
	ID             uuid.UUID `json:"id"`
	SenderID       string    `json:"sender_id"`
	ReceiverID     string    `json:"receiver_id,omitempty"`
	GroupID        string    `json:"group_id,omitempty"`
	ChannelID      string    `json:"channel_id,omitempty"`
	Message        string    `json:"message"`
	AttachmentURL  string    `json:"attachment_url,omitempty"`
	AttachmentType string    `json:"attachment_type,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	SenderName     string    `json:"sender_name"`
	SenderAvatar   string    `json:"sender_avatar,omitempty"`
	Type           string    `json:"type"`
	IsCall         bool      `json:"isCall,omitempty"`
}

// Render joins a stored message with its sender's directory entry.
func (m Message) Render(sender User) MessagePayload {
	name := sender.DisplayName
	if name == "" {
		name = "Unknown"
	}
	return MessagePayload{
		ID:             m.ID,
		SenderID:       m.SenderID,
		ReceiverID:     m.ReceiverID,
		GroupID:        m.GroupID,
		ChannelID:      m.ChannelID,
		Message:        m.Body,
		AttachmentURL:  m.AttachmentURL,
		AttachmentType: m.AttachmentType,
		CreatedAt:      m.CreatedAt,
		SenderName:     name,
		SenderAvatar:   sender.AvatarURL,
		Type:           m.Kind(),
		IsCall:         m.AttachmentType == AttachmentTypeCall,
	}
}
