// Package event defines the events delivered to connected sinks. Each event
// knows its wire name; the transport layer wraps it into a frame unchanged.
package event

import (
	"encoding/json"

	"github.com/google/uuid"

	"chathub/domain"
)

type DomainEvent interface {
	EventName() string
}

// MessageDelivered carries a new message into a recipient's session.
type MessageDelivered struct {
	domain.MessagePayload
}

func (MessageDelivered) EventName() string { return "receive_message" }

// MessageSent is the echo/confirmation sent back to the sender's identity
// room once persistence succeeded.
type MessageSent struct {
	domain.MessagePayload
}

func (MessageSent) EventName() string { return "message_sent" }

// NotificationAlert is the realtime toast mirroring a stored notification.
type NotificationAlert struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type"`
	Link    string `json:"link"`
}

func (NotificationAlert) EventName() string { return "receive_notification" }

type UserStatus struct {
	UserID string `json:"userId"`
	Status string `json:"status"`
}

func (UserStatus) EventName() string { return "user_status" }

type UserTyping struct {
	UserID  string `json:"userId"`
	GroupID string `json:"groupId,omitempty"`
}

func (UserTyping) EventName() string { return "user_typing" }

type UserStopTyping struct {
	UserID  string `json:"userId"`
	GroupID string `json:"groupId,omitempty"`
}

func (UserStopTyping) EventName() string { return "user_stop_typing" }

// CallSignal relays a signaling payload verbatim between two peers. The
// coordinator never inspects the body beyond routing fields.
type CallSignal struct {
	Name string
	Data json.RawMessage
}

func (s CallSignal) EventName() string { return s.Name }

func (s CallSignal) MarshalJSON() ([]byte, error) {
	if len(s.Data) == 0 {
		return []byte("{}"), nil
	}
	return s.Data, nil
}

// CallTimeout tells the caller that a ring expired server-side.
type CallTimeout struct {
	UserID string `json:"userId"`
}

func (CallTimeout) EventName() string { return "call_timeout" }

type ReactionUpdated struct {
	MessageID  uuid.UUID           `json:"messageId"`
	Reactions  map[string][]string `json:"reactions"`
	GroupID    string              `json:"group_id,omitempty"`
	ChannelID  string              `json:"channel_id,omitempty"`
	SenderID   string              `json:"sender_id"`
	ReceiverID string              `json:"receiver_id,omitempty"`
}

func (ReactionUpdated) EventName() string { return "reaction_updated" }

type MessageUpdated struct {
	ID         uuid.UUID `json:"id"`
	Message    string    `json:"message"`
	IsEdited   bool      `json:"is_edited"`
	GroupID    string    `json:"group_id,omitempty"`
	ChannelID  string    `json:"channel_id,omitempty"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id,omitempty"`
}

func (MessageUpdated) EventName() string { return "message_updated" }

type MessageDeleted struct {
	ID         uuid.UUID `json:"id"`
	Message    string    `json:"message"`
	IsDeleted  bool      `json:"is_deleted"`
	GroupID    string    `json:"group_id,omitempty"`
	ChannelID  string    `json:"channel_id,omitempty"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id,omitempty"`
}

func (MessageDeleted) EventName() string { return "message_deleted" }

// Rejected reports a dropped client event back to the offending connection,
// instead of failing silently.
type Rejected struct {
	Event  string `json:"event"`
	Reason string `json:"reason"`
}

func (Rejected) EventName() string { return "error" }
