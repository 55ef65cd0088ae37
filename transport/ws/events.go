package ws

import (
	"encoding/json"

	"chathub/domain/event"
	apperrors "chathub/errors"
)

// frame is the wire envelope, both directions: an event name and its body.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func encodeFrame(evt event.DomainEvent) ([]byte, error) {
	data, err := json.Marshal(evt)
	if err != nil {
		return nil, err
	}
	return json.Marshal(frame{Event: evt.EventName(), Data: data})
}

// decodeID accepts both forms clients emit for room joins: a bare JSON
// string and an object carrying the id under the given key.
func decodeID(raw json.RawMessage, key string) (string, error) {
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return id, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", apperrors.ErrInvalidPayload
	}
	inner, ok := obj[key]
	if !ok {
		return "", apperrors.ErrInvalidPayload
	}
	if err := json.Unmarshal(inner, &id); err != nil {
		return "", apperrors.ErrInvalidPayload
	}
	return id, nil
}

// Inbound payloads. Field names follow the client contract; the message
// bodies stay raw because clients send either a bare string or a content
// object, normalized downstream.

type directMessagePayload struct {
	ToUserID string          `json:"toUserId" validate:"required"`
	Message  json.RawMessage `json:"message" validate:"required"`
}

type groupMessagePayload struct {
	GroupID string          `json:"groupId" validate:"required"`
	Message json.RawMessage `json:"message" validate:"required"`
}

type channelMessagePayload struct {
	ChannelID string          `json:"channelId" validate:"required"`
	Message   json.RawMessage `json:"message" validate:"required"`
}

type typingPayload struct {
	ToUserID string `json:"toUserId"`
	GroupID  string `json:"groupId"`
}

type callUserPayload struct {
	UserToCall string `json:"userToCall" validate:"required"`
	Type       string `json:"type"`
}

type callRoutePayload struct {
	To string `json:"to" validate:"required"`
}

type callRecordPayload struct {
	ToUserID string `json:"toUserId" validate:"required"`
	CallType string `json:"callType" validate:"required,oneof=voice video"`
	Duration int    `json:"duration" validate:"gte=0"`
	Status   string `json:"status" validate:"required,oneof=completed missed declined"`
}
