package router

import (
	"context"

	"github.com/google/uuid"

	"chathub/domain"
	"chathub/domain/event"
)

// Message mutations are invoked by the platform's CRUD controllers, not by
// socket events; the realtime layer's job is only to echo the change into
// the rooms that can see the message.

// ToggleReaction applies or removes one user's reaction and echoes the new
// reaction map. Same reaction twice toggles off; distinct reactions by the
// same user coexist.
func (r *Router) ToggleReaction(ctx context.Context, messageID uuid.UUID, userID, emoji string) (domain.Message, error) {
	message, err := r.messages.ToggleReaction(messageID, userID, emoji)
	if err != nil {
		return domain.Message{}, err
	}
	r.echoMutation(ctx, message, event.ReactionUpdated{
		MessageID:  message.ID,
		Reactions:  message.Reactions,
		GroupID:    message.GroupID,
		ChannelID:  message.ChannelID,
		SenderID:   message.SenderID,
		ReceiverID: message.ReceiverID,
	})
	return message, nil
}

// EditMessage rewrites the body. Only the sender may edit.
func (r *Router) EditMessage(ctx context.Context, messageID uuid.UUID, userID, newBody string) (domain.Message, error) {
	message, err := r.messages.Edit(messageID, userID, newBody)
	if err != nil {
		return domain.Message{}, err
	}
	r.echoMutation(ctx, message, event.MessageUpdated{
		ID:         message.ID,
		Message:    message.Body,
		IsEdited:   true,
		GroupID:    message.GroupID,
		ChannelID:  message.ChannelID,
		SenderID:   message.SenderID,
		ReceiverID: message.ReceiverID,
	})
	return message, nil
}

// DeleteMessage soft-deletes: the record stays, flagged and redacted.
func (r *Router) DeleteMessage(ctx context.Context, messageID uuid.UUID, userID string) (domain.Message, error) {
	message, err := r.messages.SoftDelete(messageID, userID)
	if err != nil {
		return domain.Message{}, err
	}
	r.echoMutation(ctx, message, event.MessageDeleted{
		ID:         message.ID,
		Message:    message.Body,
		IsDeleted:  true,
		GroupID:    message.GroupID,
		ChannelID:  message.ChannelID,
		SenderID:   message.SenderID,
		ReceiverID: message.ReceiverID,
	})
	return message, nil
}

// TogglePin flips the pinned flag. No realtime echo: pins surface through
// history fetches, matching the platform.
func (r *Router) TogglePin(ctx context.Context, messageID uuid.UUID) (domain.Message, error) {
	return r.messages.TogglePin(messageID)
}

// ToggleStar flips the starred flag.
func (r *Router) ToggleStar(ctx context.Context, messageID uuid.UUID) (domain.Message, error) {
	return r.messages.ToggleStar(messageID)
}

// echoMutation routes a mutation event to whoever can see the message:
// the owning room for group/channel messages, both identity rooms for
// direct ones.
func (r *Router) echoMutation(ctx context.Context, message domain.Message, evt event.DomainEvent) {
	switch {
	case message.GroupID != "":
		r.hub.DeliverToRoom(ctx, domain.GroupRoom(message.GroupID), evt)
	case message.ChannelID != "":
		r.hub.DeliverToRoom(ctx, domain.ChannelRoom(message.ChannelID), evt)
	default:
		r.hub.DeliverToUser(ctx, message.SenderID, evt)
		r.hub.DeliverToUser(ctx, message.ReceiverID, evt)
	}
}
