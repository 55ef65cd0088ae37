// Package router carries inbound message events through their full path:
// persist, render, fan out, notify. Each entry point is synchronous up to
// fan-out, which preserves per-sender/per-target ordering; notifications
// leave through the async queue and never delay or fail a send.
package router

import (
	"context"
	"log/slog"

	"chathub/domain"
	"chathub/domain/event"
	apperrors "chathub/errors"
	"chathub/notify"
	"chathub/repositories"
	"chathub/runtime"
)

// Enqueuer is the notification queue the router feeds. Fire-and-forget.
type Enqueuer interface {
	Enqueue(task notify.Task)
}

type Router struct {
	log      *slog.Logger
	hub      *runtime.Hub
	messages repositories.IMessageRepository
	users    repositories.IUserDirectory
	groups   repositories.IMembershipStore
	channels repositories.IMembershipStore
	notifier Enqueuer
}

func NewRouter(log *slog.Logger, hub *runtime.Hub, messages repositories.IMessageRepository,
	users repositories.IUserDirectory, groups, channels repositories.IMembershipStore,
	notifier Enqueuer) *Router {
	return &Router{
		log:      log,
		hub:      hub,
		messages: messages,
		users:    users,
		groups:   groups,
		channels: channels,
		notifier: notifier,
	}
}

// SendDirect persists a direct message and delivers it to both identity
// rooms: receive_message to the receiver, message_sent to the sender (echo
// and multi-device confirmation). Delivery to an offline receiver is a
// no-op; the notification carries the signal instead.
//
// There is no idempotency key: a client retrying a send after a timeout
// will duplicate the message. Known gap.
func (r *Router) SendDirect(ctx context.Context, fromUserID, toUserID string, content domain.MessageContent) (domain.MessagePayload, error) {
	if fromUserID == "" {
		return domain.MessagePayload{}, apperrors.ErrUnauthenticated
	}

	message, err := r.messages.Create(domain.Message{
		SenderID:       fromUserID,
		ReceiverID:     toUserID,
		Body:           content.Text,
		AttachmentURL:  content.AttachmentURL,
		AttachmentType: content.AttachmentType,
	})
	if err != nil {
		r.log.Error("Error sending private message", "from", fromUserID, "error", err)
		return domain.MessagePayload{}, err
	}

	payload := message.Render(r.senderInfo(fromUserID))
	r.hub.DeliverToUser(ctx, toUserID, event.MessageDelivered{MessagePayload: payload})
	r.hub.DeliverToUser(ctx, fromUserID, event.MessageSent{MessagePayload: payload})

	r.notifier.Enqueue(notify.Task{
		UserID:    toUserID,
		Title:     "New Message",
		Message:   payload.SenderName + " sent you a message",
		Type:      domain.NotificationTypeMessage,
		Link:      "/dashboard",
		RelatedID: fromUserID,
	})
	return payload, nil
}

// SendGroup persists and broadcasts to the whole group room. The sender's
// own connections receive the broadcast too: clients rely on the echo for
// optimistic-UI confirmation. One notification per member except the sender.
func (r *Router) SendGroup(ctx context.Context, fromUserID, groupID string, content domain.MessageContent) (domain.MessagePayload, error) {
	return r.sendRoom(ctx, fromUserID, content, roomSend{
		message:  domain.Message{SenderID: fromUserID, GroupID: groupID},
		room:     domain.GroupRoom(groupID),
		store:    r.groups,
		roomID:   groupID,
		title:    "New Group Message",
		fallback: "group",
	})
}

// SendChannel is the channel counterpart of SendGroup.
func (r *Router) SendChannel(ctx context.Context, fromUserID, channelID string, content domain.MessageContent) (domain.MessagePayload, error) {
	return r.sendRoom(ctx, fromUserID, content, roomSend{
		message:    domain.Message{SenderID: fromUserID, ChannelID: channelID},
		room:       domain.ChannelRoom(channelID),
		store:      r.channels,
		roomID:     channelID,
		title:      "New Channel Message",
		namePrefix: "#",
		fallback:   "channel",
	})
}

type roomSend struct {
	message    domain.Message
	room       domain.RoomID
	store      repositories.IMembershipStore
	roomID     string
	title      string
	namePrefix string
	fallback   string
}

func (r *Router) sendRoom(ctx context.Context, fromUserID string, content domain.MessageContent, send roomSend) (domain.MessagePayload, error) {
	if fromUserID == "" {
		return domain.MessagePayload{}, apperrors.ErrUnauthenticated
	}

	send.message.Body = content.Text
	send.message.AttachmentURL = content.AttachmentURL
	send.message.AttachmentType = content.AttachmentType
	message, err := r.messages.Create(send.message)
	if err != nil {
		r.log.Error("Error sending room message", "from", fromUserID, "room", send.room, "error", err)
		return domain.MessagePayload{}, err
	}

	payload := message.Render(r.senderInfo(fromUserID))
	r.hub.DeliverToRoom(ctx, send.room, event.MessageDelivered{MessagePayload: payload})

	roomName := send.fallback
	if info, err := send.store.GetRoom(send.roomID); err == nil && info.Name != "" {
		roomName = info.Name
	}
	members, err := send.store.ListMembers(send.roomID)
	if err != nil {
		r.log.Error("Failed to list members for notification fan-out", "room", send.room, "error", err)
		return payload, nil
	}
	for _, memberID := range members {
		if memberID == fromUserID {
			continue
		}
		r.notifier.Enqueue(notify.Task{
			UserID:    memberID,
			Title:     send.title,
			Message:   payload.SenderName + " posted in " + send.namePrefix + roomName,
			Type:      domain.NotificationTypeMessage,
			Link:      "/dashboard",
			RelatedID: send.roomID,
		})
	}
	return payload, nil
}

// Typing relays a transient typing indicator; nothing is persisted. Group
// typing excludes the emitting connection, direct typing targets the
// partner's identity room.
func (r *Router) Typing(ctx context.Context, connID, fromUserID, toUserID, groupID string, stopped bool) {
	if fromUserID == "" {
		return
	}
	var evt event.DomainEvent
	if stopped {
		evt = event.UserStopTyping{UserID: fromUserID, GroupID: groupID}
	} else {
		evt = event.UserTyping{UserID: fromUserID, GroupID: groupID}
	}
	switch {
	case groupID != "":
		r.hub.DeliverToRoomExcept(ctx, domain.GroupRoom(groupID), evt, connID)
	case toUserID != "":
		r.hub.DeliverToUser(ctx, toUserID, evt)
	}
}

// senderInfo tolerates a missing directory entry: the payload then renders
// with the "Unknown" display name rather than failing the send.
func (r *Router) senderInfo(userID string) domain.User {
	sender, err := r.users.FindByID(userID)
	if err != nil {
		r.log.Warn("Sender not found in user directory", "user_id", userID, "error", err)
		return domain.User{ID: userID}
	}
	return sender
}
