package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"chathub/contract"
	"chathub/domain"
	"chathub/domain/event"
	"chathub/repositories"
)

// Hub owns the connection lifecycle: registration, identity binding, room
// joins and presence transitions. Delivery goes through it too, so failure
// isolation per recipient lives in exactly one place.
type Hub struct {
	log      *slog.Logger
	registry *Registry
	presence *Presence
	resolver *Resolver
	users    repositories.IUserDirectory

	mu    sync.Mutex
	bound map[string]string // connID -> userID
}

func NewHub(log *slog.Logger, registry *Registry, presence *Presence,
	resolver *Resolver, users repositories.IUserDirectory) *Hub {
	return &Hub{
		log:      log,
		registry: registry,
		presence: presence,
		resolver: resolver,
		users:    users,
		bound:    make(map[string]string),
	}
}

// OnConnect registers a new anonymous connection. Identity arrives later,
// with the explicit join event.
func (h *Hub) OnConnect(connID string, sink contract.EventSink) {
	h.registry.Register(connID, sink)
	h.log.Debug("Client connected", "conn_id", connID)
}

// OnJoin binds a user to the connection, joins the identity room plus every
// group/channel room the user belongs to, and broadcasts the online
// transition if this is their first live connection. Joining again on an
// already-bound connection is idempotent; joining as a different user unwinds
// the previous binding.
//
// A resolver failure is not fatal: the identity room is already joined, so
// direct messages still flow; group/channel delivery resumes on reconnect.
func (h *Hub) OnJoin(ctx context.Context, connID, userID string) error {
	h.mu.Lock()
	previous, rebind := h.bound[connID]
	h.bound[connID] = userID
	h.mu.Unlock()

	if rebind && previous != userID {
		// The connection switches identity: unwind the old binding first so
		// the previous user's connection count stays balanced.
		h.registry.Leave(connID, domain.UserRoom(previous))
		if last := h.presence.Disconnected(previous); last {
			if err := h.users.SetOnline(previous, false); err != nil {
				h.log.Error("Failed to persist offline status", "user_id", previous, "error", err)
			}
			h.Broadcast(ctx, event.UserStatus{UserID: previous, Status: domain.StatusOffline})
		}
	}

	h.registry.Join(connID, domain.UserRoom(userID))
	h.log.Info("User joined their room", "user_id", userID, "conn_id", connID)

	// A repeated join on the same connection must not count as a new device,
	// otherwise the disconnect decrement can never bring the count to zero.
	if !rebind || previous != userID {
		if first := h.presence.Connected(userID); first {
			if err := h.users.SetOnline(userID, true); err != nil {
				h.log.Error("Failed to persist online status", "user_id", userID, "error", err)
			}
			h.Broadcast(ctx, event.UserStatus{UserID: userID, Status: domain.StatusOnline})
		}
	}

	rooms, err := h.resolver.ResolveRooms(userID)
	if err != nil {
		h.log.Error("Error auto-joining groups/channels", "user_id", userID, "error", err)
		return nil
	}
	for _, roomID := range rooms {
		h.registry.Join(connID, roomID)
		h.log.Debug(fmt.Sprintf("User %s auto-joined %s", userID, roomID))
	}
	return nil
}

// JoinRoom handles an explicit join_group/join_channel event, e.g. for a
// group created after the connection was bound. Idempotent.
func (h *Hub) JoinRoom(connID string, roomID domain.RoomID) error {
	if _, ok := h.BoundUser(connID); !ok {
		return nil // unbound connections cannot join rooms, mirror the silent drop
	}
	h.registry.Join(connID, roomID)
	return nil
}

// EvictRoom retracts one connection's room membership. Nothing in the
// realtime protocol calls this; the CRUD layer may, to make membership
// revocation immediate instead of lazy.
func (h *Hub) EvictRoom(connID string, roomID domain.RoomID) {
	h.registry.Leave(connID, roomID)
}

// OnDisconnect tears the connection down. If it was the user's last one,
// presence flips offline and the change is broadcast exactly once.
func (h *Hub) OnDisconnect(ctx context.Context, connID string) {
	h.mu.Lock()
	userID, wasBound := h.bound[connID]
	delete(h.bound, connID)
	h.mu.Unlock()

	h.registry.Unregister(connID)

	if !wasBound {
		return
	}
	h.log.Info("Client disconnected", "user_id", userID, "conn_id", connID)
	if last := h.presence.Disconnected(userID); last {
		if err := h.users.SetOnline(userID, false); err != nil {
			h.log.Error("Failed to persist offline status", "user_id", userID, "error", err)
		}
		h.Broadcast(ctx, event.UserStatus{UserID: userID, Status: domain.StatusOffline})
	}
}

// BoundUser reports the user id bound to a connection, if any.
func (h *Hub) BoundUser(connID string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	userID, ok := h.bound[connID]
	return userID, ok
}

// DeliverToRoom fans one event out to every connection in the room. An
// empty room is a no-op, not an error. Failures are isolated per recipient:
// one slow or dead sink never blocks the others.
func (h *Hub) DeliverToRoom(ctx context.Context, roomID domain.RoomID, evt event.DomainEvent) {
	for _, sink := range h.registry.SinksForRoom(roomID) {
		if err := sink.Consume(ctx, evt); err != nil {
			h.log.Warn("Failed to deliver event", "room_id", roomID, "event", evt.EventName(), "error", err)
		}
	}
}

// DeliverToRoomExcept fans out to the room while skipping one connection.
func (h *Hub) DeliverToRoomExcept(ctx context.Context, roomID domain.RoomID, evt event.DomainEvent, exceptConnID string) {
	for _, sink := range h.registry.SinksForRoomExcept(roomID, exceptConnID) {
		if err := sink.Consume(ctx, evt); err != nil {
			h.log.Warn("Failed to deliver event", "room_id", roomID, "event", evt.EventName(), "error", err)
		}
	}
}

// DeliverToUser targets the identity room: every device the user has open.
func (h *Hub) DeliverToUser(ctx context.Context, userID string, evt event.DomainEvent) {
	h.DeliverToRoom(ctx, domain.UserRoom(userID), evt)
}

// Broadcast sends to every live connection, bound or not.
func (h *Hub) Broadcast(ctx context.Context, evt event.DomainEvent) {
	for _, sink := range h.registry.AllSinks() {
		if err := sink.Consume(ctx, evt); err != nil {
			h.log.Warn("Failed to broadcast event", "event", evt.EventName(), "error", err)
		}
	}
}

// Stats feeds the debug inspector.
func (h *Hub) Stats() map[string]any {
	connections, rooms := h.registry.Counts()
	return map[string]any{
		"connections": connections,
		"rooms":       rooms,
		"online":      h.presence.OnlineCount(),
	}
}
