// Package runtime owns the live side of the system: which connections
// exist, which rooms they joined, and who is online. It contains no
// business rules and no storage beyond in-memory indexes.
package runtime

import (
	"sync"

	"chathub/contract"
	"chathub/domain"
)

type Set map[string]struct{}

// Registry indexes connections both ways: room -> connections for fan-out,
// connection -> rooms for cleanup on disconnect. Rooms spring into existence
// on first join and vanish with their last member.
type Registry struct {
	mu          sync.RWMutex
	sessions    map[string]contract.EventSink         // connID -> sink
	roomMembers map[domain.RoomID]Set                 // room -> connIDs
	connRooms   map[string]map[domain.RoomID]struct{} // reverse index
}

func NewRegistry() *Registry {
	return &Registry{
		sessions:    make(map[string]contract.EventSink),
		roomMembers: make(map[domain.RoomID]Set),
		connRooms:   make(map[string]map[domain.RoomID]struct{}),
	}
}

// Register records a new anonymous connection. No room membership yet.
func (r *Registry) Register(connID string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[connID] = sink
}

// Unregister drops the connection and removes it from every room it joined,
// leaving no empty sets behind.
func (r *Registry) Unregister(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, connID)
	for roomID := range r.connRooms[connID] {
		if members, ok := r.roomMembers[roomID]; ok {
			delete(members, connID)
			if len(members) == 0 {
				delete(r.roomMembers, roomID)
			}
		}
	}
	delete(r.connRooms, connID)
}

// Join adds the connection to a room. Joining twice is a no-op, so a room
// never delivers duplicates to one connection.
func (r *Registry) Join(connID string, roomID domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[connID]; !ok {
		return
	}
	if _, ok := r.roomMembers[roomID]; !ok {
		r.roomMembers[roomID] = make(Set)
	}
	r.roomMembers[roomID][connID] = struct{}{}

	if _, ok := r.connRooms[connID]; !ok {
		r.connRooms[connID] = make(map[domain.RoomID]struct{})
	}
	r.connRooms[connID][roomID] = struct{}{}
}

// Leave removes one room membership. Unused by the realtime protocol itself
// (membership removal is lazy, applied at next reconnect) but exposed for
// the CRUD layer to evict immediately if it ever wants to.
func (r *Registry) Leave(connID string, roomID domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if members, ok := r.roomMembers[roomID]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(r.roomMembers, roomID)
		}
	}
	if rooms, ok := r.connRooms[connID]; ok {
		delete(rooms, roomID)
		if len(rooms) == 0 {
			delete(r.connRooms, connID)
		}
	}
}

// SinksForRoom resolves the room's current connections into sinks.
// Returns nil if the room doesn't exist or has no members.
func (r *Registry) SinksForRoom(roomID domain.RoomID) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.roomMembers[roomID]
	if !ok {
		return nil
	}
	var sinks []contract.EventSink
	for connID := range members {
		if sink, exists := r.sessions[connID]; exists {
			sinks = append(sinks, sink)
		}
	}
	return sinks
}

// SinksForRoomExcept is SinksForRoom minus one connection, used for relays
// that must not echo to the emitting socket (typing indicators).
func (r *Registry) SinksForRoomExcept(roomID domain.RoomID, exceptConnID string) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.roomMembers[roomID]
	if !ok {
		return nil
	}
	var sinks []contract.EventSink
	for connID := range members {
		if connID == exceptConnID {
			continue
		}
		if sink, exists := r.sessions[connID]; exists {
			sinks = append(sinks, sink)
		}
	}
	return sinks
}

// AllSinks snapshots every live connection, for global broadcasts such as
// presence changes.
func (r *Registry) AllSinks() []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sinks := make([]contract.EventSink, 0, len(r.sessions))
	for _, sink := range r.sessions {
		sinks = append(sinks, sink)
	}
	return sinks
}

// Rooms lists the rooms one connection has joined.
func (r *Registry) Rooms(connID string) []domain.RoomID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]domain.RoomID, 0, len(r.connRooms[connID]))
	for roomID := range r.connRooms[connID] {
		rooms = append(rooms, roomID)
	}
	return rooms
}

// Counts reports live connection and room totals.
func (r *Registry) Counts() (connections, rooms int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions), len(r.roomMembers)
}
