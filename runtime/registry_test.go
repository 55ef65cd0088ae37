package runtime

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"chathub/domain"
	"chathub/domain/event"
)

type Sink struct {
	name string
}

func (s Sink) Consume(ctx context.Context, e event.DomainEvent) error {
	return nil
}

func TestRegistry_Register_And_Join(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connID := uuid.NewString()
	roomID := domain.GroupRoom("g1")
	sink := Sink{name: "a"}

	// Given no connection and no room
	connections, rooms := registry.Counts()
	req.Zero(connections)
	req.Zero(rooms)

	// When a connection registers and joins a room
	registry.Register(connID, sink)
	registry.Join(connID, roomID)

	// Then
	connections, rooms = registry.Counts()
	req.Equal(1, connections)
	req.Equal(1, rooms)

	req.Contains(registry.Rooms(connID), roomID)
	req.Len(registry.SinksForRoom(roomID), 1)
	req.Contains(registry.SinksForRoom(roomID), sink)
}

func TestRegistry_Join_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connID := uuid.NewString()
	roomID := domain.UserRoom("alice")

	registry.Register(connID, Sink{})

	// When joining the same room twice
	registry.Join(connID, roomID)
	registry.Join(connID, roomID)

	// Then the room holds the connection once
	req.Len(registry.SinksForRoom(roomID), 1)
	_, rooms := registry.Counts()
	req.Equal(1, rooms)
}

func TestRegistry_Join_Without_Register_Is_Ignored(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	// When an unknown connection joins
	registry.Join(uuid.NewString(), domain.GroupRoom("g1"))

	// Then no room was created
	_, rooms := registry.Counts()
	req.Zero(rooms)
}

func TestRegistry_Unregister_Cleans_All_Rooms(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connID := uuid.NewString()
	otherID := uuid.NewString()

	registry.Register(connID, Sink{name: "a"})
	registry.Register(otherID, Sink{name: "b"})
	registry.Join(connID, domain.UserRoom("alice"))
	registry.Join(connID, domain.GroupRoom("g1"))
	registry.Join(otherID, domain.GroupRoom("g1"))

	// When the connection unregisters
	registry.Unregister(connID)

	// Then its sessions and memberships are gone
	connections, rooms := registry.Counts()
	req.Equal(1, connections)
	req.Empty(registry.Rooms(connID))

	// And its solo room vanished while the shared room survives
	req.Equal(1, rooms)
	req.Nil(registry.SinksForRoom(domain.UserRoom("alice")))
	req.Len(registry.SinksForRoom(domain.GroupRoom("g1")), 1)
}

func TestRegistry_SinksForRoomExcept(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connID1 := uuid.NewString()
	connID2 := uuid.NewString()
	roomID := domain.GroupRoom("g1")
	sink1 := Sink{name: "a"}
	sink2 := Sink{name: "b"}

	registry.Register(connID1, sink1)
	registry.Register(connID2, sink2)
	registry.Join(connID1, roomID)
	registry.Join(connID2, roomID)

	// When excluding the first connection
	sinks := registry.SinksForRoomExcept(roomID, connID1)

	// Then only the other one remains
	req.Len(sinks, 1)
	req.Contains(sinks, sink2)
}

func TestRegistry_Leave_Removes_Empty_Room(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connID := uuid.NewString()
	roomID := domain.ChannelRoom("c1")

	registry.Register(connID, Sink{})
	registry.Join(connID, roomID)

	// When the last member leaves
	registry.Leave(connID, roomID)

	// Then the room no longer exists
	_, rooms := registry.Counts()
	req.Zero(rooms)
	req.Nil(registry.SinksForRoom(roomID))
}
