package repositories

import (
	"testing"

	"github.com/stretchr/testify/require"

	"chathub/domain"
)

func TestMembershipStore_Add_List_Remove(t *testing.T) {
	req := require.New(t)
	store := NewGroupMembershipStore(openTestDB(t))

	// Given two members of one group and one member of another
	req.NoError(store.Add(domain.Membership{UserID: "alice", RoomID: "g1", Status: domain.MembershipAccepted}))
	req.NoError(store.Add(domain.Membership{UserID: "bob", RoomID: "g1", Status: domain.MembershipPending}))
	req.NoError(store.Add(domain.Membership{UserID: "alice", RoomID: "g2", Status: domain.MembershipAccepted}))

	// Then both directions of the relation answer
	members, err := store.ListMembers("g1")
	req.NoError(err)
	req.ElementsMatch([]string{"alice", "bob"}, members)

	memberships, err := store.ListForUser("alice")
	req.NoError(err)
	req.Len(memberships, 2)

	// When removing one membership
	req.NoError(store.Remove("bob", "g1"))

	members, err = store.ListMembers("g1")
	req.NoError(err)
	req.Equal([]string{"alice"}, members)

	memberships, err = store.ListForUser("bob")
	req.NoError(err)
	req.Empty(memberships)
}

func TestMembershipStore_Groups_And_Channels_Are_Isolated(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	groups := NewGroupMembershipStore(db)
	channels := NewChannelMembershipStore(db)

	// Given the same room id on both sides
	req.NoError(groups.Add(domain.Membership{UserID: "alice", RoomID: "42", Status: domain.MembershipAccepted}))

	// Then the channel store does not see it
	members, err := channels.ListMembers("42")
	req.NoError(err)
	req.Empty(members)
}

func TestMembershipStore_RoomInfo(t *testing.T) {
	req := require.New(t)
	store := NewChannelMembershipStore(openTestDB(t))

	req.NoError(store.SaveRoom(domain.Room{ID: "c1", Name: "general"}))

	room, err := store.GetRoom("c1")
	req.NoError(err)
	req.Equal("general", room.Name)

	_, err = store.GetRoom("missing")
	req.Error(err)
}
