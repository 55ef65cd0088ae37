package router

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"chathub/domain"
	"chathub/domain/event"
	apperrors "chathub/errors"
)

func TestRouter_ToggleReaction_Echoes_To_Both_Identity_Rooms(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	req.NoError(f.users.Save(domain.User{ID: "alice", DisplayName: "Alice"}))
	req.NoError(f.users.Save(domain.User{ID: "bob", DisplayName: "Bob"}))
	aliceSink := f.connect(t, "conn-a", "alice")
	bobSink := f.connect(t, "conn-b", "bob")

	sent, err := f.router.SendDirect(ctx, "alice", "bob", domain.MessageContent{Text: "hello"})
	req.NoError(err)

	// When bob reacts
	updated, err := f.router.ToggleReaction(ctx, sent.ID, "bob", "👍")
	req.NoError(err)
	req.Equal([]string{"bob"}, updated.Reactions["👍"])

	// Then both parties see the new reaction map
	req.Len(aliceSink.byName("reaction_updated"), 1)
	req.Len(bobSink.byName("reaction_updated"), 1)

	evt := bobSink.byName("reaction_updated")[0].(event.ReactionUpdated)
	req.Equal(sent.ID, evt.MessageID)
	req.Equal([]string{"bob"}, evt.Reactions["👍"])
}

func TestRouter_EditMessage_Echoes_To_Group_Room(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	req.NoError(f.users.Save(domain.User{ID: "alice", DisplayName: "Alice"}))
	req.NoError(f.users.Save(domain.User{ID: "bob", DisplayName: "Bob"}))
	req.NoError(f.groups.Add(domain.Membership{UserID: "alice", RoomID: "g1", Status: domain.MembershipAccepted}))
	req.NoError(f.groups.Add(domain.Membership{UserID: "bob", RoomID: "g1", Status: domain.MembershipAccepted}))
	f.connect(t, "conn-a", "alice")
	bobSink := f.connect(t, "conn-b", "bob")

	sent, err := f.router.SendGroup(ctx, "alice", "g1", domain.MessageContent{Text: "draft"})
	req.NoError(err)

	// When the sender edits
	updated, err := f.router.EditMessage(ctx, sent.ID, "alice", "final")
	req.NoError(err)
	req.True(updated.IsEdited)

	events := bobSink.byName("message_updated")
	req.Len(events, 1)
	req.Equal("final", events[0].(event.MessageUpdated).Message)

	// And a non-sender cannot
	_, err = f.router.EditMessage(ctx, sent.ID, "bob", "vandalized")
	req.ErrorIs(err, apperrors.ErrNotSender)
}

func TestRouter_DeleteMessage_Echoes_Redacted_Body(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	req.NoError(f.users.Save(domain.User{ID: "alice", DisplayName: "Alice"}))
	req.NoError(f.users.Save(domain.User{ID: "bob", DisplayName: "Bob"}))
	f.connect(t, "conn-a", "alice")
	bobSink := f.connect(t, "conn-b", "bob")

	sent, err := f.router.SendDirect(ctx, "alice", "bob", domain.MessageContent{Text: "oops"})
	req.NoError(err)

	// When the sender deletes
	deleted, err := f.router.DeleteMessage(ctx, sent.ID, "alice")
	req.NoError(err)
	req.True(deleted.IsDeleted)

	events := bobSink.byName("message_deleted")
	req.Len(events, 1)
	req.Equal(domain.DeletedBody, events[0].(event.MessageDeleted).Message)
}

func TestRouter_TogglePin_And_Star_Have_No_Echo(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	req.NoError(f.users.Save(domain.User{ID: "alice", DisplayName: "Alice"}))
	req.NoError(f.users.Save(domain.User{ID: "bob", DisplayName: "Bob"}))
	f.connect(t, "conn-a", "alice")
	bobSink := f.connect(t, "conn-b", "bob")

	sent, err := f.router.SendDirect(ctx, "alice", "bob", domain.MessageContent{Text: "keep this"})
	req.NoError(err)
	before := len(bobSink.events)

	pinned, err := f.router.TogglePin(ctx, sent.ID)
	req.NoError(err)
	req.True(pinned.IsPinned)

	starred, err := f.router.ToggleStar(ctx, sent.ID)
	req.NoError(err)
	req.True(starred.IsStarred)

	// Pins and stars surface through history fetches, not realtime echoes
	req.Len(bobSink.events, before)
}
