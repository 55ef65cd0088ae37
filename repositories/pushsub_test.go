package repositories

import (
	"testing"

	"github.com/stretchr/testify/require"

	"chathub/domain"
)

func TestPushSubscriptionStore_Save_List_Delete(t *testing.T) {
	req := require.New(t)
	store := NewPushSubscriptionStore(openTestDB(t))

	// Given two devices for one user
	req.NoError(store.Save(domain.PushSubscription{
		UserID:   "alice",
		Endpoint: "https://push.example.com/ep1",
		P256dh:   "key1",
		Auth:     "auth1",
	}))
	req.NoError(store.Save(domain.PushSubscription{
		UserID:   "alice",
		Endpoint: "https://push.example.com/ep2",
		P256dh:   "key2",
		Auth:     "auth2",
	}))

	subs, err := store.ListForUser("alice")
	req.NoError(err)
	req.Len(subs, 2)

	// When evicting one by endpoint alone
	req.NoError(store.Delete("https://push.example.com/ep1"))

	subs, err = store.ListForUser("alice")
	req.NoError(err)
	req.Len(subs, 1)
	req.Equal("https://push.example.com/ep2", subs[0].Endpoint)
}

func TestPushSubscriptionStore_Delete_Unknown_Is_NoOp(t *testing.T) {
	req := require.New(t)
	store := NewPushSubscriptionStore(openTestDB(t))

	req.NoError(store.Delete("https://push.example.com/never-seen"))
}

func TestPushSubscriptionStore_Save_Same_Endpoint_Overwrites(t *testing.T) {
	req := require.New(t)
	store := NewPushSubscriptionStore(openTestDB(t))

	// Given a device re-registering with fresh keys
	req.NoError(store.Save(domain.PushSubscription{
		UserID: "alice", Endpoint: "https://push.example.com/ep", P256dh: "old", Auth: "old",
	}))
	req.NoError(store.Save(domain.PushSubscription{
		UserID: "alice", Endpoint: "https://push.example.com/ep", P256dh: "new", Auth: "new",
	}))

	subs, err := store.ListForUser("alice")
	req.NoError(err)
	req.Len(subs, 1)
	req.Equal("new", subs[0].P256dh)
}
